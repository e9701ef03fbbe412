package auth

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/api/idtoken"
)

func fakeGoogle(payload *idtoken.Payload, err error) *GoogleVerifier {
	return &GoogleVerifier{
		audience: "client-id",
		validate: func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error) {
			if audience != "client-id" {
				return nil, errors.New("audience mismatch")
			}
			return payload, err
		},
	}
}

func TestGoogleVerifier(t *testing.T) {
	tests := []struct {
		name      string
		payload   *idtoken.Payload
		err       error
		wantEmail string
		wantErr   error
	}{
		{
			name:      "verified_email",
			payload:   &idtoken.Payload{Subject: "g-1", Claims: map[string]interface{}{"email": "a@x.com", "email_verified": true}},
			wantEmail: "a@x.com",
		},
		{
			name:    "provider_rejects",
			err:     errors.New("idtoken: token expired"),
			wantErr: ErrInvalidAssertion,
		},
		{
			name:    "missing_email",
			payload: &idtoken.Payload{Subject: "g-1", Claims: map[string]interface{}{}},
			wantErr: ErrNoEmail,
		},
		{
			name:    "unverified_email",
			payload: &idtoken.Payload{Subject: "g-1", Claims: map[string]interface{}{"email": "a@x.com", "email_verified": false}},
			wantErr: ErrInvalidAssertion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := fakeGoogle(tt.payload, tt.err).Verify(context.Background(), "raw")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Email != tt.wantEmail {
				t.Fatalf("got email %q", id.Email)
			}
		})
	}
}
