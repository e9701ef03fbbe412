package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidAssertion = errors.New("invalid identity assertion")
	ErrNoEmail          = errors.New("identity assertion has no email")
)

// Identity is what a verified federated assertion tells us about the user.
type Identity struct {
	Subject string
	Email   string
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google ID tokens against Google's published keys and
// the configured OAuth client id.
type GoogleVerifier struct {
	audience string
	validate validateFunc
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		audience: clientID,
		validate: idtoken.Validate,
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, raw string) (Identity, error) {
	payload, err := v.validate(ctx, raw, v.audience)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	email, _ := payload.Claims["email"].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		return Identity{}, ErrNoEmail
	}

	// unverified addresses could be claimed by anyone
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return Identity{}, fmt.Errorf("%w: email not verified", ErrInvalidAssertion)
	}

	return Identity{Subject: payload.Subject, Email: email}, nil
}
