package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
		wantMsg    string
	}{
		{name: "plain", err: base, wantKind: Internal, wantStatus: http.StatusInternalServerError, wantMsg: "Internal Server Error"},
		{name: "invalid", err: E(InvalidInput, "bad"), wantKind: InvalidInput, wantStatus: http.StatusBadRequest, wantMsg: "bad"},
		{name: "wrapped_twice", err: fmt.Errorf("ctx: %w", Wrap(NotFound, "Not found", base)), wantKind: NotFound, wantStatus: http.StatusNotFound, wantMsg: "Not found"},
		{name: "conflict", err: E(Conflict, "taken"), wantKind: Conflict, wantStatus: http.StatusConflict, wantMsg: "taken"},
		{name: "unauthorized", err: E(Unauthorized, "nope"), wantKind: Unauthorized, wantStatus: http.StatusUnauthorized, wantMsg: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Fatalf("kind: got %v want %v", got, tt.wantKind)
			}
			if got := KindOf(tt.err).Status(); got != tt.wantStatus {
				t.Fatalf("status: got %d want %d", got, tt.wantStatus)
			}
			if got := Message(tt.err); got != tt.wantMsg {
				t.Fatalf("message: got %q want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	base := errors.New("db down")
	err := Wrap(Internal, "Could not list expenses", base)

	if !errors.Is(err, base) {
		t.Fatalf("cause lost")
	}
	if Is(nil, Internal) {
		t.Fatalf("nil must not be classified")
	}
}
