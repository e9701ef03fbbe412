package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// FederatedPasswordHash is stored for accounts created through federated
// sign-in. It is not a bcrypt hash, so password verification always fails.
const FederatedPasswordHash = "!federated"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public is the shape returned to clients alongside a token.
type Public struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u User) Public() Public {
	return Public{ID: u.ID, Email: u.Email}
}

// FederatedOnly reports whether the account can only sign in through a
// federated identity provider.
func (u User) FederatedOnly() bool {
	return u.PasswordHash == FederatedPasswordHash
}

// NormalizeEmail trims and lower-cases an address so uniqueness holds
// regardless of how the user typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest carries no binding rules: an empty email or password is
// answered like any other failed sign-in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}
