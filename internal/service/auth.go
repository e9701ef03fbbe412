package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/expensehub/internal/apperr"
	"github.com/geocoder89/expensehub/internal/auth"
	"github.com/geocoder89/expensehub/internal/domain/user"
	"github.com/geocoder89/expensehub/internal/security"
)

const msgInvalidCredentials = "Invalid credentials"

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	IssueToken(userID, email string) (string, error)
}

// IdentityVerifier checks a federated identity assertion.
type IdentityVerifier interface {
	Verify(ctx context.Context, raw string) (auth.Identity, error)
}

// Session is what a successful sign-in returns to the client.
type Session struct {
	Token string      `json:"token"`
	User  user.Public `json:"user"`
}

type AuthService struct {
	users    UserStore
	tokens   TokenIssuer
	verifier IdentityVerifier // nil when federated sign-in is disabled
	log      *slog.Logger
}

func NewAuthService(users UserStore, tokens TokenIssuer, verifier IdentityVerifier, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{users: users, tokens: tokens, verifier: verifier, log: log}
}

// FederatedEnabled reports whether SignInFederated can be used.
func (s *AuthService) FederatedEnabled() bool {
	return s.verifier != nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) (Session, error) {
	email = user.NormalizeEmail(email)
	if email == "" || len(password) < 6 {
		return Session{}, apperr.E(apperr.InvalidInput, "Email and password (>=6) required")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.Internal, "Could not create user", err)
	}

	u, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return Session{}, apperr.Wrap(apperr.Conflict, "Email already registered", err)
		}
		return Session{}, apperr.Wrap(apperr.Internal, "Could not create user", err)
	}

	s.log.InfoContext(ctx, "user_registered", "user_id", u.ID)
	return s.session(u)
}

// Login answers unknown email and wrong password identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return Session{}, apperr.Wrap(apperr.Internal, "Could not sign in", err)
		}
		_ = security.BurnCompare(password)
		return Session{}, apperr.E(apperr.Unauthorized, msgInvalidCredentials)
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return Session{}, apperr.E(apperr.Unauthorized, msgInvalidCredentials)
	}

	return s.session(u)
}

// SignInFederated verifies a third-party assertion and signs the user in,
// creating a password-less account for a first-seen email.
func (s *AuthService) SignInFederated(ctx context.Context, assertion string) (Session, error) {
	if s.verifier == nil {
		return Session{}, apperr.E(apperr.Internal, "Google sign-in not configured")
	}

	id, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		s.log.InfoContext(ctx, "federated_assertion_rejected", "err", err)
		return Session{}, apperr.Wrap(apperr.Unauthorized, "Invalid Google token", err)
	}

	email := user.NormalizeEmail(id.Email)

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, user.ErrNotFound):
		u, err = s.users.Create(ctx, email, user.FederatedPasswordHash)
		if errors.Is(err, user.ErrEmailTaken) {
			// lost a race with a concurrent first sign-in
			u, err = s.users.GetByEmail(ctx, email)
		}
		if err != nil {
			return Session{}, apperr.Wrap(apperr.Internal, "Could not create user", err)
		}
		s.log.InfoContext(ctx, "user_registered", "user_id", u.ID, "provider", "google")
	default:
		return Session{}, apperr.Wrap(apperr.Internal, "Could not sign in", err)
	}

	return s.session(u)
}

// Me resolves the user behind a verified token.
func (s *AuthService) Me(ctx context.Context, userID string) (user.Public, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Public{}, apperr.Wrap(apperr.Unauthorized, "Unknown user", err)
		}
		return user.Public{}, apperr.Wrap(apperr.Internal, "Could not load user", err)
	}
	return u.Public(), nil
}

func (s *AuthService) session(u user.User) (Session, error) {
	token, err := s.tokens.IssueToken(u.ID, u.Email)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.Internal, "Could not generate token", err)
	}
	return Session{Token: token, User: u.Public()}, nil
}
