package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/JonMunkholm/dsr/internal/logging"
)

// Service registers and signs in users.
type Service struct {
	store  UserStore
	tokens *TokenIssuer
}

// NewService creates a Service.
func NewService(store UserStore, tokens *TokenIssuer) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register creates an account. The email is stored lowercased.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}

	u, err := s.store.CreateUser(ctx, email, hash)
	if err != nil {
		return User{}, err
	}

	logging.FromContext(ctx).Info("user registered", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// Login checks the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, hash, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if err := CheckPassword(hash, password); err != nil {
		logging.FromContext(ctx).Warn("sign-in failed", "email", email)
		return Session{}, err
	}

	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expires, User: u}, nil
}

// Verify checks a session token.
func (s *Service) Verify(token string) (Claims, error) {
	return s.tokens.Verify(token)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
