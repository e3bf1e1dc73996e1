package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/csentein/P6-Sentein-Clement/internal/account"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/google/uuid"
)

// LoginResult is returned to a client after a successful login.
type LoginResult struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

// Signup registers a new account. Returns account.ErrWeakPassword,
// ErrInvalidEmail or domain.ErrEmailTaken on rejection.
func (s *Service) Signup(ctx context.Context, email, password string) (*domain.Account, error) {
	acc, err := s.signup(ctx, email, password)
	switch {
	case err == nil:
		s.authMetrics.Signups.WithLabelValues("created").Inc()
	case errors.Is(err, account.ErrWeakPassword), errors.Is(err, ErrInvalidEmail), errors.Is(err, domain.ErrEmailTaken):
		s.authMetrics.Signups.WithLabelValues("rejected").Inc()
	default:
		s.authMetrics.Signups.WithLabelValues("error").Inc()
	}
	return acc, err
}

func (s *Service) signup(ctx context.Context, email, password string) (*domain.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := account.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	acc := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Account created", "user_id", acc.ID)
	return acc, nil
}

// Login checks the credentials and issues a token. clientKey identifies the
// caller for brute-force throttling; failures count against it and a
// success clears it. A throttle backend error lets the attempt through.
func (s *Service) Login(ctx context.Context, clientKey, email, password string) (*LoginResult, error) {
	wait, err := s.throttle.Check(ctx, clientKey)
	if err != nil {
		slog.WarnContext(ctx, "Login throttle unavailable", "error", err)
	} else if wait > 0 {
		s.authMetrics.LoginAttempts.WithLabelValues("throttled").Inc()
		return nil, &ThrottledError{Wait: wait}
	}

	acc, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, s.loginFailed(ctx, clientKey)
	}
	if err != nil {
		s.authMetrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := s.hasher.Compare(acc.PasswordHash, password); err != nil {
		return nil, s.loginFailed(ctx, clientKey)
	}

	token, err := s.issuer.Issue(acc.ID.String())
	if err != nil {
		s.authMetrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.throttle.Reset(ctx, clientKey); err != nil {
		slog.WarnContext(ctx, "Failed to reset login throttle", "error", err)
	}
	s.authMetrics.LoginAttempts.WithLabelValues("success").Inc()
	return &LoginResult{UserID: acc.ID.String(), Token: token}, nil
}

func (s *Service) loginFailed(ctx context.Context, clientKey string) error {
	s.authMetrics.LoginAttempts.WithLabelValues("failure").Inc()
	if err := s.throttle.RecordFailure(ctx, clientKey); err != nil {
		slog.WarnContext(ctx, "Failed to record login failure", "error", err)
	}
	return ErrInvalidLogin
}
