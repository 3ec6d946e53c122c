// Package services orchestrates the credential and expense flows on top of
// the storage layer, keeping the HTTP surfaces thin.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"expansive/internal/auth"
	"expansive/internal/core"
	"expansive/internal/storage"
)

// AccountService implements registration, login and logout.
type AccountService struct {
	repo       *storage.Repository
	sessionTTL time.Duration
}

func NewAccountService(repo *storage.Repository, sessionTTL time.Duration) *AccountService {
	return &AccountService{repo: repo, sessionTTL: sessionTTL}
}

// Register validates the input, hashes the password and inserts the user.
// A username or email collision yields core.ErrConflict without saying which
// field collided. No session is created; the caller logs in separately.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (core.User, error) {
	username, email, password, err := core.ValidateRegistration(username, email, password)
	if err != nil {
		return core.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, username, email, hash)
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered",
		"user_id", user.ID,
		"username", user.Username)
	return user, nil
}

// Login verifies the credentials and establishes a session. Unknown email and
// wrong password both yield core.ErrInvalidCredentials so responses cannot be
// used to enumerate accounts.
func (s *AccountService) Login(ctx context.Context, email, password string) (core.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return core.Session{}, core.ErrInvalidCredentials
	}

	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Session{}, core.ErrInvalidCredentials
		}
		return core.Session{}, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return core.Session{}, core.ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return core.Session{}, err
	}

	now := time.Now().UTC()
	session := core.Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return core.Session{}, err
	}

	slog.InfoContext(ctx, "User logged in",
		"user_id", user.ID,
		"username", user.Username)
	return session, nil
}

// Logout removes the session. Logging out twice, or with an unknown token, is
// harmless.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}

// Resolve maps a session token to an identity, or core.ErrUnauthenticated.
func (s *AccountService) Resolve(ctx context.Context, token string) (core.Identity, error) {
	session, err := s.repo.SessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Identity{}, core.ErrUnauthenticated
		}
		return core.Identity{}, err
	}
	return core.Identity{UserID: session.UserID, Username: session.Username}, nil
}

// SweepSessions runs the expired-session sweeper until the context is
// cancelled.
func (s *AccountService) SweepSessions(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.repo.DeleteExpiredSessions(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "Expired sessions swept", "removed", n)
			}
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
