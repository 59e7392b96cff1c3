// Package service contains application services for authentication and progress sync.
package service

import (
	"context"
	"crypto/subtle"

	"github.com/dsavelev/kosyncd/internal/errs"
	"github.com/dsavelev/kosyncd/internal/limiter"
	"github.com/dsavelev/kosyncd/internal/model"
	"github.com/dsavelev/kosyncd/internal/repository"
)

// AuthService defines registration and credential verification.
type AuthService interface {
	// Register creates a new user account.
	Register(ctx context.Context, username, passwordHash string) error
	// AuthenticateWithIP applies rate limiting and verifies credentials.
	AuthenticateWithIP(ctx context.Context, username, passwordHash, ip string) (*model.User, error)
}

type AuthServiceImpl struct {
	users             repository.UserRepository
	allowRegistration bool
	lim               limiter.Limiter // nil disables rate limiting
}

// NewAuthService constructs AuthService. allowRegistration is read once at
// startup; when false, Register fails before touching storage.
func NewAuthService(users repository.UserRepository, allowRegistration bool, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, allowRegistration: allowRegistration, lim: lim}
}

// Register creates a new user record.
//
// The password hash arrives pre-hashed from the client and is stored verbatim.
// The server never re-hashes it: the fixed client compares byte-for-byte, and
// any "improvement" here would break wire compatibility.
func (s *AuthServiceImpl) Register(ctx context.Context, username, passwordHash string) error {
	if !s.allowRegistration {
		return errs.ErrRegistrationDisabled
	}
	if !validKey(username) {
		return errs.ErrInvalidUsername
	}
	if passwordHash == "" {
		return errs.ErrBadCredentials
	}
	return s.users.Create(ctx, &model.User{Username: username, PasswordHash: passwordHash})
}

// AuthenticateWithIP verifies the supplied hash against the stored record.
//
// ErrUserNotFound and ErrBadCredentials stay distinct here so callers can log
// the difference; the transport collapses both to one 401 for the client.
func (s *AuthServiceImpl) AuthenticateWithIP(ctx context.Context, username, passwordHash, ip string) (*model.User, error) {
	if username == "" || passwordHash == "" {
		return nil, errs.ErrBadCredentials
	}
	if !validKey(username) {
		return nil, errs.ErrUserNotFound
	}

	ipHash := limiter.HashIP(ip)
	if s.lim != nil {
		allowed, _, err := s.lim.Allow(ctx, username, ipHash)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, errs.ErrRateLimited
		}
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(passwordHash)) != 1 {
		if s.lim != nil {
			if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
				return nil, errs.ErrRateLimited
			}
		}
		if err != nil {
			return nil, err
		}
		return nil, errs.ErrBadCredentials
	}

	if s.lim != nil {
		// best-effort reset
		_ = s.lim.Success(ctx, username, ipHash)
	}
	return u, nil
}
