// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/dsavelev/kosyncd/internal/model"
)

// UserRepository provides access to registered user records.
type UserRepository interface {
	// Create persists a new user. The write is durable before Create returns.
	// Returns errs.ErrAlreadyExists if the username is taken; concurrent
	// Create calls for the same username must never both succeed.
	Create(ctx context.Context, u *model.User) error

	// GetByUsername loads a user record, or errs.ErrUserNotFound.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
