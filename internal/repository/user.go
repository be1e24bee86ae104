package repository

import (
	"context"

	"cabbook/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create adds a new user. Returns ErrConflict on a duplicate mobile number or email.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByMobile retrieves a user by mobile number.
	GetByMobile(ctx context.Context, mobile string) (*domain.User, error)

	// Update overwrites the mutable fields of an existing user.
	Update(ctx context.Context, user *domain.User) error
}
