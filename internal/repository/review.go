package repository

import (
	"context"

	"cabbook/internal/domain"
)

// ReviewRepository defines the persistence operations for reviews.
type ReviewRepository interface {
	// Create persists a review. Returns ErrConflict if the reviewer already reviewed the user.
	Create(ctx context.Context, review *domain.Review) error

	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByUser returns reviews about userID joined with the reviewer profile, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.ReviewWithReviewer, error)

	Update(ctx context.Context, review *domain.Review) error

	Delete(ctx context.Context, id string) error
}
