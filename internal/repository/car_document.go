package repository

import (
	"context"

	"cabbook/internal/domain"
)

// CarDocumentRepository defines the persistence operations for KYC bundles.
type CarDocumentRepository interface {
	// Create persists a bundle. Returns ErrConflict if the user already has one.
	Create(ctx context.Context, doc *domain.CarDocument) error

	GetByUserID(ctx context.Context, userID string) (*domain.CarDocument, error)

	Update(ctx context.Context, doc *domain.CarDocument) error

	DeleteByUserID(ctx context.Context, userID string) error
}
