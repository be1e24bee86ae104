package repository

import (
	"context"

	"cabbook/internal/domain"
)

// TripFilter is an equality filter over trips. Empty fields are ignored.
type TripFilter struct {
	VendorID string
	DriverID string
	TripType domain.TripType
	CarType  domain.CarType
	Status   domain.TripStatus
}

// Page selects a window of a newest-first listing. A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

// TripGuard is the precondition of a conditional trip update. Every non-empty
// field must match the stored row for the update to apply.
type TripGuard struct {
	Status     domain.TripStatus
	VendorID   string
	DriverID   string
	VerifyCode string
	// Unassigned requires driver_id to be NULL.
	Unassigned bool
}

// TripPatch lists the columns written by a conditional update. Empty fields are left untouched.
type TripPatch struct {
	Status          domain.TripStatus
	DriverID        string
	PaymentID       string
	CommissionState domain.CommissionState
}

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// List returns trips matching filter, newest first.
	List(ctx context.Context, filter TripFilter, page Page) ([]*domain.Trip, error)

	// Count returns the number of trips matching filter.
	Count(ctx context.Context, filter TripFilter) (int, error)

	// ListWithVendor returns trips matching filter joined with their vendor, newest first.
	ListWithVendor(ctx context.Context, filter TripFilter, page Page) ([]*domain.TripWithVendor, error)

	// Transition applies patch atomically if and only if guard holds, and
	// returns the updated trip. It returns ErrConflict when no row matched.
	Transition(ctx context.Context, id string, guard TripGuard, patch TripPatch) (*domain.Trip, error)
}
