package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"cabbook/internal/domain"
	"cabbook/internal/repository"
)

const tripColumns = `t.id, t.vendor_id, t.driver_id, t.pickup_location, t.dropoff_location,
		t.pickup_date, t.pickup_time, t.duration, t.duration_unit, t.trip_type,
		t.fare, t.commission, t.commission_state, t.payment_id, t.car_type,
		t.car_name, t.additional, t.verify_code, t.status, t.created_at, t.updated_at`

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (
			id, vendor_id, driver_id, pickup_location, dropoff_location,
			pickup_date, pickup_time, duration, duration_unit, trip_type,
			fare, commission, commission_state, payment_id, car_type,
			car_name, additional, verify_code, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		trip.ID,
		trip.VendorID,
		nullString(trip.DriverID),
		trip.PickupLocation,
		trip.DropoffLocation,
		trip.PickupDate,
		trip.PickupTime,
		trip.Duration,
		trip.DurationUnit,
		trip.TripType,
		trip.Fare,
		trip.Commission,
		nullString(string(trip.CommissionState)),
		nullString(trip.PaymentID),
		trip.CarType,
		trip.CarName,
		trip.Additional,
		trip.VerifyCode,
		trip.Status,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// List returns trips matching filter, newest first.
func (r *TripRepository) List(ctx context.Context, filter repository.TripFilter, page repository.Page) ([]*domain.Trip, error) {
	w := tripWhere(filter)
	query := `SELECT ` + tripColumns + ` FROM trips t` + w.clause() + ` ORDER BY t.created_at DESC, t.id DESC` + pageClause(w, page)

	rows, err := r.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]*domain.Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Count returns the number of trips matching filter.
func (r *TripRepository) Count(ctx context.Context, filter repository.TripFilter) (int, error) {
	w := tripWhere(filter)
	query := `SELECT COUNT(*) FROM trips t` + w.clause()

	var total int
	if err := r.q.QueryRowContext(ctx, query, w.args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ListWithVendor returns trips matching filter joined with the vendor's public
// profile. Trips whose vendor no longer exists are returned with a nil Vendor.
func (r *TripRepository) ListWithVendor(ctx context.Context, filter repository.TripFilter, page repository.Page) ([]*domain.TripWithVendor, error) {
	w := tripWhere(filter)
	query := `SELECT ` + tripColumns + `, u.id, u.full_name, u.mobile_number, u.avatar
		FROM trips t
		LEFT JOIN users u ON u.id = t.vendor_id` +
		w.clause() + ` ORDER BY t.created_at DESC, t.id DESC` + pageClause(w, page)

	rows, err := r.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.TripWithVendor, 0)
	for rows.Next() {
		var (
			row                          tripRow
			vendorID, name, mobile, avat sql.NullString
		)
		dest := append(row.dest(), &vendorID, &name, &mobile, &avat)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		item := &domain.TripWithVendor{Trip: row.toTrip()}
		if vendorID.Valid {
			item.Vendor = &domain.VendorSummary{
				ID:           vendorID.String,
				FullName:     name.String,
				MobileNumber: mobile.String,
				Avatar:       avat.String,
			}
		}
		result = append(result, item)
	}

	return result, rows.Err()
}

// Transition applies patch in a single UPDATE guarded by guard. When no row
// satisfies the guard it returns repository.ErrConflict and writes nothing.
func (r *TripRepository) Transition(ctx context.Context, id string, guard repository.TripGuard, patch repository.TripPatch) (*domain.Trip, error) {
	query, args := transitionQuery(id, guard, patch)

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return trip, nil
}

func transitionQuery(id string, guard repository.TripGuard, patch repository.TripPatch) (string, []any) {
	w := &whereBuilder{}

	sets := []string{"updated_at = NOW()"}
	if patch.Status != "" {
		sets = append(sets, "status = "+w.arg(patch.Status))
	}
	if patch.DriverID != "" {
		sets = append(sets, "driver_id = "+w.arg(patch.DriverID))
	}
	if patch.PaymentID != "" {
		sets = append(sets, "payment_id = "+w.arg(patch.PaymentID))
	}
	if patch.CommissionState != "" {
		sets = append(sets, "commission_state = "+w.arg(patch.CommissionState))
	}

	w.eq("t.id", id)
	if guard.Status != "" {
		w.eq("t.status", guard.Status)
	}
	if guard.VendorID != "" {
		w.eq("t.vendor_id", guard.VendorID)
	}
	if guard.DriverID != "" {
		w.eq("t.driver_id", guard.DriverID)
	}
	if guard.VerifyCode != "" {
		w.eq("t.verify_code", guard.VerifyCode)
	}
	if guard.Unassigned {
		w.raw("t.driver_id IS NULL")
	}

	query := `UPDATE trips t SET ` + strings.Join(sets, ", ") + w.clause() + ` RETURNING ` + tripColumns
	return query, w.args
}

func tripWhere(filter repository.TripFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter.VendorID != "" {
		w.eq("t.vendor_id", filter.VendorID)
	}
	if filter.DriverID != "" {
		w.eq("t.driver_id", filter.DriverID)
	}
	if filter.TripType != "" {
		w.eq("t.trip_type", filter.TripType)
	}
	if filter.CarType != "" {
		w.eq("t.car_type", filter.CarType)
	}
	if filter.Status != "" {
		w.eq("t.status", filter.Status)
	}
	return w
}

func pageClause(w *whereBuilder, page repository.Page) string {
	if page.Limit <= 0 {
		return ""
	}
	clause := " LIMIT " + w.arg(page.Limit)
	if page.Offset > 0 {
		clause += " OFFSET " + w.arg(page.Offset)
	}
	return clause
}

// tripRow stages the nullable trip columns during a scan.
type tripRow struct {
	trip            domain.Trip
	driverID        sql.NullString
	commissionState sql.NullString
	paymentID       sql.NullString
}

// dest returns scan targets in tripColumns order.
func (r *tripRow) dest() []any {
	return []any{
		&r.trip.ID,
		&r.trip.VendorID,
		&r.driverID,
		&r.trip.PickupLocation,
		&r.trip.DropoffLocation,
		&r.trip.PickupDate,
		&r.trip.PickupTime,
		&r.trip.Duration,
		&r.trip.DurationUnit,
		&r.trip.TripType,
		&r.trip.Fare,
		&r.trip.Commission,
		&r.commissionState,
		&r.paymentID,
		&r.trip.CarType,
		&r.trip.CarName,
		&r.trip.Additional,
		&r.trip.VerifyCode,
		&r.trip.Status,
		&r.trip.CreatedAt,
		&r.trip.UpdatedAt,
	}
}

func (r *tripRow) toTrip() *domain.Trip {
	trip := r.trip
	trip.DriverID = r.driverID.String
	trip.CommissionState = domain.CommissionState(r.commissionState.String)
	trip.PaymentID = r.paymentID.String
	return &trip
}

func scanTrip(s scanner) (*domain.Trip, error) {
	var row tripRow
	if err := s.Scan(row.dest()...); err != nil {
		return nil, err
	}
	return row.toTrip(), nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
