package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"cabbook/internal/domain"
	"cabbook/internal/logger"
	"cabbook/internal/repository"
)

const (
	verifyCodeLength = 4

	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// TripService owns the trip state machine. Every transition is a single
// guarded update in the repository, so concurrent requests on the same trip
// cannot both succeed.
type TripService struct {
	tripRepo repository.TripRepository
	log      logger.ILogger

	newID   func() string
	newCode func() (string, error)
}

// NewTripService creates a new TripService.
func NewTripService(tripRepo repository.TripRepository, log logger.ILogger) *TripService {
	return &TripService{
		tripRepo: tripRepo,
		log:      log,
		newID:    uuid.NewString,
		newCode:  func() (string, error) { return generateCode(verifyCodeLength) },
	}
}

// CreateTripRequest contains the booking fields for a new trip. Required
// fields are pointers so an absent field can be told apart from a zero value.
type CreateTripRequest struct {
	VendorID        string
	PickupLocation  *string
	DropoffLocation *string
	PickupDate      *string
	PickupTime      *string
	Duration        *float64
	DurationUnit    *string
	TripType        *string
	Fare            *float64
	Commission      *float64
	CarType         *string
	CarName         string
	Additional      string
}

// CreateTrip validates req and persists a pending trip with a fresh
// verification code.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if req.VendorID == "" {
		return nil, ErrVendorRequired
	}

	if blank(req.PickupLocation) || blank(req.DropoffLocation) || blank(req.PickupDate) ||
		blank(req.PickupTime) || blank(req.DurationUnit) || blank(req.TripType) || blank(req.CarType) ||
		req.Duration == nil || req.Fare == nil || req.Commission == nil {
		return nil, ErrMissingFields
	}

	if *req.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if *req.Fare <= 0 {
		return nil, ErrInvalidFare
	}
	if *req.Commission <= 0 {
		return nil, ErrInvalidCommission
	}

	unit := domain.DurationUnit(strings.TrimSpace(*req.DurationUnit))
	if !unit.Valid() {
		return nil, ErrInvalidDurationUnit
	}
	tripType := domain.TripType(strings.TrimSpace(*req.TripType))
	if !tripType.Valid() {
		return nil, ErrInvalidTripType
	}
	carType := domain.CarType(strings.ToLower(strings.TrimSpace(*req.CarType)))
	if !carType.Valid() {
		return nil, ErrInvalidCarType
	}

	pickupDate, err := parsePickupDate(*req.PickupDate)
	if err != nil {
		return nil, ErrInvalidPickupDate
	}
	pickupTime, err := parsePickupTime(*req.PickupTime, pickupDate)
	if err != nil {
		return nil, ErrInvalidPickupTime
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate verify code: %w", err)
	}

	trip := &domain.Trip{
		ID:              s.newID(),
		VendorID:        req.VendorID,
		PickupLocation:  strings.TrimSpace(*req.PickupLocation),
		DropoffLocation: strings.TrimSpace(*req.DropoffLocation),
		PickupDate:      pickupDate,
		PickupTime:      pickupTime,
		Duration:        *req.Duration,
		DurationUnit:    unit,
		TripType:        tripType,
		Fare:            *req.Fare,
		Commission:      *req.Commission,
		CarType:         carType,
		CarName:         strings.TrimSpace(req.CarName),
		Additional:      strings.TrimSpace(req.Additional),
		VerifyCode:      code,
		Status:          domain.TripStatusPending,
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}

	s.log.Info("trip created",
		logger.String("trip_id", trip.ID),
		logger.String("vendor_id", trip.VendorID),
		logger.String("car_type", string(trip.CarType)),
	)
	return trip, nil
}

// AcceptTrip assigns driverID to a pending trip. Of several concurrent
// accepts on the same trip exactly one succeeds.
func (s *TripService) AcceptTrip(ctx context.Context, tripID, driverID, paymentID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrDriverRequired
	}
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	trip, err := s.tripRepo.Transition(ctx, tripID,
		repository.TripGuard{Status: domain.TripStatusPending, Unassigned: true},
		repository.TripPatch{
			Status:          domain.TripStatusAccepted,
			DriverID:        driverID,
			PaymentID:       paymentID,
			CommissionState: domain.CommissionStateReceived,
		},
	)
	if err == nil {
		s.log.Info("trip accepted", logger.String("trip_id", tripID), logger.String("driver_id", driverID))
		return trip, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("accept trip %s: %w", tripID, err)
	}

	if _, err := s.load(ctx, tripID); err != nil {
		return nil, err
	}
	return nil, ErrTripNotAvailable
}

// CompleteTrip marks an accepted trip completed. Only the assigned driver
// presenting the trip's verification code may do so.
func (s *TripService) CompleteTrip(ctx context.Context, tripID, driverID, verifyCode string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrDriverRequired
	}
	verifyCode = strings.TrimSpace(verifyCode)

	if verifyCode != "" {
		trip, err := s.tripRepo.Transition(ctx, tripID,
			repository.TripGuard{
				Status:     domain.TripStatusAccepted,
				DriverID:   driverID,
				VerifyCode: verifyCode,
			},
			repository.TripPatch{Status: domain.TripStatusCompleted},
		)
		if err == nil {
			s.log.Info("trip completed", logger.String("trip_id", tripID), logger.String("driver_id", driverID))
			return trip, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("complete trip %s: %w", tripID, err)
		}
	}

	current, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	switch {
	case current.DriverID != driverID:
		return nil, ErrNotTripDriver
	case current.Status != domain.TripStatusAccepted:
		return nil, ErrTripNotAccepted
	default:
		return nil, ErrInvalidVerifyCode
	}
}

// CancelTripByVendor cancels a pending trip on behalf of its vendor. Trips a
// driver has already accepted cannot be cancelled, and finished trips are
// rejected whoever asks.
func (s *TripService) CancelTripByVendor(ctx context.Context, tripID, vendorID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if vendorID == "" {
		return nil, ErrVendorRequired
	}

	trip, err := s.tripRepo.Transition(ctx, tripID,
		repository.TripGuard{Status: domain.TripStatusPending, VendorID: vendorID},
		repository.TripPatch{Status: domain.TripStatusCancelled},
	)
	if err == nil {
		s.log.Info("trip cancelled", logger.String("trip_id", tripID), logger.String("vendor_id", vendorID))
		return trip, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("cancel trip %s: %w", tripID, err)
	}

	current, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	switch {
	case current.Status.Terminal():
		return nil, ErrTripCannotBeCancelled
	case current.VendorID != vendorID:
		return nil, ErrNotTripVendor
	case current.Status == domain.TripStatusAccepted:
		return nil, ErrTripAlreadyAccepted
	default:
		return nil, ErrTripCannotBeCancelled
	}
}

// GetTrip returns a single trip. The verification code is only visible to
// the trip's vendor.
func (s *TripService) GetTrip(ctx context.Context, tripID, actorID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if actorID == "" || actorID != trip.VendorID {
		trip.VerifyCode = ""
	}
	return trip, nil
}

// Pagination describes one page of a listing.
type Pagination struct {
	TotalTrips  int
	TotalPages  int
	CurrentPage int
	Limit       int
}

// ListVendorTrips returns the vendor's trips newest first, optionally
// restricted to one status.
func (s *TripService) ListVendorTrips(ctx context.Context, vendorID, status string, page, limit int) ([]*domain.Trip, Pagination, error) {
	if vendorID == "" {
		return nil, Pagination{}, ErrVendorRequired
	}

	filter := repository.TripFilter{VendorID: vendorID}
	if status != "" {
		st := domain.TripStatus(status)
		if !st.Valid() {
			return nil, Pagination{}, ErrInvalidTripStatus
		}
		filter.Status = st
	}

	page, limit = normalizePage(page, limit)
	trips, err := s.tripRepo.List(ctx, filter, repository.Page{Offset: (page - 1) * limit, Limit: limit})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list vendor trips: %w", err)
	}
	total, err := s.tripRepo.Count(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count vendor trips: %w", err)
	}

	return trips, newPagination(total, page, limit), nil
}

// TripQuery holds the optional equality filters of ListAllTrips.
type TripQuery struct {
	VendorID string
	DriverID string
	TripType string
	CarType  string
	Status   string
	Page     int
	Limit    int
}

// ListAllTrips returns trips matching every set filter, newest first, each
// joined with its vendor's public profile. Status "ongoing" means accepted.
func (s *TripService) ListAllTrips(ctx context.Context, q TripQuery) ([]*domain.TripWithVendor, Pagination, error) {
	filter := repository.TripFilter{
		VendorID: q.VendorID,
		DriverID: q.DriverID,
		TripType: domain.TripType(q.TripType),
		CarType:  domain.CarType(q.CarType),
		Status:   domain.TripStatus(q.Status),
	}
	if q.Status == domain.TripStatusOngoing {
		filter.Status = domain.TripStatusAccepted
	}

	page, limit := normalizePage(q.Page, q.Limit)
	items, err := s.tripRepo.ListWithVendor(ctx, filter, repository.Page{Offset: (page - 1) * limit, Limit: limit})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list trips: %w", err)
	}
	total, err := s.tripRepo.Count(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count trips: %w", err)
	}

	hideVerifyCodes(items)
	return items, newPagination(total, page, limit), nil
}

// ListDriverTrips returns every trip assigned to driverID, newest first.
func (s *TripService) ListDriverTrips(ctx context.Context, driverID string) ([]*domain.TripWithVendor, error) {
	if driverID == "" {
		return nil, ErrDriverRequired
	}

	items, err := s.tripRepo.ListWithVendor(ctx, repository.TripFilter{DriverID: driverID}, repository.Page{})
	if err != nil {
		return nil, fmt.Errorf("list driver trips: %w", err)
	}

	hideVerifyCodes(items)
	return items, nil
}

func (s *TripService) load(ctx context.Context, tripID string) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("get trip %s: %w", tripID, err)
	}
	return trip, nil
}

// hideVerifyCodes strips codes from listings shown to drivers.
func hideVerifyCodes(items []*domain.TripWithVendor) {
	for _, item := range items {
		item.Trip.VerifyCode = ""
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func newPagination(total, page, limit int) Pagination {
	return Pagination{
		TotalTrips:  total,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
		Limit:       limit,
	}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

var pickupDateLayouts = []string{time.RFC3339, "2006-01-02", "02-01-2006"}

func parsePickupDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range pickupDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

var pickupClockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"}

// parsePickupTime accepts a full timestamp or a wall-clock time, which is
// placed on the pickup date.
func parsePickupTime(value string, date time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range pickupClockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", value)
}
