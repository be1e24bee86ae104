package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cabbook/internal/auth"
	"cabbook/internal/domain"
	"cabbook/internal/logger"
	"cabbook/internal/middleware"
	"cabbook/internal/repository"
	"cabbook/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memTripRepo is a small in-memory repository.TripRepository.
type memTripRepo struct {
	mu      sync.Mutex
	trips   map[string]*domain.Trip
	vendors map[string]*domain.VendorSummary
	seq     int
	failAll error
}

func newMemTripRepo() *memTripRepo {
	return &memTripRepo{trips: make(map[string]*domain.Trip), vendors: make(map[string]*domain.VendorSummary)}
}

func (m *memTripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	m.seq++
	trip.CreatedAt = time.Date(2026, 1, 1, 0, m.seq, 0, 0, time.UTC)
	trip.UpdatedAt = trip.CreatedAt
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *memTripRepo) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *memTripRepo) matching(f repository.TripFilter) []*domain.Trip {
	var out []*domain.Trip
	for _, t := range m.trips {
		if (f.VendorID == "" || t.VendorID == f.VendorID) &&
			(f.DriverID == "" || t.DriverID == f.DriverID) &&
			(f.TripType == "" || t.TripType == f.TripType) &&
			(f.CarType == "" || t.CarType == f.CarType) &&
			(f.Status == "" || t.Status == f.Status) {
			copy := *t
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memTripRepo) List(ctx context.Context, f repository.TripFilter, page repository.Page) ([]*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	return m.matching(f), nil
}

func (m *memTripRepo) Count(ctx context.Context, f repository.TripFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return 0, m.failAll
	}
	return len(m.matching(f)), nil
}

func (m *memTripRepo) ListWithVendor(ctx context.Context, f repository.TripFilter, page repository.Page) ([]*domain.TripWithVendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	var out []*domain.TripWithVendor
	for _, t := range m.matching(f) {
		out = append(out, &domain.TripWithVendor{Trip: t, Vendor: m.vendors[t.VendorID]})
	}
	return out, nil
}

func (m *memTripRepo) Transition(ctx context.Context, id string, g repository.TripGuard, p repository.TripPatch) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	t, ok := m.trips[id]
	if !ok ||
		(g.Status != "" && t.Status != g.Status) ||
		(g.VendorID != "" && t.VendorID != g.VendorID) ||
		(g.DriverID != "" && t.DriverID != g.DriverID) ||
		(g.VerifyCode != "" && t.VerifyCode != g.VerifyCode) ||
		(g.Unassigned && t.DriverID != "") {
		return nil, repository.ErrConflict
	}
	if p.Status != "" {
		t.Status = p.Status
	}
	if p.DriverID != "" {
		t.DriverID = p.DriverID
	}
	if p.PaymentID != "" {
		t.PaymentID = p.PaymentID
	}
	if p.CommissionState != "" {
		t.CommissionState = p.CommissionState
	}
	copy := *t
	return &copy, nil
}

func newTripRouter(repo *memTripRepo, tokens *auth.TokenManager) *gin.Engine {
	log := logger.NewNop()
	h := NewTripHandler(service.NewTripService(repo, log), log)

	r := gin.New()
	r.Use(middleware.Authenticate(tokens, false, log))
	trips := r.Group("/api/trips")
	trips.POST("/create/:vendorId", h.CreateTrip)
	trips.GET("/vendor/:vendorId", h.ListVendorTrips)
	trips.GET("/get-all", h.ListAllTrips)
	trips.GET("/driver", h.ListDriverTrips)
	trips.GET("/:tripId", h.GetTrip)
	trips.PATCH("/accept/:tripId/:driverId/:paymentId", h.AcceptTrip)
	trips.POST("/complete/:tripId", h.CompleteTrip)
	trips.PATCH("/cancel/:tripId/:vendorId", h.CancelTrip)
	return r
}

func perform(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

const createBody = `{
	"pickupLocation": "Pune",
	"dropoffLocation": "Mumbai",
	"pickupDate": "2026-03-01",
	"pickupTime": "09:30",
	"duration": 8,
	"durationUnit": "hours",
	"tripType": "one-way",
	"fare": 2500,
	"commission": 250,
	"carType": "SUV"
}`

func createTrip(t *testing.T, r http.Handler, vendorID string) TripResponse {
	t.Helper()
	w := perform(r, http.MethodPost, "/api/trips/create/"+vendorID, createBody, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", w.Code, w.Body)
	}
	return *decode[TripEnvelope](t, w).Trip
}

func TestTripHandler_CreateTrip(t *testing.T) {
	r := newTripRouter(newMemTripRepo(), auth.NewTokenManager("secret", time.Hour))

	w := perform(r, http.MethodPost, "/api/trips/create/vendor-1", createBody, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body)
	}

	resp := decode[TripEnvelope](t, w)
	if !resp.Success || resp.Message != "Trip created" {
		t.Errorf("unexpected envelope %+v", resp)
	}
	trip := resp.Trip
	if trip.Status != "pending" || trip.VendorID != "vendor-1" || trip.CarType != "suv" {
		t.Errorf("unexpected trip %+v", trip)
	}
	if trip.PickupDate != "2026-03-01" || trip.PickupTime != "2026-03-01T09:30:00Z" {
		t.Errorf("unexpected pickup %s %s", trip.PickupDate, trip.PickupTime)
	}
	if len(trip.VerifyCode) != 4 {
		t.Errorf("expected a 4 digit verify code for the vendor, got %q", trip.VerifyCode)
	}
	if trip.DriverID != "" || trip.PaymentID != "" || trip.CommissionState != "" {
		t.Errorf("pending trip should carry no assignment: %+v", trip)
	}
}

func TestTripHandler_CreateTripKeepsFullPickupTimestamp(t *testing.T) {
	r := newTripRouter(newMemTripRepo(), auth.NewTokenManager("secret", time.Hour))

	body := strings.Replace(createBody, `"pickupTime": "09:30"`, `"pickupTime": "2026-03-02T01:15:45Z"`, 1)
	w := perform(r, http.MethodPost, "/api/trips/create/vendor-1", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body)
	}

	trip := decode[TripEnvelope](t, w).Trip
	if trip.PickupDate != "2026-03-01" {
		t.Errorf("unexpected pickup date %s", trip.PickupDate)
	}
	if trip.PickupTime != "2026-03-02T01:15:45Z" {
		t.Errorf("expected pickup timestamp to keep its date and seconds, got %s", trip.PickupTime)
	}
}

func TestTripHandler_CreateTripMissingFields(t *testing.T) {
	r := newTripRouter(newMemTripRepo(), auth.NewTokenManager("secret", time.Hour))

	w := perform(r, http.MethodPost, "/api/trips/create/vendor-1", `{"pickupLocation":"Pune","fare":0}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := decode[ErrorResponse](t, w)
	if resp.Success || resp.Message != "all fields are required" {
		t.Errorf("unexpected error body %+v", resp)
	}

	w = perform(r, http.MethodPost, "/api/trips/create/vendor-1", `{not json`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestTripHandler_TokenMustMatchRouteIdentity(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newTripRouter(newMemTripRepo(), tokens)

	token, err := tokens.Issue("vendor-2", "work")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := perform(r, http.MethodPost, "/api/trips/create/vendor-1", createBody, token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = perform(r, http.MethodPost, "/api/trips/create/vendor-2", createBody, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
}

func TestTripHandler_AcceptCompleteFlow(t *testing.T) {
	r := newTripRouter(newMemTripRepo(), auth.NewTokenManager("secret", time.Hour))
	trip := createTrip(t, r, "vendor-1")

	w := perform(r, http.MethodPatch, "/api/trips/accept/"+trip.ID+"/driver-1/pay-1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d %s", w.Code, w.Body)
	}
	accepted := decode[TripEnvelope](t, w)
	if accepted.Trip.Status != "accepted" || accepted.Trip.CommissionState != "received" || accepted.Trip.PaymentID != "pay-1" {
		t.Errorf("unexpected accepted trip %+v", accepted.Trip)
	}
	if accepted.Trip.VerifyCode != "" {
		t.Error("verify code must not be sent to the driver")
	}

	w = perform(r, http.MethodPatch, "/api/trips/accept/"+trip.ID+"/driver-2/pay-2", "", "")
	if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Message != "trip is not available for acceptance" {
		t.Fatalf("second accept: expected 400, got %d %s", w.Code, w.Body)
	}

	w = perform(r, http.MethodPost, "/api/trips/complete/"+trip.ID, `{"verifyCode":"0000","driverId":"driver-2"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong driver: expected 401, got %d", w.Code)
	}

	wrong := "0000"
	if trip.VerifyCode == wrong {
		wrong = "1111"
	}
	w = perform(r, http.MethodPost, "/api/trips/complete/"+trip.ID, `{"verifyCode":"`+wrong+`","driverId":"driver-1"}`, "")
	if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Message != "invalid verification code" {
		t.Fatalf("wrong code: expected 400, got %d %s", w.Code, w.Body)
	}

	w = perform(r, http.MethodPost, "/api/trips/complete/"+trip.ID, `{"verifyCode":"`+trip.VerifyCode+`","driverId":"driver-1"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d %s", w.Code, w.Body)
	}
	if decode[TripEnvelope](t, w).Trip.Status != "completed" {
		t.Errorf("expected completed trip")
	}

	w = perform(r, http.MethodPatch, "/api/trips/cancel/"+trip.ID+"/vendor-1", "", "")
	if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Message != "trip cannot be cancelled" {
		t.Fatalf("cancel completed: expected 400, got %d %s", w.Code, w.Body)
	}
}

func TestTripHandler_CancelErrors(t *testing.T) {
	r := newTripRouter(newMemTripRepo(), auth.NewTokenManager("secret", time.Hour))
	trip := createTrip(t, r, "vendor-1")

	w := perform(r, http.MethodPatch, "/api/trips/cancel/missing/vendor-1", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = perform(r, http.MethodPatch, "/api/trips/cancel/"+trip.ID+"/vendor-2", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = perform(r, http.MethodPatch, "/api/trips/cancel/"+trip.ID+"/vendor-1", "", "")
	if w.Code != http.StatusOK || decode[TripEnvelope](t, w).Trip.Status != "cancelled" {
		t.Fatalf("expected cancelled trip, got %d %s", w.Code, w.Body)
	}
}

func TestTripHandler_ListAllTripsWithVendor(t *testing.T) {
	repo := newMemTripRepo()
	repo.vendors["vendor-1"] = &domain.VendorSummary{ID: "vendor-1", FullName: "Asha Travels", MobileNumber: "9876543210"}
	r := newTripRouter(repo, auth.NewTokenManager("secret", time.Hour))

	createTrip(t, r, "vendor-1")
	createTrip(t, r, "vendor-gone")

	w := perform(r, http.MethodGet, "/api/trips/get-all?tripStatus=pending&page=1&limit=10", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body)
	}

	resp := decode[AllTripsResponse](t, w)
	if resp.TotalTrips != 2 || resp.TotalPages != 1 || resp.CurrentPage != 1 || len(resp.Trips) != 2 {
		t.Fatalf("unexpected listing %+v", resp)
	}
	if resp.Trips[0].VendorID != "vendor-gone" || resp.Trips[0].Vendor != nil {
		t.Errorf("expected newest trip first with null vendor, got %+v", resp.Trips[0])
	}
	if resp.Trips[1].Vendor == nil || resp.Trips[1].Vendor.FullName != "Asha Travels" {
		t.Errorf("expected vendor on older trip, got %+v", resp.Trips[1].Vendor)
	}
	for _, trip := range resp.Trips {
		if trip.VerifyCode != "" {
			t.Errorf("verify code leaked in listing: %+v", trip)
		}
	}

	if !strings.Contains(w.Body.String(), `"vendor":null`) {
		t.Errorf("expected explicit null vendor in %s", w.Body)
	}
}

func TestTripHandler_ListVendorTrips(t *testing.T) {
	r := newTripRouter(newMemTripRepo(), auth.NewTokenManager("secret", time.Hour))
	createTrip(t, r, "vendor-1")
	createTrip(t, r, "vendor-2")

	w := perform(r, http.MethodGet, "/api/trips/vendor/vendor-1?page=abc", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body)
	}
	resp := decode[VendorTripsResponse](t, w)
	if len(resp.Trips) != 1 || resp.Pagination.TotalTrips != 1 || resp.Pagination.CurrentPage != 1 || resp.Pagination.Limit != 10 {
		t.Errorf("unexpected response %+v", resp)
	}

	w = perform(r, http.MethodGet, "/api/trips/vendor/vendor-1?tripState=bogus", "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", w.Code)
	}
}

func TestTripHandler_ListDriverTripsRequiresDriver(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newTripRouter(newMemTripRepo(), tokens)
	trip := createTrip(t, r, "vendor-1")
	perform(r, http.MethodPatch, "/api/trips/accept/"+trip.ID+"/driver-1/pay-1", "", "")

	w := perform(r, http.MethodGet, "/api/trips/driver", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	token, err := tokens.Issue("driver-1", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	w = perform(r, http.MethodGet, "/api/trips/driver", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	trips := decode[[]TripWithVendorResponse](t, w)
	if len(trips) != 1 || trips[0].ID != trip.ID {
		t.Errorf("unexpected driver trips %+v", trips)
	}
}

func TestTripHandler_InternalErrorsAreHidden(t *testing.T) {
	repo := newMemTripRepo()
	repo.failAll = errors.New("pq: connection refused on 10.0.0.5")
	r := newTripRouter(repo, auth.NewTokenManager("secret", time.Hour))

	w := perform(r, http.MethodGet, "/api/trips/trip-1", "", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Errorf("internal detail leaked: %s", w.Body)
	}
	if decode[ErrorResponse](t, w).Message != "internal server error" {
		t.Errorf("unexpected body %s", w.Body)
	}
}
