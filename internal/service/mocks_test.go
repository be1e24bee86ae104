package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"cabbook/internal/domain"
	"cabbook/internal/repository"
)

// MockTripRepository is an in-memory TripRepository. Transition checks and
// applies its guard under one lock, like the conditional UPDATE it stands in for.
type MockTripRepository struct {
	mu      sync.Mutex
	trips   map[string]*domain.Trip
	vendors map[string]*domain.VendorSummary
	clock   time.Time

	TransitionCallCount int32

	// Error injection
	CreateError error
	ListError   error
	// TransitionErrors are returned, in order, by the next Transition calls.
	TransitionErrors []error
}

func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips:   make(map[string]*domain.Trip),
		vendors: make(map[string]*domain.VendorSummary),
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// AddTrip stores trip, stamping CreatedAt so later additions sort first.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = m.clock
	}
	copy := *trip
	m.trips[trip.ID] = &copy
}

func (m *MockTripRepository) AddVendor(vendor *domain.VendorSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vendors[vendor.ID] = vendor
}

// GetTrip returns the stored trip for assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil
	}
	copy := *trip
	return &copy
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.AddTrip(trip)
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	trip := m.GetTrip(id)
	if trip == nil {
		return nil, repository.ErrNotFound
	}
	return trip, nil
}

func (m *MockTripRepository) List(ctx context.Context, filter repository.TripFilter, page repository.Page) ([]*domain.Trip, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := m.filter(filter)
	return paginate(matched, page), nil
}

func (m *MockTripRepository) Count(ctx context.Context, filter repository.TripFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filter(filter)), nil
}

func (m *MockTripRepository) ListWithVendor(ctx context.Context, filter repository.TripFilter, page repository.Page) ([]*domain.TripWithVendor, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	trips := paginate(m.filter(filter), page)
	result := make([]*domain.TripWithVendor, 0, len(trips))
	for _, trip := range trips {
		item := &domain.TripWithVendor{Trip: trip}
		if v, ok := m.vendors[trip.VendorID]; ok {
			copy := *v
			item.Vendor = &copy
		}
		result = append(result, item)
	}
	return result, nil
}

func (m *MockTripRepository) Transition(ctx context.Context, id string, guard repository.TripGuard, patch repository.TripPatch) (*domain.Trip, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.TransitionErrors) > 0 {
		err := m.TransitionErrors[0]
		m.TransitionErrors = m.TransitionErrors[1:]
		return nil, err
	}

	trip, ok := m.trips[id]
	if !ok ||
		(guard.Status != "" && trip.Status != guard.Status) ||
		(guard.VendorID != "" && trip.VendorID != guard.VendorID) ||
		(guard.DriverID != "" && trip.DriverID != guard.DriverID) ||
		(guard.VerifyCode != "" && trip.VerifyCode != guard.VerifyCode) ||
		(guard.Unassigned && trip.DriverID != "") {
		return nil, repository.ErrConflict
	}

	if patch.Status != "" {
		trip.Status = patch.Status
	}
	if patch.DriverID != "" {
		trip.DriverID = patch.DriverID
	}
	if patch.PaymentID != "" {
		trip.PaymentID = patch.PaymentID
	}
	if patch.CommissionState != "" {
		trip.CommissionState = patch.CommissionState
	}
	m.clock = m.clock.Add(time.Second)
	trip.UpdatedAt = m.clock

	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) filter(f repository.TripFilter) []*domain.Trip {
	var result []*domain.Trip
	for _, t := range m.trips {
		if (f.VendorID != "" && t.VendorID != f.VendorID) ||
			(f.DriverID != "" && t.DriverID != f.DriverID) ||
			(f.TripType != "" && t.TripType != f.TripType) ||
			(f.CarType != "" && t.CarType != f.CarType) ||
			(f.Status != "" && t.Status != f.Status) {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func paginate(trips []*domain.Trip, page repository.Page) []*domain.Trip {
	if page.Offset >= len(trips) {
		return []*domain.Trip{}
	}
	trips = trips[page.Offset:]
	if page.Limit > 0 && page.Limit < len(trips) {
		trips = trips[:page.Limit]
	}
	return trips
}

// MockUserRepository is an in-memory UserRepository enforcing unique mobile
// numbers and emails.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *user
	m.users[user.ID] = &copy
}

// GetUser returns the stored user for assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil
	}
	copy := *user
	return &copy
}

// Count returns the number of stored users.
func (m *MockUserRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken(user) {
		return repository.ErrConflict
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user := m.GetUser(id)
	if user == nil {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (m *MockUserRepository) GetByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.MobileNumber == mobile {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.taken(user) {
		return repository.ErrConflict
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) taken(user *domain.User) bool {
	for id, u := range m.users {
		if id == user.ID {
			continue
		}
		if u.MobileNumber == user.MobileNumber || (user.Email != "" && u.Email == user.Email) {
			return true
		}
	}
	return false
}

// MockReviewRepository is an in-memory ReviewRepository.
type MockReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]*domain.Review
}

func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{reviews: make(map[string]*domain.Review)}
}

func (m *MockReviewRepository) GetReview(id string) *domain.Review {
	m.mu.RLock()
	defer m.mu.RUnlock()
	review, ok := m.reviews[id]
	if !ok {
		return nil
	}
	copy := *review
	return &copy
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.UserID == review.UserID && r.ReviewerID == review.ReviewerID {
			return repository.ErrConflict
		}
	}
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	copy := *review
	m.reviews[review.ID] = &copy
	return nil
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	review := m.GetReview(id)
	if review == nil {
		return nil, repository.ErrNotFound
	}
	return review, nil
}

func (m *MockReviewRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ReviewWithReviewer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ReviewWithReviewer, 0)
	for _, r := range m.reviews {
		if r.UserID == userID {
			copy := *r
			result = append(result, &domain.ReviewWithReviewer{Review: &copy})
		}
	}
	return result, nil
}

func (m *MockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[review.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *review
	m.reviews[review.ID] = &copy
	return nil
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

// MockCarDocumentRepository is an in-memory CarDocumentRepository keyed by user.
type MockCarDocumentRepository struct {
	mu   sync.RWMutex
	docs map[string]*domain.CarDocument
}

func NewMockCarDocumentRepository() *MockCarDocumentRepository {
	return &MockCarDocumentRepository{docs: make(map[string]*domain.CarDocument)}
}

func (m *MockCarDocumentRepository) GetDocument(userID string) *domain.CarDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docs[userID]
}

func (m *MockCarDocumentRepository) Create(ctx context.Context, doc *domain.CarDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.UserID]; ok {
		return repository.ErrConflict
	}
	copy := *doc
	m.docs[doc.UserID] = &copy
	return nil
}

func (m *MockCarDocumentRepository) GetByUserID(ctx context.Context, userID string) (*domain.CarDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *doc
	return &copy, nil
}

func (m *MockCarDocumentRepository) Update(ctx context.Context, doc *domain.CarDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.UserID]; !ok {
		return repository.ErrNotFound
	}
	copy := *doc
	m.docs[doc.UserID] = &copy
	return nil
}

func (m *MockCarDocumentRepository) DeleteByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.docs, userID)
	return nil
}

// MockProfileCache is an in-memory ProfileCache.
type MockProfileCache struct {
	mu    sync.Mutex
	users map[string]*domain.User

	GetCallCount        int32
	InvalidateCallCount int32
}

func NewMockProfileCache() *MockProfileCache {
	return &MockProfileCache{users: make(map[string]*domain.User)}
}

func (m *MockProfileCache) GetUser(ctx context.Context, id string) (*domain.User, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copy := *user
	return &copy, nil
}

func (m *MockProfileCache) SetUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockProfileCache) InvalidateUser(ctx context.Context, id string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

// MockOTPThrottle grants each mobile number one lock.
type MockOTPThrottle struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMockOTPThrottle() *MockOTPThrottle {
	return &MockOTPThrottle{held: make(map[string]bool)}
}

func (m *MockOTPThrottle) AcquireOTPLock(ctx context.Context, mobile string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[mobile] {
		return false, nil
	}
	m.held[mobile] = true
	return true, nil
}

func (m *MockOTPThrottle) ReleaseOTPLock(ctx context.Context, mobile string) error {
	m.Release(mobile)
	return nil
}

// Release simulates the lock expiring.
func (m *MockOTPThrottle) Release(mobile string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, mobile)
}

// MockVerificationSender records sent codes.
type MockVerificationSender struct {
	mu    sync.Mutex
	codes map[string]string

	SendError error
}

func NewMockVerificationSender() *MockVerificationSender {
	return &MockVerificationSender{codes: make(map[string]string)}
}

func (m *MockVerificationSender) SendVerificationCode(ctx context.Context, mobile, code string) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[mobile] = code
	return nil
}

// LastCode returns the last code sent to mobile.
func (m *MockVerificationSender) LastCode(mobile string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[mobile]
}
