package redis

import (
	"context"
	"time"

	"cabbook/internal/domain"
)

// ProfileCacheInterface defines the user profile cache.
type ProfileCacheInterface interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	SetUser(ctx context.Context, user *domain.User) error
	InvalidateUser(ctx context.Context, userID string) error
}

// LockStoreInterface defines the OTP resend lock.
type LockStoreInterface interface {
	AcquireOTPLock(ctx context.Context, mobile string, ttl time.Duration) (bool, error)
	ReleaseOTPLock(ctx context.Context, mobile string) error
}

// Ensure concrete types implement interfaces.
var (
	_ ProfileCacheInterface = (*CacheStore)(nil)
	_ LockStoreInterface    = (*LockStore)(nil)
)
