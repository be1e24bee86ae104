package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles short-lived locks in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

const otpLockPrefix = "lock:otp:"

// AcquireOTPLock takes the resend lock for mobile. It returns false while a
// previous lock is still live, so at most one code is sent per ttl.
func (s *LockStore) AcquireOTPLock(ctx context.Context, mobile string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, otpLockPrefix+mobile, "1", ttl).Result()
}

// ReleaseOTPLock drops the resend lock for mobile.
func (s *LockStore) ReleaseOTPLock(ctx context.Context, mobile string) error {
	return s.client.Del(ctx, otpLockPrefix+mobile).Err()
}
