package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"cabbook/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// UserCacheTTL bounds how stale a cached profile can be.
const UserCacheTTL = 5 * time.Minute

const userCachePrefix = "cache:user:"

// CachedUser is the public part of a user profile. Credentials and pending
// verification codes are never cached.
type CachedUser struct {
	ID                 string    `json:"id"`
	Avatar             string    `json:"avatar"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email"`
	MobileNumber       string    `json:"mobile_number"`
	Role               string    `json:"role"`
	IsVerified         bool      `json:"is_verified"`
	IsDocumentVerified bool      `json:"is_document_verified"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// GetUser retrieves a profile from cache. A miss returns nil, nil.
func (s *CacheStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	data, err := s.client.Get(ctx, userCachePrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cached CachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return cached.toUser(), nil
}

// SetUser stores a profile in cache.
func (s *CacheStore) SetUser(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(newCachedUser(user))
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userCachePrefix+user.ID, data, UserCacheTTL).Err()
}

// InvalidateUser removes a profile from cache.
func (s *CacheStore) InvalidateUser(ctx context.Context, userID string) error {
	return s.client.Del(ctx, userCachePrefix+userID).Err()
}

func newCachedUser(u *domain.User) CachedUser {
	return CachedUser{
		ID:                 u.ID,
		Avatar:             u.Avatar,
		FullName:           u.FullName,
		Email:              u.Email,
		MobileNumber:       u.MobileNumber,
		Role:               string(u.Role),
		IsVerified:         u.IsVerified,
		IsDocumentVerified: u.IsDocumentVerified,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (c CachedUser) toUser() *domain.User {
	return &domain.User{
		ID:                 c.ID,
		Avatar:             c.Avatar,
		FullName:           c.FullName,
		Email:              c.Email,
		MobileNumber:       c.MobileNumber,
		Role:               domain.Role(c.Role),
		IsVerified:         c.IsVerified,
		IsDocumentVerified: c.IsDocumentVerified,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
