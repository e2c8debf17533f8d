package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs per cached projection
const (
	TTLBadge         = 30 * time.Second // unread badge (frequently invalidated anyway)
	TTLConversations = 1 * time.Minute  // conversation list
	TTLDefault       = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixBadge         = "chat:badge:"
	PrefixConversations = "chat:convs:"
)

// ErrCacheMiss is returned when a key does not exist
var ErrCacheMiss = errors.New("cache miss")

// Service is the Redis cache over read-heavy chat projections.
// The database stays the source of truth; every mutation path invalidates.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetUnreadBadge(ctx context.Context, userID uint64) (int64, error)
	SetUnreadBadge(ctx context.Context, userID uint64, count int64) error

	GetConversations(ctx context.Context, userID uint64) ([]byte, error)
	SetConversations(ctx context.Context, userID uint64, data interface{}) error

	InvalidateUser(ctx context.Context, userIDs ...uint64) error
}

type service struct {
	client *redis.Client
}

// NewService creates a cache service backed by Redis
func NewService(client *redis.Client) Service {
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func badgeKey(userID uint64) string {
	return fmt.Sprintf("%s%d", PrefixBadge, userID)
}

func conversationsKey(userID uint64) string {
	return fmt.Sprintf("%s%d", PrefixConversations, userID)
}

func (s *service) GetUnreadBadge(ctx context.Context, userID uint64) (int64, error) {
	count, err := s.client.Get(ctx, badgeKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, err
	}
	return count, nil
}

func (s *service) SetUnreadBadge(ctx context.Context, userID uint64, count int64) error {
	return s.client.Set(ctx, badgeKey(userID), count, TTLBadge).Err()
}

func (s *service) GetConversations(ctx context.Context, userID uint64) ([]byte, error) {
	data, err := s.client.Get(ctx, conversationsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

func (s *service) SetConversations(ctx context.Context, userID uint64, data interface{}) error {
	return s.Set(ctx, conversationsKey(userID), data, TTLConversations)
}

// InvalidateUser drops all cached projections for the given participants
func (s *service) InvalidateUser(ctx context.Context, userIDs ...uint64) error {
	keys := make([]string, 0, len(userIDs)*2)
	for _, id := range userIDs {
		keys = append(keys, badgeKey(id), conversationsKey(id))
	}
	return s.Delete(ctx, keys...)
}
