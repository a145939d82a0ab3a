// Package backend is a reference implementation of the remote places service:
// a read-only catalog and a replace-only list of the user's picked places.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the JSON-encoded user places.
const DefaultRedisKey = "place-picker:user-places"

// Store holds the user's picked places.
type Store interface {
	UserPlaces(ctx context.Context) ([]domain.Place, error)
	ReplaceUserPlaces(ctx context.Context, places []domain.Place) error
}

// MemoryStore keeps user places in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	places []domain.Place
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{places: []domain.Place{}}
}

func (s *MemoryStore) UserPlaces(_ context.Context) ([]domain.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Place{}, s.places...), nil
}

func (s *MemoryStore) ReplaceUserPlaces(_ context.Context, places []domain.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.places = append([]domain.Place{}, places...)
	return nil
}

// RedisStore keeps user places as one JSON value in Redis.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a RedisStore using key, or DefaultRedisKey when key is empty.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) UserPlaces(ctx context.Context) ([]domain.Place, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Place{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	places := []domain.Place{}
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return places, nil
}

func (s *RedisStore) ReplaceUserPlaces(ctx context.Context, places []domain.Place) error {
	if places == nil {
		places = []domain.Place{}
	}
	raw, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("encode user places: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// CheckReadiness pings Redis.
func (s *RedisStore) CheckReadiness(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
