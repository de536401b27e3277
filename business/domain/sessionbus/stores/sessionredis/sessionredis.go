// Package sessionredis keeps the session slot in redis.
package sessionredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/redis/go-redis/v9"
)

// Store manages the set of APIs for session slot access.
type Store struct {
	log    *logger.Logger
	client redis.Cmdable
	ttl    time.Duration
}

// NewStore constructs the api for data access. A zero ttl keeps the session
// until it is cleared.
func NewStore(log *logger.Logger, client redis.Cmdable, ttl time.Duration) *Store {
	return &Store{
		log:    log,
		client: client,
		ttl:    ttl,
	}
}

// Get returns the value in the slot.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sessionbus.ErrNotFound
		}
		return nil, fmt.Errorf("get: key[%s]: %w", key, err)
	}

	return data, nil
}

// Set writes the value into the slot.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("set: key[%s]: %w", key, err)
	}

	return nil
}

// Delete empties the slot.
func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("del: key[%s]: %w", key, err)
	}

	if n == 0 {
		s.log.Debug(ctx, "sessionredis: delete of empty slot", "key", key)
	}

	return nil
}
