// Package redis is the shared kv.Store adapter, backed by go-redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/clipflow/internal/kv"
	"github.com/redis/go-redis/v9"
)

// DefaultUpdateRetries bounds optimistic transaction retries in Update.
const DefaultUpdateRetries = 10

// ErrUpdateConflict is returned when Update keeps losing the WATCH race.
var ErrUpdateConflict = errors.New("redis update conflict")

// Store implements kv.Store and kv.Updater on a Redis client.
type Store struct {
	client     redis.UniversalClient
	maxRetries int
}

// NewStore creates a store on an already connected client.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{
		client:     client,
		maxRetries: DefaultUpdateRetries,
	}
}

// Get returns the value at key, or kv.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value at key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, Key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Update applies fn inside WATCH/MULTI and retries when another writer
// touched the key between the read and the commit.
func (s *Store) Update(ctx context.Context, key string, fn kv.UpdateFunc) error {
	redisKey := Key(key)

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, redisKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to get %s: %w", key, err)
		}
		if errors.Is(err, redis.Nil) {
			cur = nil
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, redisKey)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s after %d attempts", ErrUpdateConflict, key, s.maxRetries)
}

// Ping checks that Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (s *Store) Close() error {
	return s.client.Close()
}
