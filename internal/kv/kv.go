// Package kv is the persistent key-value port. Adapters live under
// internal/store.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Store reads and writes whole values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// UpdateFunc computes a new value from the current one. cur is nil when the
// key is missing.
type UpdateFunc func(cur []byte) ([]byte, error)

// Updater is implemented by stores able to apply a read-modify-write
// atomically with respect to other Update calls.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Pinger reports store reachability for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Update applies fn through s's Updater when it has one, and as a plain
// read-merge-write otherwise.
func Update(ctx context.Context, s Store, key string, fn UpdateFunc) error {
	if u, ok := s.(Updater); ok {
		return u.Update(ctx, key, fn)
	}

	cur, err := s.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, next)
}

// GetJSON decodes the value at key into dst. It reports false on a miss and
// leaves dst untouched.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// UpdateJSON runs a typed read-modify-write on key and returns the stored
// result. A missing key starts from T's zero value.
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(cur T) (T, error)) (T, error) {
	var result T
	err := Update(ctx, s, key, func(raw []byte) ([]byte, error) {
		var cur T
		if raw != nil {
			if err := json.Unmarshal(raw, &cur); err != nil {
				return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
			}
		}
		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		result = next
		return json.Marshal(next)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
