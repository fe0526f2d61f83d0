// Package cache is a small byte cache in front of expensive read queries.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyNotFound is returned by Get on a miss.
	ErrKeyNotFound = errors.New("cache: key not found")
	// ErrCacheUnavailable is returned when the backend cannot be reached.
	ErrCacheUnavailable = errors.New("cache: unavailable")
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Noop never stores anything. It is used when no cache backend is
// configured.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrKeyNotFound }

func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error { return nil }

func (Noop) Delete(ctx context.Context, key string) error { return nil }

func (Noop) Close() error { return nil }
