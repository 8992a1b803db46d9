// Package cache stores short-lived search API responses (suggestions and chat answers) so
// repeated keystrokes and reloads do not reach the API every time.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Backend names accepted by New.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const keyPrefix = "snfront:"

// Cache is a byte cache with per-entry expiry. Implementations treat their own failures as
// misses; callers never see cache errors.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Close() error
}

// Options selects and sizes a backend.
type Options struct {
	Backend       string
	Capacity      int
	RedisAddr     string
	RedisDB       int
	RedisPassword string
}

// New builds the configured backend. BackendNone (or "") returns nil, meaning no caching.
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemory(opts.Capacity), nil
	case BackendRedis:
		r, err := NewRedis(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Key derives a stable cache key from parts. The same parts always give the same key.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + hex.EncodeToString(sum[:])
}
