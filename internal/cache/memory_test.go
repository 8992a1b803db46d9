package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	c.Set(ctx, "k", []byte("v2"), time.Minute)
	got, _ = c.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), got)
	assert.Equal(t, 1, c.Len())
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory(10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "short", []byte("x"), time.Second)
	c.Set(ctx, "forever", []byte("y"), 0)

	now = now.Add(2 * time.Second)
	_, ok := c.Get(ctx, "short")
	assert.False(t, ok, "expired entry should be a miss")
	_, ok = c.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemory(2)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)
	_, _ = c.Get(ctx, "a")
	c.Set(ctx, "c", []byte("3"), 0)

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("ac", "docs", "q=cat"), Key("ac", "docs", "q=cat"))
	assert.NotEqual(t, Key("ac", "docs", "q=cat"), Key("chat", "docs", "q=cat"))
	assert.NotEqual(t, Key("a", "bc"), Key("ab", "c"))
	assert.Len(t, Key("x"), len(keyPrefix)+64)
}

func TestNew(t *testing.T) {
	c, err := New(Options{Backend: BackendNone})
	assert.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(Options{Backend: BackendMemory, Capacity: 5})
	assert.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(Options{Backend: "memcached"})
	assert.Error(t, err)

	_, err = New(Options{Backend: BackendRedis})
	assert.Error(t, err, "redis without an address must fail")
}
