package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryStore().WithClock(func() time.Time { return now })

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "ns", "k", "v", time.Minute))
		v, err := m.Get(ctx, "ns", "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)

		_, err = m.Get(ctx, "other", "k")
		assert.ErrorIs(t, err, ErrMiss)

		require.NoError(t, m.Delete(ctx, "ns", "k"))
		_, err = m.Get(ctx, "ns", "k")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("entries expire", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "ns", "short", "v", 10*time.Second))
		ttl, _ := m.TTL(ctx, "ns", "short")
		assert.Equal(t, 10*time.Second, ttl)

		now = now.Add(11 * time.Second)
		_, err := m.Get(ctx, "ns", "short")
		assert.ErrorIs(t, err, ErrMiss)
		ttl, _ = m.TTL(ctx, "ns", "short")
		assert.LessOrEqual(t, ttl, time.Duration(0))
	})

	t.Run("counter window starts on first hit", func(t *testing.T) {
		for i := int64(1); i <= 3; i++ {
			n, err := m.IncrWithExpire(ctx, "ns", "count", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, i, n)
			now = now.Add(10 * time.Second)
		}

		now = now.Add(time.Minute)
		n, err := m.IncrWithExpire(ctx, "ns", "count", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryStore().WithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "ns", "a", "1", time.Second))
	require.NoError(t, m.Set(ctx, "ns", "b", "1", time.Hour))
	require.NoError(t, m.Set(ctx, "ns", "c", "1", 0))

	assert.Equal(t, 0, m.Sweep())
	now = now.Add(time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, err := m.Get(ctx, "ns", "b")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "ns", "c")
	assert.NoError(t, err)
}
