package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.True(t, c.TryAcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.True(t, c.TryAcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.True(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())

	// Larger than the whole budget never fits.
	assert.False(t, c.TryAcquireMemory(101))
	assert.True(t, c.TryAcquireMemory(0))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	require.True(t, c.TryAcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Queries(t *testing.T) {
	c := NewController(Config{MaxConcurrentQueries: 2})

	r1, err := c.AcquireQuery(context.Background())
	require.NoError(t, err)
	r2, err := c.AcquireQuery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ActiveQueries())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.AcquireQuery(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	r1()
	r1() // idempotent
	assert.Equal(t, int64(1), c.ActiveQueries())

	r3, err := c.AcquireQuery(context.Background())
	require.NoError(t, err)
	r2()
	r3()
	assert.Zero(t, c.ActiveQueries())
}

func TestController_QueryRate(t *testing.T) {
	c := NewController(Config{QueriesPerSecond: 0.001, Burst: 1})

	release, err := c.AcquireQuery(context.Background())
	require.NoError(t, err)
	release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.AcquireQuery(ctx)
	assert.Error(t, err)
	assert.Zero(t, c.ActiveQueries())
}

func TestController_Config(t *testing.T) {
	cfg := Config{MemoryLimitBytes: 1 << 20, MaxConcurrentQueries: 4, QueriesPerSecond: 10}
	assert.Equal(t, cfg, NewController(cfg).Config())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	release, err := c.AcquireQuery(context.Background())
	require.NoError(t, err)
	release()

	assert.True(t, c.TryAcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.ActiveQueries())
	assert.Equal(t, Config{}, c.Config())
}
