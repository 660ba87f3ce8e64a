package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	configs := map[string]Config{
		"default":    DefaultConfig(),
		"sequential": Sequential(),
		"two":        DefaultConfig().WithWorkers(2),
		"many":       Config{Enabled: true, NumWorkers: 64, MinChunkSize: 1},
	}
	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			n := 1000
			seen := make([]int32, n)
			For(n, func(i int) {
				atomic.AddInt32(&seen[i], 1)
			}, cfg)
			for i, v := range seen {
				require.Equal(t, int32(1), v, "item %d", i)
			}
		})
	}
}

func TestFor_Empty(t *testing.T) {
	called := false
	For(0, func(int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func TestForErr(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	t.Run("all succeed", func(t *testing.T) {
		var counter int64
		err := ForErr(100, func(int) error {
			atomic.AddInt64(&counter, 1)
			return nil
		}, cfg)
		require.NoError(t, err)
		assert.Equal(t, int64(100), counter)
	})

	t.Run("first error returned", func(t *testing.T) {
		boom := errors.New("boom")
		err := ForErr(50, func(i int) error {
			if i == 17 {
				return boom
			}
			return nil
		}, cfg)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("sequential stops early", func(t *testing.T) {
		boom := errors.New("boom")
		var calls int
		err := ForErr(10, func(i int) error {
			calls++
			if i == 2 {
				return boom
			}
			return nil
		}, Sequential())
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})
}

func TestWithWorkers(t *testing.T) {
	cfg := DefaultConfig().WithWorkers(0)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.NumWorkers)

	cfg = Sequential().WithWorkers(3)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.NumWorkers)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for b.Loop() {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for b.Loop() {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
