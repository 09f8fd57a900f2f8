package batch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/excerpt/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("allows immediate request when under limit", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "example.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("rate limits requests to same host", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "example.com")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("different hosts have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "other.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "example.com"))
	})

	t.Run("concurrent requests all complete", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(100)

		var wg sync.WaitGroup
		var completed atomic.Int32
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Wait(context.Background(), "example.com") == nil {
					completed.Add(1)
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, int32(5), completed.Load())
	})
}

func TestDomainLimiter_WaitURL(t *testing.T) {
	t.Parallel()

	t.Run("limits by host", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(10)
		require.NoError(t, limiter.WaitURL(context.Background(), "https://example.com/a"))

		start := time.Now()
		require.NoError(t, limiter.WaitURL(context.Background(), "https://example.com/b"))

		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("does not limit local paths", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(1)

		start := time.Now()
		require.NoError(t, limiter.WaitURL(context.Background(), "/tmp/a.pdf"))
		require.NoError(t, limiter.WaitURL(context.Background(), "/tmp/b.pdf"))

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})
}
