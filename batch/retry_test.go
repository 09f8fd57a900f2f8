package batch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/batch"
	"github.com/fwojciec/excerpt/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noDelays = []time.Duration{0, 0, 0}

func TestRetryOpener_Open(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		next := &mock.Opener{OpenFn: func(context.Context, string) (excerpt.Document, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection reset")
			}
			return &mock.Document{}, nil
		}}

		doc, err := batch.NewRetryOpener(next, noDelays, nil).Open(context.Background(), "https://a.example")

		require.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns the last error after all attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		next := &mock.Opener{OpenFn: func(context.Context, string) (excerpt.Document, error) {
			calls++
			return nil, errors.New("HTTP 503 for https://a.example")
		}}

		_, err := batch.NewRetryOpener(next, noDelays, nil).Open(context.Background(), "https://a.example")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Equal(t, 4, calls)
	})

	t.Run("does not retry application errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		next := &mock.Opener{OpenFn: func(context.Context, string) (excerpt.Document, error) {
			calls++
			return nil, excerpt.Errorf(excerpt.ENOTFOUND, "gone")
		}}

		_, err := batch.NewRetryOpener(next, noDelays, nil).Open(context.Background(), "https://a.example")

		assert.Equal(t, excerpt.ENOTFOUND, excerpt.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		next := &mock.Opener{OpenFn: func(context.Context, string) (excerpt.Document, error) {
			cancel()
			return nil, errors.New("timeout")
		}}

		_, err := batch.NewRetryOpener(next, []time.Duration{time.Hour}, nil).Open(ctx, "https://a.example")

		assert.ErrorIs(t, err, context.Canceled)
	})
}
