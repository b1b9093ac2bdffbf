package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds first attempt", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		boom := errors.New("persistent")
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return boom
		}, 3, time.Millisecond)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("invalid max attempts", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryWithBackoff(cancelled, func() error { return nil }, 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("cancel during backoff", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		err := RetryWithBackoff(cancelCtx, func() error {
			return errors.New("transient")
		}, 5, time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
