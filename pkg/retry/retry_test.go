package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastError(t *testing.T) {
	sentinel := errors.New("still failing")
	calls := 0
	err := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	sentinel := errors.New("bad input")
	calls := 0
	err := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		return Permanent(sentinel)
	})

	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(3), func(ctx context.Context) error {
		t.Fatal("operation must not run")
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
