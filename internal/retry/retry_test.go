package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestDelayIsLinear(t *testing.T) {
	cfg := Linear(3, time.Second)
	assert.Equal(t, time.Second, cfg.Delay(1))
	assert.Equal(t, 2*time.Second, cfg.Delay(2))
	assert.Equal(t, 3*time.Second, cfg.Delay(3))
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var notified []int
	err := Do(context.Background(), Linear(3, time.Millisecond), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, func(attempt int, _ error) {
		notified = append(notified, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestDo_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Linear(3, time.Millisecond), func(context.Context) error {
		calls++
		return errTransient
	}, nil)

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestDo_SingleAttemptWhenUnset(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Config{}, func(context.Context) error {
		calls++
		return errTransient
	}, nil)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Linear(5, time.Hour), func(context.Context) error {
		calls++
		cancel()
		return errTransient
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}
