package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errBusy  = errors.New("busy")
	errFatal = errors.New("fatal")
)

func isBusy(err error) bool { return errors.Is(err, errBusy) }

func TestDoSucceedsAfterRetries(t *testing.T) {
	start := time.Now()
	v, err := Do(context.Background(), DefaultPolicy, isBusy, func(_ context.Context, attempt int) (int, error) {
		if attempt < 3 {
			return 0, errBusy
		}
		return attempt, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	// 10ms before the second attempt, 20ms before the third.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestDoExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), DefaultPolicy, isBusy, func(context.Context, int) (struct{}, error) {
		calls++
		return struct{}{}, errBusy
	})
	assert.ErrorIs(t, err, errBusy)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnTerminalError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), DefaultPolicy, isBusy, func(context.Context, int) (string, error) {
		calls++
		return "", errFatal
	})
	assert.Equal(t, errFatal, err, "terminal error is returned unwrapped")
	assert.Equal(t, 1, calls)
}

func TestDoSingleAttempt(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 0, BaseDelay: time.Millisecond}
	_, err := Do(context.Background(), p, isBusy, func(context.Context, int) (int, error) {
		calls++
		return 0, errBusy
	})
	assert.ErrorIs(t, err, errBusy)
	assert.Equal(t, 1, calls)
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 10, BaseDelay: time.Hour}
	calls := 0
	_, err := Do(ctx, p, isBusy, func(context.Context, int) (int, error) {
		calls++
		cancel()
		return 0, errBusy
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
