package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusError struct {
	code int
}

func (e *statusError) Error() string   { return "http error" }
func (e *statusError) StatusCode() int { return e.code }

func TestWithRetryMaxSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		return nil
	}, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryMaxRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryMaxGivesUp(t *testing.T) {
	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		return errors.New("always failing")
	}, nil, 2)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryMaxStopsOnFatal(t *testing.T) {
	calls := 0
	fatal := &FatalError{Err: errors.New("bad request")}
	err := WithRetryMax(context.Background(), func() error {
		calls++
		return fatal
	}, nil, 5)
	assert.Equal(t, 1, calls)
	assert.Equal(t, fatal, err)
	assert.Equal(t, "bad request", err.Error())
}

func TestWithRetryMaxHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetryMax(ctx, func() error {
		t.Fatal("fn must not run after cancellation")
		return nil
	}, nil, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLimiterBacksOffOnFailure(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 10, 1, 0.5)
	require.Equal(t, 4.0, lim.CurrentLimit())

	lim.Backoff()
	assert.Equal(t, 2.0, lim.CurrentLimit())
	lim.Backoff()
	lim.Backoff()
	// never drops below the floor
	assert.Equal(t, 1.0, lim.CurrentLimit())
}

func TestLimiterRecoversAfterQuietPeriod(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 1, 10, 1, 0.5)

	lim.Backoff()
	require.Equal(t, 1.0, lim.CurrentLimit())

	// success right after an error never raises the rate
	lim.Success()
	assert.Equal(t, 1.0, lim.CurrentLimit())

	lim.lastError = time.Now().Add(-time.Minute)
	lim.Success()
	assert.Equal(t, 2.0, lim.CurrentLimit())
}

func TestLimiterRespectsCeiling(t *testing.T) {
	lim := NewAdaptiveLimiter(9, 1, 10, 5, 0.5)
	lim.Success()
	assert.Equal(t, 10.0, lim.CurrentLimit())
}

func TestRateLimitedErrorBacksOff(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 10, 1, 0.5)
	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &statusError{code: 429}
		}
		return nil
	}, lim, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2.0, lim.CurrentLimit())
}

func TestWithJitterBounds(t *testing.T) {
	base := time.Second
	for i := 0; i < 50; i++ {
		d := withJitter(base)
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+base/4)
	}
}
