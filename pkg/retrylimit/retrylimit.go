// Package retrylimit provides adaptive rate limiting with retry for
// clients of throttling-prone HTTP services.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.WithRetryMax(ctx, func() error {
//	    return doSomeWork()
//	}, lim, 3)
package retrylimit

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"voicerelay/internal/logging"
)

// AdaptiveLimiter manages a rate limit that adjusts automatically based on
// request outcomes: it creeps up on success and backs off on errors.
// Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per
// second, bounded by [min, max]. stepUp is added after a quiet success;
// stepDown multiplies the rate after a failure (e.g. 0.5 halves it).
func NewAdaptiveLimiter(initial, minRate, maxRate rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < 1 {
		initial = 1
	}
	if minRate < 1 {
		minRate = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, max(1, int(initial))),
		minLimit: minRate,
		maxLimit: maxRate,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate, but only once errors have been quiet for a while.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.adjust(a.limiter.Limit() + a.stepUp)
	}
}

// Backoff reduces the rate after a failure.
func (a *AdaptiveLimiter) Backoff() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.adjust(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjust(newLimit rate.Limit) {
	if newLimit > a.maxLimit {
		newLimit = a.maxLimit
	} else if newLimit < a.minLimit {
		newLimit = a.minLimit
	}
	if newLimit != a.limiter.Limit() {
		a.limiter.SetLimit(newLimit)
		a.limiter.SetBurst(max(1, int(newLimit)))
	}
}

// HTTPError is an optional interface for errors that carry HTTP status
// codes; 429 responses get dedicated backoff treatment.
type HTTPError interface {
	error
	StatusCode() int
}

// FatalError wraps errors that must stop retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// WithRetryMax executes fn with exponential backoff up to maxAttempts
// times, waiting on lim (if non-nil) before each attempt. It stops early
// when fn succeeds, returns a FatalError, or the context ends.
func WithRetryMax(ctx context.Context, fn func() error, lim *AdaptiveLimiter, maxAttempts int) error {
	log := logging.For("retry")

	const (
		initialDelay   = 500 * time.Millisecond
		maxDelay       = 10 * time.Second
		rateLimitDelay = 100 * time.Millisecond
		multiplier     = 2.0
	)

	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	delay := initialDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		if _, fatal := err.(*FatalError); fatal {
			return err
		}

		if isRateLimited(err) {
			if lim != nil {
				lim.Backoff()
				log.Warn().Int("attempt", attempt).Float64("rps", lim.CurrentLimit()).Msg("rate limited")
			}
			if serr := sleep(ctx, rateLimitDelay); serr != nil {
				return serr
			}
			continue
		}

		if lim != nil && isServerError(err) {
			lim.Backoff()
		}
		log.Debug().Int("attempt", attempt).Err(err).Dur("sleep", delay).Msg("request failed, retrying")

		if serr := sleep(ctx, withJitter(delay)); serr != nil {
			return serr
		}
		delay = time.Duration(float64(delay) * multiplier)
		if delay > maxDelay {
			delay = maxDelay
		}
	}

	return fmt.Errorf("max attempts (%d) exceeded", maxAttempts)
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// withJitter adds 0-25% random jitter to a delay.
func withJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4)))
}

func isRateLimited(err error) bool {
	httpErr, ok := err.(HTTPError)
	return ok && httpErr.StatusCode() == http.StatusTooManyRequests
}

func isServerError(err error) bool {
	httpErr, ok := err.(HTTPError)
	return ok && httpErr.StatusCode() >= 500 && httpErr.StatusCode() < 600
}
