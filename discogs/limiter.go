package discogs

import (
	"context"
	"time"
)

// Limiter caps requests to limit per window: once the cap is
// reached, callers wait for the window to elapse; consecutive
// requests are also spread by window/limit
type Limiter struct {
	limit   int
	window  time.Duration
	spacing time.Duration

	start time.Time // beginning of the current window
	last  time.Time // last granted request
	count int       // requests granted in the current window

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	if limit < 1 {
		limit = 1
	}
	return &Limiter{
		limit:   limit,
		window:  window,
		spacing: window / time.Duration(limit),
		now:     time.Now,
		sleep:   sleep,
	}
}

// Acquire blocks until a request can be issued
// and accounts for it in the current window
func (limiter *Limiter) Acquire(ctx context.Context) error {
	now := limiter.now()
	if now.Sub(limiter.start) >= limiter.window {
		limiter.count = 0
		limiter.start = now
	}

	if limiter.count >= limiter.limit {
		if err := limiter.sleep(ctx, limiter.window-now.Sub(limiter.start)); err != nil {
			return err
		}
		limiter.count = 0
		limiter.start = limiter.now()
	}

	if !limiter.last.IsZero() {
		if wait := limiter.spacing - limiter.now().Sub(limiter.last); wait > 0 {
			if err := limiter.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	limiter.count++
	limiter.last = limiter.now()
	return nil
}

func sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
