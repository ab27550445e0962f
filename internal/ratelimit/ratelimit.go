package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter serializes order-mutating brokerage calls process-wide: at most
// one call in flight, with a minimum interval between dispatches. It is
// constructed once in main and injected into every component that places
// or closes orders, so the cross-cutting mutual exclusion is visible at
// each call site.
type Limiter struct {
	mu sync.Mutex
	rl *rate.Limiter
}

// New creates a limiter enforcing minInterval between dispatches.
func New(minInterval time.Duration) *Limiter {
	return &Limiter{
		rl: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Do waits for a dispatch slot and runs fn while holding it. Callers block
// until all earlier submissions have completed and the spacing interval has
// elapsed.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rl.Wait(ctx); err != nil {
		return err
	}
	return fn()
}
