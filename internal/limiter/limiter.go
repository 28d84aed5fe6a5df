package limiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter bounds both the rate and the number of in-flight upstream model
// calls. Acquire blocks until a slot is free or the context ends.
type Limiter struct {
	semaphore   chan struct{}
	rateLimiter *rate.Limiter
}

func New(maxConcurrent int, requestsPerMinute int) *Limiter {
	perSecond := rate.Limit(float64(requestsPerMinute) / 60.0)
	return &Limiter{
		semaphore:   make(chan struct{}, maxConcurrent),
		rateLimiter: rate.NewLimiter(perSecond, maxConcurrent),
	}
}

func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := l.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	select {
	case l.semaphore <- struct{}{}:
		return func() { <-l.semaphore }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
