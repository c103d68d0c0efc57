// limiter/limiter.go
package limiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound invocations. A nil Limiter never blocks.
type Limiter struct {
	rl *rate.Limiter
}

// New returns a limiter allowing rps invocations per second with the given burst.
// rps <= 0 disables throttling.
func New(rps float64, burst int) *Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until the limiter allows the request
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.rl.Wait(ctx)
}
