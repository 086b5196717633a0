// Package ratelimit enforces a minimum spacing between requests to a remote
// API. Each external API gets its own Limiter, shared by every worker that
// talks to it, so parallel fan-out never exceeds the source's tolerance.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outbound requests toward a single remote API.
type Limiter interface {
	// Wait blocks until the next request is allowed to proceed, or until the
	// context is canceled.
	Wait(ctx context.Context) error
}

// limiter implements Limiter on top of golang.org/x/time/rate with a burst of
// one, which degenerates to a fixed minimum inter-request interval.
type limiter struct {
	rl *rate.Limiter
}

// Compile-time assertion that limiter implements Limiter.
var _ Limiter = (*limiter)(nil)

// New returns a Limiter that allows at most one request per minInterval.
// A non-positive interval disables limiting entirely.
func New(minInterval time.Duration) Limiter {
	if minInterval <= 0 {
		return &limiter{rl: rate.NewLimiter(rate.Inf, 1)}
	}
	return &limiter{rl: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait implements the Limiter interface.
func (l *limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}
