package runner

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Requester executes a single request attempt. It returns the HTTP status
// code observed (0 when no response was ever received) and an error for
// failed attempts.
type Requester interface {
	Do(ctx context.Context) (status int, err error)
}

// Options configure the Runner.
type Options struct {
	Concurrency    int                         // worker pool size, hard cap on in-flight requests
	Requests       int                         // batch size, one outcome per request
	RatePerSecond  int                         // dispatch pacing (0 means unpaced)
	Requester      Requester                   // request executor (required)
	OnOutcome      func(Outcome)               // optional observer, called from the collector goroutine
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

func (o *Options) validate() error {
	if o.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrInvalidOptions, o.Concurrency)
	}
	if o.Requests < 0 {
		return fmt.Errorf("%w: requests must be >= 0, got %d", ErrInvalidOptions, o.Requests)
	}
	if o.Requester == nil {
		return fmt.Errorf("%w: requester is required", ErrInvalidOptions)
	}
	return nil
}
