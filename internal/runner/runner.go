package runner

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Outcome records the resolution of exactly one dispatched request.
// Sequence is assigned at submission time and preserved regardless of
// completion order.
type Outcome struct {
	Sequence   int           `json:"sequence"`
	Success    bool          `json:"success"`
	StatusCode int           `json:"status_code"`
	Duration   time.Duration `json:"-"`
	DurationMs float64       `json:"duration_ms"`
	Error      string        `json:"error,omitempty"`
}

// Result carries the full outcome set of a batch plus its derived summary.
type Result struct {
	Outcomes []Outcome
	Summary  Summary
}

// Runner fans a fixed number of requests out across a bounded worker pool
// and blocks until every unit has resolved.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run executes the batch. The only error it returns is a configuration
// error, surfaced before any request is issued; individual request failures
// are data, recorded in the outcome set.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if err := r.opt.validate(); err != nil {
		return Result{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	outcomes := make([]Outcome, 0, r.opt.Requests)
	if r.opt.Requests == 0 {
		return Result{Outcomes: outcomes, Summary: summarize(outcomes, time.Since(start))}, nil
	}

	limiter := r.opt.LimiterFactory(r.opt.RatePerSecond)

	jobs := make(chan int)
	results := make(chan Outcome)

	// Feeder: serializes pacing so workers only execute allocated slots.
	// On cancellation pacing stops but dispatch continues, so every unit
	// still resolves (as a fast failure) and the outcome set stays complete.
	go func() {
		defer close(jobs)
		for seq := 0; seq < r.opt.Requests; seq++ {
			_ = limiter.Wait(ctx)
			jobs <- seq
		}
	}()

	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for seq := range jobs {
				results <- r.attempt(ctx, seq)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single collector goroutine owns the accumulation; workers never touch
	// the slice directly.
	for outcome := range results {
		if r.opt.OnOutcome != nil {
			r.opt.OnOutcome(outcome)
		}
		outcomes = append(outcomes, outcome)
	}

	return Result{Outcomes: outcomes, Summary: summarize(outcomes, time.Since(start))}, nil
}

// attempt executes one unit of work. The timer brackets only the request
// itself, never time spent waiting for a worker slot. A panicking requester
// still yields a failure outcome rather than vanishing from the set.
func (r *Runner) attempt(ctx context.Context, seq int) (out Outcome) {
	out = Outcome{Sequence: seq}
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			out.Success = false
			out.StatusCode = 0
			out.Duration = time.Since(start)
			out.DurationMs = durationMs(out.Duration)
			out.Error = fmt.Sprintf("panic: %v", rec)
		}
	}()

	status, err := r.opt.Requester.Do(ctx)
	out.Duration = time.Since(start)
	out.DurationMs = durationMs(out.Duration)
	out.StatusCode = status
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Success = true
	return out
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
