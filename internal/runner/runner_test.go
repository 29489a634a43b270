package runner_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/burstfire/internal/runner"
)

// fakeRequester simulates performing a request with fixed latency.
type fakeRequester struct {
	latency  time.Duration
	status   int
	err      error
	calls    *int64
	inflight *int64
	peak     *int64
	panicOn  int64 // if >0, panics on this call number
}

func (f *fakeRequester) Do(ctx context.Context) (int, error) {
	var call int64
	if f.calls != nil {
		call = atomic.AddInt64(f.calls, 1)
	}
	if f.inflight != nil {
		current := atomic.AddInt64(f.inflight, 1)
		defer atomic.AddInt64(f.inflight, -1)
		for {
			observed := atomic.LoadInt64(f.peak)
			if current <= observed || atomic.CompareAndSwapInt64(f.peak, observed, current) {
				break
			}
		}
	}
	if f.panicOn > 0 && call == f.panicOn {
		panic("requester blew up")
	}
	if f.latency > 0 {
		select {
		case <-time.After(f.latency):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return f.status, f.err
}

// TestRunnerOneOutcomePerRequest ensures the outcome set covers every
// sequence number exactly once, whatever the completion order.
func TestRunnerOneOutcomePerRequest(t *testing.T) {
	var calls int64
	r := runner.New(runner.Options{
		Concurrency: 4,
		Requests:    25,
		Requester:   &fakeRequester{latency: time.Millisecond, status: 200, calls: &calls},
	})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Outcomes) != 25 {
		t.Fatalf("expected 25 outcomes, got %d", len(res.Outcomes))
	}
	if calls != 25 {
		t.Fatalf("expected requester called 25 times, got %d", calls)
	}
	seen := make(map[int]bool, 25)
	for _, o := range res.Outcomes {
		if o.Sequence < 0 || o.Sequence >= 25 {
			t.Fatalf("sequence %d out of range", o.Sequence)
		}
		if seen[o.Sequence] {
			t.Fatalf("sequence %d recorded twice", o.Sequence)
		}
		seen[o.Sequence] = true
		if !o.Success || o.StatusCode != 200 {
			t.Fatalf("expected success with status 200, got %+v", o)
		}
		if o.Duration <= 0 {
			t.Fatalf("outcome %d has no duration", o.Sequence)
		}
	}
	if res.Summary.TotalRequests != 25 || res.Summary.SuccessfulRequests != 25 || res.Summary.FailedRequests != 0 {
		t.Fatalf("summary counts wrong: %+v", res.Summary)
	}
	if res.Summary.SuccessfulRequests+res.Summary.FailedRequests != res.Summary.TotalRequests {
		t.Fatalf("summary invariant broken: %+v", res.Summary)
	}
}

// TestRunnerZeroRequests ensures an empty batch makes no calls and reports
// all-zero aggregates without dividing by zero.
func TestRunnerZeroRequests(t *testing.T) {
	var calls int64
	r := runner.New(runner.Options{
		Concurrency: 8,
		Requests:    0,
		Requester:   &fakeRequester{status: 200, calls: &calls},
	})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no requests dispatched, got %d", calls)
	}
	if len(res.Outcomes) != 0 {
		t.Fatalf("expected empty outcome set, got %d", len(res.Outcomes))
	}
	s := res.Summary
	if s.TotalRequests != 0 || s.SuccessfulRequests != 0 || s.FailedRequests != 0 {
		t.Fatalf("expected zero counts, got %+v", s)
	}
	if s.AverageResponseTimeMs != 0 {
		t.Fatalf("expected zero average, got %f", s.AverageResponseTimeMs)
	}
}

// TestRunnerConcurrencyCap ensures the worker pool never exceeds its budget
// and actually reaches it for a batch larger than the pool.
func TestRunnerConcurrencyCap(t *testing.T) {
	var calls, inflight, peak int64
	r := runner.New(runner.Options{
		Concurrency: 5,
		Requests:    40,
		Requester: &fakeRequester{
			latency:  5 * time.Millisecond,
			status:   200,
			calls:    &calls,
			inflight: &inflight,
			peak:     &peak,
		},
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak > 5 {
		t.Fatalf("concurrency cap exceeded: peak=%d", peak)
	}
	if peak < 5 {
		t.Fatalf("pool not exploited: peak=%d, want 5", peak)
	}
}

// TestRunnerAllFailures ensures a fully failed batch keeps the average at
// zero and never aborts early.
func TestRunnerAllFailures(t *testing.T) {
	r := runner.New(runner.Options{
		Concurrency: 3,
		Requests:    10,
		Requester: &fakeRequester{
			status: 500,
			err:    &runner.HTTPError{StatusCode: 500, Body: "boom"},
		},
	})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("request failures must not surface as runner errors: %v", err)
	}
	if res.Summary.SuccessfulRequests != 0 || res.Summary.FailedRequests != 10 {
		t.Fatalf("summary counts wrong: %+v", res.Summary)
	}
	if res.Summary.AverageResponseTimeMs != 0 {
		t.Fatalf("expected zero average with no successes, got %f", res.Summary.AverageResponseTimeMs)
	}
	for _, o := range res.Outcomes {
		if o.Success || o.StatusCode != 500 || o.Error == "" {
			t.Fatalf("expected failed outcome with status 500, got %+v", o)
		}
	}
}

// TestRunnerInvalidOptions ensures configuration errors fail fast before any
// request is issued.
func TestRunnerInvalidOptions(t *testing.T) {
	var calls int64
	cases := []struct {
		name string
		opt  runner.Options
	}{
		{"zero concurrency", runner.Options{Concurrency: 0, Requests: 5, Requester: &fakeRequester{calls: &calls}}},
		{"negative requests", runner.Options{Concurrency: 2, Requests: -1, Requester: &fakeRequester{calls: &calls}}},
		{"nil requester", runner.Options{Concurrency: 2, Requests: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runner.New(tc.opt).Run(context.Background())
			if !errors.Is(err, runner.ErrInvalidOptions) {
				t.Fatalf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
	if calls != 0 {
		t.Fatalf("expected no requests issued for invalid options, got %d", calls)
	}
}

// TestRunnerRecoversPanics ensures a crashed unit still produces a failure
// outcome instead of vanishing from the set.
func TestRunnerRecoversPanics(t *testing.T) {
	var calls int64
	r := runner.New(runner.Options{
		Concurrency: 4,
		Requests:    12,
		Requester:   &fakeRequester{status: 200, calls: &calls, panicOn: 7},
	})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Outcomes) != 12 {
		t.Fatalf("expected 12 outcomes despite panic, got %d", len(res.Outcomes))
	}
	panics := 0
	for _, o := range res.Outcomes {
		if strings.HasPrefix(o.Error, "panic:") {
			panics++
			if o.Success || o.StatusCode != 0 {
				t.Fatalf("panicked unit must be a status-0 failure, got %+v", o)
			}
		}
	}
	if panics != 1 {
		t.Fatalf("expected exactly one panic outcome, got %d", panics)
	}
	if res.Summary.FailedRequests != 1 || res.Summary.SuccessfulRequests != 11 {
		t.Fatalf("summary counts wrong: %+v", res.Summary)
	}
}

// TestRunnerPacing ensures the rate limiter spaces out dispatch.
func TestRunnerPacing(t *testing.T) {
	r := runner.New(runner.Options{
		Concurrency:    10,
		Requests:       10,
		RatePerSecond:  100,
		Requester:      &fakeRequester{status: 200},
		LimiterFactory: func(rps int) *rate.Limiter { return rate.NewLimiter(rate.Limit(rps), 1) },
	})
	start := time.Now()
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10 requests at 100 rps with burst 1 needs ~90ms; allow scheduling fudge.
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("pacing not applied: finished in %s", elapsed)
	}
}

// TestRunnerOnOutcomeObserver ensures the observer sees every outcome from a
// single goroutine.
func TestRunnerOnOutcomeObserver(t *testing.T) {
	var observed int64
	r := runner.New(runner.Options{
		Concurrency: 4,
		Requests:    20,
		Requester:   &fakeRequester{status: 200},
		OnOutcome:   func(runner.Outcome) { observed++ }, // collector goroutine, no atomics needed
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observed != 20 {
		t.Fatalf("expected observer called 20 times, got %d", observed)
	}
}
