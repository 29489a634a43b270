// Package runner provides the batch execution engine for burstfire.
//
// A batch is a fixed number of identical requests fanned out across a
// bounded worker pool: at most Concurrency requests are in flight at any
// instant, and the pool reuses its workers across the whole batch rather
// than spawning one goroutine per request. Run blocks until every unit has
// resolved (a full barrier, no fail-fast) and returns one [Outcome] per
// request plus a derived [Summary].
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		Concurrency: 50,
//		Requests:    100,
//		Requester:   myRequester,
//	})
//	result, err := r.Run(ctx)
//
// # Requester Interface
//
// The [Requester] interface defines what a runner executes:
//
//	type Requester interface {
//		Do(ctx context.Context) (status int, err error)
//	}
//
// Request failures are absorbed into the outcome set; the only error Run
// itself returns is [ErrInvalidOptions] for a bad configuration, raised
// before any request is issued.
package runner
