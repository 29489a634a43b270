// Package metrics provides thread-safe collection and aggregation of
// per-request measurements for burstfire.
//
// A [Collector] records each request's latency, observed HTTP status code
// and error state. Latencies feed an HDR histogram (1µs to 60s, 3
// significant figures) so percentile reads stay cheap at any batch size.
// [Collector.Stats] produces an aggregated [Stats] snapshot with min/max/
// mean/P50/P90/P99 latencies, per-status-code buckets and a human-readable
// error-type breakdown.
//
// The collector is safe for concurrent recording from the worker pool.
package metrics
