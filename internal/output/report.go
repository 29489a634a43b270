package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/torosent/burstfire/internal/metrics"
	"github.com/torosent/burstfire/internal/runner"
)

// Report combines the batch summary contract with the collector's latency
// detail for CLI output.
type Report struct {
	runner.Summary
	Latency *metrics.Stats `json:"latency,omitempty"`
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, report Report) {
	fmt.Fprintln(w, "\n--- Batch Results ---")
	if report.TargetURL != "" {
		fmt.Fprintf(w, "Target:            %s\n", report.TargetURL)
	}
	fmt.Fprintf(w, "Total Requests:    %d\n", report.TotalRequests)
	fmt.Fprintf(w, "Successful:        %d\n", report.SuccessfulRequests)
	fmt.Fprintf(w, "Failed:            %d\n", report.FailedRequests)
	fmt.Fprintf(w, "Duration:          %s\n", report.TotalDuration)
	fmt.Fprintf(w, "Avg Response:      %.2fms\n", report.AverageResponseTimeMs)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", report.RequestsPerSecond)

	stats := report.Latency
	if stats == nil {
		return
	}

	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)

	if len(stats.StatusCodes) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		codes := make([]string, 0, len(stats.StatusCodes))
		for code := range stats.StatusCodes {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "  %s: %d\n", code, stats.StatusCodes[code])
		}
	}

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		names := make([]string, 0, len(stats.Errors))
		for name := range stats.Errors {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if stats.Errors[names[i]] == stats.Errors[names[j]] {
				return names[i] < names[j]
			}
			return stats.Errors[names[i]] > stats.Errors[names[j]]
		})
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, stats.Errors[name])
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
