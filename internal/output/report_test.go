package output_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/torosent/burstfire/internal/metrics"
	"github.com/torosent/burstfire/internal/output"
	"github.com/torosent/burstfire/internal/runner"
)

func sampleReport() output.Report {
	collector := metrics.NewCollector()
	collector.RecordRequest(10*time.Millisecond, 200, nil)
	collector.RecordRequest(20*time.Millisecond, 200, nil)
	collector.RecordRequest(30*time.Millisecond, 500, &runner.HTTPError{StatusCode: 500})
	stats := collector.Stats(time.Second)

	return output.Report{
		Summary: runner.Summary{
			TotalDuration:         time.Second,
			TotalDurationSeconds:  1,
			TotalRequests:         3,
			SuccessfulRequests:    2,
			FailedRequests:        1,
			AverageResponseTimeMs: 15,
			RequestsPerSecond:     3,
			TargetURL:             "https://example.com/hook",
		},
		Latency: &stats,
	}
}

func TestPrintReportHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	output.PrintReport(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{
		"Batch Results",
		"Target:            https://example.com/hook",
		"Total Requests:    3",
		"Successful:        2",
		"Failed:            1",
		"Requests/sec:      3.00",
		"Latency:",
		"Status Codes:",
		"500: 1",
		"Errors:",
		"HTTP error response: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestPrintJSONReportContract(t *testing.T) {
	var buf bytes.Buffer
	if err := output.PrintJSONReport(&buf, sampleReport()); err != nil {
		t.Fatalf("print failed: %v", err)
	}

	body := buf.String()
	for field, want := range map[string]int64{
		"total_requests":      3,
		"successful_requests": 2,
		"failed_requests":     1,
	} {
		if got := gjson.Get(body, field).Int(); got != want {
			t.Errorf("%s = %d, want %d", field, got, want)
		}
	}
	if got := gjson.Get(body, "total_duration_seconds").Float(); got != 1 {
		t.Errorf("total_duration_seconds = %f", got)
	}
	if got := gjson.Get(body, "average_response_time_ms").Float(); got != 15 {
		t.Errorf("average_response_time_ms = %f", got)
	}
	if got := gjson.Get(body, "target_url").String(); got != "https://example.com/hook" {
		t.Errorf("target_url = %q", got)
	}
	if !gjson.Get(body, "latency.p99_latency_ms").Exists() {
		t.Error("expected nested latency detail")
	}
}
