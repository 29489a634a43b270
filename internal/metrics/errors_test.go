package metrics_test

import (
	"testing"

	"github.com/torosent/burstfire/internal/metrics"
)

func TestFriendlyErrorName(t *testing.T) {
	cases := []struct {
		typeName string
		want     string
	}{
		{"*runner.HTTPError", "HTTP error response"},
		{"runner.HTTPError", "HTTP error response"},
		{"*url.Error", "Request URL error"},
		{"*context.deadlineExceededError", "Context deadline exceeded"},
		{"", "Unknown error"},
		{"*net.OpError", "Op Error (net)"},
		{"*errors.errorString", "Error String (errors)"},
		{"http.httpError", "Http Error (http)"},
	}
	for _, tc := range cases {
		if got := metrics.FriendlyErrorName(tc.typeName); got != tc.want {
			t.Errorf("FriendlyErrorName(%q) = %q, want %q", tc.typeName, got, tc.want)
		}
	}
}
