package runner

import "time"

// Summary aggregates a completed batch. The JSON field names form the wire
// contract of the trigger endpoint.
type Summary struct {
	TotalDuration         time.Duration `json:"-"`
	TotalDurationSeconds  float64       `json:"total_duration_seconds"`
	TotalRequests         int           `json:"total_requests"`
	SuccessfulRequests    int           `json:"successful_requests"`
	FailedRequests        int           `json:"failed_requests"`
	AverageResponseTimeMs float64       `json:"average_response_time_ms"`
	RequestsPerSecond     float64       `json:"requests_per_second"`
	TargetURL             string        `json:"target_url,omitempty"`
}

// summarize derives the batch summary from the complete outcome set. The
// average response time covers successful outcomes only and is 0 when there
// are none.
func summarize(outcomes []Outcome, elapsed time.Duration) Summary {
	s := Summary{
		TotalDuration:        elapsed,
		TotalDurationSeconds: elapsed.Seconds(),
		TotalRequests:        len(outcomes),
	}

	var successSum time.Duration
	for _, o := range outcomes {
		if o.Success {
			s.SuccessfulRequests++
			successSum += o.Duration
		} else {
			s.FailedRequests++
		}
	}

	if s.SuccessfulRequests > 0 {
		s.AverageResponseTimeMs = float64(successSum) / float64(s.SuccessfulRequests) / float64(time.Millisecond)
	}
	if s.TotalRequests > 0 && elapsed > 0 {
		s.RequestsPerSecond = float64(s.TotalRequests) / elapsed.Seconds()
	}
	return s
}
