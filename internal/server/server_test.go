package server_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/torosent/burstfire/internal/runner"
	"github.com/torosent/burstfire/internal/server"
)

type batchCall struct {
	target      string
	requests    int
	concurrency int
}

func newTestServer(t *testing.T, calls *[]batchCall, err error) *server.Server {
	t.Helper()
	batch := func(_ context.Context, target string, requests, concurrency int) (runner.Result, error) {
		if calls != nil {
			*calls = append(*calls, batchCall{target, requests, concurrency})
		}
		if err != nil {
			return runner.Result{}, err
		}
		return runner.Result{
			Summary: runner.Summary{
				TotalDuration:        time.Second,
				TotalDurationSeconds: 1,
				TotalRequests:        requests,
				SuccessfulRequests:   requests,
				RequestsPerSecond:    float64(requests),
			},
		}, nil
	}
	return server.New(":0", batch, "https://default.example/hook", 100, 50)
}

func TestServerPreflight(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("preflight body must be empty, got %q", rec.Body)
	}
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Max-Age":       "86400",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestServerInvokeDefaults(t *testing.T) {
	var calls []batchCall
	srv := newTestServer(t, &calls, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(calls) != 1 {
		t.Fatalf("batch calls = %d, want 1", len(calls))
	}
	got := calls[0]
	if got.target != "https://default.example/hook" || got.requests != 100 || got.concurrency != 50 {
		t.Fatalf("unexpected batch call %+v", got)
	}

	body := rec.Body.String()
	if gjson.Get(body, "total_requests").Int() != 100 {
		t.Errorf("total_requests missing from %s", body)
	}
	if gjson.Get(body, "target_url").String() != "https://default.example/hook" {
		t.Errorf("target_url missing from %s", body)
	}
	if gjson.Get(body, "request_id").String() == "" {
		t.Errorf("request_id missing from %s", body)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS header missing on POST response")
	}
}

func TestServerInvokeOverrides(t *testing.T) {
	var calls []batchCall
	srv := newTestServer(t, &calls, nil)
	rec := httptest.NewRecorder()
	payload := `{"target_url":"https://other.example/x","requests":7,"concurrency":3}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	got := calls[0]
	if got.target != "https://other.example/x" || got.requests != 7 || got.concurrency != 3 {
		t.Fatalf("overrides not applied: %+v", got)
	}
}

func TestServerInvokeInvalidOptions(t *testing.T) {
	err := fmt.Errorf("concurrency must be at least 1: %w", runner.ErrInvalidOptions)
	srv := newTestServer(t, nil, err)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"concurrency":0}`))

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if gjson.Get(rec.Body.String(), "error").String() == "" {
		t.Fatalf("expected error payload, got %s", rec.Body)
	}
}

func TestServerMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if got := gjson.Get(rec.Body.String(), "error").String(); got != "Method not allowed" {
		t.Fatalf("error = %q", got)
	}
}

func TestServerShutdownOnContextCancel(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("shutdown returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
