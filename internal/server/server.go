// Package server exposes batch runs over HTTP so the generator can be
// invoked remotely, mirroring a function-style trigger. A POST starts a
// batch and returns the flat summary JSON; OPTIONS answers CORS preflight.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tidwall/gjson"

	"github.com/torosent/burstfire/internal/runner"
)

const maxRequestBodyBytes = 1 << 20

// BatchFunc runs one batch against target and returns its result.
type BatchFunc func(ctx context.Context, target string, requests, concurrency int) (runner.Result, error)

// Server serves batch invocations over HTTP.
type Server struct {
	addr               string
	runBatch           BatchFunc
	defaultTarget      string
	defaultRequests    int
	defaultConcurrency int

	httpServer *http.Server
}

// New creates a server listening on addr. Invocations that omit a field in
// the request body fall back to the configured defaults.
func New(addr string, runBatch BatchFunc, defaultTarget string, defaultRequests, defaultConcurrency int) *Server {
	s := &Server{
		addr:               addr,
		runBatch:           runBatch,
		defaultTarget:      defaultTarget,
		defaultRequests:    defaultRequests,
		defaultConcurrency: defaultConcurrency,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleInvoke)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())

	switch r.Method {
	case http.MethodOptions:
		// Preflight answers 200 with an empty body.
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		s.handleBatch(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	target := s.defaultTarget
	requests := s.defaultRequests
	concurrency := s.defaultConcurrency

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(body) > 0 {
		if v := gjson.GetBytes(body, "target_url"); v.Exists() {
			target = v.String()
		}
		if v := gjson.GetBytes(body, "requests"); v.Exists() {
			requests = int(v.Int())
		}
		if v := gjson.GetBytes(body, "concurrency"); v.Exists() {
			concurrency = int(v.Int())
		}
	}

	requestID := ulid.Make().String()
	log.Printf("invocation %s: %d requests to %s with concurrency %d",
		requestID, requests, target, concurrency)

	result, err := s.runBatch(r.Context(), target, requests, concurrency)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runner.ErrInvalidOptions) {
			status = http.StatusBadRequest
		}
		log.Printf("invocation %s failed: %v", requestID, err)
		writeError(w, status, err.Error())
		return
	}

	result.Summary.TargetURL = target
	writeJSON(w, http.StatusOK, invocationResponse{
		Summary:   result.Summary,
		RequestID: requestID,
	})
}

type invocationResponse struct {
	runner.Summary
	RequestID string `json:"request_id"`
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Max-Age", "86400")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
