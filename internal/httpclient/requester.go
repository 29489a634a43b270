package httpclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/torosent/burstfire/internal/metrics"
	"github.com/torosent/burstfire/internal/runner"
	"github.com/torosent/burstfire/internal/tracing"
)

const maxErrorBodyBytes = 1024

// Requester executes one HTTP request per batch unit and classifies the
// result: an error response keeps its real status code, a transport failure
// reports status 0.
type Requester struct {
	client    *http.Client
	builder   *RequestBuilder
	collector *metrics.Collector // optional
	tracing   *tracing.Provider  // optional
}

func NewRequester(client *http.Client, builder *RequestBuilder, collector *metrics.Collector, provider *tracing.Provider) *Requester {
	return &Requester{
		client:    client,
		builder:   builder,
		collector: collector,
		tracing:   provider,
	}
}

// Do implements runner.Requester.
func (r *Requester) Do(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	status, err := r.do(ctx)
	if r.collector != nil {
		r.collector.RecordRequest(time.Since(start), status, err)
	}
	return status, err
}

func (r *Requester) do(ctx context.Context) (int, error) {
	req, err := r.builder.Build(ctx)
	if err != nil {
		return 0, err
	}

	spanned := r.tracing != nil && r.tracing.Tracer() != nil
	var endSpan func(int, error)
	if spanned {
		spanCtx, span := tracing.StartRequestSpan(ctx, r.tracing.Tracer(), req.Method, r.builder.Target())
		if r.tracing.ShouldPropagate() {
			tracing.InjectHTTPHeaders(spanCtx, req.Header)
		}
		req = req.WithContext(spanCtx)
		endSpan = func(status int, err error) { tracing.EndSpan(span, status, err) }
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if endSpan != nil {
			endSpan(0, err)
		}
		return 0, err
	}
	defer resp.Body.Close()

	var resultErr error
	if resp.StatusCode >= 400 {
		snippet, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		if readErr != nil {
			resultErr = readErr
		} else {
			resultErr = &runner.HTTPError{
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(snippet)),
			}
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	if endSpan != nil {
		endSpan(resp.StatusCode, resultErr)
	}
	return resp.StatusCode, resultErr
}
