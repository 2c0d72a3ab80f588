package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aigents/relay/internal/metrics"
)

// ErrExhausted is returned when every registered endpoint has failed for one
// request. It is the expected degraded path, not an internal fault; the HTTP
// layer answers it with the fallback responder, never a 5xx.
var ErrExhausted = errors.New("all webhook endpoints failed")

// maxReplyBytes bounds how much of a webhook response body is read.
const maxReplyBytes = 1 << 20

// EndpointError is a non-2xx answer from a webhook endpoint.
type EndpointError struct {
	StatusCode int
	Body       string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// Forwarder delivers an outbound message to a live endpoint, trying
// alternates in registry order on failure. Attempts within one request are
// strictly sequential and each endpoint is tried at most once, so a request
// issues at most one outbound call per endpoint registered when it started.
type Forwarder struct {
	Registry *Registry
	Client   *http.Client
	Timeout  time.Duration
	Metrics  *metrics.Relay
}

func NewForwarder(reg *Registry, timeout time.Duration, m *metrics.Relay) *Forwarder {
	return &Forwarder{
		Registry: reg,
		Client:   http.DefaultClient,
		Timeout:  timeout,
		Metrics:  m,
	}
}

// Forward attempts delivery starting from the registry's current endpoint.
// The endpoint list and starting position are snapshotted once per request,
// so a concurrent registry reload cannot change which endpoints this request
// visits or how many attempts it makes. On attempt failure the live registry
// is advanced, so later unrelated requests start from the endpoint that
// eventually worked. Transport failures are absorbed here; the only errors
// crossing this boundary are ErrExhausted and request-encoding faults.
func (f *Forwarder) Forward(ctx context.Context, msg OutboundMessage) ([]Reply, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	urls := f.Registry.URLs()
	n := len(urls)
	start := f.Registry.CurrentIndex() % n

	for i := 0; i < n; i++ {
		endpoint := urls[(start+i)%n]

		began := time.Now()
		replies, err := f.attempt(ctx, endpoint, body)
		elapsed := time.Since(began)
		if err == nil {
			f.Metrics.ObserveAttempt(metrics.OutcomeDelivered, elapsed)
			slog.Info("message delivered",
				"endpoint", endpoint,
				"agent", msg.Agent,
				"attempts", i+1,
				"latency", elapsed,
			)
			return replies, nil
		}

		f.Metrics.ObserveAttempt(metrics.OutcomeFailed, elapsed)
		slog.Warn("webhook attempt failed",
			"endpoint", endpoint,
			"attempt", i+1,
			"of", n,
			"error", err,
		)
		f.Registry.Advance()
	}

	return nil, ErrExhausted
}

// attempt performs a single delivery with its own timeout. A timeout,
// connection error, non-2xx status and unparseable 2xx body all count
// identically as attempt failure.
func (f *Forwarder) attempt(ctx context.Context, endpoint string, body []byte) ([]Reply, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &EndpointError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	replies, err := ParseReplies(data)
	if err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	return replies, nil
}
