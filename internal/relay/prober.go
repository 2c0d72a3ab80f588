package relay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Probe statuses reported for each endpoint.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// ProbeResult is the outcome of one endpoint liveness check.
type ProbeResult struct {
	URL       string `json:"url"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// Prober checks endpoint liveness for the status route. Probes are
// lightweight GETs against the endpoint's /health path with a short timeout.
type Prober struct {
	Registry *Registry
	Client   *http.Client
	Timeout  time.Duration
}

func NewProber(reg *Registry, timeout time.Duration) *Prober {
	return &Prober{
		Registry: reg,
		Client:   http.DefaultClient,
		Timeout:  timeout,
	}
}

// Probe walks the registry in list order, stopping at the first reachable
// endpoint and rotating the registry's pointer to it, so subsequent relay
// traffic starts there. It never fails; unreachable endpoints are reported
// as offline with detail. Returns the resulting current endpoint and the
// results for every endpoint attempted.
func (p *Prober) Probe(ctx context.Context) (current string, results []ProbeResult) {
	for i, url := range p.Registry.URLs() {
		res := p.check(ctx, url)
		results = append(results, res)
		if res.Status == StatusOnline {
			p.Registry.RotateTo(i)
			slog.Info("webhook endpoint online", "endpoint", url, "latencyMs", res.LatencyMS)
			break
		}
		slog.Warn("webhook endpoint offline", "endpoint", url, "error", res.Error)
	}
	return p.Registry.Current(), results
}

func (p *Prober) check(ctx context.Context, endpoint string) ProbeResult {
	checkCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	url := strings.TrimRight(endpoint, "/") + "/health"
	result := ProbeResult{URL: endpoint}

	start := time.Now()
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, url, nil)
	if err != nil {
		result.Status = StatusOffline
		result.Error = err.Error()
		return result
	}

	resp, err := p.Client.Do(req)
	result.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Status = StatusOffline
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Status = StatusOffline
		result.Error = fmt.Sprintf("health check returned status %d", resp.StatusCode)
		return result
	}

	result.Status = StatusOnline
	return result
}
