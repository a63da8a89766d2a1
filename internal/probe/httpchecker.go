package probe

import (
	"context"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single probe end to end.
const DefaultTimeout = 8 * time.Second

type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

// Check issues one GET against target. Transport errors are converted into
// the Outcome, never returned; retry policy belongs to the next cycle.
func (h *HTTPChecker) Check(ctx context.Context, target string) Outcome {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	out := Outcome{StatusCode: &code, LatencyMS: &latency}
	if code < 200 || code >= 300 {
		out.Err = resp.Status
	}
	return out
}
