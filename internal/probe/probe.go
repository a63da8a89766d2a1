package probe

import "context"

// Outcome is the classified result of a single probe. StatusCode and
// LatencyMS are nil when the request never completed; Err carries the
// transport error, or the status line for a non-2xx response.
type Outcome struct {
	StatusCode *int
	LatencyMS  *float64
	Err        string
}

// Healthy reports whether the probe completed with a 2xx status.
func (o Outcome) Healthy() bool {
	return o.StatusCode != nil && *o.StatusCode >= 200 && *o.StatusCode < 300
}

// Checker performs a single check against a target URL.
type Checker interface {
	Check(ctx context.Context, target string) Outcome
}
