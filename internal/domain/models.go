package domain

import "time"

type ClientID string

type EndpointID string

// Status is the coarse per-endpoint state derived from its most recent check.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusUp      Status = "up"
	StatusDown    Status = "down"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnknown, StatusUp, StatusDown:
		return true
	}
	return false
}

// Client owns a set of endpoints and receives alerts at Email.
type Client struct {
	ID        ClientID  `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Endpoint struct {
	ID        EndpointID `json:"id"`
	ClientID  ClientID   `json:"client_id"`
	URL       string     `json:"url"`
	IsActive  bool       `json:"is_active"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// CheckResult is the append-only record of one probe attempt.
// StatusCode and LatencyMS are nil when the request never completed
// (transport error, DNS failure, timeout).
type CheckResult struct {
	ID         int64      `json:"id"`
	EndpointID EndpointID `json:"endpoint_id"`
	StatusCode *int       `json:"status_code"`
	LatencyMS  *float64   `json:"latency_ms"`
	Healthy    bool       `json:"healthy"`
	Error      string     `json:"error,omitempty"`
	CheckedAt  time.Time  `json:"checked_at"`
}
