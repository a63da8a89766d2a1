package repo

import (
	"context"

	"github.com/openwatch/beacon/internal/domain"
)

// Ports (interfaces) — swap in any DB adapter later.

type ClientStore interface {
	AddClient(ctx context.Context, c *domain.Client) error
	// GetClient returns nil, nil when the client does not exist.
	GetClient(ctx context.Context, id domain.ClientID) (*domain.Client, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
}

type EndpointStore interface {
	AddEndpoint(ctx context.Context, e *domain.Endpoint) error
	// GetEndpoint returns nil, nil when the endpoint does not exist.
	GetEndpoint(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error)
	// ListByClient returns every endpoint owned by the client.
	ListByClient(ctx context.Context, clientID domain.ClientID) ([]domain.Endpoint, error)
	// ListActive returns one page of active endpoints ordered by ID. An empty
	// clientID means all clients. The page is at most limit long; a short page
	// means the enumeration is done.
	ListActive(ctx context.Context, clientID domain.ClientID, offset, limit int) ([]domain.Endpoint, error)
	// UpdateStatus persists the endpoint's coarse status. The monitor
	// orchestrator is the only writer of this field.
	UpdateStatus(ctx context.Context, id domain.EndpointID, status domain.Status) error
}

// ResultStore is an append-only log of check results.
type ResultStore interface {
	Append(ctx context.Context, r *domain.CheckResult) error
	// LastByEndpoint returns nil, nil when the endpoint has no results yet.
	LastByEndpoint(ctx context.Context, id domain.EndpointID) (*domain.CheckResult, error)
}
