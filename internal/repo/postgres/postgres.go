package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/openwatch/beacon/internal/domain"
	"github.com/openwatch/beacon/internal/repo"
)

var _ repo.ClientStore = (*Store)(nil)
var _ repo.EndpointStore = (*Store)(nil)
var _ repo.ResultStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ---- ClientStore ----

func (s *Store) AddClient(ctx context.Context, c *domain.Client) error {
	if c.ID == "" {
		c.ID = domain.ClientID(uuid.NewString())
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO clients (id, name, email, created_at)
		 VALUES ($1, $2, $3, $4)`,
		string(c.ID), c.Name, c.Email, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, id domain.ClientID) (*domain.Client, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM clients WHERE id = $1`, string(id))
	var c domain.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, created_at
		   FROM clients
		  ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ---- EndpointStore ----

func (s *Store) AddEndpoint(ctx context.Context, e *domain.Endpoint) error {
	if e.ID == "" {
		e.ID = domain.EndpointID(uuid.NewString())
	}
	if e.Status == "" {
		e.Status = domain.StatusUnknown
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO endpoints (id, client_id, url, is_active, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.ID), string(e.ClientID), e.URL, e.IsActive, string(e.Status), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert endpoint: %w", err)
	}
	return nil
}

func (s *Store) GetEndpoint(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, client_id, url, is_active, status, created_at
		   FROM endpoints WHERE id = $1`, string(id))
	e, err := scanEndpoint(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get endpoint: %w", err)
	}
	return e, nil
}

func (s *Store) ListByClient(ctx context.Context, clientID domain.ClientID) ([]domain.Endpoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, client_id, url, is_active, status, created_at
		   FROM endpoints
		  WHERE client_id = $1
		  ORDER BY id`, string(clientID))
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	defer rows.Close()
	return collectEndpoints(rows)
}

func (s *Store) ListActive(ctx context.Context, clientID domain.ClientID, offset, limit int) ([]domain.Endpoint, error) {
	// Ordered by id so pages are stable while a cycle walks them.
	var (
		rows pgx.Rows
		err  error
	)
	if clientID == "" {
		rows, err = s.pool.Query(ctx,
			`SELECT id, client_id, url, is_active, status, created_at
			   FROM endpoints
			  WHERE is_active
			  ORDER BY id
			  OFFSET $1 LIMIT $2`, offset, limit)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, client_id, url, is_active, status, created_at
			   FROM endpoints
			  WHERE is_active AND client_id = $1
			  ORDER BY id
			  OFFSET $2 LIMIT $3`, string(clientID), offset, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list active endpoints: %w", err)
	}
	defer rows.Close()
	return collectEndpoints(rows)
}

func (s *Store) UpdateStatus(ctx context.Context, id domain.EndpointID, status domain.Status) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE endpoints SET status = $2 WHERE id = $1`,
		string(id), string(status))
	if err != nil {
		return fmt.Errorf("update endpoint status: %w", err)
	}
	return nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, r *domain.CheckResult) error {
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO monitoring_results
		   (endpoint_id, status_code, latency_ms, healthy, error_message, checked_at)
		 VALUES
		   ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		string(r.EndpointID), r.StatusCode, r.LatencyMS, r.Healthy, r.Error, r.CheckedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) LastByEndpoint(ctx context.Context, id domain.EndpointID) (*domain.CheckResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, endpoint_id, status_code, latency_ms, healthy, error_message, checked_at
		   FROM monitoring_results
		  WHERE endpoint_id = $1
		  ORDER BY checked_at DESC, id DESC
		  LIMIT 1`, string(id))
	var r domain.CheckResult
	err := row.Scan(&r.ID, &r.EndpointID, &r.StatusCode, &r.LatencyMS, &r.Healthy, &r.Error, &r.CheckedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("last result: %w", err)
	}
	return &r, nil
}

// ---- helpers ----

func scanEndpoint(row pgx.Row) (*domain.Endpoint, error) {
	var e domain.Endpoint
	var status string
	if err := row.Scan(&e.ID, &e.ClientID, &e.URL, &e.IsActive, &status, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Status = domain.Status(status)
	return &e, nil
}

func collectEndpoints(rows pgx.Rows) ([]domain.Endpoint, error) {
	var out []domain.Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan endpoint: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
