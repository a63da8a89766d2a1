package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/openwatch/beacon/internal/domain"
)

// Minimal schema so the test can run on a fresh DB/volume.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS clients (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  email      TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS endpoints (
  id         TEXT PRIMARY KEY,
  client_id  TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  url        TEXT NOT NULL,
  is_active  BOOLEAN NOT NULL DEFAULT true,
  status     TEXT NOT NULL DEFAULT 'unknown',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS monitoring_results (
  id            BIGSERIAL PRIMARY KEY,
  endpoint_id   TEXT NOT NULL REFERENCES endpoints(id) ON DELETE CASCADE,
  status_code   INTEGER NULL,
  latency_ms    DOUBLE PRECISION NULL,
  healthy       BOOLEAN NOT NULL,
  error_message TEXT NOT NULL DEFAULT '',
  checked_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_endpoint_time ON monitoring_results (endpoint_id, checked_at DESC);
`

func ensureSchema(t *testing.T, dsn string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
}

func TestPostgresStore_EndToEnd(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ensureSchema(t, dsn)

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	c := &domain.Client{Name: "Acme", Email: "ops@acme.test"}
	if err := store.AddClient(ctx, c); err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected client ID to be set")
	}

	// Unique URL per run to keep re-runs independent.
	uniqueURL := fmt.Sprintf("https://example.com/test-%d", time.Now().UTC().UnixNano())
	e := &domain.Endpoint{ClientID: c.ID, URL: uniqueURL, IsActive: true}
	if err := store.AddEndpoint(ctx, e); err != nil {
		t.Fatalf("AddEndpoint: %v", err)
	}

	page, err := store.ListActive(ctx, c.ID, 0, 100)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	found := false
	for _, x := range page {
		if x.ID == e.ID {
			found = true
			if x.Status != domain.StatusUnknown {
				t.Fatalf("new endpoint should be unknown, got %q", x.Status)
			}
		}
	}
	if !found {
		t.Fatalf("added endpoint not in active page; got %d rows", len(page))
	}

	code := 503
	lat := 42.0
	res := &domain.CheckResult{
		EndpointID: e.ID,
		StatusCode: &code,
		LatencyMS:  &lat,
		Healthy:    false,
		Error:      "503 Service Unavailable",
		CheckedAt:  time.Now().UTC(),
	}
	if err := store.Append(ctx, res); err != nil {
		t.Fatalf("Append result: %v", err)
	}
	if res.ID == 0 {
		t.Fatalf("expected result ID from insert")
	}

	if err := store.UpdateStatus(ctx, e.ID, domain.StatusDown); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := store.GetEndpoint(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEndpoint: %v", err)
	}
	if got == nil || got.Status != domain.StatusDown {
		t.Fatalf("expected down endpoint, got %+v", got)
	}

	last, err := store.LastByEndpoint(ctx, e.ID)
	if err != nil {
		t.Fatalf("LastByEndpoint: %v", err)
	}
	if last == nil || last.Healthy || last.StatusCode == nil || *last.StatusCode != 503 {
		t.Fatalf("unexpected last result: %+v", last)
	}
}
