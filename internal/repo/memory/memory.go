package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openwatch/beacon/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	clients   map[domain.ClientID]*domain.Client
	endpoints map[domain.EndpointID]*domain.Endpoint
	results   []*domain.CheckResult
	nextID    int64
}

func New() *Store {
	return &Store{
		clients:   make(map[domain.ClientID]*domain.Client),
		endpoints: make(map[domain.EndpointID]*domain.Endpoint),
		results:   make([]*domain.CheckResult, 0, 128),
	}
}

// ---- ClientStore ----

func (m *Store) AddClient(ctx context.Context, c *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = domain.ClientID(uuid.NewString())
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.clients[c.ID] = c
	return nil
}

func (m *Store) GetClient(ctx context.Context, id domain.ClientID) (*domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *Store) ListClients(ctx context.Context) ([]domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- EndpointStore ----

func (m *Store) AddEndpoint(ctx context.Context, e *domain.Endpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = domain.EndpointID(uuid.NewString())
	}
	if e.Status == "" {
		e.Status = domain.StatusUnknown
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.endpoints[e.ID] = e
	return nil
}

func (m *Store) GetEndpoint(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.endpoints[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *Store) ListByClient(ctx context.Context, clientID domain.ClientID) ([]domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Endpoint
	for _, e := range m.endpoints {
		if e.ClientID == clientID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) ListActive(ctx context.Context, clientID domain.ClientID, offset, limit int) ([]domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []domain.Endpoint
	for _, e := range m.endpoints {
		if !e.IsActive {
			continue
		}
		if clientID != "" && e.ClientID != clientID {
			continue
		}
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *Store) UpdateStatus(ctx context.Context, id domain.EndpointID, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.endpoints[id]; ok {
		e.Status = status
	}
	return nil
}

// ---- ResultStore ----

func (m *Store) Append(ctx context.Context, r *domain.CheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	m.results = append(m.results, r)
	return nil
}

func (m *Store) LastByEndpoint(ctx context.Context, id domain.EndpointID) (*domain.CheckResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *domain.CheckResult
	for _, r := range m.results {
		if r.EndpointID != id {
			continue
		}
		if last == nil || r.CheckedAt.After(last.CheckedAt) || (r.CheckedAt.Equal(last.CheckedAt) && r.ID > last.ID) {
			last = r
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

// ResultCount reports how many results have been appended. Test helper.
func (m *Store) ResultCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.results)
}

// Seed loads a demo client with a few endpoints for local development.
func (m *Store) Seed(ctx context.Context) error {
	c := &domain.Client{Name: "Demo Client", Email: "demo@example.com"}
	if err := m.AddClient(ctx, c); err != nil {
		return err
	}
	for _, u := range []string{
		"https://example.com",
		"https://httpbin.org/status/200",
		"https://httpbin.org/status/503",
	} {
		e := &domain.Endpoint{ClientID: c.ID, URL: u, IsActive: true}
		if err := m.AddEndpoint(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
