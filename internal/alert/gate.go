package alert

import (
	"sync"
	"time"

	"github.com/openwatch/beacon/internal/domain"
)

// DefaultWindow is how long repeat alerts for the same endpoint/recipient
// pair stay suppressed after a grant.
const DefaultWindow = time.Hour

type window struct {
	hits    int
	expires time.Time
}

// Gate rate-limits alerts per (endpoint, recipient) pair: at most one grant
// per suppression window. Expiry is checked on read; there is no sweeper.
type Gate struct {
	windowLen time.Duration
	limit     int
	mu        sync.Mutex
	m         map[string]*window
	now       func() time.Time // test hook
}

func NewGate(windowLen time.Duration) *Gate {
	if windowLen <= 0 {
		windowLen = DefaultWindow
	}
	return &Gate{
		windowLen: windowLen,
		limit:     1,
		m:         make(map[string]*window),
		now:       time.Now,
	}
}

// TryAcquire reports whether an alert for this endpoint/recipient pair may be
// sent now, and on success records the grant. The check and the increment
// happen under one lock, so concurrent callers for the same key cannot both
// be granted within a window. A false return is suppression, not an error.
func (g *Gate) TryAcquire(endpointID domain.EndpointID, recipient string) bool {
	key := "email:" + recipient + ":" + string(endpointID)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	w := g.m[key]
	if w == nil || !now.Before(w.expires) {
		g.m[key] = &window{hits: 1, expires: now.Add(g.windowLen)}
		return true
	}
	if w.hits >= g.limit {
		return false
	}
	w.hits++
	return true
}
