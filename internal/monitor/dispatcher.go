package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openwatch/beacon/internal/domain"
	"github.com/openwatch/beacon/internal/repo"
)

type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// ErrCycleRunning is returned when a cycle is requested while the previous
// one is still draining. Overlapping cycles would race on endpoint status
// writes, so this is a correctness guard, not just throttling.
var ErrCycleRunning = errors.New("monitoring cycle already running")

const (
	DefaultPageSize  = 500
	DefaultPagePause = time.Second
)

// Dispatcher enumerates active endpoints in pages and hands each one to the
// orchestrator, inline or through the monitoring work queue.
type Dispatcher struct {
	Logger    *zap.Logger
	Endpoints repo.EndpointStore
	Orch      *Orchestrator
	Pool      *Pool
	PageSize  int
	PagePause time.Duration

	mu      sync.Mutex
	running bool
	done    chan struct{} // closed when the current cycle has fully drained
}

func NewDispatcher(logger *zap.Logger, endpoints repo.EndpointStore, orch *Orchestrator, pool *Pool) *Dispatcher {
	return &Dispatcher{
		Logger:    logger,
		Endpoints: endpoints,
		Orch:      orch,
		Pool:      pool,
		PageSize:  DefaultPageSize,
		PagePause: DefaultPagePause,
	}
}

// RunCycle dispatches one full pass over the active endpoints, optionally
// restricted to one client. The returned error reflects dispatch only:
// individual check failures are handled inside the orchestrator. In async
// mode the call returns once every endpoint is queued; the overlap guard
// stays held until the queue drains.
func (d *Dispatcher) RunCycle(ctx context.Context, mode Mode, clientID domain.ClientID) error {
	done, ok := d.begin()
	if !ok {
		return ErrCycleRunning
	}

	var wg sync.WaitGroup
	err := d.dispatch(ctx, mode, clientID, &wg)

	if mode == ModeAsync {
		go func() {
			wg.Wait()
			d.finish(done)
		}()
	} else {
		d.finish(done)
	}
	return err
}

func (d *Dispatcher) dispatch(ctx context.Context, mode Mode, clientID domain.ClientID, wg *sync.WaitGroup) error {
	pageSize := d.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	var exec Executor = Inline{}
	if mode == ModeAsync {
		exec = d.Pool
	}

	total := 0
	for offset := 0; ; offset += pageSize {
		page, err := d.Endpoints.ListActive(ctx, clientID, offset, pageSize)
		if err != nil {
			return fmt.Errorf("list active endpoints: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, ep := range page {
			ep := ep
			wg.Add(1)
			exec.Execute(func() {
				defer wg.Done()
				d.Orch.Run(ctx, ep)
			})
		}
		total += len(page)

		if len(page) < pageSize {
			break
		}
		// Smooth burst load on the network and the mail transport. Inline
		// execution throttles itself, so only the queued mode pauses.
		if mode == ModeAsync && d.PagePause > 0 {
			time.Sleep(d.PagePause)
		}
	}

	d.Logger.Info("cycle_dispatched",
		zap.Int("endpoints", total),
		zap.String("mode", string(mode)),
		zap.String("queue", "monitoring"),
	)
	return nil
}

// Run drives recurring cycles on a fixed cadence until ctx is cancelled.
// An immediate pass runs first. A tick that lands while the previous cycle
// is still draining is skipped rather than stacked.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration, mode Mode) {
	if interval <= 0 {
		d.Logger.Info("dispatcher_disabled")
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	d.cycleOnce(ctx, mode)

	for {
		select {
		case <-ctx.Done():
			d.Logger.Info("dispatcher_stopped")
			return
		case <-t.C:
			d.cycleOnce(ctx, mode)
		}
	}
}

func (d *Dispatcher) cycleOnce(ctx context.Context, mode Mode) {
	switch err := d.RunCycle(ctx, mode, ""); {
	case err == nil:
	case errors.Is(err, ErrCycleRunning):
		d.Logger.Debug("cycle_skipped_overlap")
	default:
		d.Logger.Warn("cycle_dispatch_error", zap.Error(err))
	}
}

// Wait blocks until the most recently dispatched cycle has drained.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (d *Dispatcher) begin() (chan struct{}, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil, false
	}
	d.running = true
	d.done = make(chan struct{})
	return d.done, true
}

func (d *Dispatcher) finish(done chan struct{}) {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
	close(done)
}
