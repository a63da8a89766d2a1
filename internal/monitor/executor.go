package monitor

import "sync"

// Executor runs one check unit of work. The dispatcher invokes the same
// orchestrator through either implementation, so the per-endpoint logic is
// identical in both modes.
type Executor interface {
	Execute(fn func())
}

// Inline runs the unit on the calling goroutine. Used for deterministic
// testing and small fleets.
type Inline struct{}

func (Inline) Execute(fn func()) { fn() }

// Pool is the "monitoring" work queue: submitted units are consumed by a
// bounded set of workers. Execute blocks when the queue is full rather than
// dropping, so every dispatched endpoint gets exactly one check.
type Pool struct {
	jobs     chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewPool(workers, queueDepth int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueDepth < workers {
		queueDepth = workers * 2
	}
	p := &Pool{jobs: make(chan func(), queueDepth)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for fn := range p.jobs {
				fn()
			}
		}()
	}
	return p
}

func (p *Pool) Execute(fn func()) {
	p.jobs <- fn
}

// Stop closes the queue and waits for the workers to drain it.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}
