// Package refresh drives the per-view polling cycle: fetch, derive, publish,
// on a fixed interval, pausable and cancellable.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/citypulse/traffic-dashboard/internal/observability"
	"github.com/citypulse/traffic-dashboard/internal/source"
)

// State is the poller lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePolling
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FetchFunc runs the dual-source fetch for one view. The boolean is false
// when neither source produced an update this cycle.
type FetchFunc[T any] func(ctx context.Context, filter source.Filter) ([]T, bool)

// PublishFunc replaces the view's derived slot with the rows of a completed
// cycle. It is never called for a failed cycle or a stale result.
type PublishFunc[T any] func(rows []T)

// Runner is the view-agnostic face of a Poller, for supervision.
type Runner interface {
	Run(ctx context.Context) error
	Name() string
}

// Poller refreshes one view. The cycle runs in a single goroutine, so at
// most one fetch per view is in flight; a tick that fires during a fetch is
// absorbed and skipped rather than stacking cycles. Results of a fetch that
// was in flight when the filter changed or the poller stopped are discarded
// unpublished.
type Poller[T any] struct {
	name     string
	interval time.Duration
	clock    clockwork.Clock
	fetch    FetchFunc[T]
	publish  PublishFunc[T]
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu     sync.Mutex
	state  State
	filter source.Filter
	gen    uint64

	kick chan struct{}
}

// NewPoller creates an idle poller for one view.
func NewPoller[T any](
	name string,
	interval time.Duration,
	filter source.Filter,
	clock clockwork.Clock,
	fetch FetchFunc[T],
	publish PublishFunc[T],
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Poller[T] {
	return &Poller[T]{
		name:     name,
		interval: interval,
		filter:   filter,
		clock:    clock,
		fetch:    fetch,
		publish:  publish,
		logger:   logger,
		metrics:  metrics,
		kick:     make(chan struct{}, 1),
	}
}

// Name returns the view name.
func (p *Poller[T]) Name() string { return p.name }

// State returns the current lifecycle state.
func (p *Poller[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pause disarms the repeating timer. Manual Trigger calls still fetch;
// Resume rearms.
func (p *Poller[T]) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateStopped {
		return
	}
	p.state = StatePaused
	p.logger.Info("poller paused", "view", p.name)
}

// Resume leaves the paused state and immediately starts a fresh cycle, as
// on mount.
func (p *Poller[T]) Resume() {
	p.mu.Lock()
	if p.state != StatePaused {
		p.mu.Unlock()
		return
	}
	p.state = StatePolling
	p.mu.Unlock()
	p.logger.Info("poller resumed", "view", p.name)
	p.requestCycle()
}

// Trigger requests one immediate cycle. Allowed while paused.
func (p *Poller[T]) Trigger() {
	p.requestCycle()
}

// SetFilter replaces the fetch parameters and restarts the cycle
// immediately. The result of any fetch already in flight is discarded.
func (p *Poller[T]) SetFilter(filter source.Filter) {
	p.mu.Lock()
	p.filter = filter
	p.gen++
	p.mu.Unlock()
	p.requestCycle()
}

// Stop tears the poller down permanently. An in-flight fetch resolving after
// Stop never publishes.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateStopped {
		return
	}
	p.state = StateStopped
	p.gen++
}

// Run executes the polling loop until the context is cancelled or the poller
// is stopped. The first cycle runs immediately.
func (p *Poller[T]) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return nil
	}
	p.state = StatePolling
	p.mu.Unlock()

	p.metrics.PollersActive.Inc()
	defer p.metrics.PollersActive.Dec()
	p.logger.Info("poller started", "view", p.name, "interval", p.interval)

	p.runCycle(ctx)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if p.State() == StateStopped {
			p.logger.Info("poller stopped", "view", p.name)
			return nil
		}

		select {
		case <-ctx.Done():
			p.Stop()
			p.logger.Info("poller stopping", "view", p.name, "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if p.State() == StatePaused {
				continue
			}
			p.runCycle(ctx)
		case <-p.kick:
			p.runCycle(ctx)
			ticker.Reset(p.interval)
		}
	}
}

// requestCycle schedules an immediate cycle without blocking; a request
// already pending is enough.
func (p *Poller[T]) requestCycle() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// runCycle performs one fetch-derive-publish pass. A cycle whose fetch
// resolves after Stop or a filter change is discarded without publishing.
func (p *Poller[T]) runCycle(ctx context.Context) {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	gen := p.gen
	filter := p.filter
	p.mu.Unlock()

	rows, ok := p.fetch(ctx, filter)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateStopped || p.gen != gen || ctx.Err() != nil {
		p.metrics.RefreshCycles.WithLabelValues(p.name, "discarded").Inc()
		p.logger.Debug("discarding stale fetch result", "view", p.name)
		return
	}
	if !ok {
		p.metrics.RefreshCycles.WithLabelValues(p.name, "kept").Inc()
		p.logger.Warn("no update this cycle, keeping previous snapshot", "view", p.name)
		return
	}

	p.publish(rows)
	outcome := "updated"
	if len(rows) == 0 {
		outcome = "no_data"
	}
	p.metrics.RefreshCycles.WithLabelValues(p.name, outcome).Inc()
	p.logger.Debug("view refreshed", "view", p.name, "rows", len(rows))
}
