package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rath-twin/rath/internal/logging"
	"github.com/rath-twin/rath/internal/metrics"
)

// ErrStopped is returned for commands sent to a runner that is not running
var ErrStopped = errors.New("dashboard: runner stopped")

// DefaultTickInterval replaces a non-positive RunnerConfig.TickInterval
const DefaultTickInterval = 500 * time.Millisecond

// RunnerConfig sets the two timers. A ConflictDelay of zero fires the
// conflict on the first loop iteration.
type RunnerConfig struct {
	TickInterval  time.Duration
	ConflictDelay time.Duration
}

func (c RunnerConfig) withDefaults() RunnerConfig {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	return c
}

type command struct {
	fn    func(*Store) error
	reply chan error
}

// Runner drives a Store from a single goroutine. Ticks, the one-shot
// conflict timer and operator commands are serialized through it, and every
// state change publishes a fresh snapshot to subscribers.
type Runner struct {
	store *Store
	cfg   RunnerConfig
	lg    *logging.Logger
	runID uuid.UUID

	cmds chan command
	done chan struct{}

	mu      sync.RWMutex
	latest  *Snapshot
	subs    map[int]chan *Snapshot
	nextSub int
	cancel  context.CancelFunc
	started bool
	ticks   metrics.Durations
}

// NewRunner creates a runner for store. A non-positive tick interval falls
// back to DefaultTickInterval.
func NewRunner(store *Store, cfg RunnerConfig, lg *logging.Logger) *Runner {
	r := &Runner{
		store: store,
		cfg:   cfg.withDefaults(),
		lg:    lg,
		runID: uuid.New(),
		cmds:  make(chan command),
		done:  make(chan struct{}),
		subs:  make(map[int]chan *Snapshot),
	}
	r.latest = store.Snapshot()
	return r
}

// RunID identifies this simulation run
func (r *Runner) RunID() uuid.UUID {
	return r.runID
}

// Start runs the startup alert scan and launches the loop. It returns
// immediately; the loop ends when ctx is cancelled or Stop is called.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	if n := r.store.ScanAlerts(); n > 0 {
		r.lg.Info("Startup scan raised alerts", "count", n, "run", r.runID.String())
	}
	r.publish()

	go r.loop(ctx)
}

// Stop cancels the loop and waits for it to exit
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, started := r.cancel, r.started
	r.mu.Unlock()
	if !started {
		return
	}
	cancel()
	<-r.done
}

// Done is closed once the loop has exited
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	conflictTimer := time.NewTimer(r.cfg.ConflictDelay)
	defer conflictTimer.Stop()
	conflictC := conflictTimer.C

	r.lg.Info("Simulation loop started",
		"run", r.runID.String(),
		"tick", r.cfg.TickInterval.String(),
		"conflict_delay", r.cfg.ConflictDelay.String())

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			if r.store.Tick() > 0 {
				r.publish()
			}
			r.mu.Lock()
			r.ticks.Observe(time.Since(start))
			r.mu.Unlock()

		case <-conflictC:
			conflictC = nil
			if r.store.FireConflict() {
				c, _ := r.store.Conflict()
				r.lg.Warn("Track conflict raised", "location", c.Location, "trains", c.Trains)
				r.publish()
			}

		case cmd := <-r.cmds:
			before := r.store.Version()
			err := cmd.fn(r.store)
			if r.store.Version() != before {
				r.publish()
			}
			cmd.reply <- err

		case <-ctx.Done():
			r.lg.Info("Simulation loop stopped", "run", r.runID.String())
			return
		}
	}
}

// Do runs fn on the loop goroutine and returns its error. ctx only bounds
// the wait for the loop to pick the command up. Snapshots are published
// automatically if fn changed the store.
func (r *Runner) Do(ctx context.Context, fn func(*Store) error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// The loop always replies once it has taken the command
	return <-cmd.reply
}

// TickStats summarizes how long each tick took, publishing included
func (r *Runner) TickStats() metrics.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ticks.Summary()
}

// Snapshot returns the most recently published state
func (r *Runner) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

func (r *Runner) publish() {
	snap := r.store.Snapshot()

	r.mu.Lock()
	r.latest = snap
	subs := make([]chan *Snapshot, 0, len(r.subs))
	for _, ch := range r.subs {
		subs = append(subs, ch)
	}
	r.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			// Subscriber is behind; replace the stale snapshot with this one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Subscribe returns a channel receiving each new snapshot. Slow readers only
// see the latest one. The returned func unsubscribes.
func (r *Runner) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}
