package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rath-twin/rath/internal/logging"
)

func newTestRunner(tick, conflict time.Duration) *Runner {
	lg := logging.NewWithWriter("error", discard{}, "")
	return NewRunner(newTestStore(), RunnerConfig{TickInterval: tick, ConflictDelay: conflict}, lg)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunnerTicksAndConflict(t *testing.T) {
	r := newTestRunner(5*time.Millisecond, 50*time.Millisecond)
	r.Start(context.Background())
	defer r.Stop()

	if got := len(r.Snapshot().Alerts); got != 3 {
		t.Errorf("startup scan published %d alerts, expected 3", got)
	}

	waitFor(t, "trains to move", func() bool {
		tr, _ := r.Snapshot().Train("TR001")
		return tr.Progress != 0.4
	})
	waitFor(t, "conflict", func() bool {
		return r.Snapshot().Conflict != nil
	})
	if s := r.TickStats(); s.Count == 0 || s.MaxMs < s.MeanMs {
		t.Errorf("TickStats() = %+v", s)
	}
}

func TestRunnerDoSerializesCommands(t *testing.T) {
	r := newTestRunner(time.Hour, time.Hour)
	r.Start(context.Background())
	defer r.Stop()

	ctx := context.Background()
	err := r.Do(ctx, func(s *Store) error {
		return s.EmergencyStop("TR001")
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	tr, _ := r.Snapshot().Train("TR001")
	if !tr.IsStopped() {
		t.Error("snapshot not published after command")
	}

	sentinel := errors.New("boom")
	if err := r.Do(ctx, func(*Store) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("Do returned %v, expected the command error", err)
	}
}

func TestRunnerSubscribe(t *testing.T) {
	r := newTestRunner(time.Hour, time.Hour)
	ch, unsubscribe := r.Subscribe()
	defer unsubscribe()

	r.Start(context.Background())
	defer r.Stop()

	select {
	case snap := <-ch:
		if len(snap.Alerts) != 3 {
			t.Errorf("first snapshot has %d alerts", len(snap.Alerts))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after start")
	}

	r.Do(context.Background(), func(s *Store) error {
		_, _, err := s.OpenDecision("TR002")
		return err
	})
	select {
	case snap := <-ch:
		if len(snap.Decisions) != 1 {
			t.Errorf("snapshot after open has %d decisions", len(snap.Decisions))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after command")
	}
}

func TestRunnerStop(t *testing.T) {
	r := newTestRunner(5*time.Millisecond, time.Hour)
	r.Start(context.Background())
	r.Stop()

	select {
	case <-r.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}

	v := r.Snapshot().Version
	time.Sleep(30 * time.Millisecond)
	if r.Snapshot().Version != v {
		t.Error("state changed after Stop")
	}

	if err := r.Do(context.Background(), func(*Store) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("Do after Stop: expected ErrStopped, got %v", err)
	}
}

func TestRunnerStopsWithContext(t *testing.T) {
	r := newTestRunner(5*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit on context cancel")
	}
}

func TestRunnerNonPositiveTickInterval(t *testing.T) {
	for _, tick := range []time.Duration{0, -time.Second} {
		t.Run(tick.String(), func(t *testing.T) {
			r := newTestRunner(tick, time.Hour)
			if r.cfg.TickInterval != DefaultTickInterval {
				t.Errorf("TickInterval = %v, expected %v", r.cfg.TickInterval, DefaultTickInterval)
			}

			r.Start(context.Background())
			defer r.Stop()

			waitFor(t, "trains to move", func() bool {
				tr, _ := r.Snapshot().Train("TR001")
				return tr.Progress != 0.4
			})
		})
	}
}
