package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/consts"
)

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Stop во время паузы возвращается сразу, не дожидаясь интервала
func TestScheduler_StopInterruptsSleep(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(refresherFunc(func(context.Context) error {
		calls.Add(1)
		return nil
	}), 15*time.Minute, slog.Default())

	s.Start(context.Background())
	waitFor(t, func() bool { return s.State() == StateSleeping })

	started := time.Now()
	s.Stop()
	if d := time.Since(started); d > time.Second {
		t.Fatalf("stop took too long: %v", d)
	}
	if s.State() != StateStopped {
		t.Fatalf("expected stopped, got %v", s.State())
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 cycle, got %d", calls.Load())
	}
}

// Ошибка цикла не останавливает планировщик
func TestScheduler_ContinuesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(refresherFunc(func(context.Context) error {
		calls.Add(1)
		return errors.New("http 500")
	}), 10*time.Millisecond, slog.Default())

	s.Start(context.Background())
	waitFor(t, func() bool { return calls.Load() >= 3 })
	s.Stop()

	n := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != n {
		t.Fatalf("cycle ran after Stop returned: %d -> %d", n, calls.Load())
	}
}

// Stop ждёт окончания текущего цикла
func TestScheduler_StopJoinsInFlightCycle(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	s := NewScheduler(refresherFunc(func(context.Context) error {
		close(entered)
		<-release
		finished.Store(true)
		return nil
	}), time.Hour, slog.Default())

	s.Start(context.Background())
	<-entered
	if s.State() != StateFetching {
		t.Fatalf("expected fetching, got %v", s.State())
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the cycle finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	<-stopped
	if !finished.Load() {
		t.Fatal("cycle not finished")
	}
}

func TestScheduler_StopBeforeStartAndTwice(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(refresherFunc(func(context.Context) error {
		calls.Add(1)
		return nil
	}), time.Hour, slog.Default())

	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %v", s.State())
	}
	s.Stop()
	s.Stop()
	if s.State() != StateStopped {
		t.Fatalf("expected stopped, got %v", s.State())
	}

	// после Stop состояние терминальное
	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("Start after Stop must be a no-op, got %d calls", calls.Load())
	}
}

func TestScheduler_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(refresherFunc(func(context.Context) error { return nil }), time.Hour, slog.Default())

	s.Start(ctx)
	s.Start(ctx)
	waitFor(t, func() bool { return s.State() == StateSleeping })
	cancel()
	waitFor(t, func() bool { return s.State() == StateStopped })
	s.Stop()
}

func TestScheduler_NonPositiveIntervalUsesDefault(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(refresherFunc(func(context.Context) error {
		calls.Add(1)
		return nil
	}), 0, slog.Default())
	if s.interval != consts.RefreshInterval {
		t.Fatalf("interval = %v, want %v", s.interval, consts.RefreshInterval)
	}

	s.Start(context.Background())
	waitFor(t, func() bool { return s.State() == StateSleeping })
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single refresh before stop, got %d", got)
	}
}
