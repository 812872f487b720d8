package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/consts"
)

// State - состояние цикла обновления
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Refresher - один цикл обновления
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger

	state atomic.Int32

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler — конструктор планировщика фонового обновления тикера
func NewScheduler(refresher Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = consts.RefreshInterval
	}
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

// State - текущее состояние
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Start — запускает цикл в отдельной горутине. Повторный запуск и запуск после Stop ничего не делают.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state.Store(int32(StateFetching))

	go s.run(ctx)
}

// Stop — останавливает цикл и ждёт завершения горутины. Безопасен до Start и повторно.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.started = true
		s.state.Store(int32(StateStopped))
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	defer s.state.Store(int32(StateStopped))

	s.logger.Info("scheduler started")
	s.logger.Debug("scheduler interval configured", slog.Duration("interval", s.interval))

	for {
		s.state.Store(int32(StateFetching))
		s.runOnce(ctx)

		if ctx.Err() != nil {
			s.logger.Info("scheduler stopped")
			return
		}

		s.state.Store(int32(StateSleeping))
		timer := time.NewTimer(s.interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return
		}
	}
}

// runOnce — одна итерация: получить тикер, опубликовать снимок, докачать иконки
func (s *Scheduler) runOnce(ctx context.Context) {
	s.logger.Debug("tick: running refresh cycle")
	started := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Error("tick: refresh failed", slog.Any("err", err))
	} else {
		s.logger.Debug("tick: refresh cycle completed", slog.Duration("duration", time.Since(started)))
	}
}
