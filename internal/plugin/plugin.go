package plugin

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/scheduler"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/query"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/snapshot"
)

// SnapshotReader - чтение текущего снимка
type SnapshotReader interface {
	Snapshot() (snapshot.Snapshot, bool)
}

// Restorer - восстановление снимка при старте
type Restorer interface {
	Restore(ctx context.Context) error
}

// Runner - фоновый цикл обновления
type Runner interface {
	Start(ctx context.Context)
	Stop()
	State() scheduler.State
}

// Status - состояние плагина для health-проверок
type Status struct {
	Ready     bool      `json:"ready"`
	Coins     int       `json:"coins"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	Scheduler string    `json:"scheduler"`
}

// Plugin - входная точка для хоста: жизненный цикл и обработка запросов.
type Plugin struct {
	store    SnapshotReader
	restorer Restorer
	runner   Runner
	matcher  *query.Matcher
	trigger  string
	logger   *slog.Logger
}

func New(store SnapshotReader, restorer Restorer, runner Runner, matcher *query.Matcher, trigger string, logger *slog.Logger) *Plugin {
	return &Plugin{
		store:    store,
		restorer: restorer,
		runner:   runner,
		matcher:  matcher,
		trigger:  trigger,
		logger:   logger,
	}
}

// Initialize - восстанавливает снимок (если есть где) и запускает фоновое обновление.
func (p *Plugin) Initialize(ctx context.Context) {
	if p.restorer != nil {
		if err := p.restorer.Restore(ctx); err != nil {
			p.logger.Warn("plugin: restore snapshot failed", slog.Any("err", err))
		}
	}
	if p.runner != nil {
		p.runner.Start(ctx)
	}
	p.logger.Info("plugin initialized")
}

// Finalize - останавливает обновление и ждёт завершения цикла.
func (p *Plugin) Finalize() {
	if p.runner != nil {
		p.runner.Stop()
	}
	p.logger.Info("plugin finalized")
}

// HandleQuery - nil, если запрос не для нас или данных ещё нет.
func (p *Plugin) HandleQuery(triggered bool, q string) []query.DisplayItem {
	if !triggered {
		return nil
	}
	snap, ok := p.store.Snapshot()
	if !ok {
		return nil
	}
	return p.matcher.Match(q, snap.Coins)
}

// SplitTrigger - для хостов, которые передают ввод целиком: "cmc bit" -> (true, "bit").
func (p *Plugin) SplitTrigger(raw string) (bool, string) {
	if p.trigger == "" {
		return true, raw
	}
	if strings.HasPrefix(raw, p.trigger) {
		return true, raw[len(p.trigger):]
	}
	// "cmc" без пробела тоже считаем вызовом с пустым запросом
	if raw == strings.TrimSpace(p.trigger) {
		return true, ""
	}
	return false, ""
}

// Ready - есть ли опубликованный снимок
func (p *Plugin) Ready() bool {
	_, ok := p.store.Snapshot()
	return ok
}

// Status - размер и время снимка, состояние планировщика
func (p *Plugin) Status() Status {
	st := Status{Scheduler: "disabled"}
	if p.runner != nil {
		st.Scheduler = p.runner.State().String()
	}
	if snap, ok := p.store.Snapshot(); ok {
		st.Ready = true
		st.Coins = len(snap.Coins)
		st.UpdatedAt = snap.UpdatedAt
	}
	return st
}

// Coin - монета по id из текущего снимка
func (p *Plugin) Coin(id string) (domain.Coin, bool) {
	snap, ok := p.store.Snapshot()
	if !ok {
		return domain.Coin{}, false
	}
	for _, c := range snap.Coins {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Coin{}, false
}
