package fetch

//go:generate mockgen -source=fetch_service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/images"
	"github.com/google/uuid"
)

// Service - один цикл обновления и восстановление снимка при старте.
type Service interface {
	Refresh(ctx context.Context) error
	Restore(ctx context.Context) error
}

// CoinProvider - источник тикера (CoinMarketCap API)
type CoinProvider interface {
	FetchCoins(ctx context.Context) ([]domain.Coin, error)
}

// SnapshotPublisher - хранилище текущего снимка
type SnapshotPublisher interface {
	Publish(coins []domain.Coin)
	PublishAt(coins []domain.Coin, at time.Time)
	Current() ([]domain.Coin, bool)
}

// IconCache - кэш иконок монет
type IconCache interface {
	EnsureCached(ctx context.Context, coins []domain.Coin) images.Result
}

// SnapshotRepository - хранение последнего снимка между перезапусками (опционально)
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, coins []domain.Coin, at time.Time) error
	LoadSnapshot(ctx context.Context) ([]domain.Coin, time.Time, error)
}

type fetchService struct {
	provider CoinProvider
	store    SnapshotPublisher
	icons    IconCache
	repo     SnapshotRepository
	logger   *slog.Logger
}

// NewService — конструктор сервиса обновления. repo может быть nil.
func NewService(provider CoinProvider, store SnapshotPublisher, icons IconCache, repo SnapshotRepository, logger *slog.Logger) Service {
	return &fetchService{
		provider: provider,
		store:    store,
		icons:    icons,
		repo:     repo,
		logger:   logger,
	}
}

// Refresh — получает тикер, публикует снимок и докачивает иконки.
// При ошибке получения снимок не меняется и иконки не трогаем.
func (s *fetchService) Refresh(ctx context.Context) error {
	started := time.Now()
	log := s.logger.With(slog.String("cycle", uuid.NewString()))

	coins, err := s.provider.FetchCoins(ctx)
	if err != nil {
		return fmt.Errorf("fetch coins: %w", err)
	}

	s.store.Publish(coins)
	log.Info("snapshot published", slog.Int("coins", len(coins)), slog.Duration("fetch", time.Since(started)))

	if s.repo != nil {
		if err := s.repo.SaveSnapshot(ctx, coins, time.Now().UTC()); err != nil {
			log.Warn("save snapshot to db failed", slog.Any("err", err))
		}
	}

	res := s.icons.EnsureCached(ctx, coins)
	if res.Failed > 0 {
		log.Warn("some icons were not cached",
			slog.Int("scheduled", res.Scheduled),
			slog.Int("failed", res.Failed),
		)
	}
	return nil
}

// Restore — публикует снимок из БД, если он есть и свежих данных ещё нет.
func (s *fetchService) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if _, ok := s.store.Current(); ok {
		return nil
	}
	coins, at, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if len(coins) == 0 {
		s.logger.Debug("no persisted snapshot")
		return nil
	}
	s.store.PublishAt(coins, at)
	s.logger.Info("snapshot restored", slog.Int("coins", len(coins)), slog.Time("updated_at", at))
	return nil
}
