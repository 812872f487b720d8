package fetch_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/coin-ticker-service/internal/errors"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/fetch"
	fetchmocks "github.com/NastyaGoryachaya/coin-ticker-service/internal/service/fetch/mocks"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/images"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/snapshot"
	"github.com/golang/mock/gomock"
)

var coins = []domain.Coin{
	{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Rank: 1, Price: "70000"},
	{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Rank: 2, Price: "3500"},
}

// Success: снимок публикуется до загрузки иконок
func TestRefresh_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := fetchmocks.NewMockCoinProvider(ctrl)
	store := fetchmocks.NewMockSnapshotPublisher(ctrl)
	icons := fetchmocks.NewMockIconCache(ctrl)

	gomock.InOrder(
		api.EXPECT().FetchCoins(gomock.Any()).Return(coins, nil).Times(1),
		store.EXPECT().Publish(coins).Times(1),
		icons.EXPECT().EnsureCached(gomock.Any(), coins).Return(images.Result{Scheduled: 2, Downloaded: 2}).Times(1),
	)

	svc := fetch.NewService(api, store, icons, nil, slog.Default())
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ApiError: провайдер упал - ни публикации, ни иконок
func TestRefresh_ApiError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := fetchmocks.NewMockCoinProvider(ctrl)
	store := fetchmocks.NewMockSnapshotPublisher(ctrl)
	icons := fetchmocks.NewMockIconCache(ctrl)
	repo := fetchmocks.NewMockSnapshotRepository(ctrl)

	api.EXPECT().FetchCoins(gomock.Any()).Return(nil, errs.ErrHTTPStatus).Times(1)
	store.EXPECT().Publish(gomock.Any()).Times(0)
	icons.EXPECT().EnsureCached(gomock.Any(), gomock.Any()).Times(0)
	repo.EXPECT().SaveSnapshot(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	svc := fetch.NewService(api, store, icons, repo, slog.Default())

	err := svc.Refresh(ctx)
	if err == nil || !errors.Is(err, errs.ErrHTTPStatus) {
		t.Fatalf("expected ErrHTTPStatus, got %v", err)
	}
}

// Ошибка получения оставляет прежний снимок как есть (реальный store)
func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := fetchmocks.NewMockCoinProvider(ctrl)
	icons := fetchmocks.NewMockIconCache(ctrl)
	store := snapshot.NewStore()

	gomock.InOrder(
		api.EXPECT().FetchCoins(gomock.Any()).Return(coins, nil),
		api.EXPECT().FetchCoins(gomock.Any()).Return(nil, errs.ErrNetwork),
	)
	icons.EXPECT().EnsureCached(gomock.Any(), gomock.Any()).Return(images.Result{}).Times(1)

	svc := fetch.NewService(api, store, icons, nil, slog.Default())
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _ := store.Snapshot()

	if err := svc.Refresh(ctx); !errors.Is(err, errs.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	after, ok := store.Snapshot()
	if !ok || len(after.Coins) != 2 || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("snapshot changed after failed fetch: %+v", after)
	}
}

// SaveError: запись в БД упала, но цикл не падает и иконки качаются
func TestRefresh_SaveErrorIsNotFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := fetchmocks.NewMockCoinProvider(ctrl)
	store := fetchmocks.NewMockSnapshotPublisher(ctrl)
	icons := fetchmocks.NewMockIconCache(ctrl)
	repo := fetchmocks.NewMockSnapshotRepository(ctrl)

	api.EXPECT().FetchCoins(gomock.Any()).Return(coins, nil)
	store.EXPECT().Publish(coins)
	repo.EXPECT().SaveSnapshot(gomock.Any(), coins, gomock.Any()).Return(errors.New("insert failed"))
	icons.EXPECT().EnsureCached(gomock.Any(), coins).Return(images.Result{Scheduled: 2, Downloaded: 1, Failed: 1})

	svc := fetch.NewService(api, store, icons, repo, slog.Default())
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRestore_PublishesPersistedSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	at := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	store := fetchmocks.NewMockSnapshotPublisher(ctrl)
	repo := fetchmocks.NewMockSnapshotRepository(ctrl)

	store.EXPECT().Current().Return(nil, false)
	repo.EXPECT().LoadSnapshot(gomock.Any()).Return(coins, at, nil)
	store.EXPECT().PublishAt(coins, at)

	svc := fetch.NewService(fetchmocks.NewMockCoinProvider(ctrl), store, fetchmocks.NewMockIconCache(ctrl), repo, slog.Default())
	if err := svc.Restore(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Снимок уже есть - в БД не ходим
func TestRestore_SkipsWhenSnapshotPresent(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := fetchmocks.NewMockSnapshotPublisher(ctrl)
	repo := fetchmocks.NewMockSnapshotRepository(ctrl)

	store.EXPECT().Current().Return(coins, true)
	repo.EXPECT().LoadSnapshot(gomock.Any()).Times(0)

	svc := fetch.NewService(fetchmocks.NewMockCoinProvider(ctrl), store, fetchmocks.NewMockIconCache(ctrl), repo, slog.Default())
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRestore_EmptyAndErrors(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := fetchmocks.NewMockSnapshotPublisher(ctrl)
	repo := fetchmocks.NewMockSnapshotRepository(ctrl)

	store.EXPECT().Current().Return(nil, false).Times(2)
	gomock.InOrder(
		repo.EXPECT().LoadSnapshot(gomock.Any()).Return(nil, time.Time{}, nil),
		repo.EXPECT().LoadSnapshot(gomock.Any()).Return(nil, time.Time{}, errors.New("db down")),
	)
	store.EXPECT().PublishAt(gomock.Any(), gomock.Any()).Times(0)

	svc := fetch.NewService(fetchmocks.NewMockCoinProvider(ctrl), store, fetchmocks.NewMockIconCache(ctrl), repo, slog.Default())
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Restore(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Без репозитория Restore ничего не делает
func TestRestore_NoRepository(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := fetch.NewService(fetchmocks.NewMockCoinProvider(ctrl), fetchmocks.NewMockSnapshotPublisher(ctrl), fetchmocks.NewMockIconCache(ctrl), nil, slog.Default())
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
