package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/config"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/infra/api_client"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/infra/db"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/plugin"
	repopg "github.com/NastyaGoryachaya/coin-ticker-service/internal/repository/postgres"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/scheduler"
	fetchsvc "github.com/NastyaGoryachaya/coin-ticker-service/internal/service/fetch"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/images"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/query"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/snapshot"
	botpkg "github.com/NastyaGoryachaya/coin-ticker-service/internal/transport/bot"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/transport/httptransport"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type App struct {
	cfg *config.Config
	log *slog.Logger

	db   *pgxpool.Pool
	e    *echo.Echo
	serv *http.Server

	store  *snapshot.Store
	icons  *images.Cache
	fetch  fetchsvc.Service
	plugin *plugin.Plugin

	bot *botpkg.Bot
}

func NewApp(cfg *config.Config, log *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	cacheDir, err := cfg.Cache.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}

	provider := api_client.NewClient(cfg.CoinMarketCap)
	app.store = snapshot.NewStore()
	app.icons = images.NewCache(images.Config{
		Dir:         cacheDir,
		BaseURL:     cfg.CoinMarketCap.ImageBaseURL,
		DefaultIcon: cfg.Cache.DefaultIcon,
		Workers:     cfg.Cache.Workers,
		Timeout:     cfg.Cache.Timeout,
	}, log)

	// интерфейс, а не *SnapshotRepo: nil должен остаться nil
	var repo fetchsvc.SnapshotRepository
	if cfg.Postgres.Enabled {
		pool, err := db.NewPool(&cfg.Postgres)
		if err != nil {
			return nil, err
		}
		app.db = pool

		snapRepo := repopg.NewSnapshotRepository(pool)
		migrateCtx, cancel := context.WithTimeout(context.Background(), cfg.Postgres.Timeout)
		err = snapRepo.Migrate(migrateCtx)
		cancel()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate snapshot table: %w", err)
		}
		repo = snapRepo
	}

	app.fetch = fetchsvc.NewService(provider, app.store, app.icons, repo, log)

	var runner plugin.Runner
	if cfg.Scheduler.Enabled {
		runner = scheduler.NewScheduler(app.fetch, cfg.Scheduler.Interval, log)
	}

	matcher := query.NewMatcher(app.icons, cfg.CoinMarketCap.PageURL)
	app.plugin = plugin.New(app.store, app.fetch, runner, matcher, cfg.Query.Trigger, log)

	if cfg.Server.Enabled {
		e := echo.New()
		e.HideBanner = true
		app.e = e

		qh := httptransport.NewQueryHandler(log, app.plugin, app.icons, cfg.Query.MaxItems)
		qh.RegisterRoutes(e)

		app.serv = &http.Server{
			Addr:         cfg.Server.Addr,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
			Handler:      e,
		}
	}

	if cfg.Telegram.Enabled {
		// Если бот включён, отсутствие токена — ошибка конфигурации
		tgCfg := cfg.Telegram
		tgCfg.Token = strings.TrimSpace(tgCfg.Token)
		if tgCfg.Token == "" {
			log.Error("telegram enabled but TELEGRAM_BOT_TOKEN is empty")
			app.closeDB()
			return nil, errors.New("telegram token is empty")
		}

		botApp, err := botpkg.New(tgCfg, app.plugin, log)
		if err != nil {
			log.Error("telegram init failed", slog.Any("err", err))
			app.closeDB()
			return nil, err
		}
		app.bot = botApp
	}

	log.Info("app initialized",
		slog.String("cache_dir", cacheDir),
		slog.Bool("postgres_enabled", cfg.Postgres.Enabled),
		slog.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
		slog.Bool("http_enabled", cfg.Server.Enabled),
		slog.Bool("telegram_enabled", cfg.Telegram.Enabled),
	)
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	a.plugin.Initialize(ctx)

	if a.bot != nil {
		a.log.Info("starting bot")
		a.bot.Start(ctx)
	}

	if a.e != nil {
		a.log.Info("starting server", slog.String("addr", a.cfg.Server.Addr))
		go func() {
			if err := a.e.StartServer(a.serv); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("http server error", slog.Any("err", err))
			}
		}()
	}

	<-ctx.Done()
	return a.Shutdown(context.Background())
}

func (a *App) Shutdown(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if a.e != nil {
		if err := a.e.Shutdown(shCtx); err != nil {
			a.log.Error("http shutdown error", slog.Any("err", err))
		}
	}

	if a.bot != nil {
		a.bot.Stop()
	}

	// ждём текущий цикл обновления, только потом закрываем пул
	a.plugin.Finalize()
	a.closeDB()

	a.log.Info("application stopped")
	return nil
}

func (a *App) closeDB() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}
