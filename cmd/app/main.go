package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/app"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/config"
	"github.com/NastyaGoryachaya/coin-ticker-service/pkg/logger"
)

func main() {
	// config
	cfg, err := config.LoadConfig(config.FetchConfigPath())
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(&cfg.Logger)

	// context + signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// build application
	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("app init failed", slog.Any("err", err))
		os.Exit(1)
	}

	// run application
	if err := application.Run(ctx); err != nil {
		log.Error("application stopped with error", slog.Any("err", err))
	}

	log.Info("coin-ticker-service stopped")
}
