package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/config"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/query"
	"gopkg.in/telebot.v4"
)

// QueryService — обработка запросов плагином
type QueryService interface {
	HandleQuery(triggered bool, q string) []query.DisplayItem
	Ready() bool
}

// Bot — Telegram-хост плагина
type Bot struct {
	bot      *telebot.Bot
	svc      QueryService
	maxItems int
	logger   *slog.Logger
}

// New создаёт новый экземпляр бота
func New(cfg config.TelegramConfig, svc QueryService, logger *slog.Logger) (*Bot, error) {
	pollTimeout := cfg.LongPollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}

	b, err := telebot.NewBot(telebot.Settings{
		Token:     cfg.Token,
		Poller:    &telebot.LongPoller{Timeout: pollTimeout},
		ParseMode: telebot.ModeHTML,
	})
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		bot:      b,
		svc:      svc,
		maxItems: cfg.MaxItems,
		logger:   logger,
	}

	// маршруты команд
	b.Handle("/start", bot.handleStart)
	b.Handle("/cmc", bot.handleQuery)
	return bot, nil
}

// Start запускает поллинг
func (b *Bot) Start(_ context.Context) {
	go b.bot.Start()
}

// Stop останавливает бота
func (b *Bot) Stop() {
	b.bot.Stop()
}
