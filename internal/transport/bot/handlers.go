package bot

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/pkg/botfmt"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/query"
	"gopkg.in/telebot.v4"
)

const (
	msgHelp = "Доступные команды:\n" +
		"/cmc - топ монет по капитализации\n" +
		"/cmc {запрос} - поиск по названию или символу (bit, eth)"
	msgNotReady  = "Данные ещё загружаются, попробуйте позже"
	msgNoResults = "Ничего не найдено"
)

// handleStart — отправляет справку по доступным командам бота
func (b *Bot) handleStart(c telebot.Context) error {
	return c.Send(msgHelp)
}

// handleQuery — ищет монеты и отвечает списком с кнопками-ссылками
func (b *Bot) handleQuery(c telebot.Context) error {
	q := strings.Join(c.Args(), " ")
	text, markup := b.reply(q)
	b.logger.Debug("bot: /cmc handled", slog.String("q", q))
	if markup == nil {
		return c.Send(text)
	}
	return c.Send(text, markup)
}

// reply — текст ответа и клавиатура; без Telegram, чтобы проверять в тестах
func (b *Bot) reply(q string) (string, *telebot.ReplyMarkup) {
	if !b.svc.Ready() {
		return msgNotReady, nil
	}
	items := b.svc.HandleQuery(true, q)
	if len(items) == 0 {
		return msgNoResults, nil
	}
	if b.maxItems > 0 && len(items) > b.maxItems {
		items = items[:b.maxItems]
	}
	return botfmt.FormatList(items), actionsMarkup(items)
}

// actionsMarkup — по кнопке-ссылке на элемент
func actionsMarkup(items []query.DisplayItem) *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, m.Row(m.URL("#"+strconv.Itoa(it.Rank)+" "+it.Symbol.Value, it.Action.URL)))
	}
	m.Inline(rows...)
	return m
}
