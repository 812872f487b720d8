package botfmt

import (
	"fmt"
	"html"
	"strings"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/query"
)

// FormatItem — HTML для Telegram: "#1 <u>Bit</u>coin <i>(<u>B</u>TC) <b>6514.5$</b></i>" и строка изменений
func FormatItem(it query.DisplayItem) string {
	return fmt.Sprintf("#%d %s <i>(%s) <b>%s$</b></i>\nChange: <i>%s/%s/%s</i>, Cap: <i>%s</i>, Volume: <i>%s</i>",
		it.Rank,
		Highlight(it.Name),
		Highlight(it.Symbol),
		html.EscapeString(it.Price),
		FormatChange(it.Change1h),
		FormatChange(it.Change24h),
		FormatChange(it.Change7d),
		html.EscapeString(it.MarketCap),
		html.EscapeString(it.Volume24h),
	)
}

// FormatList — несколько элементов, разделённых пустой строкой
func FormatList(items []query.DisplayItem) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatItem(it))
	}
	return b.String()
}

// Highlight — подчёркивает совпавшую часть поля
func Highlight(t query.Text) string {
	sp := t.Highlight
	if sp.Empty() || sp.Start < 0 || sp.End > len(t.Value) {
		return html.EscapeString(t.Value)
	}
	return html.EscapeString(t.Value[:sp.Start]) +
		"<u>" + html.EscapeString(t.Value[sp.Start:sp.End]) + "</u>" +
		html.EscapeString(t.Value[sp.End:])
}

// FormatChange — стрелка по направлению: в Telegram нет цвета шрифта
func FormatChange(c domain.Change) string {
	v := html.EscapeString(c.Value)
	switch c.Direction {
	case domain.DirectionPositive:
		return "▲" + v
	case domain.DirectionNegative:
		return "▼" + v
	default:
		return v
	}
}
