package query

import (
	"strings"
	"unicode/utf8"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/consts"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
)

// Span - подсвеченная часть поля, байтовые смещения [Start, End).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty - совпадения в поле нет.
func (s Span) Empty() bool { return s.End <= s.Start }

// Text - поле вместе с подсветкой совпадения
type Text struct {
	Value     string `json:"value"`
	Highlight Span   `json:"highlight"`
}

// Action - действие для элемента выдачи
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// DisplayItem - элемент выдачи. Разметку строит транспорт.
type DisplayItem struct {
	ID        string        `json:"id"`
	Rank      int           `json:"rank"`
	Name      Text          `json:"name"`
	Symbol    Text          `json:"symbol"`
	Price     string        `json:"price"`
	Change1h  domain.Change `json:"change_1h"`
	Change24h domain.Change `json:"change_24h"`
	Change7d  domain.Change `json:"change_7d"`
	MarketCap string        `json:"market_cap"`
	Volume24h string        `json:"volume_24h"`
	Icon      string        `json:"icon"`
	Action    Action        `json:"action"`
}

// IconResolver - путь к иконке монеты (кэш или иконка по умолчанию)
type IconResolver interface {
	IconPath(id string) string
}

type Matcher struct {
	icons   IconResolver
	pageURL string
}

// NewMatcher - pageURL это база ссылки на страницу монеты, пусто - coinmarketcap.com.
func NewMatcher(icons IconResolver, pageURL string) *Matcher {
	if pageURL == "" {
		pageURL = consts.PageURL
	}
	if !strings.HasSuffix(pageURL, "/") {
		pageURL += "/"
	}
	return &Matcher{icons: icons, pageURL: pageURL}
}

// Match - монеты, у которых имя или символ начинается с запроса (без учёта регистра).
// Пустой запрос возвращает все монеты. Порядок снимка сохраняется.
func (m *Matcher) Match(query string, coins []domain.Coin) []DisplayItem {
	q := strings.TrimSpace(query)
	items := make([]DisplayItem, 0, len(coins))
	for _, coin := range coins {
		if q == "" {
			items = append(items, m.item(coin, Span{}, Span{}))
			continue
		}
		nameSpan, nameOK := prefixFold(coin.Name, q)
		symSpan, symOK := prefixFold(coin.Symbol, q)
		if !nameOK && !symOK {
			continue
		}
		items = append(items, m.item(coin, nameSpan, symSpan))
	}
	return items
}

func (m *Matcher) item(c domain.Coin, name, symbol Span) DisplayItem {
	return DisplayItem{
		ID:        c.ID,
		Rank:      c.Rank,
		Name:      Text{Value: c.Name, Highlight: name},
		Symbol:    Text{Value: c.Symbol, Highlight: symbol},
		Price:     c.Price,
		Change1h:  c.Change1h,
		Change24h: c.Change24h,
		Change7d:  c.Change7d,
		MarketCap: c.MarketCap,
		Volume24h: c.Volume24h,
		Icon:      m.icons.IconPath(c.ID),
		Action: Action{
			Label: consts.ActionLabel,
			URL:   m.pageURL + c.ID + "/",
		},
	}
}

// prefixFold - начинается ли s с prefix без учёта регистра; Span в байтах s.
func prefixFold(s, prefix string) (Span, bool) {
	i := 0
	for j := 0; j < len(prefix); {
		if i >= len(s) {
			return Span{}, false
		}
		pr, psize := utf8.DecodeRuneInString(prefix[j:])
		sr, size := utf8.DecodeRuneInString(s[i:])
		// невалидный UTF-8 сравниваем побайтно
		if (pr == utf8.RuneError && psize == 1) || (sr == utf8.RuneError && size == 1) {
			if psize != size || s[i] != prefix[j] {
				return Span{}, false
			}
		} else if sr != pr && !strings.EqualFold(string(sr), string(pr)) {
			return Span{}, false
		}
		i += size
		j += psize
	}
	return Span{Start: 0, End: i}, true
}
