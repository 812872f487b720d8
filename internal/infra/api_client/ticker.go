package api_client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/coin-ticker-service/internal/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/message"
)

// field - значение тикера. v1 API отдаёт числа строками, но может прислать число или null.
type field struct {
	Value string
	Valid bool
}

func (f *field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = field{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = field{Value: s, Valid: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = field{Value: n.String(), Valid: true}
	return nil
}

// tickerResponse - один элемент ответа /v1/ticker/
type tickerResponse struct {
	ID               field `json:"id"`
	Name             field `json:"name"`
	Symbol           field `json:"symbol"`
	Rank             field `json:"rank"`
	PriceUSD         field `json:"price_usd"`
	MarketCapUSD     field `json:"market_cap_usd"`
	Volume24hUSD     field `json:"24h_volume_usd"`
	PercentChange1h  field `json:"percent_change_1h"`
	PercentChange24h field `json:"percent_change_24h"`
	PercentChange7d  field `json:"percent_change_7d"`
}

// toCoin - валидирует обязательные поля и нормализует числовые.
func (t tickerResponse) toCoin(idx int, p *message.Printer) (domain.Coin, error) {
	required := []struct {
		name string
		f    field
	}{
		{"id", t.ID},
		{"name", t.Name},
		{"symbol", t.Symbol},
		{"rank", t.Rank},
		{"price_usd", t.PriceUSD},
	}
	for _, r := range required {
		if !r.f.Valid || strings.TrimSpace(r.f.Value) == "" {
			return domain.Coin{}, fmt.Errorf("%w: %w: coin[%d].%s", errs.ErrParse, errs.ErrMissingField, idx, r.name)
		}
	}

	rank, err := strconv.Atoi(strings.TrimSpace(t.Rank.Value))
	if err != nil {
		return domain.Coin{}, fmt.Errorf("%w: coin[%d].rank %q", errs.ErrParse, idx, t.Rank.Value)
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(t.PriceUSD.Value)); err != nil {
		return domain.Coin{}, fmt.Errorf("%w: coin[%d].price_usd %q", errs.ErrParse, idx, t.PriceUSD.Value)
	}

	return domain.Coin{
		ID:        t.ID.Value,
		Name:      t.Name.Value,
		Symbol:    t.Symbol.Value,
		Rank:      rank,
		Price:     strings.TrimSpace(t.PriceUSD.Value),
		MarketCap: groupedInt(p, t.MarketCapUSD),
		Volume24h: groupedInt(p, t.Volume24hUSD),
		Change1h:  change(t.PercentChange1h),
		Change24h: change(t.PercentChange24h),
		Change7d:  change(t.PercentChange7d),
	}, nil
}

// groupedInt - целое с разделителями разрядов по локали, дробная часть отбрасывается.
func groupedInt(p *message.Printer, f field) string {
	if !f.Valid {
		return domain.Unknown
	}
	d, err := decimal.NewFromString(strings.TrimSpace(f.Value))
	if err != nil {
		return domain.Unknown
	}
	d = d.Truncate(0)
	if d.Equal(decimal.NewFromInt(d.IntPart())) {
		return p.Sprintf("%d", d.IntPart())
	}
	return groupDigits(d.String(), groupSeparator(p))
}

// groupSeparator - разделитель разрядов локали printer'а
func groupSeparator(p *message.Printer) string {
	return strings.Trim(p.Sprintf("%d", 1000), "01")
}

// groupDigits - группировка по три для целых, не влезающих в int64
func groupDigits(s, sep string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	var b strings.Builder
	b.WriteString(sign)
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// change - процентное изменение с направлением.
func change(f field) domain.Change {
	if !f.Valid {
		return domain.UnknownChange()
	}
	s := strings.TrimSpace(f.Value)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return domain.UnknownChange()
	}
	switch d.Sign() {
	case -1:
		return domain.Change{Value: s, Direction: domain.DirectionNegative}
	case 1:
		return domain.Change{Value: s, Direction: domain.DirectionPositive}
	default:
		return domain.Change{Value: s, Direction: domain.DirectionNeutral}
	}
}
