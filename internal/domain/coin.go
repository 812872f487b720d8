package domain

// Unknown - значение-заглушка для полей, которые провайдер не прислал (null).
const Unknown = "?"

// Direction - направление изменения цены, по нему UI выбирает цвет.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
	DirectionNeutral  Direction = "neutral"
	DirectionUnknown  Direction = "unknown"
)

// Change - изменение цены в процентах за период (1ч, 24ч, 7д)
type Change struct {
	Value     string    `json:"value"`     // Текст как прислал провайдер, либо Unknown
	Direction Direction `json:"direction"` // positive|negative|neutral|unknown
}

// UnknownChange - изменение без данных.
func UnknownChange() Change {
	return Change{Value: Unknown, Direction: DirectionUnknown}
}

// Coin - снимок данных по одной криптовалюте. Запись неизменяемая.
type Coin struct {
	ID        string `json:"id"`         // Идентификатор провайдера (bitcoin, ethereum)
	Name      string `json:"name"`       // Bitcoin
	Symbol    string `json:"symbol"`     // BTC
	Rank      int    `json:"rank"`       // Место по капитализации, с 1
	Price     string `json:"price"`      // Цена в USD
	MarketCap string `json:"market_cap"` // Капитализация с разделителями разрядов или Unknown
	Volume24h string `json:"volume_24h"` // Объём за 24ч или Unknown
	Change1h  Change `json:"change_1h"`
	Change24h Change `json:"change_24h"`
	Change7d  Change `json:"change_7d"`
}
