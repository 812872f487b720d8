package consts

import "time"

const (
	// RefreshInterval - пауза между циклами обновления тикера
	RefreshInterval = 15 * time.Minute

	// ImageWorkers - сколько иконок качаем параллельно
	ImageWorkers = 40

	// CacheNamespace - подкаталог кэша для иконок
	CacheNamespace = "coinmarketcap"

	// Trigger - префикс запроса, на который отвечает плагин
	Trigger = "cmc "

	ActionLabel = "Show on CoinMarketCap website"
	PageURL     = "https://coinmarketcap.com/currencies/"
)
