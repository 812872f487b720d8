package api_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/config"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/coin-ticker-service/internal/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Client struct {
	cfg        config.CoinMarketCapConfig
	httpClient *http.Client
	printer    *message.Printer
}

// NewClient - Создаёт нового клиента для работы с тикером CoinMarketCap.
func NewClient(cfg config.CoinMarketCapConfig) *Client {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.English
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		printer: message.NewPrinter(tag),
	}
}

// FetchCoins — получает полный список монет одним запросом /v1/ticker/?limit=0
func (c *Client) FetchCoins(ctx context.Context) ([]domain.Coin, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u = u.JoinPath("v1", "ticker/")

	q := u.Query()
	q.Set("limit", "0")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	ua := c.cfg.UserAgent
	if ua == "" {
		ua = "coin-ticker-service/1.0 (+https://github.com/NastyaGoryachaya/coin-ticker-service)"
	}
	req.Header.Set("User-Agent", ua)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", errs.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", errs.ErrHTTPStatus, resp.Status)
	}

	var data []tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", errs.ErrParse, err)
	}
	// null декодируется в nil-срез: это не пустой тикер, а битый ответ
	if data == nil {
		return nil, fmt.Errorf("%w: response is not an array", errs.ErrParse)
	}

	result := make([]domain.Coin, 0, len(data))
	for i, d := range data {
		coin, err := d.toCoin(i, c.printer)
		if err != nil {
			return nil, err
		}
		result = append(result, coin)
	}
	return result, nil
}
