package httptransport

import (
	"errors"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/coin-ticker-service/internal/errors"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/plugin"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/ports/errcode"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/images"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/query"
	"github.com/labstack/echo/v4"
)

var errBadLimit = errors.New("invalid limit")

// QueryService — то, что хендлеру нужно от плагина.
type QueryService interface {
	HandleQuery(triggered bool, q string) []query.DisplayItem
	SplitTrigger(raw string) (bool, string)
	Ready() bool
	Status() plugin.Status
	Coin(id string) (domain.Coin, bool)
}

// Icons — путь к иконке монеты
type Icons interface {
	IconPath(id string) string
}

// QueryHandler — HTTP‑хост плагина: поиск монет, иконки, health.
type QueryHandler struct {
	logger   *slog.Logger
	svc      QueryService
	icons    Icons
	maxItems int
}

func NewQueryHandler(logger *slog.Logger, svc QueryService, icons Icons, maxItems int) *QueryHandler {
	if logger == nil {
		log.Fatal("nil logger")
	}
	if svc == nil {
		log.Fatal("nil service")
	}
	return &QueryHandler{
		logger:   logger,
		svc:      svc,
		icons:    icons,
		maxItems: maxItems,
	}
}

func (h *QueryHandler) RegisterRoutes(r interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}) {
	r.GET("/query", h.Query)
	r.GET("/coins", h.Coins)
	r.GET("/coins/:id", h.CoinByID)
	r.GET("/icons/:id", h.Icon)
	r.GET("/health", h.Health)
}

// Query — сырой ввод вместе с триггером: /query?q=cmc%20bit
func (h *QueryHandler) Query(c echo.Context) error {
	triggered, q := h.svc.SplitTrigger(c.QueryParam("q"))
	if !triggered {
		return c.JSON(http.StatusOK, []query.DisplayItem{})
	}
	return h.respond(c, q)
}

// Coins — поиск без триггера: /coins?q=bit
func (h *QueryHandler) Coins(c echo.Context) error {
	return h.respond(c, c.QueryParam("q"))
}

func (h *QueryHandler) respond(c echo.Context, q string) error {
	limit, err := h.limit(c.QueryParam("limit"))
	if err != nil {
		return writeError(c, errcode.BadRequest, echo.Map{"param": "limit"})
	}
	if !h.svc.Ready() {
		return writeError(c, FromServiceError(errs.ErrSnapshotNotReady), nil)
	}

	items := h.svc.HandleQuery(true, q)
	if items == nil {
		items = []query.DisplayItem{}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	h.logger.Debug("query handled", slog.String("q", q), slog.Int("items", len(items)))
	return c.JSON(http.StatusOK, items)
}

// limit — limit из запроса, не больше maxItems из конфига.
func (h *QueryHandler) limit(raw string) (int, error) {
	limit := h.maxItems
	if raw == "" {
		return limit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errBadLimit
	}
	if n > 0 && (limit == 0 || n < limit) {
		limit = n
	}
	return limit, nil
}

func (h *QueryHandler) CoinByID(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if !h.svc.Ready() {
		return writeError(c, errcode.SnapshotNotReady, nil)
	}
	coin, ok := h.svc.Coin(id)
	if !ok {
		return writeError(c, errcode.NotFoundCoins, echo.Map{"id": id})
	}
	return c.JSON(http.StatusOK, coin)
}

// Icon — закэшированная иконка либо иконка по умолчанию
func (h *QueryHandler) Icon(c echo.Context) error {
	id := c.Param("id")
	if err := images.ValidID(id); err != nil {
		return writeError(c, FromServiceError(err), echo.Map{"id": id})
	}
	if h.icons == nil {
		return writeError(c, errcode.NotFoundCoins, echo.Map{"id": id})
	}
	return c.File(h.icons.IconPath(id))
}

func (h *QueryHandler) Health(c echo.Context) error {
	st := h.svc.Status()
	code := http.StatusOK
	if !st.Ready {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, st)
}

func writeError(c echo.Context, code errcode.Code, extra echo.Map) error {
	body := echo.Map{}
	for k, v := range extra {
		body[k] = v
	}
	switch code {
	case errcode.SnapshotNotReady:
		body["error"] = "snapshot_not_ready"
		return c.JSON(http.StatusServiceUnavailable, body)
	case errcode.NotFoundCoins:
		body["error"] = "coin_not_found"
		return c.JSON(http.StatusNotFound, body)
	case errcode.BadRequest:
		body["error"] = "bad_request"
		return c.JSON(http.StatusBadRequest, body)
	default:
		body["error"] = "internal_server_error"
		return c.JSON(http.StatusInternalServerError, body)
	}
}
