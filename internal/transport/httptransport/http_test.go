package httptransport_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/plugin"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/images"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/query"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/service/snapshot"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/transport/httptransport"
	"github.com/labstack/echo/v4"
)

type env struct {
	e     *echo.Echo
	store *snapshot.Store
	dir   string
}

func setup(t *testing.T, maxItems int) env {
	t.Helper()
	dir := t.TempDir()
	def := filepath.Join(dir, "default.svg")
	if err := os.WriteFile(def, []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cache := images.NewCache(images.Config{Dir: filepath.Join(dir, "icons"), DefaultIcon: def}, slog.Default())
	store := snapshot.NewStore()
	p := plugin.New(store, nil, nil, query.NewMatcher(cache, ""), "cmc ", slog.Default())

	e := echo.New()
	httptransport.NewQueryHandler(slog.Default(), p, cache, maxItems).RegisterRoutes(e)
	return env{e: e, store: store, dir: dir}
}

func do(t *testing.T, e *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var fixture = []domain.Coin{
	{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Rank: 1, Price: "6514.5"},
	{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Rank: 2, Price: "210.3"},
	{ID: "bitcoin-cash", Name: "Bitcoin Cash", Symbol: "BCH", Rank: 3, Price: "450"},
}

func decodeItems(t *testing.T, rec *httptest.ResponseRecorder) []query.DisplayItem {
	t.Helper()
	var items []query.DisplayItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v; body=%s", err, rec.Body.String())
	}
	return items
}

func TestCoins_NotReady(t *testing.T) {
	t.Parallel()
	s := setup(t, 0)
	rec := do(t, s.e, "/coins?q=b")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec := do(t, s.e, "/health"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 health, got %d", rec.Code)
	}
}

func TestCoins_Match(t *testing.T) {
	t.Parallel()
	s := setup(t, 0)
	s.store.Publish(fixture)

	rec := do(t, s.e, "/coins?q=b")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	items := decodeItems(t, rec)
	if len(items) != 2 || items[0].Rank != 1 || items[1].Rank != 3 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Name.Highlight != (query.Span{Start: 0, End: 1}) {
		t.Fatalf("unexpected highlight: %+v", items[0].Name.Highlight)
	}
	if items[0].Action.URL != "https://coinmarketcap.com/currencies/bitcoin/" {
		t.Fatalf("unexpected action: %+v", items[0].Action)
	}
}

func TestQuery_Trigger(t *testing.T) {
	t.Parallel()
	s := setup(t, 0)
	s.store.Publish(fixture)

	items := decodeItems(t, do(t, s.e, "/query?q=cmc%20eth"))
	if len(items) != 1 || items[0].ID != "ethereum" {
		t.Fatalf("unexpected items: %+v", items)
	}

	rec := do(t, s.e, "/query?q=eth")
	if rec.Code != http.StatusOK || len(decodeItems(t, rec)) != 0 {
		t.Fatalf("expected empty result without trigger, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCoins_Limit(t *testing.T) {
	t.Parallel()
	s := setup(t, 2)
	s.store.Publish(fixture)

	if items := decodeItems(t, do(t, s.e, "/coins")); len(items) != 2 {
		t.Fatalf("expected config cap of 2, got %d", len(items))
	}
	if items := decodeItems(t, do(t, s.e, "/coins?limit=1")); len(items) != 1 {
		t.Fatalf("expected 1, got %d", len(items))
	}
	if items := decodeItems(t, do(t, s.e, "/coins?limit=10")); len(items) != 2 {
		t.Fatalf("limit above cap must be capped, got %d", len(items))
	}
	if rec := do(t, s.e, "/coins?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCoinByID(t *testing.T) {
	t.Parallel()
	s := setup(t, 0)
	s.store.Publish(fixture)

	rec := do(t, s.e, "/coins/ethereum")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var c domain.Coin
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil || c.Symbol != "ETH" {
		t.Fatalf("unexpected coin: %+v err=%v", c, err)
	}
	if rec := do(t, s.e, "/coins/dogecoin"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestIcon(t *testing.T) {
	t.Parallel()
	s := setup(t, 0)
	iconDir := filepath.Join(s.dir, "icons")
	if err := os.MkdirAll(iconDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(iconDir, "bitcoin.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := do(t, s.e, "/icons/bitcoin")
	if rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Fatalf("unexpected cached icon: %d %q", rec.Code, rec.Body.String())
	}
	rec = do(t, s.e, "/icons/ethereum")
	if rec.Code != http.StatusOK || rec.Body.String() != "<svg/>" {
		t.Fatalf("expected default icon: %d %q", rec.Code, rec.Body.String())
	}
	rec = do(t, s.e, "/icons/..")
	if rec.Code != http.StatusBadRequest && rec.Code != http.StatusNotFound {
		t.Fatalf("expected rejection of invalid id, got %d", rec.Code)
	}
}

func TestHealth_Ready(t *testing.T) {
	t.Parallel()
	s := setup(t, 0)
	s.store.Publish(fixture)

	rec := do(t, s.e, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st plugin.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if !st.Ready || st.Coins != 3 || st.Scheduler != "disabled" {
		t.Fatalf("unexpected status: %+v", st)
	}
}
