package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/consts"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/coin-ticker-service/internal/errors"
	"golang.org/x/sync/errgroup"
)

const iconPathPrefix = "static/img/coins/128x128"

type Config struct {
	Dir         string        // Каталог кэша
	BaseURL     string        // https://files.coinmarketcap.com
	DefaultIcon string        // Иконка, если своей у монеты нет
	Workers     int           // Лимит параллельных загрузок
	Timeout     time.Duration // Таймаут одной загрузки
}

// Result - итог одного вызова EnsureCached
type Result struct {
	Scheduled  int
	Downloaded int
	Failed     int
}

// Cache - локальный кэш иконок монет: <dir>/<id>.png
type Cache struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewCache(cfg Config, logger *slog.Logger) *Cache {
	if cfg.Workers <= 0 {
		cfg.Workers = consts.ImageWorkers
	}
	return &Cache{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Dir - каталог кэша.
func (c *Cache) Dir() string { return c.cfg.Dir }

// Path - ожидаемый путь иконки монеты.
func (c *Cache) Path(id string) string {
	return filepath.Join(c.cfg.Dir, id+".png")
}

// IconPath - путь к закэшированной иконке, иначе иконка по умолчанию.
func (c *Cache) IconPath(id string) string {
	if ValidID(id) != nil {
		return c.cfg.DefaultIcon
	}
	p := c.Path(id)
	if fileExists(p) {
		return p
	}
	return c.cfg.DefaultIcon
}

// EnsureCached - докачивает недостающие иконки. Ошибки по отдельным монетам только логируются.
func (c *Cache) EnsureCached(ctx context.Context, coins []domain.Coin) Result {
	if err := os.MkdirAll(c.cfg.Dir, 0o755); err != nil {
		c.logger.Error("images: create cache dir failed",
			slog.String("dir", c.cfg.Dir),
			slog.Any("err", fmt.Errorf("%w: %w", errs.ErrFilesystem, err)),
		)
		return Result{}
	}

	var res Result
	var downloaded, failed atomic.Int64
	started := time.Now()

	g := new(errgroup.Group)
	g.SetLimit(c.cfg.Workers)

	for _, coin := range coins {
		id := coin.ID
		if err := ValidID(id); err != nil {
			c.logger.Warn("images: skip coin", slog.String("id", id), slog.Any("err", err))
			failed.Add(1)
			continue
		}
		dst := c.Path(id)
		if fileExists(dst) {
			continue
		}
		res.Scheduled++
		g.Go(func() error {
			if err := c.download(ctx, id, dst); err != nil {
				c.logger.Warn("images: download failed", slog.String("id", id), slog.Any("err", err))
				failed.Add(1)
				return nil
			}
			downloaded.Add(1)
			return nil
		})
	}
	// ошибки не возвращаются: одна неудачная загрузка не отменяет остальные
	_ = g.Wait()

	res.Downloaded = int(downloaded.Load())
	res.Failed = int(failed.Load())
	c.logger.Debug("images: cache updated",
		slog.Int("scheduled", res.Scheduled),
		slog.Int("downloaded", res.Downloaded),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", time.Since(started)),
	)
	return res
}

func (c *Cache) imageURL(id string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid image base URL: %w", err)
	}
	return u.JoinPath(iconPathPrefix, id+".png").String(), nil
}

// download - скачивает во временный файл и переименовывает, чтобы недокачанный файл не считался кэшем.
func (c *Cache) download(ctx context.Context, id, dst string) error {
	src, err := c.imageURL(id)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", errs.ErrHTTPStatus, resp.Status)
	}

	tmp, err := os.CreateTemp(c.cfg.Dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrFilesystem, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %w", errs.ErrFilesystem, id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrFilesystem, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrFilesystem, err)
	}
	return nil
}

// ValidID - id используется как имя файла, поэтому без разделителей пути.
func ValidID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || filepath.Base(id) != id {
		return fmt.Errorf("%w: %q", errs.ErrInvalidID, id)
	}
	return nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
