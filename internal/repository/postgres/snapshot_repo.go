package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/NastyaGoryachaya/coin-ticker-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepo — хранит только последний снимок тикера (по строке на монету), без истории.
type SnapshotRepo struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository - Создаёт репозиторий снимка на основе пула соединений.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

const createTable = `
	CREATE TABLE IF NOT EXISTS coin_snapshot (
		id              TEXT PRIMARY KEY,
		rank            INTEGER NOT NULL,
		name            TEXT NOT NULL,
		symbol          TEXT NOT NULL,
		price           TEXT NOT NULL,
		market_cap      TEXT NOT NULL,
		volume_24h      TEXT NOT NULL,
		change_1h       TEXT NOT NULL,
		change_1h_dir   TEXT NOT NULL,
		change_24h      TEXT NOT NULL,
		change_24h_dir  TEXT NOT NULL,
		change_7d       TEXT NOT NULL,
		change_7d_dir   TEXT NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`

// Migrate — создаёт таблицу, если её нет.
func (r *SnapshotRepo) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createTable)
	return err
}

// SaveSnapshot — заменяет сохранённый снимок целиком в одной транзакции.
func (r *SnapshotRepo) SaveSnapshot(ctx context.Context, coins []domain.Coin, at time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM coin_snapshot`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	rows := make([][]any, 0, len(coins))
	for _, c := range coins {
		rows = append(rows, []any{
			c.ID, c.Rank, c.Name, c.Symbol, c.Price, c.MarketCap, c.Volume24h,
			c.Change1h.Value, string(c.Change1h.Direction),
			c.Change24h.Value, string(c.Change24h.Direction),
			c.Change7d.Value, string(c.Change7d.Direction),
			at,
		})
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"coin_snapshot"},
		[]string{"id", "rank", "name", "symbol", "price", "market_cap", "volume_24h",
			"change_1h", "change_1h_dir", "change_24h", "change_24h_dir", "change_7d", "change_7d_dir",
			"updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy snapshot: %w", err)
	}
	return tx.Commit(ctx)
}

// LoadSnapshot — сохранённый снимок в порядке ранга. Пустой результат, если снимка нет.
func (r *SnapshotRepo) LoadSnapshot(ctx context.Context) ([]domain.Coin, time.Time, error) {
	const query = `
		SELECT id, rank, name, symbol, price, market_cap, volume_24h,
		       change_1h, change_1h_dir, change_24h, change_24h_dir, change_7d, change_7d_dir,
		       updated_at
		FROM coin_snapshot
		ORDER BY rank, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	var (
		out []domain.Coin
		at  time.Time
	)
	for rows.Next() {
		var (
			c              domain.Coin
			d1h, d24h, d7d string
		)
		if err := rows.Scan(&c.ID, &c.Rank, &c.Name, &c.Symbol, &c.Price, &c.MarketCap, &c.Volume24h,
			&c.Change1h.Value, &d1h, &c.Change24h.Value, &d24h, &c.Change7d.Value, &d7d, &at); err != nil {
			return nil, time.Time{}, err
		}
		c.Change1h.Direction = domain.Direction(d1h)
		c.Change24h.Direction = domain.Direction(d24h)
		c.Change7d.Direction = domain.Direction(d7d)
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, time.Time{}, rows.Err()
	}
	return out, at, nil
}
