package numbering

import (
	"context"
	"errors"
	"time"

	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Counter struct {
	Prefix      string
	CurrentCode int64
	UpdatedAt   time.Time
}

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Increment атомарно увеличивает счётчик и возвращает новое значение.
// Одна инструкция: два параллельных вызова никогда не получат одно число.
// q: пул или открытая транзакция; nil значит пул.
func (r *Repo) Increment(ctx context.Context, q db.DBTX, prefix string) (int64, error) {
	if q == nil {
		q = r.pool
	}
	var seq int64
	err := q.QueryRow(ctx, `
		INSERT INTO counters (prefix, current_code)
		VALUES ($1, 1)
		ON CONFLICT (prefix) DO UPDATE
		SET current_code = counters.current_code + 1, updated_at = now()
		RETURNING current_code
	`, prefix).Scan(&seq)
	return seq, err
}

// Current текущее значение без увеличения (0, если номеров ещё не было).
func (r *Repo) Current(ctx context.Context, prefix string) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `SELECT current_code FROM counters WHERE prefix = $1`, prefix).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return seq, err
}

// Seed подтягивает счётчик вверх при переносе старых данных. Назад не двигает.
func (r *Repo) Seed(ctx context.Context, prefix string, atLeast int64) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO counters (prefix, current_code)
		VALUES ($1, $2)
		ON CONFLICT (prefix) DO UPDATE
		SET current_code = GREATEST(counters.current_code, EXCLUDED.current_code), updated_at = now()
		RETURNING current_code
	`, prefix, atLeast).Scan(&seq)
	return seq, err
}

func (r *Repo) List(ctx context.Context) ([]Counter, error) {
	rows, err := r.pool.Query(ctx, `SELECT prefix, current_code, updated_at FROM counters ORDER BY prefix`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Counter
	for rows.Next() {
		var c Counter
		if err := rows.Scan(&c.Prefix, &c.CurrentCode, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
