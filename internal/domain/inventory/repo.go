package inventory

import (
	"context"
	"fmt"

	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) q(q db.DBTX) db.DBTX {
	if q == nil {
		return r.pool
	}
	return q
}

// insert шапка и строки проводки. Номер уже выдан вызывающим.
func (r *Repo) insert(ctx context.Context, q db.DBTX, t *Transaction) error {
	if err := q.QueryRow(ctx, `
		INSERT INTO warehouse_transactions (number, date, warehouse_id, direction, note)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, t.Number, t.Date, t.WarehouseID, string(t.Direction), t.Note).Scan(&t.ID, &t.CreatedAt); err != nil {
		return err
	}
	for _, it := range t.Items {
		if _, err := q.Exec(ctx, `
			INSERT INTO warehouse_transaction_items (transaction_id, product_id, quantity, unit_cost)
			VALUES ($1,$2,$3,$4)
		`, t.ID, it.ProductID, it.Quantity, it.UnitCost); err != nil {
			return err
		}
	}
	return nil
}

// applyDelta атомарная дельта по паре склад/товар. Новая строка стартует
// с начального остатка товара. Возвращает остаток после изменения.
func (r *Repo) applyDelta(ctx context.Context, q db.DBTX, warehouseID, productID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := q.QueryRow(ctx, `
		INSERT INTO stock_balances (warehouse_id, product_id, quantity)
		SELECT $1, p.id, p.opening_balance + $3 FROM products p WHERE p.id = $2
		ON CONFLICT (warehouse_id, product_id)
		DO UPDATE SET quantity = stock_balances.quantity + $3, updated_at = now()
		RETURNING quantity
	`, warehouseID, productID, delta).Scan(&qty)
	return qty, err
}

func (r *Repo) warehouseActive(ctx context.Context, q db.DBTX, id int64) (exists, active bool, err error) {
	err = q.QueryRow(ctx, `SELECT active FROM warehouses WHERE id = $1`, id).Scan(&active)
	if err == pgx.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, active, nil
}

func (r *Repo) productExists(ctx context.Context, q db.DBTX, id int64) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// Balance текущий остаток; если движений не было, это начальный остаток товара.
func (r *Repo) Balance(ctx context.Context, q db.DBTX, warehouseID, productID int64) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.q(q).QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT quantity FROM stock_balances WHERE warehouse_id = $1 AND product_id = $2),
			(SELECT opening_balance FROM products WHERE id = $2),
			0)
	`, warehouseID, productID).Scan(&qty)
	return qty, err
}

// lockBalance заводит строку остатка, если её нет, и держит её до конца транзакции.
// Пока идёт пересчёт инвентаризации, параллельная проводка по товару ждёт.
func (r *Repo) lockBalance(ctx context.Context, tx pgx.Tx, warehouseID, productID int64) (decimal.Decimal, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_balances (warehouse_id, product_id, quantity)
		SELECT $1, p.id, p.opening_balance FROM products p WHERE p.id = $2
		ON CONFLICT (warehouse_id, product_id) DO NOTHING
	`, warehouseID, productID); err != nil {
		return decimal.Zero, err
	}
	var qty decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT quantity FROM stock_balances
		WHERE warehouse_id = $1 AND product_id = $2
		FOR UPDATE
	`, warehouseID, productID).Scan(&qty)
	if err == pgx.ErrNoRows {
		return decimal.Zero, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	return qty, err
}

func (r *Repo) ListBalances(ctx context.Context, warehouseID int64) ([]Balance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.warehouse_id, b.product_id, p.code, p.name, b.quantity, b.updated_at
		FROM stock_balances b
		JOIN products p ON p.id = b.product_id
		WHERE b.warehouse_id = $1
		ORDER BY p.code
	`, warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.WarehouseID, &b.ProductID, &b.ProductCode, &b.ProductName, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Moves история по паре в хронологическом порядке (date, id).
func (r *Repo) Moves(ctx context.Context, warehouseID, productID int64) ([]Move, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.number, t.date, t.direction, i.quantity
		FROM warehouse_transaction_items i
		JOIN warehouse_transactions t ON t.id = i.transaction_id
		WHERE t.warehouse_id = $1 AND i.product_id = $2
		ORDER BY t.date, t.id, i.id
	`, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Move
	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.TransactionID, &m.Number, &m.Date, &m.Direction, &m.Quantity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) Opening(ctx context.Context, productID int64) (decimal.Decimal, bool, error) {
	var d decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT opening_balance FROM products WHERE id = $1`, productID).Scan(&d)
	if err == pgx.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Transaction, error) {
	var t Transaction
	err := r.pool.QueryRow(ctx, `
		SELECT id, number, date, warehouse_id, direction, note, created_at
		FROM warehouse_transactions WHERE id = $1
	`, id).Scan(&t.ID, &t.Number, &t.Date, &t.WarehouseID, &t.Direction, &t.Note, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT product_id, quantity, unit_cost
		FROM warehouse_transaction_items
		WHERE transaction_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitCost); err != nil {
			return nil, err
		}
		t.Items = append(t.Items, it)
	}
	return &t, rows.Err()
}

const expectedSQL = `
	WITH moved AS (
		SELECT t.warehouse_id, i.product_id,
		       SUM(CASE WHEN t.direction = 'in' THEN i.quantity ELSE -i.quantity END) AS delta
		FROM warehouse_transaction_items i
		JOIN warehouse_transactions t ON t.id = i.transaction_id
		GROUP BY t.warehouse_id, i.product_id
	)
	SELECT COALESCE(b.warehouse_id, m.warehouse_id),
	       COALESCE(b.product_id, m.product_id),
	       COALESCE(b.quantity, p.opening_balance),
	       p.opening_balance + COALESCE(m.delta, 0)
	FROM stock_balances b
	FULL JOIN moved m ON m.warehouse_id = b.warehouse_id AND m.product_id = b.product_id
	JOIN products p ON p.id = COALESCE(b.product_id, m.product_id)
	WHERE COALESCE(b.quantity, p.opening_balance) <> p.opening_balance + COALESCE(m.delta, 0)
	ORDER BY 1, 2
`

// Mismatches пары, где поддерживаемый остаток не равен opening + Σприход − Σрасход.
func (r *Repo) Mismatches(ctx context.Context) ([]Mismatch, error) {
	rows, err := r.pool.Query(ctx, expectedSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Mismatch
	for rows.Next() {
		var m Mismatch
		if err := rows.Scan(&m.WarehouseID, &m.ProductID, &m.Maintained, &m.Expected); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// setBalance перезаписывает остаток пересчитанным значением (reconcile --fix).
func (r *Repo) setBalance(ctx context.Context, q db.DBTX, warehouseID, productID int64, qty decimal.Decimal) error {
	_, err := q.Exec(ctx, `
		INSERT INTO stock_balances (warehouse_id, product_id, quantity)
		VALUES ($1,$2,$3)
		ON CONFLICT (warehouse_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
	`, warehouseID, productID, qty)
	return err
}
