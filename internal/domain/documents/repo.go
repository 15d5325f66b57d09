package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/jackc/pgx/v5"
)

// Имена таблиц берутся только из kinds, пользовательский ввод в SQL не попадает.

const headerCols = `id, number, date, status, counterparty_id, warehouse_id,
	discount_percentage, subtotal, discount_amount, tax_amount, total_amount,
	payment_amount, change_amount, source_id, note, created_at, updated_at`

func scanHeader(row pgx.Row, k Kind) (*Document, error) {
	d := Document{Kind: k}
	if err := row.Scan(
		&d.ID,
		&d.Number,
		&d.Date,
		&d.Status,
		&d.CounterpartyID,
		&d.WarehouseID,
		&d.DiscountPercentage,
		&d.Subtotal,
		&d.DiscountAmount,
		&d.TaxAmount,
		&d.TotalAmount,
		&d.PaymentAmount,
		&d.ChangeAmount,
		&d.SourceID,
		&d.Note,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func insertHeader(ctx context.Context, q db.DBTX, s kindMeta, d *Document) error {
	return q.QueryRow(ctx, `
		INSERT INTO `+s.header+` (number, date, status, counterparty_id, warehouse_id,
			discount_percentage, subtotal, discount_amount, tax_amount, total_amount,
			payment_amount, change_amount, source_id, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at
	`,
		d.Number, d.Date, string(d.Status), d.CounterpartyID, d.WarehouseID,
		d.DiscountPercentage, d.Subtotal, d.DiscountAmount, d.TaxAmount, d.TotalAmount,
		d.PaymentAmount, d.ChangeAmount, d.SourceID, d.Note,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func insertItems(ctx context.Context, q db.DBTX, s kindMeta, docID int64, items []Item) error {
	for _, it := range items {
		if _, err := q.Exec(ctx, `
			INSERT INTO `+s.items+` (document_id, position, product_id, description,
				quantity, unit_price, discount_percentage, total_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, docID, it.Position, it.ProductID, it.Description,
			it.Quantity, it.UnitPrice, it.DiscountPercentage, it.TotalPrice); err != nil {
			return err
		}
	}
	return nil
}

func updateTotals(ctx context.Context, q db.DBTX, s kindMeta, d *Document) error {
	return q.QueryRow(ctx, `
		UPDATE `+s.header+` SET
			counterparty_id=$2, warehouse_id=$3, discount_percentage=$4, subtotal=$5,
			discount_amount=$6, tax_amount=$7, total_amount=$8, payment_amount=$9,
			change_amount=$10, note=$11, date=$12, updated_at=now()
		WHERE id=$1
		RETURNING updated_at
	`, d.ID, d.CounterpartyID, d.WarehouseID, d.DiscountPercentage, d.Subtotal,
		d.DiscountAmount, d.TaxAmount, d.TotalAmount, d.PaymentAmount,
		d.ChangeAmount, d.Note, d.Date).Scan(&d.UpdatedAt)
}

func setStatus(ctx context.Context, q db.DBTX, s kindMeta, id int64, st Status) error {
	_, err := q.Exec(ctx, `UPDATE `+s.header+` SET status=$2, updated_at=now() WHERE id=$1`, id, string(st))
	return err
}

// lockHeader читает шапку под FOR UPDATE, чтобы проведение и правка не гонялись.
func lockHeader(ctx context.Context, q db.DBTX, s kindMeta, k Kind, id int64) (*Document, error) {
	d, err := scanHeader(q.QueryRow(ctx, `SELECT `+headerCols+` FROM `+s.header+` WHERE id = $1 FOR UPDATE`, id), k)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: %s %d", ErrNotFound, k, id)
	}
	return d, err
}

func getHeader(ctx context.Context, q db.DBTX, s kindMeta, k Kind, id int64) (*Document, error) {
	d, err := scanHeader(q.QueryRow(ctx, `SELECT `+headerCols+` FROM `+s.header+` WHERE id = $1`, id), k)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: %s %d", ErrNotFound, k, id)
	}
	return d, err
}

func loadItems(ctx context.Context, q db.DBTX, s kindMeta, docID int64) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT position, product_id, description, quantity, unit_price, discount_percentage, total_price
		FROM `+s.items+`
		WHERE document_id = $1
		ORDER BY position
	`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Position, &it.ProductID, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.DiscountPercentage, &it.TotalPrice); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func listHeaders(ctx context.Context, q db.DBTX, s kindMeta, k Kind, f Filter) ([]Document, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.CounterpartyID > 0 {
		add("counterparty_id = $%d", f.CounterpartyID)
	}
	if !f.From.IsZero() {
		add("date >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("date <= $%d", f.To)
	}
	sql := `SELECT ` + headerCols + ` FROM ` + s.header
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY date DESC, id DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		d, err := scanHeader(rows, k)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
