package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrDuplicateBarcode = errors.New("barcode already in use")

type codeIssuer interface {
	NextProduct(ctx context.Context, q db.DBTX, c numbering.ProductCategory) (string, error)
	NextBarcode(ctx context.Context, q db.DBTX) (string, error)
}

type Repo struct {
	pool   *pgxpool.Pool
	issuer codeIssuer
}

func NewRepo(pool *pgxpool.Pool, issuer codeIssuer) *Repo {
	return &Repo{pool: pool, issuer: issuer}
}

const productCols = `id, code, barcode, name, kind, category_id, unit_id, unit_price, opening_balance, active, created_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Barcode,
		&p.Name,
		&p.Kind,
		&p.CategoryID,
		&p.UnitID,
		&p.UnitPrice,
		&p.OpeningBalance,
		&p.Active,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func validateProduct(in NewProduct) error {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if _, err := numbering.ProductPrefix(in.Kind); err != nil {
		v.Add("kind", validation.CodeInvalid)
	}
	if in.Barcode != "" && !numbering.ValidEAN13(in.Barcode) {
		v.Add("barcode", validation.CodeInvalid)
	}
	validation.NonNegative("unit_price", in.UnitPrice, v)
	validation.Money("unit_price", in.UnitPrice, v)
	validation.NonNegative("opening_balance", in.OpeningBalance, v)
	validation.Quantity("opening_balance", in.OpeningBalance, v)
	return v.Err()
}

// Create код по префиксу вида товара и штрихкод выдаются в одной транзакции со вставкой.
func (r *Repo) Create(ctx context.Context, in NewProduct) (*Product, error) {
	if in.Kind == "" {
		in.Kind = numbering.ProductGeneral
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	var out *Product
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		code, err := r.issuer.NextProduct(ctx, tx, in.Kind)
		if err != nil {
			return err
		}
		barcode := in.Barcode
		if barcode == "" {
			if barcode, err = r.issuer.NextBarcode(ctx, tx); err != nil {
				return err
			}
		}
		out, err = scanProduct(tx.QueryRow(ctx, `
			INSERT INTO products (code, barcode, name, kind, category_id, unit_id, unit_price, opening_balance)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING `+productCols,
			code, barcode, strings.TrimSpace(in.Name), string(in.Kind),
			in.CategoryID, in.UnitID, in.UnitPrice, in.OpeningBalance))
		if c, ok := db.UniqueViolation(err); ok && c == "products_barcode_key" {
			return fmt.Errorf("%w: %s", ErrDuplicateBarcode, barcode)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Product, error) {
	return noRows(scanProduct(r.pool.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id = $1`, id)))
}

func (r *Repo) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return noRows(scanProduct(r.pool.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE barcode = $1`, barcode)))
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Product, error) {
	q := `SELECT ` + productCols + ` FROM products`
	if onlyActive {
		q += " WHERE active = TRUE"
	}
	q += " ORDER BY code"
	return r.query(ctx, q)
}

// Search по коду, штрихкоду или части названия, без учёта регистра.
func (r *Repo) Search(ctx context.Context, term string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 50
	}
	term = strings.TrimSpace(term)
	return r.query(ctx, `
		SELECT `+productCols+`
		FROM products
		WHERE code = $1 OR barcode = $1 OR name ILIKE '%' || $1 || '%'
		ORDER BY code
		LIMIT $2
	`, term, limit)
}

func (r *Repo) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*Product, error) {
	v := validation.Violations{}
	validation.NonNegative("unit_price", price, v)
	validation.Money("unit_price", price, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return noRows(scanProduct(r.pool.QueryRow(ctx, `
		UPDATE products SET unit_price=$2 WHERE id=$1
		RETURNING `+productCols, id, price)))
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) (*Product, error) {
	return noRows(scanProduct(r.pool.QueryRow(ctx, `
		UPDATE products SET active=$2 WHERE id=$1
		RETURNING `+productCols, id, active)))
}

// noRows отсутствие товара не ошибка: nil, nil
func noRows(p *Product, err error) (*Product, error) {
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}
