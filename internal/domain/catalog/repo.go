package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrEmptyName      = errors.New("catalog: name is required")
	ErrUnknownCountry = errors.New("catalog: country not found")
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

/* Warehouses */

const warehouseCols = `id, name, type, active, created_at`

// scanner общий для pgx.Row и pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanWarehouse(sc scanner) (*Warehouse, error) {
	var w Warehouse
	err := sc.Scan(&w.ID, &w.Name, &w.Type, &w.Active, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWarehouse идемпотентен по имени: повторный вызов вернёт существующий склад.
func (r *Repo) CreateWarehouse(ctx context.Context, name string, t WarehouseType) (*Warehouse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !t.Valid() {
		return nil, fmt.Errorf("catalog: unknown warehouse type %q", t)
	}
	w, err := scanWarehouse(r.pool.QueryRow(ctx, `
		INSERT INTO warehouses (name, type) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING `+warehouseCols, name, string(t)))
	if err != nil || w != nil {
		return w, err
	}
	// конфликт по имени
	return r.GetWarehouseByName(ctx, name)
}

func (r *Repo) GetWarehouseByName(ctx context.Context, name string) (*Warehouse, error) {
	return scanWarehouse(r.pool.QueryRow(ctx,
		`SELECT `+warehouseCols+` FROM warehouses WHERE name = $1`, name))
}

func (r *Repo) GetWarehouseByID(ctx context.Context, id int64) (*Warehouse, error) {
	return scanWarehouse(r.pool.QueryRow(ctx,
		`SELECT `+warehouseCols+` FROM warehouses WHERE id = $1`, id))
}

func (r *Repo) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+warehouseCols+` FROM warehouses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// UpdateWarehouseName nil, nil если склада нет.
func (r *Repo) UpdateWarehouseName(ctx context.Context, id int64, name string) (*Warehouse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return scanWarehouse(r.pool.QueryRow(ctx,
		`UPDATE warehouses SET name = $2 WHERE id = $1 RETURNING `+warehouseCols, id, name))
}

func (r *Repo) SetWarehouseActive(ctx context.Context, id int64, active bool) (*Warehouse, error) {
	return scanWarehouse(r.pool.QueryRow(ctx,
		`UPDATE warehouses SET active = $2 WHERE id = $1 RETURNING `+warehouseCols, id, active))
}

/* Categories */

const categoryCols = `id, name, active, created_at`

func scanCategory(sc scanner) (*Category, error) {
	var c Category
	err := sc.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	// DO UPDATE, чтобы RETURNING отдал строку и при повторе
	return scanCategory(r.pool.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+categoryCols, name))
}

func (r *Repo) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	return scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryCols+` FROM categories WHERE id = $1`, id))
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryCols+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) SetCategoryActive(ctx context.Context, id int64, active bool) (*Category, error) {
	return scanCategory(r.pool.QueryRow(ctx,
		`UPDATE categories SET active = $2 WHERE id = $1 RETURNING `+categoryCols, id, active))
}

/* Units */

func (r *Repo) CreateUnit(ctx context.Context, name, symbol string) (*Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO units (name, symbol) VALUES ($1,$2)
		ON CONFLICT (name) DO UPDATE SET symbol = EXCLUDED.symbol
		RETURNING id, name, symbol, created_at
	`, name, strings.TrimSpace(symbol))
	var u Unit
	if err := row.Scan(&u.ID, &u.Name, &u.Symbol, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, symbol, created_at FROM units ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Symbol, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

/* Countries / provinces */

func (r *Repo) CreateCountry(ctx context.Context, name string) (*Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO countries (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, active, created_at
	`, name)
	var c Country
	if err := row.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) CreateProvince(ctx context.Context, countryID int64, name string) (*Province, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO provinces (country_id, name) VALUES ($1,$2)
		ON CONFLICT (country_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, country_id, name, active, created_at
	`, countryID, name)
	var p Province
	if err := row.Scan(&p.ID, &p.CountryID, &p.Name, &p.Active, &p.CreatedAt); err != nil {
		if db.ForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownCountry, countryID)
		}
		return nil, err
	}
	return &p, nil
}

// ListProvinces провинции страны, для зависимого выпадающего списка.
func (r *Repo) ListProvinces(ctx context.Context, countryID int64) ([]Province, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, country_id, name, active, created_at
		FROM provinces
		WHERE country_id = $1
		ORDER BY name
	`, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Province
	for rows.Next() {
		var p Province
		if err := rows.Scan(&p.ID, &p.CountryID, &p.Name, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
