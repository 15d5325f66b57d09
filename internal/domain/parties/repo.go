package parties

import (
	"context"
	"strings"

	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type codeIssuer interface {
	NextTx(ctx context.Context, q db.DBTX, k numbering.Kind) (string, error)
}

type Repo struct {
	pool   *pgxpool.Pool
	issuer codeIssuer
}

func NewRepo(pool *pgxpool.Pool, issuer codeIssuer) *Repo {
	return &Repo{pool: pool, issuer: issuer}
}

const customerCols = `id, code, name, phone, province_id, credit_limit, active, created_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	if err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Phone,
		&c.ProvinceID,
		&c.CreditLimit,
		&c.Active,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func validateCustomer(in NewCustomer) error {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.NonNegative("credit_limit", in.CreditLimit, v)
	return v.Err()
}

// CreateCustomer код CU###### берётся из счётчика в той же транзакции, что и вставка.
func (r *Repo) CreateCustomer(ctx context.Context, in NewCustomer) (*Customer, error) {
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	var out *Customer
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		code, err := r.issuer.NextTx(ctx, tx, numbering.KindCustomer)
		if err != nil {
			return err
		}
		out, err = scanCustomer(tx.QueryRow(ctx, `
			INSERT INTO customers (code, name, phone, province_id, credit_limit)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING `+customerCols,
			code, strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone), in.ProvinceID, in.CreditLimit))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *Repo) ListCustomers(ctx context.Context, onlyActive bool) ([]Customer, error) {
	q := `SELECT ` + customerCols + ` FROM customers`
	if onlyActive {
		q += " WHERE active = TRUE"
	}
	q += " ORDER BY name, id"

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) SetCustomerActive(ctx context.Context, id int64, active bool) (*Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `
		UPDATE customers SET active=$2 WHERE id=$1
		RETURNING `+customerCols, id, active))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

/* Employees */

func (r *Repo) CreateEmployee(ctx context.Context, name, position string) (*Employee, error) {
	v := validation.Violations{}
	validation.Required("name", name, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO employees (name, position) VALUES ($1,$2)
		RETURNING id, name, position, active, created_at
	`, strings.TrimSpace(name), strings.TrimSpace(position))
	var e Employee
	if err := row.Scan(&e.ID, &e.Name, &e.Position, &e.Active, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repo) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, position, active, created_at
		FROM employees
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Position, &e.Active, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) SetEmployeeActive(ctx context.Context, id int64, active bool) (*Employee, error) {
	var e Employee
	err := r.pool.QueryRow(ctx, `
		UPDATE employees SET active=$2 WHERE id=$1
		RETURNING id, name, position, active, created_at
	`, id, active).Scan(&e.ID, &e.Name, &e.Position, &e.Active, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
