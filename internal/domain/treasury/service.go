package treasury

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/domain/totals"
	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("treasury: voucher not found")

type numberIssuer interface {
	NextTx(ctx context.Context, q db.DBTX, k numbering.Kind) (string, error)
}

type Service struct {
	pool    *pgxpool.Pool
	issuer  numberIssuer
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(pool *pgxpool.Pool, issuer numberIssuer, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{pool: pool, issuer: issuer, log: log, metrics: m, now: time.Now}
}

// Total сумма строк ордера, до копеек.
func Total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(totals.Round2(l.Amount))
	}
	return sum
}

func validate(v *Voucher) error {
	errs := validation.Violations{}
	if _, ok := v.Type.numberKind(); !ok {
		errs.Add("type", validation.CodeInvalid)
	}
	if len(v.Lines) == 0 {
		errs.Add("lines", validation.CodeRequired)
	}
	for i, l := range v.Lines {
		prefix := fmt.Sprintf("lines[%d].", i)
		validation.Required(prefix+"description", l.Description, errs)
		validation.Positive(prefix+"amount", l.Amount, errs)
		validation.Money(prefix+"amount", l.Amount, errs)
	}
	if errs.Empty() {
		validation.Below("total_amount", Total(v.Lines), validation.MaxMoney, errs)
	}
	return errs.Err()
}

// Create номер RV/PV, шапка и строки в одной транзакции.
func (s *Service) Create(ctx context.Context, v Voucher) (*Voucher, error) {
	if err := validate(&v); err != nil {
		return nil, err
	}
	kind, _ := v.Type.numberKind()
	if v.Date.IsZero() {
		v.Date = s.now()
	}
	v.TotalAmount = Total(v.Lines)

	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		number, err := s.issuer.NextTx(ctx, tx, kind)
		if err != nil {
			return err
		}
		v.Number = number
		if err := tx.QueryRow(ctx, `
			INSERT INTO treasury_vouchers (number, type, date, counterparty, total_amount, note)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id, created_at
		`, v.Number, string(v.Type), v.Date, v.Counterparty, v.TotalAmount, v.Note).Scan(&v.ID, &v.CreatedAt); err != nil {
			return err
		}
		for _, l := range v.Lines {
			if _, err := tx.Exec(ctx, `
				INSERT INTO treasury_voucher_items (voucher_id, description, amount)
				VALUES ($1,$2,$3)
			`, v.ID, l.Description, l.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.DocumentsCreated.WithLabelValues(string(kind)).Inc()
	s.log.Info("voucher created", "number", v.Number, "total", v.TotalAmount.StringFixed(2))
	return &v, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Voucher, error) {
	var v Voucher
	err := s.pool.QueryRow(ctx, `
		SELECT id, number, type, date, counterparty, total_amount, note, created_at
		FROM treasury_vouchers WHERE id = $1
	`, id).Scan(&v.ID, &v.Number, &v.Type, &v.Date, &v.Counterparty, &v.TotalAmount, &v.Note, &v.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT description, amount FROM treasury_voucher_items
		WHERE voucher_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.Description, &l.Amount); err != nil {
			return nil, err
		}
		v.Lines = append(v.Lines, l)
	}
	return &v, rows.Err()
}
