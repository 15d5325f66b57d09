package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/domain/totals"
	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownKind = errors.New("documents: unknown kind")
	ErrNotFound    = errors.New("documents: not found")
	ErrNotDraft    = errors.New("documents: document is not a draft")
	ErrEmpty       = errors.New("documents: document has no items")
	// ErrNotConvertible котировка уже конвертирована или отменена
	ErrNotConvertible = errors.New("documents: quotation cannot be converted")
)

type numberIssuer interface {
	NextTx(ctx context.Context, q db.DBTX, k numbering.Kind) (string, error)
}

type stockPoster interface {
	PostTx(ctx context.Context, tx pgx.Tx, t *inventory.Transaction) ([]inventory.LowStock, error)
	AfterCommit(ctx context.Context, t *inventory.Transaction, low []inventory.LowStock)
}

type Service struct {
	pool    *pgxpool.Pool
	issuer  numberIssuer
	stock   stockPoster
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(pool *pgxpool.Pool, issuer numberIssuer, stock stockPoster, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{pool: pool, issuer: issuer, stock: stock, log: log, metrics: m, now: time.Now}
}

// prepare проверяет форму и считает итоги. Ничего не пишет: всё, что
// отвергнуто здесь, до базы не доходит, номер не расходуется.
func (s *Service) prepare(k Kind, d Draft) (*Document, error) {
	in := d.totalsInput()
	if err := totals.Validate(in); err != nil {
		return nil, err
	}
	for i, it := range d.Items {
		if it.ProductID == nil && it.Description == "" {
			v := validation.Violations{}
			v.Add(fmt.Sprintf("items[%d].description", i), validation.CodeRequired)
			return nil, v
		}
	}
	res := totals.Compute(in)

	doc := &Document{
		Kind:               k,
		Date:               d.Date,
		Status:             StatusDraft,
		CounterpartyID:     d.CounterpartyID,
		WarehouseID:        d.WarehouseID,
		DiscountPercentage: d.DiscountPercentage,
		Subtotal:           res.Subtotal,
		DiscountAmount:     res.DiscountAmount,
		TaxAmount:          res.TaxAmount,
		TotalAmount:        res.TotalAmount,
		PaymentAmount:      d.PaymentAmount,
		ChangeAmount:       decimal.Zero,
		Note:               d.Note,
		Items:              make([]Item, 0, len(d.Items)),
	}
	if doc.Date.IsZero() {
		doc.Date = s.now()
	}
	if k == KindCashInvoice {
		if err := totals.ValidatePayment(doc.TotalAmount, doc.PaymentAmount); err != nil {
			return nil, err
		}
		doc.ChangeAmount = doc.PaymentAmount.Sub(doc.TotalAmount)
	} else {
		v := validation.Violations{}
		validation.NonNegative("payment_amount", d.PaymentAmount, v)
		validation.Money("payment_amount", d.PaymentAmount, v)
		if err := v.Err(); err != nil {
			return nil, err
		}
	}
	for i, it := range d.Items {
		doc.Items = append(doc.Items, Item{
			Position:           i + 1,
			ProductID:          it.ProductID,
			Description:        it.Description,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountPercentage: it.DiscountPercentage,
			TotalPrice:         res.Lines[i].TotalPrice,
		})
	}
	return doc, nil
}

// Create шапка, строки и номер документа в одной транзакции.
func (s *Service) Create(ctx context.Context, k Kind, d Draft) (*Document, error) {
	spec, err := metaFor(k)
	if err != nil {
		return nil, err
	}
	doc, err := s.prepare(k, d)
	if err != nil {
		return nil, err
	}
	err = db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		return s.insert(ctx, tx, spec, doc)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.DocumentsCreated.WithLabelValues(string(k)).Inc()
	s.log.Info("document created", "kind", k, "number", doc.Number, "total", doc.TotalAmount.StringFixed(2))
	return doc, nil
}

func (s *Service) insert(ctx context.Context, tx pgx.Tx, spec kindMeta, doc *Document) error {
	number, err := s.issuer.NextTx(ctx, tx, spec.number)
	if err != nil {
		return err
	}
	doc.Number = number
	if err := insertHeader(ctx, tx, spec, doc); err != nil {
		return fmt.Errorf("insert %s: %w", spec.header, err)
	}
	if err := insertItems(ctx, tx, spec, doc.ID, doc.Items); err != nil {
		return fmt.Errorf("insert %s: %w", spec.items, err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, k Kind, id int64) (*Document, error) {
	spec, err := metaFor(k)
	if err != nil {
		return nil, err
	}
	doc, err := getHeader(ctx, s.pool, spec, k, id)
	if err != nil {
		return nil, err
	}
	if doc.Items, err = loadItems(ctx, s.pool, spec, id); err != nil {
		return nil, err
	}
	return doc, nil
}

// List без строк, только шапки.
func (s *Service) List(ctx context.Context, k Kind, f Filter) ([]Document, error) {
	spec, err := metaFor(k)
	if err != nil {
		return nil, err
	}
	return listHeaders(ctx, s.pool, spec, k, f)
}

// ReplaceItems заменяет строки черновика и пересчитывает итоги.
func (s *Service) ReplaceItems(ctx context.Context, k Kind, id int64, d Draft) (*Document, error) {
	spec, err := metaFor(k)
	if err != nil {
		return nil, err
	}
	next, err := s.prepare(k, d)
	if err != nil {
		return nil, err
	}
	var out *Document
	err = db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		cur, err := lockHeader(ctx, tx, spec, k, id)
		if err != nil {
			return err
		}
		if cur.Status != StatusDraft {
			return fmt.Errorf("%w: %s is %s", ErrNotDraft, cur.Number, cur.Status)
		}
		next.ID, next.Number = cur.ID, cur.Number
		if d.Date.IsZero() {
			next.Date = cur.Date
		}
		next.SourceID, next.CreatedAt = cur.SourceID, cur.CreatedAt
		if _, err := tx.Exec(ctx, `DELETE FROM `+spec.items+` WHERE document_id = $1`, id); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, spec, id, next.Items); err != nil {
			return err
		}
		if err := updateTotals(ctx, tx, spec, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Finalize черновик → проведён. Накладные и заказы с указанным складом
// двигают остатки в той же транзакции.
func (s *Service) Finalize(ctx context.Context, k Kind, id int64) (*Document, error) {
	spec, err := metaFor(k)
	if err != nil {
		return nil, err
	}
	var (
		doc  *Document
		move *inventory.Transaction
		low  []inventory.LowStock
	)
	err = db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		doc, err = lockHeader(ctx, tx, spec, k, id)
		if err != nil {
			return err
		}
		if doc.Status != StatusDraft {
			return fmt.Errorf("%w: %s is %s", ErrNotDraft, doc.Number, doc.Status)
		}
		if doc.Items, err = loadItems(ctx, tx, spec, id); err != nil {
			return err
		}
		if len(doc.Items) == 0 {
			return fmt.Errorf("%w: %s", ErrEmpty, doc.Number)
		}
		if move = stockMove(spec, doc); move != nil && s.stock != nil {
			if low, err = s.stock.PostTx(ctx, tx, move); err != nil {
				return err
			}
		} else {
			move = nil
		}
		if err := setStatus(ctx, tx, spec, id, StatusFinal); err != nil {
			return err
		}
		doc.Status = StatusFinal
		return nil
	})
	if err != nil {
		return nil, err
	}
	if move != nil {
		s.stock.AfterCommit(ctx, move, low)
	}
	s.log.Info("document finalized", "kind", k, "number", doc.Number)
	return doc, nil
}

// stockMove проводка по строкам с товаром. nil, если двигать нечего.
func stockMove(spec kindMeta, doc *Document) *inventory.Transaction {
	if spec.stock == "" || doc.WarehouseID == nil {
		return nil
	}
	t := &inventory.Transaction{
		Date:        doc.Date,
		WarehouseID: *doc.WarehouseID,
		Direction:   spec.stock,
		Note:        doc.Number,
	}
	for _, it := range doc.Items {
		if it.ProductID == nil || !it.Quantity.IsPositive() {
			continue
		}
		t.Items = append(t.Items, inventory.Item{ProductID: *it.ProductID, Quantity: it.Quantity, UnitCost: it.UnitPrice})
	}
	if len(t.Items) == 0 {
		return nil
	}
	return t
}

// Cancel только для черновиков: проведённый документ сторнируется отдельно.
func (s *Service) Cancel(ctx context.Context, k Kind, id int64) (*Document, error) {
	spec, err := metaFor(k)
	if err != nil {
		return nil, err
	}
	var doc *Document
	err = db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		doc, err = lockHeader(ctx, tx, spec, k, id)
		if err != nil {
			return err
		}
		if doc.Status != StatusDraft {
			return fmt.Errorf("%w: %s is %s", ErrNotDraft, doc.Number, doc.Status)
		}
		doc.Status = StatusCancelled
		return setStatus(ctx, tx, spec, id, StatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ConvertQuotation создаёт накладную из строк котировки и помечает котировку
// converted в той же транзакции. payment нужен только для продажи за наличные.
func (s *Service) ConvertQuotation(ctx context.Context, quotationID int64, target Kind, payment decimal.Decimal) (*Document, error) {
	if target != KindCashInvoice && target != KindCreditInvoice {
		v := validation.Violations{}
		v.Add("target", validation.CodeInvalid)
		return nil, v
	}
	qSpec, _ := metaFor(KindQuotation)
	tSpec, _ := metaFor(target)

	var doc *Document
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		q, err := lockHeader(ctx, tx, qSpec, KindQuotation, quotationID)
		if err != nil {
			return err
		}
		if q.Status != StatusDraft && q.Status != StatusFinal {
			return fmt.Errorf("%w: %s is %s", ErrNotConvertible, q.Number, q.Status)
		}
		items, err := loadItems(ctx, tx, qSpec, quotationID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: %s", ErrEmpty, q.Number)
		}

		d := Draft{
			CounterpartyID:     q.CounterpartyID,
			WarehouseID:        q.WarehouseID,
			DiscountPercentage: q.DiscountPercentage,
			TaxAmount:          q.TaxAmount,
			PaymentAmount:      payment,
			Note:               q.Note,
		}
		for _, it := range items {
			d.Items = append(d.Items, DraftItem{
				ProductID:          it.ProductID,
				Description:        it.Description,
				Quantity:           it.Quantity,
				UnitPrice:          it.UnitPrice,
				DiscountPercentage: it.DiscountPercentage,
			})
		}
		if doc, err = s.prepare(target, d); err != nil {
			return err
		}
		doc.SourceID = &q.ID
		if err := s.insert(ctx, tx, tSpec, doc); err != nil {
			return err
		}
		return setStatus(ctx, tx, qSpec, quotationID, StatusConverted)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.DocumentsCreated.WithLabelValues(string(target)).Inc()
	s.log.Info("quotation converted", "quotation_id", quotationID, "kind", target, "number", doc.Number)
	return doc, nil
}
