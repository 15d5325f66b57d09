package inventory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
	"github.com/Spok95/erp-backend/internal/validation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	ErrNotFound          = errors.New("inventory: not found")
)

type numberIssuer interface {
	NextTx(ctx context.Context, q db.DBTX, k numbering.Kind) (string, error)
}

// Notifier получает предупреждения о малом остатке после коммита проводки.
type Notifier interface {
	LowStock(ctx context.Context, items []LowStock) error
}

type Options struct {
	AllowNegative     bool
	LowStockThreshold decimal.Decimal
}

type Service struct {
	pool     *pgxpool.Pool
	repo     *Repo
	issuer   numberIssuer
	notifier Notifier
	opts     Options
	log      *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(pool *pgxpool.Pool, repo *Repo, issuer numberIssuer, notifier Notifier, opts Options, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		issuer:   issuer,
		notifier: notifier,
		opts:     opts,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

func validate(t *Transaction) error {
	v := validation.Violations{}
	validation.RequiredID("warehouse_id", t.WarehouseID, v)
	if !t.Direction.Valid() {
		v.Add("direction", validation.CodeInvalid)
	}
	if len(t.Items) == 0 {
		v.Add("items", validation.CodeRequired)
	}
	for i, it := range t.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		validation.RequiredID(prefix+"product_id", it.ProductID, v)
		validation.Positive(prefix+"quantity", it.Quantity, v)
		validation.Quantity(prefix+"quantity", it.Quantity, v)
		validation.NonNegative(prefix+"unit_cost", it.UnitCost, v)
		validation.Money(prefix+"unit_cost", it.UnitCost, v)
	}
	return v.Err()
}

// Post проводит складскую операцию одной транзакцией: номер, шапка, строки, остатки.
// Любая ошибка откатывает всё, включая счётчик номеров.
func (s *Service) Post(ctx context.Context, t Transaction) (*Transaction, error) {
	if err := validate(&t); err != nil {
		return nil, err
	}
	if t.Date.IsZero() {
		t.Date = s.now()
	}
	var low []LowStock
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		low, err = s.post(ctx, tx, &t)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.AfterCommit(ctx, &t, low)
	return &t, nil
}

// PostTx проводка внутри чужой транзакции (например, при проведении накладной).
// После коммита вызывающий обязан вызвать AfterCommit с возвращёнными остатками.
func (s *Service) PostTx(ctx context.Context, tx pgx.Tx, t *Transaction) ([]LowStock, error) {
	if err := validate(t); err != nil {
		return nil, err
	}
	if t.Date.IsZero() {
		t.Date = s.now()
	}
	return s.post(ctx, tx, t)
}

func (s *Service) post(ctx context.Context, tx pgx.Tx, t *Transaction) ([]LowStock, error) {
	exists, active, err := s.repo.warehouseActive(ctx, tx, t.WarehouseID)
	if err != nil {
		return nil, err
	}
	if !exists || !active {
		v := validation.Violations{}
		v.Add("warehouse_id", validation.CodeInvalid)
		return nil, v
	}
	for i, it := range t.Items {
		ok, err := s.repo.productExists(ctx, tx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if !ok {
			v := validation.Violations{}
			v.Add(fmt.Sprintf("items[%d].product_id", i), validation.CodeInvalid)
			return nil, v
		}
	}

	number, err := s.issuer.NextTx(ctx, tx, numbering.KindWarehouseTransaction)
	if err != nil {
		return nil, err
	}
	t.Number = number
	if err := s.repo.insert(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	var low []LowStock
	for _, it := range t.Items {
		qty, err := s.repo.applyDelta(ctx, tx, t.WarehouseID, it.ProductID, t.Direction.Sign(it.Quantity))
		if err != nil {
			return nil, fmt.Errorf("apply balance: %w", err)
		}
		if t.Direction != DirOut {
			continue
		}
		if qty.IsNegative() && !s.opts.AllowNegative {
			return nil, fmt.Errorf("%w: product %d in warehouse %d would be %s", ErrInsufficientStock, it.ProductID, t.WarehouseID, qty)
		}
		if s.opts.LowStockThreshold.IsPositive() && qty.LessThan(s.opts.LowStockThreshold) {
			low = append(low, LowStock{
				WarehouseID: t.WarehouseID,
				ProductID:   it.ProductID,
				Quantity:    qty,
				Threshold:   s.opts.LowStockThreshold,
			})
		}
	}
	return low, nil
}

func (s *Service) AfterCommit(ctx context.Context, t *Transaction, low []LowStock) {
	s.metrics.StockMovements.WithLabelValues(string(t.Direction)).Add(float64(len(t.Items)))
	s.log.Info("warehouse transaction posted",
		"number", t.Number, "warehouse_id", t.WarehouseID, "direction", t.Direction, "items", len(t.Items))
	if len(low) == 0 || s.notifier == nil {
		return
	}
	// Проводка уже закоммичена, сбой уведомления на неё не влияет
	if err := s.notifier.LowStock(ctx, low); err != nil {
		s.log.Warn("low stock notification failed", "number", t.Number, "err", err)
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *Service) Balance(ctx context.Context, warehouseID, productID int64) (decimal.Decimal, error) {
	return s.repo.Balance(ctx, nil, warehouseID, productID)
}

func (s *Service) ListBalances(ctx context.Context, warehouseID int64) ([]Balance, error) {
	return s.repo.ListBalances(ctx, warehouseID)
}

// ItemCard карточка товара: начальный остаток и проводки с нарастающим итогом.
func (s *Service) ItemCard(ctx context.Context, warehouseID, productID int64) (Card, error) {
	opening, ok, err := s.repo.Opening(ctx, productID)
	if err != nil {
		return Card{}, err
	}
	if !ok {
		return Card{}, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	moves, err := s.repo.Moves(ctx, warehouseID, productID)
	if err != nil {
		return Card{}, err
	}
	card := Replay(opening, moves)
	card.WarehouseID = warehouseID
	card.ProductID = productID
	return card, nil
}

// Reconcile ищет расхождения остатков с историей. fix=true перезаписывает
// остатки пересчитанными значениями в одной транзакции.
func (s *Service) Reconcile(ctx context.Context, fix bool) ([]Mismatch, error) {
	mm, err := s.repo.Mismatches(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range mm {
		s.log.Warn("stock balance mismatch",
			"warehouse_id", m.WarehouseID, "product_id", m.ProductID,
			"maintained", m.Maintained.String(), "expected", m.Expected.String())
	}
	if !fix || len(mm) == 0 {
		return mm, nil
	}
	err = db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, m := range mm {
			if err := s.repo.setBalance(ctx, tx, m.WarehouseID, m.ProductID, m.Expected); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fix balances: %w", err)
	}
	return mm, nil
}

// CountResult проводки, созданные инвентаризацией (nil, если разницы нет).
type CountResult struct {
	Incoming *Transaction `json:"incoming,omitempty"`
	Outgoing *Transaction `json:"outgoing,omitempty"`
}

// ApplyCount инвентаризация склада: излишки приходуются, недостача списывается.
// Обе проводки создаются в одной транзакции.
func (s *Service) ApplyCount(ctx context.Context, warehouseID int64, lines []CountLine, note string) (CountResult, error) {
	v := validation.Violations{}
	validation.RequiredID("warehouse_id", warehouseID, v)
	if len(lines) == 0 {
		v.Add("lines", validation.CodeRequired)
	}
	seen := make(map[int64]bool, len(lines))
	for i, l := range lines {
		prefix := fmt.Sprintf("lines[%d].", i)
		validation.RequiredID(prefix+"product_id", l.ProductID, v)
		validation.NonNegative(prefix+"counted", l.Counted, v)
		validation.Quantity(prefix+"counted", l.Counted, v)
		if l.WarehouseID != 0 && l.WarehouseID != warehouseID {
			v.Add(prefix+"warehouse_id", validation.CodeInvalid)
		}
		// одна строка на товар, иначе разница посчитается дважды
		if l.ProductID > 0 && seen[l.ProductID] {
			v.Add(prefix+"product_id", validation.CodeDuplicate)
		}
		seen[l.ProductID] = true
	}
	if err := v.Err(); err != nil {
		return CountResult{}, err
	}
	if note == "" {
		note = "stock count"
	}

	var (
		res CountResult
		low []LowStock
	)
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		in := &Transaction{Date: s.now(), WarehouseID: warehouseID, Direction: DirIn, Note: note}
		out := &Transaction{Date: s.now(), WarehouseID: warehouseID, Direction: DirOut, Note: note}
		// блокируем по возрастанию product_id, чтобы две инвентаризации не зациклились
		sorted := slices.Clone(lines)
		slices.SortFunc(sorted, func(a, b CountLine) int { return cmp.Compare(a.ProductID, b.ProductID) })
		for _, l := range sorted {
			cur, err := s.repo.lockBalance(ctx, tx, warehouseID, l.ProductID)
			if err != nil {
				return err
			}
			diff := l.Counted.Sub(cur)
			switch {
			case diff.IsPositive():
				in.Items = append(in.Items, Item{ProductID: l.ProductID, Quantity: diff})
			case diff.IsNegative():
				out.Items = append(out.Items, Item{ProductID: l.ProductID, Quantity: diff.Neg()})
			}
		}
		for _, t := range []*Transaction{in, out} {
			if len(t.Items) == 0 {
				continue
			}
			l, err := s.post(ctx, tx, t)
			if err != nil {
				return err
			}
			low = append(low, l...)
		}
		if len(in.Items) > 0 {
			res.Incoming = in
		}
		if len(out.Items) > 0 {
			res.Outgoing = out
		}
		return nil
	})
	if err != nil {
		return CountResult{}, err
	}
	for _, t := range []*Transaction{res.Incoming, res.Outgoing} {
		if t != nil {
			s.AfterCommit(ctx, t, nil)
		}
	}
	if len(low) > 0 && s.notifier != nil {
		if err := s.notifier.LowStock(ctx, low); err != nil {
			s.log.Warn("low stock notification failed", "err", err)
		}
	}
	return res, nil
}
