package numbering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
)

// ErrUnavailable счётчик не ответил. Номер не выдан, форму надо заблокировать
// и дать пользователю повторить. Запасных номеров (по времени и т.п.) не бывает.
var ErrUnavailable = errors.New("numbering: counter unavailable")

type counterStore interface {
	Increment(ctx context.Context, q db.DBTX, prefix string) (int64, error)
}

type Issuer struct {
	store   counterStore
	timeout time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewIssuer(store counterStore, timeout time.Duration, log *slog.Logger, m *metrics.Metrics) *Issuer {
	return &Issuer{store: store, timeout: timeout, log: log, metrics: m}
}

// Next выдаёт номер вне транзакции (например, для предпросмотра кода в форме).
func (i *Issuer) Next(ctx context.Context, k Kind) (string, error) {
	return i.NextTx(ctx, nil, k)
}

// NextTx выдаёт номер внутри транзакции документа: если документ откатится,
// откатится и счётчик.
func (i *Issuer) NextTx(ctx context.Context, q db.DBTX, k Kind) (string, error) {
	s, err := SeriesFor(k)
	if err != nil {
		return "", err
	}
	if k == KindBarcode {
		return i.NextBarcode(ctx, q)
	}
	seq, err := i.increment(ctx, q, s.Prefix)
	if err != nil {
		return "", err
	}
	return Format(s.Prefix, seq, s.Width), nil
}

// NextProduct код товара по префиксу его категории (P, M, C, F, S).
func (i *Issuer) NextProduct(ctx context.Context, q db.DBTX, c ProductCategory) (string, error) {
	prefix, err := ProductPrefix(c)
	if err != nil {
		return "", err
	}
	seq, err := i.increment(ctx, q, prefix)
	if err != nil {
		return "", err
	}
	return Format(prefix, seq, defaultWidth), nil
}

func (i *Issuer) NextBarcode(ctx context.Context, q db.DBTX) (string, error) {
	seq, err := i.increment(ctx, q, barcodePrefix)
	if err != nil {
		return "", err
	}
	return EAN13(seq)
}

func (i *Issuer) increment(ctx context.Context, q db.DBTX, prefix string) (int64, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	seq, err := i.store.Increment(ctx, q, prefix)
	if err != nil {
		i.metrics.NumberingFailures.WithLabelValues(prefix).Inc()
		i.log.Error("counter increment failed", "prefix", prefix, "err", err)
		return 0, fmt.Errorf("%w: prefix %s: %w", ErrUnavailable, prefix, err)
	}
	if seq <= 0 {
		i.metrics.NumberingFailures.WithLabelValues(prefix).Inc()
		return 0, fmt.Errorf("%w: prefix %s returned %d", ErrUnavailable, prefix, seq)
	}
	i.metrics.NumbersIssued.WithLabelValues(prefix).Inc()
	return seq, nil
}
