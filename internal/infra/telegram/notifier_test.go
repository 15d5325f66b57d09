package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/domain/products"
	"github.com/Spok95/erp-backend/internal/infra/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

type fakeLookup map[int64]*products.Product

func (f fakeLookup) GetByID(_ context.Context, id int64) (*products.Product, error) {
	return f[id], nil
}

func TestLowStockMessage(t *testing.T) {
	s := &fakeSender{}
	n := newWithSender(s, 42, fakeLookup{7: {Code: "P000007", Name: "Flour"}}, logger.Nop())

	err := n.LowStock(context.Background(), []inventory.LowStock{
		{WarehouseID: 1, ProductID: 7, Quantity: decimal.NewFromInt(3), Threshold: decimal.NewFromInt(10)},
		{WarehouseID: 1, ProductID: 8, Quantity: decimal.NewFromInt(0), Threshold: decimal.NewFromInt(10)},
	})
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(s.sent) != 1 || s.sent[0].ChatID != 42 {
		t.Fatalf("sent: %+v", s.sent)
	}
	text := s.sent[0].Text
	if !strings.Contains(text, "P000007 Flour") || !strings.Contains(text, "#8") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestLowStockSendError(t *testing.T) {
	n := newWithSender(&fakeSender{err: errors.New("blocked")}, 1, nil, logger.Nop())
	err := n.LowStock(context.Background(), []inventory.LowStock{{ProductID: 1}})
	if err == nil {
		t.Fatalf("send error must be returned")
	}
}

func TestNoTokenMeansNoNotifier(t *testing.T) {
	n, err := New("", 1, nil, logger.Nop())
	if err != nil || n != nil {
		t.Fatalf("expected nil notifier, got %v %v", n, err)
	}
	// nil-получатель безопасен
	if err := n.LowStock(context.Background(), []inventory.LowStock{{ProductID: 1}}); err != nil {
		t.Fatalf("nil notifier: %v", err)
	}
}
