// Package telegram шлёт администратору предупреждения о малых остатках.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/Spok95/erp-backend/internal/domain/products"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type productLookup interface {
	GetByID(ctx context.Context, id int64) (*products.Product, error)
}

type Notifier struct {
	api      sender
	chatID   int64
	products productLookup
	log      *slog.Logger
}

// New без токена возвращает nil: inventory.Service тогда просто не шлёт уведомлений.
func New(token string, chatID int64, lookup productLookup, log *slog.Logger) (*Notifier, error) {
	if token == "" {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	log.Info("telegram notifier authorized", "account", api.Self.UserName)
	return newWithSender(api, chatID, lookup, log), nil
}

func newWithSender(api sender, chatID int64, lookup productLookup, log *slog.Logger) *Notifier {
	return &Notifier{api: api, chatID: chatID, products: lookup, log: log}
}

func (n *Notifier) LowStock(ctx context.Context, items []inventory.LowStock) error {
	if n == nil || len(items) == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(n.chatID, n.format(ctx, items))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (n *Notifier) format(ctx context.Context, items []inventory.LowStock) string {
	var sb strings.Builder
	sb.WriteString("⚠️ Заканчиваются товары:\n")
	for _, it := range items {
		name := fmt.Sprintf("#%d", it.ProductID)
		if n.products != nil {
			if p, err := n.products.GetByID(ctx, it.ProductID); err == nil && p != nil {
				name = fmt.Sprintf("%s %s", p.Code, p.Name)
			} else if err != nil {
				n.log.Warn("product lookup failed", "product_id", it.ProductID, "err", err)
			}
		}
		fmt.Fprintf(&sb, "• %s — склад #%d: %s (порог %s)\n",
			name, it.WarehouseID, it.Quantity.String(), it.Threshold.String())
	}
	return sb.String()
}
