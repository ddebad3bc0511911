package inventory

import (
	"context"
	"fmt"

	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/inventory"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/notification"
	"go.uber.org/zap"
)

// Mailer queues e-mail for background delivery
type Mailer interface {
	Dispatch(email *notification.Email) bool
}

// LowStockNotifier warns a school's administrators when an item drops to its reorder level
type LowStockNotifier struct {
	userRepo identity.UserRepository
	mailer   Mailer
	logger   *zap.Logger
}

// NewLowStockNotifier creates a new low stock handler. A nil mailer only logs.
func NewLowStockNotifier(userRepo identity.UserRepository, mailer Mailer, logger *zap.Logger) *LowStockNotifier {
	return &LowStockNotifier{userRepo: userRepo, mailer: mailer, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockNotifier) EventTypes() []string {
	return []string{inventory.EventTypeLowStock}
}

// Handle processes a LowStockEvent
func (h *LowStockNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	low, ok := event.(*inventory.LowStockEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeLowStock),
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: expected %s, got %s", inventory.EventTypeLowStock, event.EventType())
	}

	alertType := "low_stock"
	if low.Quantity == 0 {
		alertType = "out_of_stock"
	}
	h.logger.Warn("stock at reorder level",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("item_id", event.AggregateID().String()),
		zap.String("code", low.Code),
		zap.Int("quantity", low.Quantity),
		zap.Int("reorder_level", low.ReorderLevel),
		zap.String("alert_type", alertType))

	if h.mailer == nil {
		return nil
	}
	admins, err := h.userRepo.FindByRole(ctx, event.TenantID(), identity.RoleSchoolAdmin)
	if err != nil {
		// alert delivery must not fail the adjustment that triggered it
		h.logger.Error("failed to load school admins for stock alert", zap.Error(err))
		return nil
	}
	var to []notification.Recipient
	for _, u := range admins {
		if u.IsActive() && u.Email != "" {
			to = append(to, notification.Recipient{Name: u.GetDisplayNameOrUsername(), Address: u.Email})
		}
	}
	if len(to) == 0 {
		h.logger.Debug("no admin addresses for stock alert", zap.String("tenant_id", event.TenantID().String()))
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s (%s)", low.Name, low.Code)
	if alertType == "out_of_stock" {
		subject = fmt.Sprintf("Out of stock: %s (%s)", low.Name, low.Code)
	}
	h.mailer.Dispatch(&notification.Email{
		To:      to,
		Subject: subject,
		TextBody: fmt.Sprintf("%s (%s) is down to %d, at or below its reorder level of %d.\nPlease restock.",
			low.Name, low.Code, low.Quantity, low.ReorderLevel),
	})
	return nil
}

var _ shared.EventHandler = (*LowStockNotifier)(nil)
