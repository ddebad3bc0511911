package cache

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// QueryCacheInvalidator drops a school's cached statistics whenever that
// school raises any domain event.
type QueryCacheInvalidator struct {
	cache  QueryCache
	logger *zap.Logger
}

// NewQueryCacheInvalidator creates the event handler
func NewQueryCacheInvalidator(cache QueryCache, logger *zap.Logger) *QueryCacheInvalidator {
	return &QueryCacheInvalidator{cache: cache, logger: logger}
}

// EventTypes subscribes to every event
func (h *QueryCacheInvalidator) EventTypes() []string {
	return nil
}

// Handle invalidates the event's school. School and user changes also drop the
// platform summary. Cache errors are logged, never returned, so a Redis outage
// cannot fail the mutation that raised the event.
func (h *QueryCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.invalidate(ctx, event.TenantID(), event)
	if affectsPlatform(event) && event.TenantID() != identity.PlatformTenantID {
		h.invalidate(ctx, identity.PlatformTenantID, event)
	}
	return nil
}

func (h *QueryCacheInvalidator) invalidate(ctx context.Context, tenantID uuid.UUID, event shared.DomainEvent) {
	if err := h.cache.InvalidateTenant(ctx, tenantID); err != nil {
		h.logger.Warn("failed to invalidate query cache",
			zap.String("tenant_id", tenantID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

func affectsPlatform(event shared.DomainEvent) bool {
	switch event.AggregateType() {
	case school.AggregateTypeSchool, identity.AggregateTypeUser:
		return true
	}
	return false
}

var _ shared.EventHandler = (*QueryCacheInvalidator)(nil)
