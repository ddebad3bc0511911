package telemetry

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const slowQueryStartKey = "telemetry:query_start"

// InstrumentDB adds otelgorm spans and slow query warnings to db.
// Query variables are left out of spans.
func InstrumentDB(db *gorm.DB, slowThreshold time.Duration, logger *zap.Logger) error {
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName("postgres"),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}
	if slowThreshold <= 0 {
		return nil
	}

	before := func(tx *gorm.DB) {
		tx.InstanceSet(slowQueryStartKey, time.Now())
	}
	after := func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(slowQueryStartKey)
		if !ok {
			return
		}
		elapsed := time.Since(v.(time.Time))
		if elapsed < slowThreshold {
			return
		}
		logger.Warn("Slow query",
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", tx.Statement.RowsAffected),
			zap.String("trace_id", TraceID(tx.Statement.Context)))
	}

	cb := db.Callback()
	registrations := []error{
		cb.Query().Before("gorm:query").Register("telemetry:before_query", before),
		cb.Query().After("gorm:query").Register("telemetry:after_query", after),
		cb.Create().Before("gorm:create").Register("telemetry:before_create", before),
		cb.Create().After("gorm:create").Register("telemetry:after_create", after),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", before),
		cb.Update().After("gorm:update").Register("telemetry:after_update", after),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", before),
		cb.Delete().After("gorm:delete").Register("telemetry:after_delete", after),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", before),
		cb.Raw().After("gorm:raw").Register("telemetry:after_raw", after),
	}
	for _, err := range registrations {
		if err != nil {
			return err
		}
	}
	return nil
}
