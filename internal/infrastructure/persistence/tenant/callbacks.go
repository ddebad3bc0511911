package tenant

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const column = "tenant_id"

// RegisterCallbacks guards queries, updates and deletes on models that carry a
// tenant_id column. When the statement context holds a school, the statement
// is limited to it. Statements without a school in context (scheduled sweeps,
// login, platform-wide super admin work) are left alone.
func RegisterCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register("tenant:query", guard); err != nil {
		return fmt.Errorf("register tenant query callback: %w", err)
	}
	if err := cb.Update().Before("gorm:update").Register("tenant:update", guard); err != nil {
		return fmt.Errorf("register tenant update callback: %w", err)
	}
	if err := cb.Delete().Before("gorm:delete").Register("tenant:delete", guard); err != nil {
		return fmt.Errorf("register tenant delete callback: %w", err)
	}
	return nil
}

func guard(db *gorm.DB) {
	stmt := db.Statement
	if stmt == nil || stmt.Context == nil || stmt.Schema == nil {
		return
	}
	if guardSkipped(stmt.Context) {
		return
	}
	if stmt.Schema.LookUpField(column) == nil {
		return
	}

	tenantID, err := FromContext(stmt.Context)
	if err != nil || tenantID == uuid.Nil {
		return
	}

	stmt.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: column}, Value: tenantID},
	}})
}
