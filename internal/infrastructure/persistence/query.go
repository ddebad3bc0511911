package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translateError maps gorm's not-found and unique-violation errors to domain errors
func translateError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// deleteResult turns a delete that touched no row into shared.ErrNotFound
func deleteResult(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applySearch adds a case-insensitive OR match of the keyword across columns
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + search + "%"
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		conds[i] = c + " ILIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// applyPaging orders by a whitelisted column and applies offset/limit
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + dir)
	if field != "id" {
		query = query.Order("id " + dir)
	}
	return query.Offset(filter.Offset()).Limit(filter.Limit())
}

// saveVersioned writes an aggregate row. An existing row is updated only while its
// stored version is older than the in-memory one; a missing row is inserted.
func saveVersioned(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, version int) error {
	result := db.WithContext(ctx).
		Model(model).
		Omit(clause.Associations).
		Where("id = ? AND version < ?", id, version).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}
	return translateError(db.WithContext(ctx).Omit(clause.Associations).Create(model).Error)
}
