// Package tenant keeps GORM statements inside one school.
//
// Every school-owned table carries a tenant_id column. Once RegisterCallbacks
// is installed, a statement whose context holds a school (set by the tenant
// middleware) gets a matching WHERE condition, even when the repository
// forgot one.
//
//	ctx := logger.WithTenantID(ctx, schoolID.String())
//	db.WithContext(ctx).Find(&students) // WHERE "students"."tenant_id" = '<school>'
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/infrastructure/logger"
)

// ErrTenantIDRequired is returned when no school is present in the context
var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

// ErrInvalidTenantID is returned when the school ID is not a UUID
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

type skipGuardKey struct{}

// FromContext parses the school ID stored in ctx
func FromContext(ctx context.Context) (uuid.UUID, error) {
	raw := logger.GetTenantID(ctx)
	if raw == "" {
		return uuid.Nil, ErrTenantIDRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidTenantID
	}
	return id, nil
}

// WithoutGuard marks ctx for platform-wide statements, such as reading the
// signed-in super admin while they act inside a school.
func WithoutGuard(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipGuardKey{}, true)
}

func guardSkipped(ctx context.Context) bool {
	skip, _ := ctx.Value(skipGuardKey{}).(bool)
	return skip
}
