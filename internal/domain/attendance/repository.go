package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Query narrows attendance lookups; zero values are ignored
type Query struct {
	ClassID   *uuid.UUID
	StudentID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Status    *Status
}

// Repository persists attendance records
type Repository interface {
	// Upsert inserts or updates records keyed by (tenant, student, class, date)
	Upsert(ctx context.Context, records []*Record) error
	Save(ctx context.Context, record *Record) error
	// FindByClassAndDate returns stored records of the students in the class on date
	FindByClassAndDate(ctx context.Context, tenantID, classID uuid.UUID, date time.Time, studentIDs []uuid.UUID) ([]*Record, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Record, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, q Query, filter shared.Filter) ([]*Record, int64, error)
	// FindForExport returns every record matching q ordered by date then student
	FindForExport(ctx context.Context, tenantID uuid.UUID, q Query) ([]*Record, error)
	Summarize(ctx context.Context, tenantID uuid.UUID, q Query) (Summary, error)
	// MarkedClasses returns which of the classes already have records for date
	MarkedClasses(ctx context.Context, tenantID uuid.UUID, classIDs []uuid.UUID, date time.Time) (map[uuid.UUID]bool, error)
}
