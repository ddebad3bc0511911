package exams

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// ExamRepository persists exams
type ExamRepository interface {
	Save(ctx context.Context, exam *Exam) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Exam, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Exam, error)
	// FindAll supports filters: class_id, subject_id, status, term, from, to
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Exam, int64, error)
	// FindUpcoming returns scheduled exams for the classes between from and to
	FindUpcoming(ctx context.Context, tenantID uuid.UUID, classIDs []uuid.UUID, from, to time.Time) ([]*Exam, error)
}

// ResultRepository persists exam results
type ResultRepository interface {
	// Upsert inserts or updates results keyed by (exam, student)
	Upsert(ctx context.Context, results []*Result) error
	FindByExam(ctx context.Context, tenantID, examID uuid.UUID) ([]*Result, error)
	FindByExamAndStudents(ctx context.Context, tenantID, examID uuid.UUID, studentIDs []uuid.UUID) ([]*Result, error)
	// FindByStudent returns the student's results, optionally limited to exams of a term
	FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID, term string) ([]*Result, error)
	FindRecentByStudent(ctx context.Context, tenantID, studentID uuid.UUID, limit int) ([]*Result, error)
	CountByExam(ctx context.Context, tenantID, examID uuid.UUID) (int64, error)
}
