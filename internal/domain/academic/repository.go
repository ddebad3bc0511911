package academic

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// ClassRepository persists classes. All methods are scoped to a school.
type ClassRepository interface {
	Save(ctx context.Context, class *Class) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Class, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Class, error)
	// FindAll supports filters: grade_level, academic_year, teacher_id, is_active
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Class, int64, error)
	FindByTeacher(ctx context.Context, tenantID, teacherID uuid.UUID) ([]*Class, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Class, error)
	CountByTeacher(ctx context.Context, tenantID, teacherID uuid.UUID) (int64, error)
}

// SubjectRepository persists subjects and their class assignments
type SubjectRepository interface {
	Save(ctx context.Context, subject *Subject) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Subject, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Subject, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error)

	AssignToClass(ctx context.Context, link *ClassSubject) error
	RemoveFromClass(ctx context.Context, tenantID, classID, subjectID uuid.UUID) error
	FindClassSubject(ctx context.Context, tenantID, classID, subjectID uuid.UUID) (*ClassSubject, error)
	FindClassSubjects(ctx context.Context, tenantID, classID uuid.UUID) ([]*ClassSubject, error)
	// FindClassesTaughtBy returns class ids where the teacher teaches any subject
	FindClassesTaughtBy(ctx context.Context, tenantID, teacherID uuid.UUID) ([]uuid.UUID, error)
	CountClassLinks(ctx context.Context, tenantID, subjectID uuid.UUID) (int64, error)
}
