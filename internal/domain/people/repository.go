package people

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// StudentRepository persists students. All methods are scoped to a school.
type StudentRepository interface {
	Save(ctx context.Context, student *Student) error
	SaveBatch(ctx context.Context, students []*Student) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Student, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Student, error)
	FindByAdmissionNumber(ctx context.Context, tenantID uuid.UUID, admissionNumber string) (*Student, error)
	// FindAll supports filters: class_id, status, gender, parent_user_id
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Student, int64, error)
	FindByClass(ctx context.Context, tenantID, classID uuid.UUID, activeOnly bool) ([]*Student, error)
	FindByParentUser(ctx context.Context, tenantID, parentUserID uuid.UUID) ([]*Student, error)
	FindByStudentUser(ctx context.Context, tenantID, userID uuid.UUID) (*Student, error)
	ExistingAdmissionNumbers(ctx context.Context, tenantID uuid.UUID, numbers []string) (map[string]bool, error)
	ExistsByAdmissionNumber(ctx context.Context, tenantID uuid.UUID, admissionNumber string, excludeID *uuid.UUID) (bool, error)
	CountByClass(ctx context.Context, tenantID, classID uuid.UUID) (int64, error)
}

// TeacherRepository persists teachers. All methods are scoped to a school.
type TeacherRepository interface {
	Save(ctx context.Context, teacher *Teacher) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Teacher, error)
	FindByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*Teacher, error)
	// FindAll supports filters: status
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Teacher, int64, error)
	ExistsByEmployeeNumber(ctx context.Context, tenantID uuid.UUID, employeeNumber string, excludeID *uuid.UUID) (bool, error)
}
