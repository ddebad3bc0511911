package people

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StudentService manages student records
type StudentService struct {
	studentRepo    people.StudentRepository
	classRepo      academic.ClassRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStudentService creates a new student service
func NewStudentService(
	studentRepo people.StudentRepository,
	classRepo academic.ClassRepository,
	userRepo identity.UserRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *StudentService {
	return &StudentService{
		studentRepo:    studentRepo,
		classRepo:      classRepo,
		userRepo:       userRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create enrolls a new student
func (s *StudentService) Create(ctx context.Context, actor identity.Actor, req CreateStudentRequest) (*StudentResponse, error) {
	exists, err := s.studentRepo.ExistsByAdmissionNumber(ctx, actor.TenantID, req.AdmissionNumber, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Admission number already exists")
	}

	student, err := people.NewStudent(actor.TenantID, req.AdmissionNumber, req.StudentProfileDTO.toDomain())
	if err != nil {
		return nil, err
	}
	student.SetCreatedBy(actor.UserID)

	if err := s.linkUsers(ctx, student, req.StudentUserID, req.ParentUserID); err != nil {
		return nil, err
	}

	var class *academic.Class
	if req.ClassID != nil {
		class, err = s.classWithRoom(ctx, actor.TenantID, *req.ClassID)
		if err != nil {
			return nil, err
		}
		if err := student.AssignClass(&class.ID); err != nil {
			return nil, err
		}
	}

	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}
	s.syncStudentUser(ctx, student)
	s.publish(ctx, student)

	s.logger.Info("Student created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("student_id", student.ID.String()),
		zap.String("admission_number", student.AdmissionNumber))

	resp := ToStudentResponse(student)
	if class != nil {
		resp.ClassName = class.DisplayName()
	}
	return &resp, nil
}

// Get returns a student with their class name
func (s *StudentService) Get(ctx context.Context, tenantID, id uuid.UUID) (*StudentResponse, error) {
	student, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	out := s.toResponses(ctx, tenantID, []*people.Student{student})
	return &out[0], nil
}

// List lists students
func (s *StudentService) List(ctx context.Context, tenantID uuid.UUID, filter StudentListFilter) ([]StudentResponse, int64, error) {
	f := filter.PageQuery.Filter().
		With("status", filter.Status).
		With("gender", filter.Gender)
	if filter.ClassID != nil {
		f = f.With("class_id", *filter.ClassID)
	}
	students, total, err := s.studentRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	return s.toResponses(ctx, tenantID, students), total, nil
}

// ListForParent returns the children linked to a parent account
func (s *StudentService) ListForParent(ctx context.Context, tenantID, parentUserID uuid.UUID) ([]StudentResponse, error) {
	students, err := s.studentRepo.FindByParentUser(ctx, tenantID, parentUserID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, tenantID, students), nil
}

// ListMine returns what the caller may see of students: their own record for
// a student, their children for a parent.
func (s *StudentService) ListMine(ctx context.Context, actor identity.Actor) ([]StudentResponse, error) {
	switch actor.Role {
	case identity.RoleParent:
		return s.ListForParent(ctx, actor.TenantID, actor.UserID)
	case identity.RoleStudent:
		student, err := s.studentRepo.FindByStudentUser(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("PROFILE_NOT_LINKED", "Your account is not linked to a student")
			}
			return nil, err
		}
		return s.toResponses(ctx, actor.TenantID, []*people.Student{student}), nil
	}
	return nil, shared.NewDomainError("FORBIDDEN", "Only students and parents have linked students")
}

// Update replaces the student profile and linked accounts
func (s *StudentService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateStudentRequest) (*StudentResponse, error) {
	student, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := student.UpdateProfile(req.StudentProfileDTO.toDomain()); err != nil {
		return nil, err
	}
	if err := s.linkUsers(ctx, student, req.StudentUserID, req.ParentUserID); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}
	s.syncStudentUser(ctx, student)
	s.publish(ctx, student)

	out := s.toResponses(ctx, tenantID, []*people.Student{student})
	return &out[0], nil
}

// AssignClass moves a student into a class with room, or out of any class
func (s *StudentService) AssignClass(ctx context.Context, tenantID, id uuid.UUID, req AssignClassRequest) (*StudentResponse, error) {
	student, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.ClassID != nil && student.ClassID != nil && *student.ClassID == *req.ClassID {
		out := s.toResponses(ctx, tenantID, []*people.Student{student})
		return &out[0], nil
	}
	if req.ClassID != nil {
		if _, err := s.classWithRoom(ctx, tenantID, *req.ClassID); err != nil {
			return nil, err
		}
	}
	if err := student.AssignClass(req.ClassID); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}
	s.publish(ctx, student)

	s.logger.Info("Student class assigned",
		zap.String("tenant_id", tenantID.String()),
		zap.String("student_id", id.String()))

	out := s.toResponses(ctx, tenantID, []*people.Student{student})
	return &out[0], nil
}

// ChangeStatus changes the enrollment state
func (s *StudentService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req ChangeStudentStatusRequest) (*StudentResponse, error) {
	student, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := student.ChangeStatus(people.StudentStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}
	s.publish(ctx, student)

	out := s.toResponses(ctx, tenantID, []*people.Student{student})
	return &out[0], nil
}

// Delete removes a student
func (s *StudentService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	student, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.studentRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	student.AddDomainEvent(people.NewStudentDeletedEvent(student))
	s.publish(ctx, student)

	s.logger.Info("Student deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("student_id", id.String()))
	return nil
}

// ClassNames resolves class display names for the given students
func (s *StudentService) ClassNames(ctx context.Context, tenantID uuid.UUID, students []*people.Student) map[uuid.UUID]string {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, st := range students {
		if st.ClassID != nil && !seen[*st.ClassID] {
			seen[*st.ClassID] = true
			ids = append(ids, *st.ClassID)
		}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	classes, err := s.classRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		s.logger.Warn("Failed to load class names", zap.Error(err))
		return names
	}
	for _, c := range classes {
		names[c.ID] = c.DisplayName()
	}
	return names
}

func (s *StudentService) toResponses(ctx context.Context, tenantID uuid.UUID, students []*people.Student) []StudentResponse {
	names := s.ClassNames(ctx, tenantID, students)
	out := make([]StudentResponse, len(students))
	for i, st := range students {
		out[i] = ToStudentResponse(st)
		if st.ClassID != nil {
			out[i].ClassName = names[*st.ClassID]
		}
	}
	return out
}

func (s *StudentService) classWithRoom(ctx context.Context, tenantID, classID uuid.UUID) (*academic.Class, error) {
	class, err := s.classRepo.FindByID(ctx, tenantID, classID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CLASS_NOT_FOUND", "Class not found")
		}
		return nil, err
	}
	if !class.IsActive {
		return nil, shared.NewDomainError("CLASS_INACTIVE", "Class is not active")
	}
	enrolled, err := s.studentRepo.CountByClass(ctx, tenantID, classID)
	if err != nil {
		return nil, err
	}
	if !class.HasRoomFor(enrolled) {
		return nil, shared.NewDomainError("CLASS_FULL", "Class has reached its capacity")
	}
	return class, nil
}

// linkUsers checks the accounts exist in the school with the expected roles
func (s *StudentService) linkUsers(ctx context.Context, student *people.Student, studentUserID, parentUserID *uuid.UUID) error {
	if err := s.checkUser(ctx, student.TenantID, studentUserID, identity.RoleStudent); err != nil {
		return err
	}
	if err := s.checkUser(ctx, student.TenantID, parentUserID, identity.RoleParent); err != nil {
		return err
	}
	student.LinkUsers(studentUserID, parentUserID)
	return nil
}

func (s *StudentService) checkUser(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, role identity.Role) error {
	if userID == nil {
		return nil
	}
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, *userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("USER_NOT_FOUND", "Linked user not found")
		}
		return err
	}
	if user.Role != role {
		return shared.NewDomainError("INVALID_USER_ROLE", "Linked user must have the "+string(role)+" role")
	}
	return nil
}

// syncStudentUser points the student's login at the student record
func (s *StudentService) syncStudentUser(ctx context.Context, student *people.Student) {
	if student.StudentUserID == nil {
		return
	}
	user, err := s.userRepo.FindByIDForTenant(ctx, student.TenantID, *student.StudentUserID)
	if err != nil {
		s.logger.Warn("Failed to load student user", zap.Error(err))
		return
	}
	if user.ProfileID != nil && *user.ProfileID == student.ID {
		return
	}
	id := student.ID
	user.LinkProfile(&id)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("Failed to link student user profile", zap.Error(err))
	}
}

func (s *StudentService) find(ctx context.Context, tenantID, id uuid.UUID) (*people.Student, error) {
	student, err := s.studentRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("STUDENT_NOT_FOUND", "Student not found")
		}
		return nil, err
	}
	return student, nil
}

func (s *StudentService) publish(ctx context.Context, student *people.Student) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, student); err != nil {
		s.logger.Warn("Failed to publish student events", zap.Error(err))
	}
}
