package academic

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

// SubjectService manages subjects and which classes take them
type SubjectService struct {
	subjectRepo    academic.SubjectRepository
	classRepo      academic.ClassRepository
	teacherRepo    people.TeacherRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSubjectService creates a new subject service
func NewSubjectService(
	subjectRepo academic.SubjectRepository,
	classRepo academic.ClassRepository,
	teacherRepo people.TeacherRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *SubjectService {
	return &SubjectService{
		subjectRepo:    subjectRepo,
		classRepo:      classRepo,
		teacherRepo:    teacherRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates a subject
func (s *SubjectService) Create(ctx context.Context, actor identity.Actor, req CreateSubjectRequest) (*SubjectResponse, error) {
	subject, err := academic.NewSubject(actor.TenantID, req.Code, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	exists, err := s.subjectRepo.ExistsByCode(ctx, actor.TenantID, subject.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Subject code already exists")
	}
	subject.SetCreatedBy(actor.UserID)

	if err := s.subjectRepo.Save(ctx, subject); err != nil {
		return nil, err
	}
	s.publish(ctx, subject)

	s.logger.Info("Subject created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("subject_id", subject.ID.String()),
		zap.String("code", subject.Code))

	resp := ToSubjectResponse(subject)
	return &resp, nil
}

// Get returns a subject
func (s *SubjectService) Get(ctx context.Context, tenantID, id uuid.UUID) (*SubjectResponse, error) {
	subject, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToSubjectResponse(subject)
	return &resp, nil
}

// List lists subjects
func (s *SubjectService) List(ctx context.Context, tenantID uuid.UUID, filter SubjectListFilter) ([]SubjectResponse, int64, error) {
	f := filter.PageQuery.Filter()
	if filter.IsActive != nil {
		f = f.With("is_active", *filter.IsActive)
	}
	subjects, total, err := s.subjectRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SubjectResponse, len(subjects))
	for i, sub := range subjects {
		out[i] = ToSubjectResponse(sub)
	}
	return out, total, nil
}

// Update changes a subject
func (s *SubjectService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateSubjectRequest) (*SubjectResponse, error) {
	subject, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	active := subject.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}
	if err := subject.Update(req.Name, req.Description, active); err != nil {
		return nil, err
	}
	if err := s.subjectRepo.Save(ctx, subject); err != nil {
		return nil, err
	}
	s.publish(ctx, subject)

	resp := ToSubjectResponse(subject)
	return &resp, nil
}

// Delete removes a subject no class takes any more
func (s *SubjectService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	subject, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	links, err := s.subjectRepo.CountClassLinks(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if links > 0 {
		return shared.NewDomainError("IN_USE", "Subject is still assigned to classes")
	}
	if err := s.subjectRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	subject.AddDomainEvent(academic.NewSubjectDeletedEvent(subject))
	s.publish(ctx, subject)
	return nil
}

// AssignToClass links a subject to a class, optionally with its teacher
func (s *SubjectService) AssignToClass(ctx context.Context, tenantID, classID uuid.UUID, req AssignSubjectRequest) (*ClassSubjectResponse, error) {
	if _, err := s.classRepo.FindByID(ctx, tenantID, classID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CLASS_NOT_FOUND", "Class not found")
		}
		return nil, err
	}
	subject, err := s.find(ctx, tenantID, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if !subject.IsActive {
		return nil, shared.NewDomainError("SUBJECT_INACTIVE", "Subject is not active")
	}
	if req.TeacherID != nil {
		if _, err := s.teacherRepo.FindByID(ctx, tenantID, *req.TeacherID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("TEACHER_NOT_FOUND", "Teacher not found")
			}
			return nil, err
		}
	}

	_, err = s.subjectRepo.FindClassSubject(ctx, tenantID, classID, req.SubjectID)
	if err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Subject is already assigned to this class")
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	link := academic.NewClassSubject(tenantID, classID, req.SubjectID, req.TeacherID)
	if err := s.subjectRepo.AssignToClass(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("Subject assigned to class",
		zap.String("tenant_id", tenantID.String()),
		zap.String("class_id", classID.String()),
		zap.String("subject_id", req.SubjectID.String()))

	return toClassSubjectResponse(link, subject), nil
}

// RemoveFromClass unlinks a subject from a class
func (s *SubjectService) RemoveFromClass(ctx context.Context, tenantID, classID, subjectID uuid.UUID) error {
	if _, err := s.subjectRepo.FindClassSubject(ctx, tenantID, classID, subjectID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Subject is not assigned to this class")
		}
		return err
	}
	return s.subjectRepo.RemoveFromClass(ctx, tenantID, classID, subjectID)
}

// ListClassSubjects returns the subjects a class takes
func (s *SubjectService) ListClassSubjects(ctx context.Context, tenantID, classID uuid.UUID) ([]ClassSubjectResponse, error) {
	links, err := s.subjectRepo.FindClassSubjects(ctx, tenantID, classID)
	if err != nil {
		return nil, err
	}
	out := make([]ClassSubjectResponse, 0, len(links))
	for _, link := range links {
		subject, err := s.subjectRepo.FindByID(ctx, tenantID, link.SubjectID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *toClassSubjectResponse(link, subject))
	}
	return out, nil
}

func toClassSubjectResponse(link *academic.ClassSubject, subject *academic.Subject) *ClassSubjectResponse {
	return &ClassSubjectResponse{
		ID:          link.ID,
		ClassID:     link.ClassID,
		SubjectID:   link.SubjectID,
		SubjectCode: subject.Code,
		SubjectName: subject.Name,
		TeacherID:   link.TeacherID,
		CreatedAt:   link.CreatedAt,
	}
}

func (s *SubjectService) find(ctx context.Context, tenantID, id uuid.UUID) (*academic.Subject, error) {
	subject, err := s.subjectRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SUBJECT_NOT_FOUND", "Subject not found")
		}
		return nil, err
	}
	return subject, nil
}

func (s *SubjectService) publish(ctx context.Context, subject *academic.Subject) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, subject); err != nil {
		s.logger.Warn("Failed to publish subject events", zap.Error(err))
	}
}
