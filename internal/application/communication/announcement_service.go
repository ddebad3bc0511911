package communication

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultVisibleLimit is how many announcements a dashboard shows
	DefaultVisibleLimit = 10
	expiryBatch         = 200
)

// AnnouncementService manages school announcements
type AnnouncementService struct {
	announcementRepo communication.AnnouncementRepository
	classRepo        academic.ClassRepository
	studentRepo      people.StudentRepository
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
	now              func() time.Time
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(
	announcementRepo communication.AnnouncementRepository,
	classRepo academic.ClassRepository,
	studentRepo people.StudentRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		announcementRepo: announcementRepo,
		classRepo:        classRepo,
		studentRepo:      studentRepo,
		eventPublisher:   eventPublisher,
		logger:           logger,
		now:              time.Now,
	}
}

// Create drafts an announcement, publishing it straight away when asked
func (s *AnnouncementService) Create(ctx context.Context, actor identity.Actor, req AnnouncementRequest) (*AnnouncementResponse, error) {
	if err := s.checkClass(ctx, actor.TenantID, req.ClassID); err != nil {
		return nil, err
	}
	a, err := communication.NewAnnouncement(actor.TenantID, actor.UserID, req.content())
	if err != nil {
		return nil, err
	}
	if req.Publish {
		if err := a.Publish(s.now()); err != nil {
			return nil, err
		}
	}
	if err := s.announcementRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, a)

	s.logger.Info("Announcement created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("announcement_id", a.ID.String()),
		zap.String("status", string(a.Status)))

	resp := ToAnnouncementResponse(a)
	return &resp, nil
}

// Get returns an announcement
func (s *AnnouncementService) Get(ctx context.Context, tenantID, id uuid.UUID) (*AnnouncementResponse, error) {
	a, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAnnouncementResponse(a)
	return &resp, nil
}

// List lists announcements for managers
func (s *AnnouncementService) List(ctx context.Context, tenantID uuid.UUID, filter AnnouncementListFilter) ([]AnnouncementResponse, int64, error) {
	f := filter.PageQuery.Filter().
		With("status", filter.Status).
		With("audience", filter.Audience).
		With("priority", filter.Priority)
	if filter.ClassID != nil {
		f = f.With("class_id", *filter.ClassID)
	}

	list, total, err := s.announcementRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	return responses(list), total, nil
}

// Update replaces an announcement's content
func (s *AnnouncementService) Update(ctx context.Context, tenantID, id uuid.UUID, req AnnouncementRequest) (*AnnouncementResponse, error) {
	a, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkClass(ctx, tenantID, req.ClassID); err != nil {
		return nil, err
	}
	if err := a.Update(req.content()); err != nil {
		return nil, err
	}
	if req.Publish && a.Status == communication.AnnouncementStatusDraft {
		if err := a.Publish(s.now()); err != nil {
			return nil, err
		}
	}
	if err := s.announcementRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, a)

	resp := ToAnnouncementResponse(a)
	return &resp, nil
}

// Publish makes a draft visible and notifies its audience
func (s *AnnouncementService) Publish(ctx context.Context, tenantID, id uuid.UUID) (*AnnouncementResponse, error) {
	now := s.now()
	return s.transition(ctx, tenantID, id, "published", func(a *communication.Announcement) error {
		return a.Publish(now)
	})
}

// Archive hides an announcement
func (s *AnnouncementService) Archive(ctx context.Context, tenantID, id uuid.UUID) (*AnnouncementResponse, error) {
	return s.transition(ctx, tenantID, id, "archived", (*communication.Announcement).Archive)
}

// Delete removes an announcement
func (s *AnnouncementService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	a, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.announcementRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	a.AddDomainEvent(communication.NewAnnouncementEvent(communication.EventTypeAnnouncementDeleted, a))
	s.publish(ctx, a)

	s.logger.Info("Announcement deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("announcement_id", id.String()))
	return nil
}

// ListVisible returns what the actor's dashboard shows: published, unexpired,
// addressed to the actor's role and, for class announcements, to their class.
func (s *AnnouncementService) ListVisible(ctx context.Context, actor identity.Actor, limit int) ([]AnnouncementResponse, error) {
	if limit <= 0 {
		limit = DefaultVisibleLimit
	}
	if limit > shared.MaxPageSize {
		limit = shared.MaxPageSize
	}
	classIDs, err := s.classesOf(ctx, actor)
	if err != nil {
		return nil, err
	}

	now := s.now()
	// class filtering happens here, so ask the store for headroom
	list, err := s.announcementRepo.FindVisible(ctx, actor.TenantID, communication.AudiencesFor(actor.Role), now, shared.MaxPageSize)
	if err != nil {
		return nil, err
	}
	visible := make([]*communication.Announcement, 0, limit)
	for _, a := range list {
		if a.VisibleTo(actor.Role, classIDs, now) {
			visible = append(visible, a)
			if len(visible) == limit {
				break
			}
		}
	}
	return responses(visible), nil
}

// ArchiveExpired archives published announcements of every school whose expiry passed.
// Returns how many were archived.
func (s *AnnouncementService) ArchiveExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.announcementRepo.FindExpired(ctx, now, expiryBatch)
	if err != nil {
		return 0, err
	}
	archived := 0
	for _, a := range expired {
		if err := a.Archive(); err != nil {
			continue
		}
		if err := s.announcementRepo.Save(ctx, a); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return archived, err
		}
		s.publish(ctx, a)
		archived++
	}
	if archived > 0 {
		s.logger.Info("Expired announcements archived", zap.Int("count", archived))
	}
	return archived, nil
}

// classesOf returns the classes a student or parent belongs to through their students
func (s *AnnouncementService) classesOf(ctx context.Context, actor identity.Actor) ([]uuid.UUID, error) {
	switch actor.Role {
	case identity.RoleStudent:
		st, err := s.studentRepo.FindByStudentUser(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if st.ClassID == nil {
			return nil, nil
		}
		return []uuid.UUID{*st.ClassID}, nil
	case identity.RoleParent:
		children, err := s.studentRepo.FindByParentUser(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			return nil, err
		}
		var ids []uuid.UUID
		for _, c := range children {
			if c.ClassID != nil {
				ids = append(ids, *c.ClassID)
			}
		}
		return ids, nil
	}
	return nil, nil
}

func (s *AnnouncementService) transition(ctx context.Context, tenantID, id uuid.UUID, what string, fn func(*communication.Announcement) error) (*AnnouncementResponse, error) {
	a, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	if err := s.announcementRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, a)

	s.logger.Info("Announcement "+what,
		zap.String("tenant_id", tenantID.String()),
		zap.String("announcement_id", id.String()))

	resp := ToAnnouncementResponse(a)
	return &resp, nil
}

func (s *AnnouncementService) checkClass(ctx context.Context, tenantID uuid.UUID, classID *uuid.UUID) error {
	if classID == nil || *classID == uuid.Nil {
		return nil
	}
	if _, err := s.classRepo.FindByID(ctx, tenantID, *classID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CLASS_NOT_FOUND", "Class not found")
		}
		return err
	}
	return nil
}

func (s *AnnouncementService) find(ctx context.Context, tenantID, id uuid.UUID) (*communication.Announcement, error) {
	a, err := s.announcementRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ANNOUNCEMENT_NOT_FOUND", "Announcement not found")
		}
		return nil, err
	}
	return a, nil
}

func (s *AnnouncementService) publish(ctx context.Context, a *communication.Announcement) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, a); err != nil {
		s.logger.Warn("Failed to publish announcement events", zap.Error(err))
	}
}

func responses(list []*communication.Announcement) []AnnouncementResponse {
	out := make([]AnnouncementResponse, len(list))
	for i, a := range list {
		out[i] = ToAnnouncementResponse(a)
	}
	return out
}
