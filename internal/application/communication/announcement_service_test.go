package communication

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/communication"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

type announcementFixture struct {
	repo      *MockAnnouncementRepository
	classes   *MockClassRepository
	students  *MockStudentRepository
	publisher *MockEventPublisher
	svc       *AnnouncementService
	tenantID  uuid.UUID
}

func newAnnouncementFixture() *announcementFixture {
	f := &announcementFixture{
		repo:      new(MockAnnouncementRepository),
		classes:   new(MockClassRepository),
		students:  new(MockStudentRepository),
		publisher: new(MockEventPublisher),
		tenantID:  uuid.New(),
	}
	f.svc = NewAnnouncementService(f.repo, f.classes, f.students, f.publisher, zap.NewNop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *announcementFixture) published(t *testing.T, title string, audience communication.Audience, classID *uuid.UUID) *communication.Announcement {
	t.Helper()
	a, err := communication.NewAnnouncement(f.tenantID, uuid.New(), communication.AnnouncementContent{
		Title:    title,
		Content:  "Details for " + title,
		Audience: audience,
		ClassID:  classID,
	})
	require.NoError(t, err)
	require.NoError(t, a.Publish(fixedNow.Add(-time.Hour)))
	a.ClearDomainEvents()
	return a
}

func TestAnnouncementService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes immediately when asked", func(t *testing.T) {
		f := newAnnouncementFixture()
		actor := identity.Actor{TenantID: f.tenantID, UserID: uuid.New(), Role: identity.RoleSchoolAdmin}
		f.repo.On("Save", ctx, mock.AnythingOfType("*communication.Announcement")).Return(nil)
		var published []shared.DomainEvent
		f.publisher.On("Publish", ctx, mock.Anything).Run(func(args mock.Arguments) {
			published = args.Get(1).([]shared.DomainEvent)
		}).Return(nil)

		resp, err := f.svc.Create(ctx, actor, AnnouncementRequest{
			Title:    "Sports day",
			Content:  "Friday on the main field",
			Audience: "parents",
			Priority: "high",
			Publish:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, "published", resp.Status)
		assert.Equal(t, "parents", resp.Audience)
		assert.Equal(t, actor.UserID, resp.AuthorID)
		require.NotNil(t, resp.PublishedAt)
		assert.True(t, resp.PublishedAt.Equal(fixedNow))

		types := make([]string, len(published))
		for i, e := range published {
			types[i] = e.EventType()
		}
		assert.Equal(t, []string{communication.EventTypeAnnouncementCreated, communication.EventTypeAnnouncementPublished}, types)
	})

	t.Run("defaults to a draft for everyone", func(t *testing.T) {
		f := newAnnouncementFixture()
		actor := identity.Actor{TenantID: f.tenantID, UserID: uuid.New(), Role: identity.RoleTeacher}
		f.repo.On("Save", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.Create(ctx, actor, AnnouncementRequest{Title: "Library hours", Content: "Open until 6pm"})
		require.NoError(t, err)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, "all", resp.Audience)
		assert.Equal(t, "normal", resp.Priority)
		assert.Nil(t, resp.PublishedAt)
	})

	t.Run("unknown class", func(t *testing.T) {
		f := newAnnouncementFixture()
		classID := uuid.New()
		f.classes.On("FindByID", ctx, f.tenantID, classID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(ctx, identity.Actor{TenantID: f.tenantID, UserID: uuid.New()}, AnnouncementRequest{
			Title: "Trip", Content: "Museum visit", ClassID: &classID,
		})
		requireCode(t, err, "CLASS_NOT_FOUND")
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("expiry before publish", func(t *testing.T) {
		f := newAnnouncementFixture()
		past := fixedNow.Add(-time.Minute)
		_, err := f.svc.Create(ctx, identity.Actor{TenantID: f.tenantID, UserID: uuid.New()}, AnnouncementRequest{
			Title: "Late", Content: "Too late", ExpiresAt: &past, Publish: true,
		})
		requireCode(t, err, "INVALID_EXPIRY")
	})
}

func TestAnnouncementService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("archived announcements are frozen", func(t *testing.T) {
		f := newAnnouncementFixture()
		a := f.published(t, "Exams", communication.AudienceAll, nil)
		require.NoError(t, a.Archive())
		f.repo.On("FindByID", ctx, f.tenantID, a.ID).Return(a, nil)

		_, err := f.svc.Update(ctx, f.tenantID, a.ID, AnnouncementRequest{Title: "Exams", Content: "Moved"})
		requireCode(t, err, "INVALID_STATE")
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing announcement", func(t *testing.T) {
		f := newAnnouncementFixture()
		id := uuid.New()
		f.repo.On("FindByID", ctx, f.tenantID, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Update(ctx, f.tenantID, id, AnnouncementRequest{Title: "x", Content: "y"})
		requireCode(t, err, "ANNOUNCEMENT_NOT_FOUND")
	})
}

func TestAnnouncementService_PublishTwice(t *testing.T) {
	ctx := context.Background()
	f := newAnnouncementFixture()
	a := f.published(t, "Holiday", communication.AudienceAll, nil)
	f.repo.On("FindByID", ctx, f.tenantID, a.ID).Return(a, nil)

	_, err := f.svc.Publish(ctx, f.tenantID, a.ID)
	requireCode(t, err, "INVALID_STATE")
}

func TestAnnouncementService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newAnnouncementFixture()
	a := f.published(t, "Old news", communication.AudienceAll, nil)
	f.repo.On("FindByID", ctx, f.tenantID, a.ID).Return(a, nil)
	f.repo.On("Delete", ctx, f.tenantID, a.ID).Return(nil)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == communication.EventTypeAnnouncementDeleted
	})).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, f.tenantID, a.ID))
	f.publisher.AssertExpectations(t)
}

func TestAnnouncementService_ListVisible(t *testing.T) {
	ctx := context.Background()
	classA, classB := uuid.New(), uuid.New()

	t.Run("student sees school-wide and own class", func(t *testing.T) {
		f := newAnnouncementFixture()
		userID := uuid.New()
		st, err := people.NewStudent(f.tenantID, "ADM-1", people.StudentProfile{FirstName: "Ada", LastName: "Obi"})
		require.NoError(t, err)
		require.NoError(t, st.AssignClass(&classA))
		f.students.On("FindByStudentUser", ctx, f.tenantID, userID).Return(st, nil)

		all := f.published(t, "Term dates", communication.AudienceAll, nil)
		mine := f.published(t, "Class A trip", communication.AudienceStudents, &classA)
		other := f.published(t, "Class B trip", communication.AudienceStudents, &classB)
		f.repo.On("FindVisible", ctx, f.tenantID,
			[]communication.Audience{communication.AudienceAll, communication.AudienceStudents},
			fixedNow, shared.MaxPageSize).
			Return([]*communication.Announcement{mine, other, all}, nil)

		list, err := f.svc.ListVisible(ctx, identity.Actor{TenantID: f.tenantID, UserID: userID, Role: identity.RoleStudent}, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Class A trip", list[0].Title)
		assert.Equal(t, "Term dates", list[1].Title)
	})

	t.Run("parent sees their children's classes", func(t *testing.T) {
		f := newAnnouncementFixture()
		userID := uuid.New()
		child, err := people.NewStudent(f.tenantID, "ADM-2", people.StudentProfile{FirstName: "Ben", LastName: "Obi"})
		require.NoError(t, err)
		require.NoError(t, child.AssignClass(&classB))
		f.students.On("FindByParentUser", ctx, f.tenantID, userID).Return([]*people.Student{child}, nil)

		f.repo.On("FindVisible", ctx, f.tenantID, mock.Anything, fixedNow, shared.MaxPageSize).
			Return([]*communication.Announcement{
				f.published(t, "Class A meeting", communication.AudienceParents, &classA),
				f.published(t, "Class B meeting", communication.AudienceParents, &classB),
			}, nil)

		list, err := f.svc.ListVisible(ctx, identity.Actor{TenantID: f.tenantID, UserID: userID, Role: identity.RoleParent}, 5)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Class B meeting", list[0].Title)
	})

	t.Run("staff see class announcements and the limit applies", func(t *testing.T) {
		f := newAnnouncementFixture()
		f.repo.On("FindVisible", ctx, f.tenantID, mock.Anything, fixedNow, shared.MaxPageSize).
			Return([]*communication.Announcement{
				f.published(t, "One", communication.AudienceStaff, &classA),
				f.published(t, "Two", communication.AudienceTeachers, nil),
				f.published(t, "Three", communication.AudienceAll, nil),
			}, nil)

		list, err := f.svc.ListVisible(ctx, identity.Actor{TenantID: f.tenantID, UserID: uuid.New(), Role: identity.RoleTeacher}, 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "One", list[0].Title)
		f.students.AssertNotCalled(t, "FindByStudentUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAnnouncementService_ArchiveExpired(t *testing.T) {
	ctx := context.Background()
	f := newAnnouncementFixture()

	expiring := func(title string) *communication.Announcement {
		expires := fixedNow.Add(-time.Minute)
		a, err := communication.NewAnnouncement(f.tenantID, uuid.New(), communication.AnnouncementContent{
			Title: title, Content: "c", ExpiresAt: &expires,
		})
		require.NoError(t, err)
		require.NoError(t, a.Publish(fixedNow.Add(-24*time.Hour)))
		a.ClearDomainEvents()
		return a
	}
	first, raced := expiring("First"), expiring("Raced")

	f.repo.On("FindExpired", ctx, fixedNow, expiryBatch).Return([]*communication.Announcement{first, raced}, nil)
	f.repo.On("Save", ctx, first).Return(nil)
	f.repo.On("Save", ctx, raced).Return(shared.ErrConcurrencyConflict)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	n, err := f.svc.ArchiveExpired(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, communication.AnnouncementStatusArchived, first.Status)
}
