package communication

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// Audience selects who sees an announcement
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceStaff    Audience = "staff"
	AudienceTeachers Audience = "teachers"
	AudienceStudents Audience = "students"
	AudienceParents  Audience = "parents"
)

// ParseAudience validates an audience; empty means all
func ParseAudience(s string) (Audience, error) {
	a := Audience(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case "":
		return AudienceAll, nil
	case AudienceAll, AudienceStaff, AudienceTeachers, AudienceStudents, AudienceParents:
		return a, nil
	}
	return "", shared.NewDomainError("INVALID_AUDIENCE", "Audience must be all, staff, teachers, students or parents")
}

// AudiencesFor returns the audiences a role is part of
func AudiencesFor(role identity.Role) []Audience {
	switch role {
	case identity.RoleSuperAdmin, identity.RoleSchoolAdmin:
		return []Audience{AudienceAll, AudienceStaff}
	case identity.RoleTeacher:
		return []Audience{AudienceAll, AudienceStaff, AudienceTeachers}
	case identity.RoleStudent:
		return []Audience{AudienceAll, AudienceStudents}
	case identity.RoleParent:
		return []Audience{AudienceAll, AudienceParents}
	}
	return []Audience{AudienceAll}
}

// Roles returns the user roles reached by the audience
func (a Audience) Roles() []identity.Role {
	switch a {
	case AudienceStaff:
		return []identity.Role{identity.RoleSchoolAdmin, identity.RoleTeacher}
	case AudienceTeachers:
		return []identity.Role{identity.RoleTeacher}
	case AudienceStudents:
		return []identity.Role{identity.RoleStudent}
	case AudienceParents:
		return []identity.Role{identity.RoleParent}
	}
	return []identity.Role{identity.RoleSchoolAdmin, identity.RoleTeacher, identity.RoleStudent, identity.RoleParent}
}

// Priority of an announcement
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a priority; empty means normal
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return PriorityNormal, nil
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", shared.NewDomainError("INVALID_PRIORITY", "Priority must be normal, high or urgent")
}

// AnnouncementStatus is the lifecycle state of an announcement
type AnnouncementStatus string

const (
	AnnouncementStatusDraft     AnnouncementStatus = "draft"
	AnnouncementStatusPublished AnnouncementStatus = "published"
	AnnouncementStatusArchived  AnnouncementStatus = "archived"
)

// AnnouncementContent carries the editable fields of an announcement
type AnnouncementContent struct {
	Title     string
	Content   string
	Audience  Audience
	ClassID   *uuid.UUID
	Priority  Priority
	ExpiresAt *time.Time
}

// Announcement is a notice shown on dashboards and e-mailed on publish
type Announcement struct {
	shared.TenantAggregateRoot
	AnnouncementContent
	Status      AnnouncementStatus
	PublishedAt *time.Time
	AuthorID    uuid.UUID
}

// NewAnnouncement creates a draft announcement
func NewAnnouncement(tenantID, authorID uuid.UUID, content AnnouncementContent) (*Announcement, error) {
	content, err := content.normalize()
	if err != nil {
		return nil, err
	}
	a := &Announcement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AnnouncementContent: content,
		Status:              AnnouncementStatusDraft,
		AuthorID:            authorID,
	}
	a.SetCreatedBy(authorID)
	a.AddDomainEvent(NewAnnouncementEvent(EventTypeAnnouncementCreated, a))
	return a, nil
}

// Update replaces the content. Archived announcements are frozen.
func (a *Announcement) Update(content AnnouncementContent) error {
	if a.Status == AnnouncementStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived announcements cannot be edited")
	}
	content, err := content.normalize()
	if err != nil {
		return err
	}
	if a.PublishedAt != nil && content.ExpiresAt != nil && !content.ExpiresAt.After(*a.PublishedAt) {
		return shared.NewDomainError("INVALID_EXPIRY", "Expiry must be after the publish time")
	}
	a.AnnouncementContent = content
	a.Touch()
	a.AddDomainEvent(NewAnnouncementEvent(EventTypeAnnouncementUpdated, a))
	return nil
}

// Publish makes a draft visible and triggers notifications
func (a *Announcement) Publish(now time.Time) error {
	if a.Status != AnnouncementStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft announcements can be published")
	}
	if a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
		return shared.NewDomainError("INVALID_EXPIRY", "Expiry must be after the publish time")
	}
	a.Status = AnnouncementStatusPublished
	a.PublishedAt = &now
	a.Touch()
	a.AddDomainEvent(NewAnnouncementPublishedEvent(a))
	return nil
}

// Archive hides a published or draft announcement
func (a *Announcement) Archive() error {
	if a.Status == AnnouncementStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Announcement is already archived")
	}
	a.Status = AnnouncementStatusArchived
	a.Touch()
	a.AddDomainEvent(NewAnnouncementEvent(EventTypeAnnouncementArchived, a))
	return nil
}

// IsExpired reports whether the expiry time has passed
func (a *Announcement) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// VisibleTo reports whether a user with role (and optional class) sees the announcement at now
func (a *Announcement) VisibleTo(role identity.Role, classIDs []uuid.UUID, now time.Time) bool {
	if a.Status != AnnouncementStatusPublished || a.IsExpired(now) {
		return false
	}
	matched := false
	for _, aud := range AudiencesFor(role) {
		if aud == a.Audience {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if a.ClassID == nil || role.IsStaff() {
		return true
	}
	for _, id := range classIDs {
		if id == *a.ClassID {
			return true
		}
	}
	return false
}

func (c AnnouncementContent) normalize() (AnnouncementContent, error) {
	var err error
	if c.Title, err = shared.RequireText("INVALID_TITLE", "Title", c.Title, 200); err != nil {
		return c, err
	}
	if c.Content, err = shared.RequireText("INVALID_CONTENT", "Content", c.Content, 20000); err != nil {
		return c, err
	}
	if c.Audience, err = ParseAudience(string(c.Audience)); err != nil {
		return c, err
	}
	if c.Priority, err = ParsePriority(string(c.Priority)); err != nil {
		return c, err
	}
	if c.ClassID != nil && *c.ClassID == uuid.Nil {
		c.ClassID = nil
	}
	return c, nil
}
