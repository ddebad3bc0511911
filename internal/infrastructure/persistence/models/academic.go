package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
)

// ClassModel is the persistence model for the Class aggregate.
type ClassModel struct {
	TenantAggregateModel
	Name              string     `gorm:"type:varchar(100);not null"`
	GradeLevel        int        `gorm:"not null"`
	Section           string     `gorm:"type:varchar(20)"`
	AcademicYear      string     `gorm:"type:varchar(20)"`
	Capacity          int        `gorm:"not null;default:40"`
	Room              string     `gorm:"type:varchar(50)"`
	HomeroomTeacherID *uuid.UUID `gorm:"type:uuid;index"`
	IsActive          bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ClassModel) TableName() string {
	return "classes"
}

// ToDomain converts the persistence model to a domain Class.
func (m *ClassModel) ToDomain() *academic.Class {
	return &academic.Class{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		ClassDetails: academic.ClassDetails{
			Name:         m.Name,
			GradeLevel:   m.GradeLevel,
			Section:      m.Section,
			AcademicYear: m.AcademicYear,
			Capacity:     m.Capacity,
			Room:         m.Room,
		},
		HomeroomTeacherID: m.HomeroomTeacherID,
		IsActive:          m.IsActive,
	}
}

// ClassModelFromDomain creates a new persistence model from a domain Class.
func ClassModelFromDomain(c *academic.Class) *ClassModel {
	m := &ClassModel{
		Name:              c.Name,
		GradeLevel:        c.GradeLevel,
		Section:           c.Section,
		AcademicYear:      c.AcademicYear,
		Capacity:          c.Capacity,
		Room:              c.Room,
		HomeroomTeacherID: c.HomeroomTeacherID,
		IsActive:          c.IsActive,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

// SubjectModel is the persistence model for the Subject aggregate.
type SubjectModel struct {
	TenantAggregateModel
	Code        string `gorm:"type:varchar(30);not null"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SubjectModel) TableName() string {
	return "subjects"
}

// ToDomain converts the persistence model to a domain Subject.
func (m *SubjectModel) ToDomain() *academic.Subject {
	return &academic.Subject{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		IsActive:            m.IsActive,
	}
}

// SubjectModelFromDomain creates a new persistence model from a domain Subject.
func SubjectModelFromDomain(s *academic.Subject) *SubjectModel {
	m := &SubjectModel{
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
		IsActive:    s.IsActive,
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m
}

// ClassSubjectModel links a subject to a class with its teacher.
type ClassSubjectModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClassID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_class_subject"`
	SubjectID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_class_subject"`
	TeacherID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ClassSubjectModel) TableName() string {
	return "class_subjects"
}

// ToDomain converts the persistence model to a domain ClassSubject.
func (m *ClassSubjectModel) ToDomain() *academic.ClassSubject {
	return &academic.ClassSubject{
		ID:        m.ID,
		TenantID:  m.TenantID,
		ClassID:   m.ClassID,
		SubjectID: m.SubjectID,
		TeacherID: m.TeacherID,
		CreatedAt: m.CreatedAt,
	}
}

// ClassSubjectModelFromDomain creates a new persistence model from a domain ClassSubject.
func ClassSubjectModelFromDomain(cs *academic.ClassSubject) *ClassSubjectModel {
	return &ClassSubjectModel{
		ID:        cs.ID,
		TenantID:  cs.TenantID,
		ClassID:   cs.ClassID,
		SubjectID: cs.SubjectID,
		TeacherID: cs.TeacherID,
		CreatedAt: cs.CreatedAt,
	}
}
