package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/people"
)

// StudentModel is the persistence model for the Student aggregate.
type StudentModel struct {
	TenantAggregateModel
	AdmissionNumber string               `gorm:"type:varchar(50);not null"`
	FirstName       string               `gorm:"type:varchar(100);not null"`
	LastName        string               `gorm:"type:varchar(100);not null"`
	Gender          people.Gender        `gorm:"type:varchar(10)"`
	DateOfBirth     *time.Time           `gorm:"type:date"`
	EnrollmentDate  *time.Time           `gorm:"type:date"`
	Address         string               `gorm:"type:text"`
	GuardianName    string               `gorm:"type:varchar(200)"`
	GuardianPhone   string               `gorm:"type:varchar(50)"`
	GuardianEmail   string               `gorm:"type:varchar(200)"`
	ClassID         *uuid.UUID           `gorm:"type:uuid;index"`
	ParentUserID    *uuid.UUID           `gorm:"type:uuid;index"`
	StudentUserID   *uuid.UUID           `gorm:"type:uuid"`
	Status          people.StudentStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student.
func (m *StudentModel) ToDomain() *people.Student {
	return &people.Student{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		AdmissionNumber:     m.AdmissionNumber,
		StudentProfile: people.StudentProfile{
			FirstName:      m.FirstName,
			LastName:       m.LastName,
			Gender:         m.Gender,
			DateOfBirth:    m.DateOfBirth,
			EnrollmentDate: m.EnrollmentDate,
			Address:        m.Address,
			Guardian: people.Guardian{
				Name:  m.GuardianName,
				Phone: m.GuardianPhone,
				Email: m.GuardianEmail,
			},
		},
		ClassID:       m.ClassID,
		ParentUserID:  m.ParentUserID,
		StudentUserID: m.StudentUserID,
		Status:        m.Status,
	}
}

// FromDomain populates the persistence model from a domain Student.
func (m *StudentModel) FromDomain(s *people.Student) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.AdmissionNumber = s.AdmissionNumber
	m.FirstName = s.FirstName
	m.LastName = s.LastName
	m.Gender = s.Gender
	m.DateOfBirth = s.DateOfBirth
	m.EnrollmentDate = s.EnrollmentDate
	m.Address = s.Address
	m.GuardianName = s.Guardian.Name
	m.GuardianPhone = s.Guardian.Phone
	m.GuardianEmail = s.Guardian.Email
	m.ClassID = s.ClassID
	m.ParentUserID = s.ParentUserID
	m.StudentUserID = s.StudentUserID
	m.Status = s.Status
}

// StudentModelFromDomain creates a new persistence model from a domain Student.
func StudentModelFromDomain(s *people.Student) *StudentModel {
	m := &StudentModel{}
	m.FromDomain(s)
	return m
}

// TeacherModel is the persistence model for the Teacher aggregate.
type TeacherModel struct {
	TenantAggregateModel
	EmployeeNumber string               `gorm:"type:varchar(50);not null"`
	FirstName      string               `gorm:"type:varchar(100);not null"`
	LastName       string               `gorm:"type:varchar(100);not null"`
	Email          string               `gorm:"type:varchar(200)"`
	Phone          string               `gorm:"type:varchar(50)"`
	Qualification  string               `gorm:"type:varchar(200)"`
	Specialization string               `gorm:"type:varchar(200)"`
	HireDate       *time.Time           `gorm:"type:date"`
	UserID         *uuid.UUID           `gorm:"type:uuid;index"`
	Status         people.TeacherStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (TeacherModel) TableName() string {
	return "teachers"
}

// ToDomain converts the persistence model to a domain Teacher.
func (m *TeacherModel) ToDomain() *people.Teacher {
	return &people.Teacher{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		EmployeeNumber:      m.EmployeeNumber,
		TeacherProfile: people.TeacherProfile{
			FirstName:      m.FirstName,
			LastName:       m.LastName,
			Email:          m.Email,
			Phone:          m.Phone,
			Qualification:  m.Qualification,
			Specialization: m.Specialization,
			HireDate:       m.HireDate,
		},
		UserID: m.UserID,
		Status: m.Status,
	}
}

// FromDomain populates the persistence model from a domain Teacher.
func (m *TeacherModel) FromDomain(t *people.Teacher) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.EmployeeNumber = t.EmployeeNumber
	m.FirstName = t.FirstName
	m.LastName = t.LastName
	m.Email = t.Email
	m.Phone = t.Phone
	m.Qualification = t.Qualification
	m.Specialization = t.Specialization
	m.HireDate = t.HireDate
	m.UserID = t.UserID
	m.Status = t.Status
}

// TeacherModelFromDomain creates a new persistence model from a domain Teacher.
func TeacherModelFromDomain(t *people.Teacher) *TeacherModel {
	m := &TeacherModel{}
	m.FromDomain(t)
	return m
}
