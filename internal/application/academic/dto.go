package academic

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// ClassRequest creates or replaces a class
type ClassRequest struct {
	Name         string `json:"name" binding:"required,notblank,max=100"`
	GradeLevel   int    `json:"grade_level" binding:"required,min=1,max=13"`
	Section      string `json:"section" binding:"omitempty,max=20"`
	AcademicYear string `json:"academic_year" binding:"omitempty,max=20"`
	Capacity     int    `json:"capacity" binding:"omitempty,min=1,max=1000"`
	Room         string `json:"room" binding:"omitempty,max=50"`
	IsActive     *bool  `json:"is_active"`
}

func (r ClassRequest) details() academic.ClassDetails {
	return academic.ClassDetails{
		Name:         r.Name,
		GradeLevel:   r.GradeLevel,
		Section:      r.Section,
		AcademicYear: r.AcademicYear,
		Capacity:     r.Capacity,
		Room:         r.Room,
	}
}

// AssignTeacherRequest sets the homeroom teacher; nil clears it
type AssignTeacherRequest struct {
	TeacherID *uuid.UUID `json:"teacher_id"`
}

// ClassListFilter filters the class list
type ClassListFilter struct {
	shared.PageQuery
	GradeLevel   int        `form:"grade_level" binding:"omitempty,min=1,max=13"`
	AcademicYear string     `form:"academic_year" binding:"omitempty,max=20"`
	TeacherID    *uuid.UUID `form:"teacher_id,parser=encoding.TextUnmarshaler"`
	IsActive     *bool      `form:"is_active"`
}

// ClassResponse is a class in API responses
type ClassResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	DisplayName       string     `json:"display_name"`
	GradeLevel        int        `json:"grade_level"`
	Section           string     `json:"section"`
	AcademicYear      string     `json:"academic_year"`
	Capacity          int        `json:"capacity"`
	Room              string     `json:"room"`
	HomeroomTeacherID *uuid.UUID `json:"homeroom_teacher_id,omitempty"`
	IsActive          bool       `json:"is_active"`
	StudentCount      *int64     `json:"student_count,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ToClassResponse converts a domain class
func ToClassResponse(c *academic.Class) ClassResponse {
	return ClassResponse{
		ID:                c.ID,
		Name:              c.Name,
		DisplayName:       c.DisplayName(),
		GradeLevel:        c.GradeLevel,
		Section:           c.Section,
		AcademicYear:      c.AcademicYear,
		Capacity:          c.Capacity,
		Room:              c.Room,
		HomeroomTeacherID: c.HomeroomTeacherID,
		IsActive:          c.IsActive,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// CreateSubjectRequest creates a subject
type CreateSubjectRequest struct {
	Code        string `json:"code" binding:"required,notblank,max=20"`
	Name        string `json:"name" binding:"required,notblank,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// UpdateSubjectRequest changes a subject; the code is immutable
type UpdateSubjectRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	IsActive    *bool  `json:"is_active"`
}

// SubjectListFilter filters the subject list
type SubjectListFilter struct {
	shared.PageQuery
	IsActive *bool `form:"is_active"`
}

// SubjectResponse is a subject in API responses
type SubjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSubjectResponse converts a domain subject
func ToSubjectResponse(s *academic.Subject) SubjectResponse {
	return SubjectResponse{
		ID:          s.ID,
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// AssignSubjectRequest links a subject to a class
type AssignSubjectRequest struct {
	SubjectID uuid.UUID  `json:"subject_id" binding:"required"`
	TeacherID *uuid.UUID `json:"teacher_id"`
}

// ClassSubjectResponse is a subject taught in a class
type ClassSubjectResponse struct {
	ID          uuid.UUID  `json:"id"`
	ClassID     uuid.UUID  `json:"class_id"`
	SubjectID   uuid.UUID  `json:"subject_id"`
	SubjectCode string     `json:"subject_code"`
	SubjectName string     `json:"subject_name"`
	TeacherID   *uuid.UUID `json:"teacher_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
