package people

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
)

// GuardianDTO holds guardian contact details
type GuardianDTO struct {
	Name  string `json:"name" binding:"omitempty,max=200"`
	Phone string `json:"phone" binding:"omitempty,max=50"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
}

// StudentProfileDTO carries the editable student fields
type StudentProfileDTO struct {
	FirstName      string       `json:"first_name" binding:"required,notblank,max=100"`
	LastName       string       `json:"last_name" binding:"required,notblank,max=100"`
	Gender         string       `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth    *shared.Date `json:"date_of_birth"`
	EnrollmentDate *shared.Date `json:"enrollment_date"`
	Address        string       `json:"address" binding:"omitempty,max=500"`
	Guardian       GuardianDTO  `json:"guardian"`
}

// CreateStudentRequest enrolls a student
type CreateStudentRequest struct {
	AdmissionNumber string `json:"admission_number" binding:"required,notblank,max=50"`
	StudentProfileDTO
	ClassID       *uuid.UUID `json:"class_id"`
	ParentUserID  *uuid.UUID `json:"parent_user_id"`
	StudentUserID *uuid.UUID `json:"student_user_id"`
}

// UpdateStudentRequest replaces the student profile and linked accounts
type UpdateStudentRequest struct {
	StudentProfileDTO
	ParentUserID  *uuid.UUID `json:"parent_user_id"`
	StudentUserID *uuid.UUID `json:"student_user_id"`
}

// AssignClassRequest moves a student; a nil class removes the assignment
type AssignClassRequest struct {
	ClassID *uuid.UUID `json:"class_id"`
}

// ChangeStudentStatusRequest changes the enrollment state
type ChangeStudentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended graduated transferred"`
}

// StudentListFilter filters the student list
type StudentListFilter struct {
	shared.PageQuery
	ClassID *uuid.UUID `form:"class_id,parser=encoding.TextUnmarshaler"`
	Status  string     `form:"status" binding:"omitempty,oneof=active suspended graduated transferred"`
	Gender  string     `form:"gender" binding:"omitempty,oneof=male female other"`
}

// StudentResponse is a student in API responses
type StudentResponse struct {
	ID              uuid.UUID    `json:"id"`
	AdmissionNumber string       `json:"admission_number"`
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	FullName        string       `json:"full_name"`
	Gender          string       `json:"gender,omitempty"`
	DateOfBirth     *shared.Date `json:"date_of_birth,omitempty"`
	EnrollmentDate  *shared.Date `json:"enrollment_date,omitempty"`
	Address         string       `json:"address"`
	Guardian        GuardianDTO  `json:"guardian"`
	ClassID         *uuid.UUID   `json:"class_id,omitempty"`
	ClassName       string       `json:"class_name,omitempty"`
	ParentUserID    *uuid.UUID   `json:"parent_user_id,omitempty"`
	StudentUserID   *uuid.UUID   `json:"student_user_id,omitempty"`
	Status          string       `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ToStudentResponse converts a domain student
func ToStudentResponse(s *people.Student) StudentResponse {
	return StudentResponse{
		ID:              s.ID,
		AdmissionNumber: s.AdmissionNumber,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		FullName:        s.FullName(),
		Gender:          string(s.Gender),
		DateOfBirth:     shared.DateFrom(s.DateOfBirth),
		EnrollmentDate:  shared.DateFrom(s.EnrollmentDate),
		Address:         s.Address,
		Guardian: GuardianDTO{
			Name:  s.Guardian.Name,
			Phone: s.Guardian.Phone,
			Email: s.Guardian.Email,
		},
		ClassID:       s.ClassID,
		ParentUserID:  s.ParentUserID,
		StudentUserID: s.StudentUserID,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (p StudentProfileDTO) toDomain() people.StudentProfile {
	return people.StudentProfile{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Gender:         people.Gender(p.Gender),
		DateOfBirth:    p.DateOfBirth.TimePtr(),
		EnrollmentDate: p.EnrollmentDate.TimePtr(),
		Address:        p.Address,
		Guardian: people.Guardian{
			Name:  p.Guardian.Name,
			Phone: p.Guardian.Phone,
			Email: p.Guardian.Email,
		},
	}
}

// TeacherProfileDTO carries the editable teacher fields
type TeacherProfileDTO struct {
	FirstName      string       `json:"first_name" binding:"required,notblank,max=100"`
	LastName       string       `json:"last_name" binding:"required,notblank,max=100"`
	Email          string       `json:"email" binding:"omitempty,email,max=200"`
	Phone          string       `json:"phone" binding:"omitempty,max=50"`
	Qualification  string       `json:"qualification" binding:"omitempty,max=200"`
	Specialization string       `json:"specialization" binding:"omitempty,max=200"`
	HireDate       *shared.Date `json:"hire_date"`
}

// CreateTeacherRequest hires a teacher
type CreateTeacherRequest struct {
	EmployeeNumber string `json:"employee_number" binding:"required,notblank,max=50"`
	TeacherProfileDTO
	UserID *uuid.UUID `json:"user_id"`
}

// UpdateTeacherRequest replaces the teacher profile
type UpdateTeacherRequest struct {
	TeacherProfileDTO
	UserID *uuid.UUID `json:"user_id"`
}

// ChangeTeacherStatusRequest changes the employment state
type ChangeTeacherStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active on_leave inactive"`
}

// TeacherListFilter filters the teacher list
type TeacherListFilter struct {
	shared.PageQuery
	Status string `form:"status" binding:"omitempty,oneof=active on_leave inactive"`
}

// TeacherResponse is a teacher in API responses
type TeacherResponse struct {
	ID             uuid.UUID    `json:"id"`
	EmployeeNumber string       `json:"employee_number"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	FullName       string       `json:"full_name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	Qualification  string       `json:"qualification"`
	Specialization string       `json:"specialization"`
	HireDate       *shared.Date `json:"hire_date,omitempty"`
	UserID         *uuid.UUID   `json:"user_id,omitempty"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ToTeacherResponse converts a domain teacher
func ToTeacherResponse(t *people.Teacher) TeacherResponse {
	return TeacherResponse{
		ID:             t.ID,
		EmployeeNumber: t.EmployeeNumber,
		FirstName:      t.FirstName,
		LastName:       t.LastName,
		FullName:       t.FullName(),
		Email:          t.Email,
		Phone:          t.Phone,
		Qualification:  t.Qualification,
		Specialization: t.Specialization,
		HireDate:       shared.DateFrom(t.HireDate),
		UserID:         t.UserID,
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func (p TeacherProfileDTO) toDomain() people.TeacherProfile {
	return people.TeacherProfile{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Phone:          p.Phone,
		Qualification:  p.Qualification,
		Specialization: p.Specialization,
		HireDate:       p.HireDate.TimePtr(),
	}
}
