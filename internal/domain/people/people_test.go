package people

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStudentProfile() StudentProfile {
	dob := time.Date(2012, 3, 14, 0, 0, 0, 0, time.UTC)
	return StudentProfile{
		FirstName:   " Amina ",
		LastName:    "Otieno",
		Gender:      "Female",
		DateOfBirth: &dob,
		Guardian:    Guardian{Name: "Grace Otieno", Email: "Grace@Example.com"},
	}
}

func TestNewStudent(t *testing.T) {
	schoolID := uuid.New()

	t.Run("creates an active student", func(t *testing.T) {
		s, err := NewStudent(schoolID, "adm-001", validStudentProfile())
		require.NoError(t, err)

		assert.Equal(t, "ADM-001", s.AdmissionNumber)
		assert.Equal(t, "Amina", s.FirstName)
		assert.Equal(t, GenderFemale, s.Gender)
		assert.Equal(t, "grace@example.com", s.Guardian.Email)
		assert.Equal(t, StudentStatusActive, s.Status)
		assert.NotNil(t, s.EnrollmentDate)
		assert.Equal(t, "Amina Otieno", s.FullName())
		assert.Len(t, s.GetDomainEvents(), 1)
	})

	t.Run("requires names and admission number", func(t *testing.T) {
		_, err := NewStudent(schoolID, "", validStudentProfile())
		assert.EqualError(t, err, "Admission number is required")

		p := validStudentProfile()
		p.FirstName = "  "
		_, err = NewStudent(schoolID, "A1", p)
		assert.EqualError(t, err, "First name is required")
	})

	t.Run("rejects future date of birth", func(t *testing.T) {
		p := validStudentProfile()
		future := time.Now().AddDate(0, 0, 2)
		p.DateOfBirth = &future
		_, err := NewStudent(schoolID, "A1", p)
		assert.Error(t, err)
	})

	t.Run("rejects unknown gender and bad guardian email", func(t *testing.T) {
		p := validStudentProfile()
		p.Gender = "robot"
		_, err := NewStudent(schoolID, "A1", p)
		assert.Error(t, err)

		p = validStudentProfile()
		p.Guardian.Email = "nope"
		_, err = NewStudent(schoolID, "A1", p)
		assert.Error(t, err)
	})
}

func TestStudent_ChangeStatus(t *testing.T) {
	s, err := NewStudent(uuid.New(), "A1", validStudentProfile())
	require.NoError(t, err)
	classID := uuid.New()
	require.NoError(t, s.AssignClass(&classID))
	s.ClearDomainEvents()

	require.NoError(t, s.ChangeStatus(StudentStatusSuspended))
	assert.Equal(t, &classID, s.ClassID)

	require.NoError(t, s.ChangeStatus(StudentStatusGraduated))
	assert.Nil(t, s.ClassID)
	assert.Error(t, s.ChangeStatus(StudentStatusGraduated))
	assert.Error(t, s.ChangeStatus("expelled"))

	assert.Error(t, s.AssignClass(&classID))
	assert.Len(t, s.GetDomainEvents(), 3)
}

func TestStudent_UpdateProfileKeepsEnrollmentDate(t *testing.T) {
	s, err := NewStudent(uuid.New(), "A1", validStudentProfile())
	require.NoError(t, err)
	enrolled := *s.EnrollmentDate

	p := validStudentProfile()
	p.LastName = "Wanjiru"
	require.NoError(t, s.UpdateProfile(p))
	assert.Equal(t, "Wanjiru", s.LastName)
	assert.Equal(t, enrolled, *s.EnrollmentDate)
}

func TestStudent_VisibleTo(t *testing.T) {
	tenantID := uuid.New()
	s, err := NewStudent(tenantID, "A1", validStudentProfile())
	require.NoError(t, err)
	kid, parent := uuid.New(), uuid.New()
	s.LinkUsers(&kid, &parent)

	assert.True(t, s.VisibleTo(identity.Actor{TenantID: tenantID, UserID: kid, Role: identity.RoleStudent}))
	assert.True(t, s.VisibleTo(identity.Actor{TenantID: tenantID, UserID: parent, Role: identity.RoleParent}))
	assert.False(t, s.VisibleTo(identity.Actor{TenantID: tenantID, UserID: uuid.New(), Role: identity.RoleParent}))
	assert.False(t, s.VisibleTo(identity.Actor{TenantID: tenantID, UserID: parent, Role: identity.RoleStudent}))
	assert.True(t, s.VisibleTo(identity.Actor{TenantID: tenantID, UserID: uuid.New(), Role: identity.RoleTeacher}))
	assert.False(t, s.VisibleTo(identity.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: identity.RoleSchoolAdmin}))
}

func TestNewTeacher(t *testing.T) {
	schoolID := uuid.New()

	teacher, err := NewTeacher(schoolID, "emp-7", TeacherProfile{FirstName: "John", LastName: "Kamau", Email: "JK@school.org"})
	require.NoError(t, err)
	assert.Equal(t, "EMP-7", teacher.EmployeeNumber)
	assert.Equal(t, "jk@school.org", teacher.Email)
	assert.Equal(t, TeacherStatusActive, teacher.Status)

	require.NoError(t, teacher.ChangeStatus(TeacherStatusOnLeave))
	assert.Error(t, teacher.ChangeStatus(TeacherStatusOnLeave))
	assert.Error(t, teacher.ChangeStatus("retired"))

	_, err = NewTeacher(schoolID, "", TeacherProfile{FirstName: "A", LastName: "B"})
	assert.Error(t, err)
	_, err = NewTeacher(schoolID, "E1", TeacherProfile{FirstName: "A", LastName: "B", Email: "bad"})
	assert.Error(t, err)
}
