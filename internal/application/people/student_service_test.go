package people

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type studentFixture struct {
	students *MockStudentRepository
	classes  *MockClassRepository
	users    *MockUserRepository
	svc      *StudentService
	tenantID uuid.UUID
	actor    identity.Actor
}

func newStudentFixture() *studentFixture {
	f := &studentFixture{
		students: new(MockStudentRepository),
		classes:  new(MockClassRepository),
		users:    new(MockUserRepository),
		tenantID: uuid.New(),
	}
	f.actor = identity.Actor{TenantID: f.tenantID, UserID: uuid.New(), Role: identity.RoleSchoolAdmin}
	f.svc = NewStudentService(f.students, f.classes, f.users, nil, zap.NewNop())
	return f
}

func newClass(t *testing.T, tenantID uuid.UUID, capacity int) *academic.Class {
	t.Helper()
	c, err := academic.NewClass(tenantID, academic.ClassDetails{Name: "Grade 5", GradeLevel: 5, Section: "A", Capacity: capacity})
	require.NoError(t, err)
	return c
}

func newStudent(t *testing.T, tenantID uuid.UUID) *people.Student {
	t.Helper()
	s, err := people.NewStudent(tenantID, "s-001", people.StudentProfile{FirstName: "Amy", LastName: "Lee"})
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestStudentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and places in class", func(t *testing.T) {
		f := newStudentFixture()
		class := newClass(t, f.tenantID, 30)
		f.students.On("ExistsByAdmissionNumber", ctx, f.tenantID, "S-002", (*uuid.UUID)(nil)).Return(false, nil)
		f.classes.On("FindByID", ctx, f.tenantID, class.ID).Return(class, nil)
		f.students.On("CountByClass", ctx, f.tenantID, class.ID).Return(int64(10), nil)
		f.students.On("Save", ctx, mock.AnythingOfType("*people.Student")).Return(nil)

		resp, err := f.svc.Create(ctx, f.actor, CreateStudentRequest{
			AdmissionNumber:   "S-002",
			StudentProfileDTO: StudentProfileDTO{FirstName: "Ben", LastName: "Ray", Gender: "male"},
			ClassID:           &class.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ben Ray", resp.FullName)
		assert.Equal(t, "Grade 5 A", resp.ClassName)
		assert.Equal(t, "active", resp.Status)
	})

	t.Run("duplicate admission number", func(t *testing.T) {
		f := newStudentFixture()
		f.students.On("ExistsByAdmissionNumber", ctx, f.tenantID, "S-001", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := f.svc.Create(ctx, f.actor, CreateStudentRequest{
			AdmissionNumber:   "S-001",
			StudentProfileDTO: StudentProfileDTO{FirstName: "Ben", LastName: "Ray"},
		})
		requireCode(t, err, "ALREADY_EXISTS")
	})

	t.Run("parent link must be a parent account", func(t *testing.T) {
		f := newStudentFixture()
		teacher, err := identity.NewActiveUser(f.tenantID, "teach", "Teach1234", identity.RoleTeacher)
		require.NoError(t, err)
		f.students.On("ExistsByAdmissionNumber", ctx, f.tenantID, "S-003", (*uuid.UUID)(nil)).Return(false, nil)
		f.users.On("FindByIDForTenant", ctx, f.tenantID, teacher.ID).Return(teacher, nil)

		_, err = f.svc.Create(ctx, f.actor, CreateStudentRequest{
			AdmissionNumber:   "S-003",
			StudentProfileDTO: StudentProfileDTO{FirstName: "Cid", LastName: "Moe"},
			ParentUserID:      &teacher.ID,
		})
		requireCode(t, err, "INVALID_USER_ROLE")
		f.students.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestStudentService_AssignClass(t *testing.T) {
	ctx := context.Background()

	t.Run("full class is refused", func(t *testing.T) {
		f := newStudentFixture()
		student := newStudent(t, f.tenantID)
		class := newClass(t, f.tenantID, 2)
		f.students.On("FindByID", ctx, f.tenantID, student.ID).Return(student, nil)
		f.classes.On("FindByID", ctx, f.tenantID, class.ID).Return(class, nil)
		f.students.On("CountByClass", ctx, f.tenantID, class.ID).Return(int64(2), nil)

		_, err := f.svc.AssignClass(ctx, f.tenantID, student.ID, AssignClassRequest{ClassID: &class.ID})
		requireCode(t, err, "CLASS_FULL")
		assert.Nil(t, student.ClassID)
	})

	t.Run("unknown class", func(t *testing.T) {
		f := newStudentFixture()
		student := newStudent(t, f.tenantID)
		classID := uuid.New()
		f.students.On("FindByID", ctx, f.tenantID, student.ID).Return(student, nil)
		f.classes.On("FindByID", ctx, f.tenantID, classID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.AssignClass(ctx, f.tenantID, student.ID, AssignClassRequest{ClassID: &classID})
		requireCode(t, err, "CLASS_NOT_FOUND")
	})

	t.Run("nil class removes the assignment", func(t *testing.T) {
		f := newStudentFixture()
		student := newStudent(t, f.tenantID)
		classID := uuid.New()
		require.NoError(t, student.AssignClass(&classID))
		f.students.On("FindByID", ctx, f.tenantID, student.ID).Return(student, nil)
		f.students.On("Save", ctx, student).Return(nil)

		resp, err := f.svc.AssignClass(ctx, f.tenantID, student.ID, AssignClassRequest{})
		require.NoError(t, err)
		assert.Nil(t, resp.ClassID)
	})
}

func TestStudentService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture()
	student := newStudent(t, f.tenantID)
	classID := uuid.New()
	require.NoError(t, student.AssignClass(&classID))
	f.students.On("FindByID", ctx, f.tenantID, student.ID).Return(student, nil)
	f.students.On("Save", ctx, student).Return(nil)

	resp, err := f.svc.ChangeStatus(ctx, f.tenantID, student.ID, ChangeStudentStatusRequest{Status: "graduated"})
	require.NoError(t, err)
	assert.Equal(t, "graduated", resp.Status)
	assert.Nil(t, resp.ClassID)
}

func TestStudentService_Import(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture()
	class := newClass(t, f.tenantID, 40)

	csv := "Admission Number,First Name,Last Name,Gender,Class\n" +
		"S001,Amy,Lee,female,Grade 5\n" +
		"S002,Ben,Ray,male,\n" +
		"S003,Cid,,male,\n" +
		"S001,Dup,Row,,\n" +
		"S004,Eve,Kim,other,Grade 9\n"

	f.students.On("ExistingAdmissionNumbers", ctx, f.tenantID, []string{"S001", "S002", "S004"}).
		Return(map[string]bool{"S002": true}, nil)
	f.classes.On("FindByName", ctx, f.tenantID, "Grade 5").Return(class, nil)
	f.classes.On("FindByName", ctx, f.tenantID, "Grade 9").Return(nil, shared.ErrNotFound)
	f.students.On("CountByClass", ctx, f.tenantID, class.ID).Return(int64(12), nil)
	f.students.On("SaveBatch", ctx, mock.MatchedBy(func(s []*people.Student) bool {
		return len(s) == 1 && s[0].AdmissionNumber == "S001" && s[0].ClassID != nil && *s[0].ClassID == class.ID
	})).Return(nil)

	result, err := f.svc.Import(ctx, f.actor, "students.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 4, result.Skipped)

	codes := map[string]int{}
	for _, e := range result.Errors {
		codes[e.Code]++
	}
	assert.Equal(t, 1, codes[importer.CodeRequired])
	assert.Equal(t, 1, codes[importer.CodeDuplicateInFile])
	assert.Equal(t, 1, codes[importer.CodeDuplicateInDB])
	assert.Equal(t, 1, codes[importer.CodeReference])
	f.students.AssertExpectations(t)
}

func TestStudentService_ImportRespectsClassCapacity(t *testing.T) {
	ctx := context.Background()

	t.Run("fills remaining seats then rejects", func(t *testing.T) {
		f := newStudentFixture()
		class := newClass(t, f.tenantID, 3)

		csv := "Admission Number,First Name,Last Name,Class\n" +
			"S001,Amy,Lee,Grade 5\n" +
			"S002,Ben,Ray,grade 5\n" +
			"S003,Cid,Orr,Grade 5\n" +
			"S004,Dee,Fox,\n"

		f.students.On("ExistingAdmissionNumbers", ctx, f.tenantID, []string{"S001", "S002", "S003", "S004"}).
			Return(map[string]bool{}, nil)
		f.classes.On("FindByName", ctx, f.tenantID, "Grade 5").Return(class, nil).Once()
		f.students.On("CountByClass", ctx, f.tenantID, class.ID).Return(int64(1), nil).Once()
		f.students.On("SaveBatch", ctx, mock.MatchedBy(func(s []*people.Student) bool {
			return len(s) == 3 && s[0].ClassID != nil && s[1].ClassID != nil && s[2].ClassID == nil
		})).Return(nil)

		result, err := f.svc.Import(ctx, f.actor, "students.csv", []byte(csv))
		require.NoError(t, err)
		assert.Equal(t, 3, result.Imported)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, importer.CodeRejected, result.Errors[0].Code)
		assert.Equal(t, 4, result.Errors[0].Row)
		f.students.AssertExpectations(t)
	})

	t.Run("full class imports nobody into it", func(t *testing.T) {
		f := newStudentFixture()
		class := newClass(t, f.tenantID, 1)

		csv := "Admission Number,First Name,Last Name,Class\n" +
			"S001,Amy,Lee,Grade 5\n" +
			"S002,Ben,Ray,Grade 5\n" +
			"S003,Cid,Orr,Grade 5\n"

		f.students.On("ExistingAdmissionNumbers", ctx, f.tenantID, []string{"S001", "S002", "S003"}).
			Return(map[string]bool{}, nil)
		f.classes.On("FindByName", ctx, f.tenantID, "Grade 5").Return(class, nil)
		f.students.On("CountByClass", ctx, f.tenantID, class.ID).Return(int64(1), nil)

		result, err := f.svc.Import(ctx, f.actor, "students.csv", []byte(csv))
		require.NoError(t, err)
		assert.Zero(t, result.Imported)
		assert.Len(t, result.Errors, 3)
		f.students.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("inactive class", func(t *testing.T) {
		f := newStudentFixture()
		class := newClass(t, f.tenantID, 30)
		class.SetActive(false)

		csv := "Admission Number,First Name,Last Name,Class\nS001,Amy,Lee,Grade 5\n"
		f.students.On("ExistingAdmissionNumbers", ctx, f.tenantID, []string{"S001"}).Return(map[string]bool{}, nil)
		f.classes.On("FindByName", ctx, f.tenantID, "Grade 5").Return(class, nil)
		f.students.On("CountByClass", ctx, f.tenantID, class.ID).Return(int64(0), nil)

		result, err := f.svc.Import(ctx, f.actor, "students.csv", []byte(csv))
		require.NoError(t, err)
		assert.Zero(t, result.Imported)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, importer.CodeRejected, result.Errors[0].Code)
	})
}

func TestStudentService_ImportMissingColumns(t *testing.T) {
	f := newStudentFixture()
	_, err := f.svc.Import(context.Background(), f.actor, "students.csv", []byte("name\nAmy\n"))
	requireCode(t, err, "IMPORT_MISSING_COLUMNS")
}

func TestStudentService_Export(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture()
	student := newStudent(t, f.tenantID)
	f.students.On("FindAll", ctx, f.tenantID, mock.Anything).Return([]*people.Student{student}, int64(1), nil)

	data, name, err := f.svc.Export(ctx, f.tenantID, StudentListFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, name, "students-")
	f.students.AssertNumberOfCalls(t, "FindAll", 1)
}

func TestStudentService_ListMine(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture()
	child := newStudent(t, f.tenantID)
	parent := identity.Actor{TenantID: f.tenantID, UserID: uuid.New(), Role: identity.RoleParent}
	f.students.On("FindByParentUser", ctx, f.tenantID, parent.UserID).Return([]*people.Student{child}, nil)

	out, err := f.svc.ListMine(ctx, parent)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, child.ID, out[0].ID)

	_, err = f.svc.ListMine(ctx, f.actor)
	requireCode(t, err, "FORBIDDEN")
}
