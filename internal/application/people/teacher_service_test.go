package people

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTeacher(t *testing.T, tenantID uuid.UUID) *people.Teacher {
	t.Helper()
	tch, err := people.NewTeacher(tenantID, "emp-1", people.TeacherProfile{FirstName: "Ann", LastName: "Ode"})
	require.NoError(t, err)
	tch.ClearDomainEvents()
	return tch
}

func TestTeacherService_Create(t *testing.T) {
	ctx := context.Background()
	teachers := new(MockTeacherRepository)
	tenantID := uuid.New()
	svc := NewTeacherService(teachers, new(MockClassRepository), new(MockUserRepository), nil, zap.NewNop())
	actor := identity.Actor{TenantID: tenantID, UserID: uuid.New(), Role: identity.RoleSchoolAdmin}

	teachers.On("ExistsByEmployeeNumber", ctx, tenantID, "emp-9", (*uuid.UUID)(nil)).Return(false, nil)
	teachers.On("Save", ctx, mock.AnythingOfType("*people.Teacher")).Return(nil)

	resp, err := svc.Create(ctx, actor, CreateTeacherRequest{
		EmployeeNumber:    "emp-9",
		TeacherProfileDTO: TeacherProfileDTO{FirstName: "Ann", LastName: "Ode", Email: "ANN@school.test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "EMP-9", resp.EmployeeNumber)
	assert.Equal(t, "ann@school.test", resp.Email)
}

func TestTeacherService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("refused while homeroom teacher", func(t *testing.T) {
		teachers := new(MockTeacherRepository)
		classes := new(MockClassRepository)
		svc := NewTeacherService(teachers, classes, new(MockUserRepository), nil, zap.NewNop())
		tch := newTeacher(t, tenantID)
		teachers.On("FindByID", ctx, tenantID, tch.ID).Return(tch, nil)
		classes.On("CountByTeacher", ctx, tenantID, tch.ID).Return(int64(1), nil)

		err := svc.Delete(ctx, tenantID, tch.ID)
		requireCode(t, err, "IN_USE")
		teachers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes", func(t *testing.T) {
		teachers := new(MockTeacherRepository)
		classes := new(MockClassRepository)
		svc := NewTeacherService(teachers, classes, new(MockUserRepository), nil, zap.NewNop())
		tch := newTeacher(t, tenantID)
		teachers.On("FindByID", ctx, tenantID, tch.ID).Return(tch, nil)
		classes.On("CountByTeacher", ctx, tenantID, tch.ID).Return(int64(0), nil)
		teachers.On("Delete", ctx, tenantID, tch.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, tenantID, tch.ID))
		teachers.AssertExpectations(t)
	})
}

func TestTeacherService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	teachers := new(MockTeacherRepository)
	svc := NewTeacherService(teachers, new(MockClassRepository), new(MockUserRepository), nil, zap.NewNop())
	tch := newTeacher(t, tenantID)
	teachers.On("FindByID", ctx, tenantID, tch.ID).Return(tch, nil)
	teachers.On("Save", ctx, tch).Return(nil)

	resp, err := svc.ChangeStatus(ctx, tenantID, tch.ID, ChangeTeacherStatusRequest{Status: "on_leave"})
	require.NoError(t, err)
	assert.Equal(t, "on_leave", resp.Status)

	_, err = svc.ChangeStatus(ctx, tenantID, tch.ID, ChangeTeacherStatusRequest{Status: "on_leave"})
	requireCode(t, err, "INVALID_STATE")
}
