package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/logger"
	"github.com/schoolhub/backend/internal/infrastructure/persistence"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type isolationSetup struct {
	DB          *TestDB
	StudentRepo *persistence.GormStudentRepository
	ClassRepo   *persistence.GormClassRepository
	SchoolA     uuid.UUID
	SchoolB     uuid.UUID
}

func newIsolationSetup(t *testing.T) *isolationSetup {
	t.Helper()

	testDB := NewTestDB(t)
	s := &isolationSetup{
		DB:          testDB,
		StudentRepo: persistence.NewGormStudentRepository(testDB.DB),
		ClassRepo:   persistence.NewGormClassRepository(testDB.DB),
		SchoolA:     uuid.New(),
		SchoolB:     uuid.New(),
	}
	testDB.CreateTestSchool(s.SchoolA)
	testDB.CreateTestSchool(s.SchoolB)
	return s
}

func (s *isolationSetup) saveStudent(t *testing.T, schoolID uuid.UUID, admission string) *people.Student {
	t.Helper()

	student, err := people.NewStudent(schoolID, admission, people.StudentProfile{
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.NoError(t, s.StudentRepo.Save(context.Background(), student))
	return student
}

func TestTenantIsolation_Repositories(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := newIsolationSetup(t)
	ctx := context.Background()

	t.Run("student of school A is not found from school B", func(t *testing.T) {
		student := setup.saveStudent(t, setup.SchoolA, "A-001")

		found, err := setup.StudentRepo.FindByID(ctx, setup.SchoolA, student.ID)
		require.NoError(t, err)
		assert.Equal(t, student.ID, found.ID)

		_, err = setup.StudentRepo.FindByID(ctx, setup.SchoolB, student.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("admission numbers are unique per school only", func(t *testing.T) {
		setup.saveStudent(t, setup.SchoolA, "SHARED-1")
		setup.saveStudent(t, setup.SchoolB, "SHARED-1")

		existsA, err := setup.StudentRepo.ExistsByAdmissionNumber(ctx, setup.SchoolA, "SHARED-1", nil)
		require.NoError(t, err)
		existsB, err := setup.StudentRepo.ExistsByAdmissionNumber(ctx, setup.SchoolB, "SHARED-1", nil)
		require.NoError(t, err)

		assert.True(t, existsA)
		assert.True(t, existsB)
	})

	t.Run("listing only returns the school's own rows", func(t *testing.T) {
		students, total, err := setup.StudentRepo.FindAll(ctx, setup.SchoolB, shared.Filter{Page: 1, PageSize: 100})
		require.NoError(t, err)

		assert.Equal(t, int64(len(students)), total)
		for _, s := range students {
			assert.Equal(t, setup.SchoolB, s.TenantID)
		}
		assert.Equal(t, setup.DB.CountRows("students", setup.SchoolB), total)
	})

	t.Run("delete from another school does not remove the row", func(t *testing.T) {
		class, err := academic.NewClass(setup.SchoolA, academic.ClassDetails{
			Name:         "Grade 5A",
			GradeLevel:   5,
			AcademicYear: "2026/2027",
		})
		require.NoError(t, err)
		require.NoError(t, setup.ClassRepo.Save(ctx, class))

		err = setup.ClassRepo.Delete(ctx, setup.SchoolB, class.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = setup.ClassRepo.FindByID(ctx, setup.SchoolA, class.ID)
		assert.NoError(t, err)
	})
}

func TestTenantIsolation_ContextGuard(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := newIsolationSetup(t)
	setup.saveStudent(t, setup.SchoolA, "GUARD-A")
	setup.saveStudent(t, setup.SchoolB, "GUARD-B")

	t.Run("unscoped query is limited to the school in context", func(t *testing.T) {
		ctx := logger.WithTenantID(context.Background(), setup.SchoolA.String())

		var rows []models.StudentModel
		require.NoError(t, setup.DB.DB.WithContext(ctx).Find(&rows).Error)

		require.NotEmpty(t, rows)
		for _, row := range rows {
			assert.Equal(t, setup.SchoolA, row.TenantID)
		}
	})

	t.Run("without a school the query sees every school", func(t *testing.T) {
		var count int64
		require.NoError(t, setup.DB.DB.WithContext(context.Background()).
			Model(&models.StudentModel{}).Count(&count).Error)

		assert.GreaterOrEqual(t, count, int64(2))
	})

	t.Run("bulk update cannot cross schools", func(t *testing.T) {
		ctx := logger.WithTenantID(context.Background(), setup.SchoolA.String())

		require.NoError(t, setup.DB.DB.WithContext(ctx).
			Model(&models.StudentModel{}).
			Where("admission_number LIKE ?", "GUARD-%").
			Update("address", "moved").Error)

		var untouched int64
		require.NoError(t, setup.DB.DB.Model(&models.StudentModel{}).
			Where("tenant_id = ? AND address = ?", setup.SchoolB, "moved").
			Count(&untouched).Error)
		assert.Zero(t, untouched)
	})
}
