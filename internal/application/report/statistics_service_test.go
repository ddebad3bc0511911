package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/report"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 19, 5, 30, 0, 0, time.UTC)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

type statsFixture struct {
	repo     *MockStatisticsRepository
	schools  *MockSchoolRepository
	cache    *cache.InMemoryQueryCache
	svc      *StatisticsService
	tenantID uuid.UUID
}

func newStatsFixture(t *testing.T) *statsFixture {
	t.Helper()
	f := &statsFixture{
		repo:    new(MockStatisticsRepository),
		schools: new(MockSchoolRepository),
		cache:   cache.NewInMemoryQueryCache(),
	}
	sch, err := school.NewSchool("GREEN", "Greenfield High")
	require.NoError(t, err)
	f.tenantID = sch.ID
	f.schools.On("FindByID", mock.Anything, f.tenantID).Return(sch, nil)
	f.svc = NewStatisticsService(f.repo, f.schools, f.cache, time.Minute, zap.NewNop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *statsFixture) expectOverview() {
	today := day(2026, 10, 19)
	f.repo.On("PeopleSummary", mock.Anything, f.tenantID).Return(&report.PeopleSummary{Students: 40, ActiveStudents: 38, Teachers: 4}, nil)
	f.repo.On("AttendanceTrend", mock.Anything, f.tenantID, day(2026, 9, 20), today).Return([]report.AttendancePoint{
		{Date: day(2026, 10, 16), Total: 10, Present: 7, Late: 1, Absent: 2},
		{Date: day(2026, 10, 17), Total: 10, Present: 9, Absent: 1},
	}, nil)
	f.repo.On("FinanceSummary", mock.Anything, f.tenantID, today).Return(&report.FinanceSummary{
		Billed:      decimal.NewFromInt(1000),
		Collected:   decimal.NewFromInt(250),
		Outstanding: decimal.NewFromInt(750),
	}, nil)
	f.repo.On("LowStockCount", mock.Anything, f.tenantID).Return(int64(2), nil)
	f.repo.On("PublishedAnnouncements", mock.Anything, f.tenantID, fixedNow).Return(int64(3), nil)
}

func TestStatisticsService_Overview(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t)
	f.expectOverview()

	o, err := f.svc.Overview(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), o.People.Students)
	assert.True(t, decimal.NewFromInt(85).Equal(o.AttendanceRate30d), o.AttendanceRate30d.String())
	assert.True(t, decimal.NewFromInt(25).Equal(o.CollectionRate), o.CollectionRate.String())
	assert.Equal(t, int64(2), o.LowStockItems)
	assert.Equal(t, int64(3), o.PublishedAnnouncements)

	t.Run("second call is served from cache", func(t *testing.T) {
		_, err := f.svc.Overview(ctx, f.tenantID)
		require.NoError(t, err)
		f.repo.AssertNumberOfCalls(t, "PeopleSummary", 1)
	})

	t.Run("invalidation forces a reload", func(t *testing.T) {
		require.NoError(t, f.cache.InvalidateTenant(ctx, f.tenantID))
		_, err := f.svc.Overview(ctx, f.tenantID)
		require.NoError(t, err)
		f.repo.AssertNumberOfCalls(t, "PeopleSummary", 2)
	})
}

func TestStatisticsService_Overview_UsesSchoolTimezone(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t)
	sch, err := school.NewSchool("EAST", "Eastside")
	require.NoError(t, err)
	settings := sch.Settings
	settings.Timezone = "Pacific/Auckland"
	require.NoError(t, sch.UpdateSettings(settings))
	f.schools.On("FindByID", mock.Anything, sch.ID).Return(sch, nil)

	// already the 20th in Auckland
	f.svc.now = func() time.Time { return time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC) }
	f.repo.On("FinanceSummary", mock.Anything, sch.ID, day(2026, 10, 20)).Return(&report.FinanceSummary{}, nil).Once()
	f.repo.On("PeopleSummary", mock.Anything, sch.ID).Return(&report.PeopleSummary{}, nil)
	f.repo.On("AttendanceTrend", mock.Anything, sch.ID, day(2026, 9, 21), day(2026, 10, 20)).Return([]report.AttendancePoint{}, nil)
	f.repo.On("LowStockCount", mock.Anything, sch.ID).Return(int64(0), nil)
	f.repo.On("PublishedAnnouncements", mock.Anything, sch.ID, mock.Anything).Return(int64(0), nil)

	o, err := f.svc.Overview(ctx, sch.ID)
	require.NoError(t, err)
	assert.True(t, o.AttendanceRate30d.IsZero())
	f.repo.AssertExpectations(t)
}

func TestStatisticsService_AttendanceTrend(t *testing.T) {
	ctx := context.Background()

	t.Run("computes the daily rate", func(t *testing.T) {
		f := newStatsFixture(t)
		from, to := shared.NewDate(day(2026, 10, 1)), shared.NewDate(day(2026, 10, 2))
		f.repo.On("AttendanceTrend", ctx, f.tenantID, day(2026, 10, 1), day(2026, 10, 2)).Return([]report.AttendancePoint{
			{Date: day(2026, 10, 1), Total: 4, Present: 2, Late: 1, Absent: 1},
		}, nil)

		points, err := f.svc.AttendanceTrend(ctx, f.tenantID, TrendQuery{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.True(t, decimal.NewFromInt(75).Equal(points[0].Rate))
	})

	t.Run("rejects inverted and oversized ranges", func(t *testing.T) {
		f := newStatsFixture(t)
		late, early := shared.NewDate(day(2026, 10, 2)), shared.NewDate(day(2026, 10, 1))
		_, err := f.svc.AttendanceTrend(ctx, f.tenantID, TrendQuery{From: &late, To: &early})
		requireCode(t, err, "INVALID_DATE_RANGE")

		long := shared.NewDate(day(2024, 1, 1))
		_, err = f.svc.AttendanceTrend(ctx, f.tenantID, TrendQuery{From: &long, To: &early})
		requireCode(t, err, "INVALID_DATE_RANGE")
	})
}

func TestStatisticsService_FeeCollectionTrend(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t)
	f.repo.On("FeeCollectionTrend", ctx, f.tenantID, day(2026, 8, 1)).Return([]report.FeePoint{
		{Month: "2026-09", Billed: decimal.NewFromInt(500), Collected: decimal.NewFromInt(200)},
	}, nil)

	points, err := f.svc.FeeCollectionTrend(ctx, f.tenantID, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, []string{"2026-08", "2026-09", "2026-10"}, []string{points[0].Month, points[1].Month, points[2].Month})
	assert.True(t, points[0].Billed.IsZero())
	assert.True(t, decimal.NewFromInt(500).Equal(points[1].Billed))
}

func TestStatisticsService_EnrollmentByClass(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t)
	f.repo.On("EnrollmentByClass", ctx, f.tenantID).Return([]report.ClassEnrollment{
		{ClassName: "Grade 5 A", Capacity: 30, Enrolled: 24},
		{ClassName: "Grade 6 A", Enrolled: 10},
	}, nil)

	list, err := f.svc.EnrollmentByClass(ctx, f.tenantID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, decimal.NewFromInt(80).Equal(list[0].FillRate))
	assert.True(t, list[1].FillRate.IsZero())
}

func TestStatisticsService_WarmOverviews(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(t)
	broken := uuid.New()
	f.schools.On("FindActiveIDs", ctx).Return([]uuid.UUID{f.tenantID, broken}, nil)
	f.schools.On("FindByID", mock.Anything, broken).Return(nil, shared.ErrNotFound)
	f.expectOverview()
	f.repo.On("PeopleSummary", mock.Anything, broken).Return(nil, errors.New("db down"))

	n, err := f.svc.WarmOverviews(ctx)
	assert.Equal(t, 2, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), broken.String())

	hit, err := f.cache.Get(ctx, f.tenantID, "overview", &report.Overview{})
	require.NoError(t, err)
	assert.True(t, hit)
}
