package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/report"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultCacheTTL applies when no TTL is configured
	DefaultCacheTTL = 5 * time.Minute

	attendanceWindowDays = 30
	maxTrendDays         = 366
	defaultFeeMonths     = 6
	maxFeeMonths         = 24
)

// StatisticsService aggregates school statistics. Results are cached per school
// and dropped by the QueryCacheInvalidator whenever that school changes.
type StatisticsService struct {
	statsRepo  report.StatisticsRepository
	schoolRepo school.Repository
	cache      cache.QueryCache
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewStatisticsService creates a new statistics service. A nil cache disables caching.
func NewStatisticsService(
	statsRepo report.StatisticsRepository,
	schoolRepo school.Repository,
	queryCache cache.QueryCache,
	ttl time.Duration,
	logger *zap.Logger,
) *StatisticsService {
	if queryCache == nil {
		queryCache = cache.NopQueryCache{}
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &StatisticsService{
		statsRepo:  statsRepo,
		schoolRepo: schoolRepo,
		cache:      queryCache,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Overview returns the school's statistics cards
func (s *StatisticsService) Overview(ctx context.Context, tenantID uuid.UUID) (*report.Overview, error) {
	return cached(ctx, s, tenantID, "overview", func() (*report.Overview, error) {
		return s.overview(ctx, tenantID)
	})
}

func (s *StatisticsService) overview(ctx context.Context, tenantID uuid.UUID) (*report.Overview, error) {
	now := s.now()
	today := s.today(ctx, tenantID)

	people, err := s.statsRepo.PeopleSummary(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	trend, err := s.statsRepo.AttendanceTrend(ctx, tenantID, today.AddDate(0, 0, -(attendanceWindowDays-1)), today)
	if err != nil {
		return nil, err
	}
	fin, err := s.statsRepo.FinanceSummary(ctx, tenantID, today)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.statsRepo.LowStockCount(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	announcements, err := s.statsRepo.PublishedAnnouncements(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	var attended, total int64
	for _, p := range trend {
		attended += p.Present + p.Late
		total += p.Total
	}
	return &report.Overview{
		People:                 *people,
		AttendanceRate30d:      report.Percent(attended, total),
		Finance:                *fin,
		CollectionRate:         fin.CollectionRate(),
		LowStockItems:          lowStock,
		PublishedAnnouncements: announcements,
		GeneratedAt:            now.UTC(),
	}, nil
}

// AttendanceTrend returns the daily attendance rate over a period
func (s *StatisticsService) AttendanceTrend(ctx context.Context, tenantID uuid.UUID, q TrendQuery) ([]report.AttendancePoint, error) {
	to := s.today(ctx, tenantID)
	if q.To != nil {
		to = attendance.Day(q.To.Time)
	}
	from := to.AddDate(0, 0, -(attendanceWindowDays - 1))
	if q.From != nil {
		from = attendance.Day(q.From.Time)
	}
	if from.After(to) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "from must not be after to")
	}
	if to.Sub(from) > maxTrendDays*24*time.Hour {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", fmt.Sprintf("A trend covers at most %d days", maxTrendDays))
	}

	key := fmt.Sprintf("attendance:%s:%s", from.Format(shared.DateLayout), to.Format(shared.DateLayout))
	return cached(ctx, s, tenantID, key, func() ([]report.AttendancePoint, error) {
		points, err := s.statsRepo.AttendanceTrend(ctx, tenantID, from, to)
		if err != nil {
			return nil, err
		}
		for i := range points {
			points[i].Rate = report.Percent(points[i].Present+points[i].Late, points[i].Total)
		}
		return points, nil
	})
}

// FeeCollectionTrend returns billed versus collected fees for the last months,
// oldest first, with empty months included.
func (s *StatisticsService) FeeCollectionTrend(ctx context.Context, tenantID uuid.UUID, months int) ([]report.FeePoint, error) {
	if months <= 0 {
		months = defaultFeeMonths
	}
	if months > maxFeeMonths {
		months = maxFeeMonths
	}
	today := s.today(ctx, tenantID)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	return cached(ctx, s, tenantID, fmt.Sprintf("fees:%s:%d", start.Format("2006-01"), months), func() ([]report.FeePoint, error) {
		points, err := s.statsRepo.FeeCollectionTrend(ctx, tenantID, start)
		if err != nil {
			return nil, err
		}
		byMonth := make(map[string]report.FeePoint, len(points))
		for _, p := range points {
			byMonth[p.Month] = p
		}
		out := make([]report.FeePoint, months)
		for i := range out {
			month := start.AddDate(0, i, 0).Format("2006-01")
			p, ok := byMonth[month]
			if !ok {
				p = report.FeePoint{Month: month, Billed: decimal.Zero, Collected: decimal.Zero}
			}
			out[i] = p
		}
		return out, nil
	})
}

// ExamPerformance returns average percentage and pass rate per subject
func (s *StatisticsService) ExamPerformance(ctx context.Context, tenantID uuid.UUID, term string) ([]report.SubjectPerformance, error) {
	return cached(ctx, s, tenantID, "exams:"+term, func() ([]report.SubjectPerformance, error) {
		return s.statsRepo.ExamPerformance(ctx, tenantID, term)
	})
}

// EnrollmentByClass returns the headcount of each active class
func (s *StatisticsService) EnrollmentByClass(ctx context.Context, tenantID uuid.UUID) ([]report.ClassEnrollment, error) {
	return cached(ctx, s, tenantID, "enrollment", func() ([]report.ClassEnrollment, error) {
		list, err := s.statsRepo.EnrollmentByClass(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		for i := range list {
			if list[i].Capacity > 0 {
				list[i].FillRate = report.Percent(list[i].Enrolled, int64(list[i].Capacity))
			}
		}
		return list, nil
	})
}

// Platform returns totals across every school
func (s *StatisticsService) Platform(ctx context.Context) (*report.PlatformSummary, error) {
	return cached(ctx, s, identity.PlatformTenantID, "platform", func() (*report.PlatformSummary, error) {
		return s.statsRepo.PlatformSummary(ctx)
	})
}

// WarmOverviews recomputes the overview of every active school whose cached copy expired.
// Returns how many schools were visited.
func (s *StatisticsService) WarmOverviews(ctx context.Context) (int, error) {
	ids, err := s.schoolRepo.FindActiveIDs(ctx)
	if err != nil {
		return 0, err
	}
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if _, err := s.Overview(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("school %s: %w", id, err))
		}
	}
	return len(ids), errors.Join(errs...)
}

// today is the school's current date, falling back to UTC
func (s *StatisticsService) today(ctx context.Context, tenantID uuid.UUID) time.Time {
	now := s.now()
	sch, err := s.schoolRepo.FindByID(ctx, tenantID)
	switch {
	case err == nil:
		now = now.In(sch.Settings.Location())
	case !errors.Is(err, shared.ErrNotFound):
		s.logger.Warn("Failed to load school timezone", zap.Error(err))
	}
	return attendance.Day(now)
}

// cached serves key from the query cache or loads and stores it.
// Cache failures degrade to a direct load.
func cached[T any](ctx context.Context, s *StatisticsService, tenantID uuid.UUID, key string, load func() (T, error)) (T, error) {
	var out T
	hit, err := s.cache.Get(ctx, tenantID, key, &out)
	if err != nil {
		s.logger.Warn("Query cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return out, nil
	}

	out, err = load()
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, tenantID, key, out, s.ttl); err != nil {
		s.logger.Warn("Query cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}
