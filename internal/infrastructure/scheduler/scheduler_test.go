package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/schoolhub/backend/internal/infrastructure/cache"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        time.Second,
		RetryAttempts:     2,
		RetryDelay:        5 * time.Millisecond,
	}
}

type runLog struct {
	mu   sync.Mutex
	runs []Run
}

func (l *runLog) observe(r *Run, _ time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, *r)
}

func (l *runLog) statuses() []RunStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]RunStatus, len(l.runs))
	for i, r := range l.runs {
		out[i] = r.Status
	}
	return out
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(testConfig(), nil, zap.NewNop())
	noop := func(context.Context) error { return nil }

	assert.ErrorIs(t, s.Register(Task{Name: "", Interval: time.Minute, Run: noop}), ErrInvalidTask)
	assert.ErrorIs(t, s.Register(Task{Name: "x", Interval: 0, Run: noop}), ErrInvalidTask)
	require.NoError(t, s.Register(Task{Name: "invoice-overdue-sweep", Interval: time.Hour, Run: noop}))
	assert.ErrorIs(t, s.Register(Task{Name: "invoice-overdue-sweep", Interval: time.Hour, Run: noop}), ErrDuplicateTask)
	assert.Equal(t, []string{"invoice-overdue-sweep"}, s.Tasks())

	assert.ErrorIs(t, s.Trigger("invoice-overdue-sweep"), ErrSchedulerNotRunning)
	assert.ErrorIs(t, s.Trigger("unknown"), ErrTaskNotFound)
}

func TestScheduler_TickRunsTask(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(testConfig(), nil, zap.NewNop())
	require.NoError(t, s.Register(Task{
		Name:     "announcement-expiry",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_RetriesThenGivesUp(t *testing.T) {
	var calls atomic.Int32
	log := &runLog{}
	s := NewScheduler(testConfig(), nil, zap.NewNop(), WithObserver(log.observe))
	require.NoError(t, s.Register(Task{
		Name:     "flaky",
		Interval: time.Hour,
		Run: func(context.Context) error {
			calls.Add(1)
			return errors.New("database unavailable")
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Trigger("flaky"))

	assert.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
	assert.Equal(t, []RunStatus{RunStatusFailed, RunStatusFailed, RunStatusFailed}, log.statuses())

	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_RecoversPanics(t *testing.T) {
	cfg := testConfig()
	cfg.RetryAttempts = 0
	log := &runLog{}
	s := NewScheduler(cfg, nil, zap.NewNop(), WithObserver(log.observe))
	require.NoError(t, s.Register(Task{
		Name:     "panics",
		Interval: time.Hour,
		Run:      func(context.Context) error { panic("nil class") },
	}))

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Trigger("panics"))
	assert.Eventually(t, func() bool { return len(log.statuses()) == 1 }, time.Second, 5*time.Millisecond)

	log.mu.Lock()
	assert.Contains(t, log.runs[0].Error, "nil class")
	log.mu.Unlock()
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_JobTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.JobTimeout = 10 * time.Millisecond
	cfg.RetryAttempts = 0
	log := &runLog{}
	s := NewScheduler(cfg, nil, zap.NewNop(), WithObserver(log.observe))
	require.NoError(t, s.Register(Task{
		Name:     "slow",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Trigger("slow"))
	assert.Eventually(t, func() bool { return len(log.statuses()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, RunStatusFailed, log.statuses()[0])
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_LockSkipsDuplicateRuns(t *testing.T) {
	lock := cache.NewInMemoryJobLock()
	defer lock.Close()

	var calls atomic.Int32
	log := &runLog{}
	s := NewScheduler(testConfig(), lock, zap.NewNop(), WithObserver(log.observe))
	require.NoError(t, s.Register(Task{
		Name:     "invoice-overdue-sweep",
		Interval: time.Hour,
		Run: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Trigger("invoice-overdue-sweep"))
	require.NoError(t, s.Trigger("invoice-overdue-sweep"))

	assert.Eventually(t, func() bool { return len(log.statuses()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.ElementsMatch(t, []RunStatus{RunStatusSuccess, RunStatusSkipped}, log.statuses())
	require.NoError(t, s.Stop(context.Background()))
}

func TestRun_Lifecycle(t *testing.T) {
	r := NewRun("sweep", 1)
	assert.Equal(t, RunStatusPending, r.Status)

	r.Start()
	r.Fail("boom")
	assert.True(t, r.ShouldRetry())
	r.ScheduleRetry()
	assert.Equal(t, 1, r.RetryCount)
	assert.Empty(t, r.Error)

	r.Start()
	r.Fail("boom")
	assert.False(t, r.ShouldRetry())
}

func TestLockTTL(t *testing.T) {
	assert.Equal(t, 54*time.Minute, lockTTL(time.Hour))
	assert.Equal(t, time.Second, lockTTL(100*time.Millisecond))
}
