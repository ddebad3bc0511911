// Package scheduler runs periodic maintenance tasks (overdue invoice sweep,
// announcement expiry) on a bounded worker pool with per-run timeouts and
// bounded retries.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/infrastructure/cache"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RunStatus represents the status of a task run
type RunStatus string

const (
	RunStatusPending RunStatus = "PENDING"
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
	RunStatusSkipped RunStatus = "SKIPPED"
)

// Task is a named job executed every Interval
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Run is one execution of a task, including its retries
type Run struct {
	ID          uuid.UUID
	Task        string
	Status      RunStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

// NewRun creates a pending run
func NewRun(task string, maxRetries int) *Run {
	return &Run{ID: uuid.New(), Task: task, Status: RunStatusPending, MaxRetries: maxRetries}
}

// Start marks the run as running
func (r *Run) Start() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
	r.Error = ""
}

// Complete marks the run as successful
func (r *Run) Complete() {
	now := time.Now()
	r.Status = RunStatusSuccess
	r.CompletedAt = &now
}

// Fail marks the run as failed
func (r *Run) Fail(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.CompletedAt = &now
	r.Error = err
}

// ShouldRetry returns true if the run failed and has retries left
func (r *Run) ShouldRetry() bool {
	return r.Status == RunStatusFailed && r.RetryCount < r.MaxRetries
}

// ScheduleRetry resets the run for another attempt
func (r *Run) ScheduleRetry() {
	r.RetryCount++
	r.Status = RunStatusPending
	r.Error = ""
}

// RunObserver is notified when a run finishes. Used by telemetry and tests.
type RunObserver func(run *Run, duration time.Duration)

// Scheduler ticks registered tasks and executes their runs
type Scheduler struct {
	config   config.SchedulerConfig
	lock     cache.JobLock
	logger   *zap.Logger
	observer RunObserver

	tasks  map[string]Task
	runs   chan *Run
	cancel context.CancelFunc
	ctx    context.Context
	wg     sync.WaitGroup
	mu     sync.Mutex

	isRunning bool
}

// Option configures the scheduler
type Option func(*Scheduler)

// WithObserver registers a callback invoked after every run
func WithObserver(o RunObserver) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// NewScheduler creates a scheduler. lock keeps replicas from running the
// same tick twice; pass cache.NewInMemoryJobLock() for a single instance.
func NewScheduler(cfg config.SchedulerConfig, lock cache.JobLock, logger *zap.Logger, opts ...Option) *Scheduler {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 2
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	s := &Scheduler{
		config: cfg,
		lock:   lock,
		logger: logger,
		tasks:  make(map[string]Task),
		runs:   make(chan *Run, 32),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a task. Tasks must be registered before Start.
func (s *Scheduler) Register(task Task) error {
	if task.Name == "" || task.Run == nil || task.Interval <= 0 {
		return ErrInvalidTask
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, exists := s.tasks[task.Name]; exists {
		return ErrDuplicateTask
	}
	s.tasks[task.Name] = task
	return nil
}

// Tasks returns the registered task names
func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	return names
}

// Start launches the workers and one ticker per task
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	tasks := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(s.ctx, i)
	}
	for _, t := range tasks {
		s.wg.Add(1)
		go s.tick(s.ctx, t)
	}

	s.logger.Info("Scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Int("tasks", len(tasks)),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels pending work and waits for running tasks to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// Trigger queues an immediate run of the named task
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	_, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return ErrTaskNotFound
	}
	return s.submit(NewRun(name, s.config.RetryAttempts))
}

func (s *Scheduler) submit(run *Run) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	select {
	case s.runs <- run:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Scheduler) tick(ctx context.Context, task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.submit(NewRun(task.Name, s.config.RetryAttempts)); err != nil {
				s.logger.Warn("Failed to queue task run", zap.String("task", task.Name), zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case run := <-s.runs:
			s.process(ctx, run, workerID)
		}
	}
}

func (s *Scheduler) process(ctx context.Context, run *Run, workerID int) {
	s.mu.Lock()
	task, ok := s.tasks[run.Task]
	s.mu.Unlock()
	if !ok {
		return
	}

	// Only the first attempt competes for the lock; retries already own the tick.
	if run.RetryCount == 0 && s.lock != nil {
		acquired, err := s.lock.TryAcquire(ctx, "task:"+task.Name, lockTTL(task.Interval))
		if err != nil {
			s.logger.Warn("Task lock unavailable, running anyway", zap.String("task", task.Name), zap.Error(err))
		} else if !acquired {
			run.Status = RunStatusSkipped
			s.logger.Debug("Task already ran on another instance", zap.String("task", task.Name))
			s.observe(run, 0)
			return
		}
	}

	run.Start()
	logger := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("run_id", run.ID.String()),
		zap.String("task", task.Name),
		zap.Int("attempt", run.RetryCount+1),
	)
	logger.Info("Running task")

	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := safeRun(runCtx, task.Run)
	cancel()
	duration := time.Since(*run.StartedAt)

	if err == nil {
		run.Complete()
		logger.Info("Task completed", zap.Duration("duration", duration))
		s.observe(run, duration)
		return
	}

	run.Fail(err.Error())
	logger.Error("Task failed", zap.Duration("duration", duration), zap.Error(err))
	s.observe(run, duration)

	if run.ShouldRetry() && ctx.Err() == nil {
		run.ScheduleRetry()
		s.retryLater(ctx, run)
	}
}

func (s *Scheduler) retryLater(ctx context.Context, run *Run) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(s.config.RetryDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			if err := s.submit(run); err != nil {
				s.logger.Warn("Failed to queue retry", zap.String("task", run.Task), zap.Error(err))
			}
		}
	}()
}

func (s *Scheduler) observe(run *Run, d time.Duration) {
	if s.observer != nil {
		s.observer(run, d)
	}
}

// lockTTL keeps the tick lock slightly shorter than the interval so the next tick can take it
func lockTTL(interval time.Duration) time.Duration {
	ttl := interval * 9 / 10
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

func safeRun(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn(ctx)
}
