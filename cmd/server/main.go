package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	academicapp "github.com/schoolhub/backend/internal/application/academic"
	attendanceapp "github.com/schoolhub/backend/internal/application/attendance"
	commapp "github.com/schoolhub/backend/internal/application/communication"
	examsapp "github.com/schoolhub/backend/internal/application/exams"
	financeapp "github.com/schoolhub/backend/internal/application/finance"
	identityapp "github.com/schoolhub/backend/internal/application/identity"
	inventoryapp "github.com/schoolhub/backend/internal/application/inventory"
	peopleapp "github.com/schoolhub/backend/internal/application/people"
	reportapp "github.com/schoolhub/backend/internal/application/report"
	schoolapp "github.com/schoolhub/backend/internal/application/school"
	"github.com/schoolhub/backend/internal/infrastructure/auth"
	"github.com/schoolhub/backend/internal/infrastructure/cache"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"github.com/schoolhub/backend/internal/infrastructure/event"
	"github.com/schoolhub/backend/internal/infrastructure/logger"
	"github.com/schoolhub/backend/internal/infrastructure/notification"
	"github.com/schoolhub/backend/internal/infrastructure/persistence"
	"github.com/schoolhub/backend/internal/infrastructure/persistence/tenant"
	"github.com/schoolhub/backend/internal/infrastructure/printing"
	"github.com/schoolhub/backend/internal/infrastructure/scheduler"
	"github.com/schoolhub/backend/internal/infrastructure/storage"
	"github.com/schoolhub/backend/internal/infrastructure/telemetry"
	"github.com/schoolhub/backend/internal/interfaces/http/handler"
	"github.com/schoolhub/backend/internal/interfaces/http/middleware"
	"github.com/schoolhub/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/schoolhub/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			SchoolHub Backend API
//	@version		1.0
//	@description	Multi-tenant school management backend: people, academics, attendance, exams, fees, inventory and communication.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/schoolhub/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logger.WithCore(logger.NewRollbarCore(logger.RollbarConfig{
		Token:       cfg.Rollbar.Token,
		Environment: cfg.Rollbar.Environment,
		CodeVersion: cfg.App.Version,
	})))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		logger.FlushRollbar()
		_ = logger.Sync(log)
	}()

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	}))

	log.Info("Starting SchoolHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := tenant.RegisterCallbacks(db.DB); err != nil {
		log.Fatal("Failed to register tenant guard", zap.Error(err))
	}
	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry.DBSlowQueryThresh, log); err != nil {
			log.Warn("Failed to instrument database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Redis is optional; every consumer has an in-memory fallback
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = auth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory stores", zap.Error(err))
			redisClient = nil
		} else {
			defer func() {
				_ = redisClient.Close()
			}()
		}
	}

	var tokenBlacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		tokenBlacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	cacheFactory := cache.NewFactory(cfg.Cache, redisClient, cache.WithLogger(log))
	queryCache := cacheFactory.QueryCache()

	objectStorage, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	renderer := printing.NewRenderer(cfg.Printing, log)
	defer func() {
		_ = renderer.Close()
	}()
	templates, err := printing.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to load print templates", zap.Error(err))
	}
	printer := printing.NewPrinter(templates, renderer)

	mailer := notification.NewDispatcher(notification.NewEmailSender(cfg.Email, log), log)

	eventBus := event.NewInMemoryEventBus(log)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	schoolRepo := persistence.NewGormSchoolRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	teacherRepo := persistence.NewGormTeacherRepository(db.DB)
	classRepo := persistence.NewGormClassRepository(db.DB)
	subjectRepo := persistence.NewGormSubjectRepository(db.DB)
	attendanceRepo := persistence.NewGormAttendanceRepository(db.DB)
	examRepo := persistence.NewGormExamRepository(db.DB)
	resultRepo := persistence.NewGormResultRepository(db.DB)
	feeRepo := persistence.NewGormFeeStructureRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	itemRepo := persistence.NewGormInventoryItemRepository(db.DB)
	announcementRepo := persistence.NewGormAnnouncementRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	statisticsRepo := persistence.NewGormStatisticsRepository(db.DB)

	// Identity and tenancy
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, schoolRepo, jwtService, tokenBlacklist,
		identityapp.AuthServiceConfig{
			MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
			LockDuration:     cfg.Auth.LockDuration,
		}, log)
	userService := identityapp.NewUserService(userRepo, tokenBlacklist, eventBus, log)
	schoolService := schoolapp.NewSchoolService(schoolRepo, userRepo, eventBus, log)
	settingsService := schoolapp.NewSettingsService(schoolRepo, eventBus, log)

	// People and academics
	studentService := peopleapp.NewStudentService(studentRepo, classRepo, userRepo, eventBus, log)
	teacherService := peopleapp.NewTeacherService(teacherRepo, classRepo, userRepo, eventBus, log)
	classService := academicapp.NewClassService(classRepo, studentRepo, teacherRepo, eventBus, log)
	subjectService := academicapp.NewSubjectService(subjectRepo, classRepo, teacherRepo, eventBus, log)
	attendanceService := attendanceapp.NewAttendanceService(attendanceRepo, studentRepo, classRepo, schoolRepo, eventBus, log)
	examService := examsapp.NewExamService(examRepo, resultRepo, classRepo, subjectRepo, eventBus, log)
	resultService := examsapp.NewResultService(examsapp.ResultServiceDeps{
		ExamRepo:       examRepo,
		ResultRepo:     resultRepo,
		StudentRepo:    studentRepo,
		SubjectRepo:    subjectRepo,
		ClassRepo:      classRepo,
		SchoolRepo:     schoolRepo,
		AttendanceRepo: attendanceRepo,
		Printer:        printer,
		EventPublisher: eventBus,
		Logger:         log,
	})

	// Finance and inventory
	feeService := financeapp.NewFeeStructureService(feeRepo, classRepo, eventBus, log)
	invoiceService := financeapp.NewInvoiceService(financeapp.InvoiceServiceDeps{
		InvoiceRepo:    invoiceRepo,
		FeeRepo:        feeRepo,
		StudentRepo:    studentRepo,
		ClassRepo:      classRepo,
		SchoolRepo:     schoolRepo,
		Printer:        printer,
		EventPublisher: eventBus,
		Logger:         log,
	})
	itemService := inventoryapp.NewItemService(itemRepo, eventBus, log)

	// Communication
	announcementService := commapp.NewAnnouncementService(announcementRepo, classRepo, studentRepo, eventBus, log)
	messageService := commapp.NewMessageService(messageRepo, userRepo, objectStorage, eventBus, log)

	// Reporting
	statisticsService := reportapp.NewStatisticsService(statisticsRepo, schoolRepo, queryCache, cfg.Cache.TTL, log)
	dashboardService := reportapp.NewDashboardService(reportapp.DashboardServiceDeps{
		Statistics:     statisticsService,
		Announcements:  announcementService,
		SchoolRepo:     schoolRepo,
		ClassRepo:      classRepo,
		SubjectRepo:    subjectRepo,
		StudentRepo:    studentRepo,
		AttendanceRepo: attendanceRepo,
		ExamRepo:       examRepo,
		ResultRepo:     resultRepo,
		InvoiceRepo:    invoiceRepo,
		MessageRepo:    messageRepo,
		Logger:         log,
	})
	reportService := reportapp.NewReportService(reportapp.ReportServiceDeps{
		Students:   studentService,
		Attendance: attendanceService,
		Invoices:   invoiceService,
		Inventory:  itemService,
		Storage:    objectStorage,
		Logger:     log,
	})

	// Event handlers
	eventBus.Subscribe(cache.NewQueryCacheInvalidator(queryCache, log))
	eventBus.Subscribe(commapp.NewAnnouncementNotifier(userRepo, studentRepo, mailer, log))
	eventBus.Subscribe(commapp.NewMessageNotifier(userRepo, mailer, log))
	eventBus.Subscribe(inventoryapp.NewLowStockNotifier(userRepo, mailer, log))
	if eventMetrics, err := telemetry.NewEventMetrics(providers.Meter("schoolhub/events")); err != nil {
		log.Warn("Failed to create event metrics", zap.Error(err))
	} else {
		eventBus.Subscribe(eventMetrics)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Scheduler.Enabled {
		jobs := scheduler.NewScheduler(cfg.Scheduler, cacheFactory.JobLock(), log)
		for _, task := range scheduledTasks(cfg.Scheduler, invoiceService, announcementService, statisticsService, log) {
			if err := jobs.Register(task); err != nil {
				log.Fatal("Failed to register scheduled task", zap.String("task", task.Name), zap.Error(err))
			}
		}
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobs.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Strings("tasks", jobs.Tasks()),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request id first so every later log line carries it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if providers.TracingEnabled() {
		tracingConfig := middleware.DefaultTracingConfig()
		tracingConfig.ServiceName = cfg.Telemetry.ServiceName
		engine.Use(middleware.TracingWithConfig(tracingConfig))
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.SpanErrorMarker())
	}
	if cfg.Telemetry.MetricsEnabled {
		engine.Use(middleware.HTTPMetrics(providers.Meter("schoolhub/http"), log))
	}
	if cfg.Telemetry.ProfilingEnabled {
		profiler, err := telemetry.StartProfiler(cfg.Telemetry.ServiceName, cfg.Telemetry.PyroscopeAddress, log)
		if err != nil {
			log.Warn("Profiling disabled", zap.Error(err))
		} else {
			defer func() {
				_ = profiler.Stop()
			}()
			engine.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
		}
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.GET("/health", healthHandler(db, redisClient))

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = tokenBlacklist
	jwtConfig.SkipPaths = append(jwtConfig.SkipPaths, r.BasePath()+"/ping")
	jwtConfig.Logger = log
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.SkipPaths = jwtConfig.SkipPaths
	tenantConfig.Validator = middleware.NewSchoolValidator(schoolRepo)
	tenantConfig.Logger = log
	r.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		School:       handler.NewSchoolHandler(schoolService, settingsService),
		Student:      handler.NewStudentHandler(studentService, cfg.HTTP.MaxUploadSize),
		Teacher:      handler.NewTeacherHandler(teacherService),
		Class:        handler.NewClassHandler(classService, subjectService),
		Subject:      handler.NewSubjectHandler(subjectService),
		Attendance:   handler.NewAttendanceHandler(attendanceService),
		Exam:         handler.NewExamHandler(examService, resultService),
		FeeStructure: handler.NewFeeStructureHandler(feeService),
		Invoice:      handler.NewInvoiceHandler(invoiceService),
		Inventory:    handler.NewInventoryHandler(itemService),
		Announcement: handler.NewAnnouncementHandler(announcementService),
		Message:      handler.NewMessageHandler(messageService),
		Statistics:   handler.NewStatisticsHandler(statisticsService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Report:       handler.NewReportHandler(reportService),
		System:       handler.NewSystemHandler(cfg.App.Name, cfg.App.Version),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		handlers.AuthLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
	}
	router.RegisterAPI(r, handlers).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	// queued notifications finish before the event bus and database go away
	if err := mailer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Pending e-mails were not delivered", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// scheduledTasks returns the periodic jobs. A zero interval disables a job.
func scheduledTasks(
	cfg config.SchedulerConfig,
	invoices *financeapp.InvoiceService,
	announcements *commapp.AnnouncementService,
	statistics *reportapp.StatisticsService,
	log *zap.Logger,
) []scheduler.Task {
	all := []scheduler.Task{
		{
			Name:     "invoice-overdue-sweep",
			Interval: cfg.OverdueInterval,
			Run: func(ctx context.Context) error {
				_, err := invoices.MarkOverdue(ctx, time.Now())
				return err
			},
		},
		{
			Name:     "announcement-expiry",
			Interval: cfg.AnnouncementInterval,
			Run: func(ctx context.Context) error {
				n, err := announcements.ArchiveExpired(ctx, time.Now())
				if n > 0 {
					log.Info("Expired announcements archived", zap.Int("count", n))
				}
				return err
			},
		},
		{
			Name:     "statistics-warm",
			Interval: cfg.StatisticsWarmInterval,
			Run: func(ctx context.Context) error {
				n, err := statistics.WarmOverviews(ctx)
				log.Debug("Statistics overviews warmed", zap.Int("schools", n))
				return err
			},
		},
	}

	tasks := make([]scheduler.Task, 0, len(all))
	for _, task := range all {
		if task.Interval > 0 {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// healthHandler reports database and, when configured, Redis reachability
func healthHandler(db *persistence.Database, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		status := http.StatusOK
		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}

		if err := db.PingContext(c.Request.Context()); err != nil {
			reqLog.Warn("Health check failed", zap.String("component", "database"), zap.Error(err))
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "error"
		}

		// Redis degrades to in-memory stores, so it never fails the readiness check
		if redisClient != nil {
			body["redis"] = "ok"
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				reqLog.Warn("Redis ping failed", zap.Error(err))
				body["redis"] = "error"
			}
		}

		c.JSON(status, body)
	}
}
