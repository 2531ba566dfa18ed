// Package main is the entry point for the STVT Training Hub API server.
//
// The server carries a trainee from registration through selection, fee
// payment, project placement, admission and final certificate
// verification. Architecture follows Clean Architecture and DDD:
//   - Domain: lifecycle rules, serial issuance, slot accounting
//   - Application: command and query handlers
//   - Infrastructure: postgres/redis/memory persistence, messaging, services
//   - Interface: REST API
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/stvt-hub/stvt-training-hub/config"

	// Application layer
	"github.com/stvt-hub/stvt-training-hub/internal/application/command"
	"github.com/stvt-hub/stvt-training-hub/internal/application/query"

	// Domain layer
	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/notification"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"

	// Infrastructure layer
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/messaging"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/persistence/memory"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/persistence/postgres"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/persistence/redis"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/service"

	// Interface layer
	httpserver "github.com/stvt-hub/stvt-training-hub/internal/interface/http"
	"github.com/stvt-hub/stvt-training-hub/internal/interface/http/handlers"

	// Packages
	"github.com/stvt-hub/stvt-training-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	slogger := setupSlog(cfg)
	log.Info("starting STVT Training Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.Bool("debug", cfg.App.Debug),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. PERSISTENCE (PostgreSQL, or in-memory in development)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		uow            command.UnitOfWork
		traineeRepo    trainee.Repository
		projectRepo    project.Repository
		enrollmentRepo enrollment.Repository
		healthChecker  = handlers.NewCompositeHealthChecker(cfg.App.Version)
	)

	if cfg.Database.Disabled {
		log.Warn("running with the in-memory store; all data is lost on restart")
		store := memory.NewStore()
		uow = memory.NewUnitOfWork(store)
		traineeRepo = store.Trainees()
		projectRepo = store.Projects()
		enrollmentRepo = store.Enrollment()
	} else {
		log.Info("connecting to database")
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection")
			dbConn.Close()
		}()

		if err := dbConn.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}

		log.Info("running database migrations")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		uow = postgres.NewUnitOfWork(dbConn)
		traineeRepo = postgres.NewTraineeRepository(dbConn)
		projectRepo = postgres.NewProjectRepository(dbConn)
		enrollmentRepo = postgres.NewEnrollmentRepository(dbConn)
		healthChecker.AddCheck("postgres", handlers.NewPingCheck(dbConn))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional, project listing cache)
	// ─────────────────────────────────────────────────────────────────────────
	var projectCache query.ProjectCache
	var listingInvalidator service.ProjectListingInvalidator

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			pc := redis.NewProjectCache(redisCache)
			projectCache = pc
			listingInvalidator = pc
			healthChecker.AddCheck("redis", handlers.NewPingCheck(redisCache))
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS AND SIDE-EFFECT DISPATCHER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus")
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = slogger
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus")
		_ = eventBus.Close()
	}()

	dispatcher := messaging.NewDispatcher(messaging.DispatcherConfig{
		EventBus:            eventBus,
		WorkerPoolSize:      10,
		RetryConfig:         messaging.DefaultRetryConfig(),
		DeadLetterQueueSize: 100,
		Logger:              slogger,
	})
	dispatcher.Use(messaging.RecoveryMiddleware(slogger))
	defer func() { _ = dispatcher.Stop() }()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. DOMAIN SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	idGen := service.NewUUIDGenerator()
	hasher := service.NewBcryptHasher(cfg.Enrollment.BcryptCost)

	renderer, err := service.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("failed to build artifact templates: %w", err)
	}

	documents, err := service.NewFilesystemStore(cfg.Enrollment.DocumentDir)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	var documentStore document.Store = documents

	var notifier notification.Dispatcher = service.NewResilientDispatcher(
		service.NewLogDispatcher(log), log)

	eventHandlers := service.NewEventHandlers(service.EventHandlersConfig{
		Notifier:    notifier,
		Invalidator: listingInvalidator,
		Trainees:    traineeRepo,
		Projects:    projectRepo,
		Enrollment:  enrollmentRepo,
		Renderer:    renderer,
		Documents:   documents,
		FeeAmount:   cfg.Enrollment.FeeAmount,
		Logger:      log,
	})
	if err := eventHandlers.Register(dispatcher); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. APPLICATION LAYER (Commands and Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer")

	challanConfig := command.SendFeeChallanHandlerConfig{FeeAmount: cfg.Enrollment.FeeAmount}

	registerCmd := command.NewRegisterTraineeHandler(uow, idGen, hasher, eventBus)
	markSelectedCmd := command.NewMarkSelectedHandler(uow, idGen, eventBus)
	sendChallanCmd := command.NewSendFeeChallanHandler(uow, documentStore, eventBus, challanConfig)
	submitTicketCmd := command.NewSubmitFeeTicketHandler(uow, eventBus)
	verifyFeeCmd := command.NewVerifyFeeHandler(uow, eventBus)
	requestProjectCmd := command.NewRequestProjectHandler(uow, idGen, eventBus)
	approveProjectCmd := command.NewApproveProjectHandler(uow, idGen, eventBus)
	issueAdmissionCmd := command.NewIssueAdmissionHandler(uow, idGen, renderer, documentStore, eventBus)
	verifyCertCmd := command.NewVerifyCertificateHandler(uow, documentStore, eventBus)
	releaseCmd := command.NewReleaseReservationHandler(uow, eventBus)
	createProjectCmd := command.NewCreateProjectHandler(projectRepo, idGen)

	dashboardQuery := query.NewGetDashboardHandler(traineeRepo, projectRepo, enrollmentRepo)
	projectsQuery := query.NewListAvailableProjectsHandler(projectRepo, projectCache)
	certificatesQuery := query.NewListVerifiedCertificatesHandler(traineeRepo, enrollmentRepo)
	exportQuery := query.NewExportCertificatesHandler(enrollmentRepo, documentStore)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.AdminAPIKeys = cfg.HTTP.AdminAPIKeys

	httpDeps := httpserver.Dependencies{
		RegisterTraineeHandler:    registerCmd,
		MarkSelectedHandler:       markSelectedCmd,
		SendFeeChallanHandler:     sendChallanCmd,
		SubmitFeeTicketHandler:    submitTicketCmd,
		VerifyFeeHandler:          verifyFeeCmd,
		RequestProjectHandler:     requestProjectCmd,
		ApproveProjectHandler:     approveProjectCmd,
		IssueAdmissionHandler:     issueAdmissionCmd,
		VerifyCertificateHandler:  verifyCertCmd,
		ReleaseReservationHandler: releaseCmd,
		CreateProjectHandler:      createProjectCmd,

		GetDashboardHandler:             dashboardQuery,
		ListAvailableProjectsHandler:    projectsQuery,
		ListVerifiedCertificatesHandler: certificatesQuery,
		ExportCertificatesHandler:       exportQuery,

		Logger:        log,
		HealthChecker: healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. START AND WAIT
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("STVT Training Hub is running", logger.String("address", httpServer.Address()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("starting graceful shutdown", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	// Dispatcher, event bus and connections close through the defers.
	log.Info("shutdown completed")
	return nil
}

// setupLogger builds the structured logger used across the application.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}

// setupSlog builds the slog logger the messaging layer uses.
func setupSlog(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
