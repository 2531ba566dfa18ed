// Package main is the entry point for the STVT Training Hub background
// worker. It runs the periodic jobs that the API server does not:
// scanning for fee challans past their due window and re-sending
// payment reminders.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stvt-hub/stvt-training-hub/config"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/notification"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/persistence/memory"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/persistence/postgres"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/scheduler"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/scheduler/jobs"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/service"
	"github.com/stvt-hub/stvt-training-hub/pkg/logger"
	"github.com/stvt-hub/stvt-training-hub/pkg/timeutil"
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
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	log := logger.New(opts).With(logger.Component("worker"))

	log.Info("starting STVT Training Hub worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.Duration("fee_reminder_interval", cfg.Scheduler.FeeReminderInterval),
	)

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled; nothing to run")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. PERSISTENCE
	// ─────────────────────────────────────────────────────────────────────────
	var enrollmentRepo enrollment.Repository

	if cfg.Database.Disabled {
		log.Warn("running with the in-memory store; the worker sees no API data")
		enrollmentRepo = memory.NewStore().Enrollment()
	} else {
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbConn.Close()

		if err := dbConn.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		enrollmentRepo = postgres.NewEnrollmentRepository(dbConn)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. NOTIFIER AND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	var notifier notification.Dispatcher = service.NewResilientDispatcher(
		service.NewLogDispatcher(log), log)

	feeReminder := jobs.NewFeeReminderJob(enrollmentRepo, notifier, log, cfg.Enrollment.FeeDueDays)

	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Timezone: timeutil.IST,
	})

	if err := sched.Register(feeReminder, scheduler.NewIntervalSchedule(cfg.Scheduler.FeeReminderInterval)); err != nil {
		return fmt.Errorf("failed to register fee reminder job: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. RUN UNTIL SIGNALLED
	// ─────────────────────────────────────────────────────────────────────────
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("worker is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	sig := <-sigCh
	log.Info("received shutdown signal", logger.String("signal", sig.String()))

	if err := sched.Stop(); err != nil {
		log.Error("failed to stop scheduler gracefully", logger.Err(err))
		return err
	}

	log.Info("worker shutdown completed")
	return nil
}
