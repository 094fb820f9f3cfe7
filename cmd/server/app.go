package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/collab-api/internal/config"
	"github.com/phrazzld/collab-api/internal/platform/logger"
	"github.com/phrazzld/collab-api/internal/platform/postgres"
	"github.com/phrazzld/collab-api/internal/schedule"
	"github.com/phrazzld/collab-api/internal/service"
	"github.com/phrazzld/collab-api/internal/service/auth"
	"github.com/phrazzld/collab-api/internal/service/sweep"
	"github.com/phrazzld/collab-api/internal/store"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore         store.UserStore
	taskStore         store.TaskStore
	assignmentStore   store.AssignmentStore
	eventStore        store.EventStore
	invitationStore   store.InvitationStore
	notificationStore store.NotificationStore
	noteStore         store.NoteStore

	// Services
	jwtService          auth.JWTService
	userService         service.UserService
	taskService         service.TaskService
	assignmentService   service.AssignmentService
	eventService        service.EventService
	invitationService   service.InvitationService
	notificationService service.NotificationService
	noteService         service.NoteService

	// Background sweep
	sweeper   *sweep.Sweeper
	scheduler *schedule.Scheduler
}

// newApplication loads configuration, connects to the database, runs
// migrations, and wires every store and service.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"sweep_interval_seconds", cfg.Sweep.IntervalSeconds)

	db, err := openDatabase(cfg.Database.URL, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		closeQuietly(db, appLogger)
		return nil, err
	}

	app := &application{
		config: cfg,
		logger: appLogger,
		db:     db,
	}
	if err := app.wire(); err != nil {
		closeQuietly(db, appLogger)
		return nil, err
	}
	return app, nil
}

// wire constructs the store and service graph on top of the open database
// connection.
func (app *application) wire() error {
	app.userStore = postgres.NewPostgresUserStore(app.db, app.logger)
	app.taskStore = postgres.NewPostgresTaskStore(app.db, app.logger)
	app.assignmentStore = postgres.NewPostgresAssignmentStore(app.db, app.logger)
	app.eventStore = postgres.NewPostgresEventStore(app.db, app.logger)
	app.invitationStore = postgres.NewPostgresInvitationStore(app.db, app.logger)
	app.notificationStore = postgres.NewPostgresNotificationStore(app.db, app.logger)
	app.noteStore = postgres.NewPostgresNoteStore(app.db, app.logger)

	jwtService, err := auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	notifier := service.NewStoreNotifier(app.notificationStore, app.logger)

	app.userService, err = service.NewUserService(
		app.userStore, auth.NewBcryptVerifier(), app.logger)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(
		app.db, app.taskStore, app.assignmentStore, app.userStore, notifier, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	app.assignmentService, err = service.NewAssignmentService(
		app.assignmentStore, app.taskStore, app.taskService, notifier, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create assignment service: %w", err)
	}

	app.eventService, err = service.NewEventService(
		app.db, app.eventStore, app.invitationStore, notifier, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create event service: %w", err)
	}

	app.invitationService, err = service.NewInvitationService(
		app.invitationStore, app.eventStore, app.userStore, notifier, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create invitation service: %w", err)
	}

	app.notificationService, err = service.NewNotificationService(
		app.notificationStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create notification service: %w", err)
	}

	app.noteService, err = service.NewNoteService(app.noteStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create note service: %w", err)
	}

	app.sweeper, err = sweep.NewSweeper(
		app.taskStore, app.assignmentStore, app.eventStore, app.config.Sweep, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create sweeper: %w", err)
	}

	app.scheduler, err = schedule.NewScheduler(
		func(ctx context.Context, now time.Time) error {
			_, err := app.sweeper.Run(ctx, now, false)
			return err
		},
		schedule.SchedulerConfig{
			Interval:   time.Duration(app.config.Sweep.IntervalSeconds) * time.Second,
			RunTimeout: time.Duration(app.config.Sweep.RunTimeoutSeconds) * time.Second,
		},
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	return nil
}

// run starts the background scheduler and the HTTP server, blocking until
// shutdown.
func (app *application) run(ctx context.Context) error {
	app.scheduler.Start()
	defer app.scheduler.Stop()

	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases held resources.
func (app *application) cleanup() {
	if app.db != nil {
		closeQuietly(app.db, app.logger)
	}
}

func closeQuietly(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil && logger != nil {
		logger.Error("failed to close database connection", "error", err)
	}
}
