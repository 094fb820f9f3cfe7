// Package main implements the sweep CLI, which runs the batch status pass
// once and exits. With --dry-run it reports the rows each rule would touch
// without writing.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/phrazzld/collab-api/internal/config"
	"github.com/phrazzld/collab-api/internal/platform/logger"
	"github.com/phrazzld/collab-api/internal/platform/postgres"
	"github.com/phrazzld/collab-api/internal/service/sweep"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report matching rows without writing")
	flag.Parse()

	if err := run(*dryRun); err != nil {
		log.Printf("sweep failed: %v", err)
		os.Exit(1)
	}
}

func run(dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database connection", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Sweep.RunTimeoutSeconds)*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	sweeper, err := sweep.NewSweeper(
		postgres.NewPostgresTaskStore(db, appLogger),
		postgres.NewPostgresAssignmentStore(db, appLogger),
		postgres.NewPostgresEventStore(db, appLogger),
		cfg.Sweep,
		appLogger,
	)
	if err != nil {
		return fmt.Errorf("failed to create sweeper: %w", err)
	}

	summary, runErr := sweeper.Run(ctx, time.Now(), dryRun)
	if summary != nil {
		printSummary(summary)
	}
	return runErr
}

func printSummary(summary *sweep.Summary) {
	mode := "applied"
	if summary.DryRun {
		mode = "would apply (dry run)"
	}

	fmt.Printf("Sweep at %s %s:\n", summary.RanAt.Format(time.RFC3339), mode)
	fmt.Printf("  tasks marked overdue:       %d\n", summary.TasksMarkedOverdue)
	fmt.Printf("  assignments marked overdue: %d\n", summary.AssignmentsMarkedOverdue)
	fmt.Printf("  assignments completed:      %d\n", summary.AssignmentsCompleted)
	fmt.Printf("  events started:             %d\n", summary.EventsStarted)
	fmt.Printf("  events ended:               %d\n", summary.EventsEnded)

	if len(summary.Candidates) > 0 {
		fmt.Println("Matched rows:")
		for _, line := range summary.Candidates {
			fmt.Printf("  %s\n", line)
		}
	}
}
