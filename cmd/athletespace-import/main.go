package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/compliance"
	"github.com/artachobruno/athletespace/internal/config"
	"github.com/artachobruno/athletespace/internal/ingest/fitfile"
	"github.com/artachobruno/athletespace/internal/models"
	"github.com/artachobruno/athletespace/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	fitPath := flag.String("fit", "", "path to activity FIT file (required)")
	workoutID := flag.String("workout", "", "workout UUID to score against (mutually exclusive with -plan)")
	planPath := flag.String("plan", "", "path to a workout JSON file to score against without a database")
	dryRun := flag.Bool("dry-run", false, "print the report without storing the execution")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *fitPath == "" || (*workoutID == "") == (*planPath == "") {
		fmt.Fprintf(os.Stderr, "Usage: athletespace-import -fit activity.fit (-workout <uuid> | -plan workout.json) [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	decoded, err := fitfile.DecodeFile(*fitPath)
	if err != nil {
		log.Error("failed to decode FIT file", "path", *fitPath, "error", err)
		os.Exit(1)
	}
	log.Info("FIT file decoded",
		"sport", decoded.Sport,
		"start", decoded.StartTime.Format(time.RFC3339),
		"samples", decoded.Stream.Len(),
	)

	ctx := context.Background()

	var workout *models.Workout
	var db *storage.DB

	if *planPath != "" {
		workout, err = loadPlan(*planPath)
		if err != nil {
			log.Error("failed to load workout plan", "path", *planPath, "error", err)
			os.Exit(1)
		}
	} else {
		id, err := uuid.Parse(*workoutID)
		if err != nil {
			log.Error("invalid workout UUID", "value", *workoutID)
			os.Exit(1)
		}

		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err = storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		workout, err = db.GetWorkout(ctx, id)
		if err != nil {
			log.Error("workout not found", "id", id, "error", err)
			os.Exit(1)
		}
	}

	steps, summary, err := compliance.ComputeWorkout(workout.Steps, decoded.Stream)
	if err != nil {
		log.Error("compliance scoring failed", "error", err)
		os.Exit(1)
	}

	printReport(workout, summary, steps)

	if *dryRun || db == nil {
		if !*dryRun && db == nil {
			log.Info("no database configured, report not stored")
		}
		return
	}

	executionID := uuid.New()
	inserted, err := db.InsertExecution(ctx, storage.Execution{
		ID:        executionID,
		WorkoutID: workout.ID,
		Source:    "fit",
		StartedAt: decoded.StartTime,
		Telemetry: decoded.Stream,
	})
	if err != nil {
		log.Error("failed to store execution", "error", err)
		os.Exit(1)
	}
	if !inserted {
		log.Warn("execution already stored", "id", executionID)
	}
	if err := db.UpsertCompliance(ctx, executionID, workout.ID, summary, steps); err != nil {
		log.Error("failed to store compliance", "error", err)
		os.Exit(1)
	}
	log.Info("execution stored", "execution_id", executionID)
}

func loadPlan(path string) (*models.Workout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var workout models.Workout
	if err := json.Unmarshal(data, &workout); err != nil {
		return nil, fmt.Errorf("parsing workout JSON: %w", err)
	}
	if err := models.ValidateSteps(workout.Steps); err != nil {
		return nil, err
	}
	return &workout, nil
}

func printReport(w *models.Workout, summary compliance.WorkoutComplianceSummary, steps []compliance.StepComplianceResult) {
	fmt.Println()
	fmt.Printf("=== Compliance Report: %s ===\n", w.Name)
	fmt.Printf("  Overall compliance:  %.1f%%\n", summary.OverallCompliancePct*100)
	fmt.Printf("  Total pause:         %ds\n", summary.TotalPauseSeconds)
	fmt.Printf("  Completed:           %v\n", summary.Completed)
	fmt.Println()
	for _, s := range steps {
		fmt.Printf("  step %d:  %4ds active  %4ds in range  %4ds over  %4ds under  %4ds paused  (%.1f%%)\n",
			s.Order, s.DurationSeconds, s.TimeInRangeSeconds, s.OvershootSeconds,
			s.UndershootSeconds, s.PauseSeconds, s.CompliancePct*100)
	}
	fmt.Println()
}
