package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/artachobruno/athletespace/internal/compliance"
	"github.com/artachobruno/athletespace/internal/config"
	"github.com/artachobruno/athletespace/internal/ingest/strava"
	"github.com/artachobruno/athletespace/internal/matching"
	"github.com/artachobruno/athletespace/internal/storage"
)

// candidateWindow is how far around an activity's start time planned
// workouts are considered for matching. Wider than the matcher's own
// decay window so near-threshold candidates still get scored.
const candidateWindow = 48 * time.Hour

type stats struct {
	activitiesSeen    int
	alreadySynced     int
	matched           int
	unmatched         int
	executionsStored  int
	complianceErrored int
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	perPage := flag.Int("activities", 30, "number of recent activities to fetch")
	dryRun := flag.Bool("dry-run", false, "match and score without writing to the database")
	flag.Parse()

	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Strava.ClientID == "" {
		log.Error("strava.client_id not configured")
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	state, err := strava.OpenStateDB(cfg.Strava.StateDir)
	if err != nil {
		log.Error("failed to open sync state", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	client := strava.NewClient(cfg.Strava.ClientID, cfg.Strava.ClientSecret, state, log)

	if *dryRun {
		log.Info("DRY RUN mode — nothing will be written")
	}

	st, err := sync(ctx, db, state, client, *perPage, *dryRun, log)
	printStats(st)
	if err != nil {
		log.Error("sync failed", "error", err)
		os.Exit(1)
	}
	log.Info("sync complete")
}

func sync(ctx context.Context, db *storage.DB, state *strava.StateDB, client *strava.Client,
	perPage int, dryRun bool, log *slog.Logger) (*stats, error) {

	st := &stats{}

	activities, err := client.ListActivities(ctx, perPage)
	if err != nil {
		return st, err
	}

	for _, activity := range activities {
		st.activitiesSeen++

		synced, err := state.IsSynced(activity.ID)
		if err != nil {
			return st, fmt.Errorf("checking sync state for %d: %w", activity.ID, err)
		}
		if synced {
			st.alreadySynced++
			continue
		}

		planned, err := db.QueryWorkoutsWithSteps(ctx,
			activity.StartDate.Add(-candidateWindow), activity.StartDate.Add(candidateWindow))
		if err != nil {
			return st, fmt.Errorf("loading candidate workouts: %w", err)
		}

		recorded := matching.RecordedActivity{
			Sport:           activity.SportType,
			Start:           activity.StartDate,
			DurationSeconds: activity.ElapsedTime,
		}
		best, ok := matching.BestMatch(planned, recorded)
		if !ok {
			st.unmatched++
			log.Info("no plan matches activity",
				"activity", activity.ID, "name", activity.Name, "sport", activity.SportType)
			if !dryRun {
				if err := state.MarkSynced(activity.ID); err != nil {
					return st, err
				}
			}
			continue
		}
		st.matched++
		log.Info("activity matched",
			"activity", activity.ID,
			"workout", best.Workout.ID,
			"workout_name", best.Workout.Name,
			"score", fmt.Sprintf("%.2f", best.Score),
		)

		stream, err := client.GetStreams(ctx, activity.ID)
		if err != nil {
			return st, fmt.Errorf("fetching streams for %d: %w", activity.ID, err)
		}

		steps, summary, err := compliance.ComputeWorkout(best.Workout.Steps, stream)
		if err != nil {
			// Untimelineable plans are a data problem, not a sync failure.
			st.complianceErrored++
			log.Warn("compliance scoring failed",
				"activity", activity.ID, "workout", best.Workout.ID, "error", err)
			if !dryRun {
				if err := state.MarkSynced(activity.ID); err != nil {
					return st, err
				}
			}
			continue
		}

		log.Info("compliance computed",
			"workout", best.Workout.ID,
			"compliance", fmt.Sprintf("%.1f%%", summary.OverallCompliancePct*100),
			"pause_seconds", summary.TotalPauseSeconds,
			"completed", summary.Completed,
		)

		if dryRun {
			continue
		}

		executionID := uuid.New()
		if _, err := db.InsertExecution(ctx, storage.Execution{
			ID:        executionID,
			WorkoutID: best.Workout.ID,
			Source:    "strava",
			StartedAt: activity.StartDate,
			Telemetry: stream,
		}); err != nil {
			return st, fmt.Errorf("storing execution: %w", err)
		}
		if err := db.UpsertCompliance(ctx, executionID, best.Workout.ID, summary, steps); err != nil {
			return st, fmt.Errorf("storing compliance: %w", err)
		}
		if err := state.MarkSynced(activity.ID); err != nil {
			return st, err
		}
		st.executionsStored++
	}

	return st, nil
}

func printStats(st *stats) {
	fmt.Println()
	fmt.Println("=== Sync Summary ===")
	fmt.Printf("  Activities seen:    %d\n", st.activitiesSeen)
	fmt.Printf("  Already synced:     %d\n", st.alreadySynced)
	fmt.Printf("  Matched:            %d\n", st.matched)
	fmt.Printf("  Unmatched:          %d\n", st.unmatched)
	fmt.Printf("  Executions stored:  %d\n", st.executionsStored)
	fmt.Printf("  Scoring errors:     %d\n", st.complianceErrored)
	fmt.Println()
}
