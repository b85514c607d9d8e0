package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/artachobruno/athletespace/internal/compliance"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Query planned workouts in a scheduled-time range. Returns workout headers without steps."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Retrieve one planned workout with its full structured steps: per-step type, duration (time/distance/open), and optional target (single value or range)."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetWorkoutTimeline = mcp.NewTool("get_workout_timeline",
	mcp.WithDescription("Lay a workout's steps on an elapsed-seconds axis. Returns contiguous half-open segments [start, end) per step. Fails for plans containing distance or open-ended steps."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetWorkoutExecutions = mcp.NewTool("get_workout_executions",
	mcp.WithDescription("List recorded executions of a planned workout (source, start time), without telemetry payloads."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetExecutionCompliance = mcp.NewTool("get_execution_compliance",
	mcp.WithDescription("Retrieve the compliance verdict for one execution: overall compliance percentage, pause time, completion flag, and per-step time-in-range/overshoot/undershoot breakdown."),
	mcp.WithString("execution_id", mcp.Required(), mcp.Description("Execution UUID")),
)

var toolGetRecentCompliance = mcp.NewTool("get_recent_compliance",
	mcp.WithDescription("List recently computed compliance verdicts, most recent first."),
	mcp.WithString("since", mcp.Description("Earliest computation date. Defaults to 30 days ago.")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of verdicts. Defaults to 50.")),
)

// --- Tool handlers ---

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.QueryWorkouts(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireUUID(req, "id")
	if errResult != nil {
		return errResult, nil
	}

	workout, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("workout not found: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workout)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireUUID(req, "id")
	if errResult != nil {
		return errResult, nil
	}

	workout, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("workout not found: " + err.Error()), nil
	}

	segments, err := compliance.BuildTimeline(workout.Steps)
	if err != nil {
		return mcp.NewToolResultError("cannot build timeline: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(segments)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutExecutions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireUUID(req, "id")
	if errResult != nil {
		return errResult, nil
	}

	execs, err := h.ds.QueryExecutions(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout_executions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(execs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExecutionCompliance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireUUID(req, "execution_id")
	if errResult != nil {
		return errResult, nil
	}

	report, err := h.ds.GetCompliance(ctx, id)
	if err != nil {
		h.log.Error("mcp get_execution_compliance", "error", err)
		return mcp.NewToolResultError("compliance not found: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(report)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentCompliance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	since := time.Now().AddDate(0, 0, -30)
	if v := req.GetString("since", ""); v != "" {
		t, err := parseFlexTime(v)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		since = t
	}
	limit := req.GetInt("limit", 50)
	if limit < 1 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	reports, err := h.ds.QueryRecentCompliance(ctx, since, limit)
	if err != nil {
		h.log.Error("mcp get_recent_compliance", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(reports)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// requireUUID parses a required UUID argument, returning a tool error
// result when it is missing or malformed.
func requireUUID(req mcp.CallToolRequest, name string) (uuid.UUID, *mcp.CallToolResult) {
	s, err := req.RequireString(name)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(name + " parameter is required")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(name + " is not a valid UUID")
	}
	return id, nil
}
