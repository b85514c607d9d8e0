package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/compliance"
	"github.com/artachobruno/athletespace/internal/models"
	"github.com/artachobruno/athletespace/internal/storage"
)

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var workout models.Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if workout.ID == uuid.Nil {
		workout.ID = uuid.New()
	}
	for i := range workout.Steps {
		if workout.Steps[i].ID == uuid.Nil {
			workout.Steps[i].ID = uuid.New()
		}
	}
	if err := models.ValidateSteps(workout.Steps); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := s.store.InsertWorkout(r.Context(), workout); err != nil {
		s.log.Error("insert workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	workouts, err := s.store.QueryWorkouts(r.Context(), start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.workoutFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

// handleWorkoutTimeline returns the planned segments of a workout on its
// own elapsed-seconds axis. Distance and open steps make a plan
// untimelineable, which is a client error rather than a server one.
func (s *Server) handleWorkoutTimeline(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.workoutFromPath(w, r)
	if !ok {
		return
	}

	segments, err := compliance.BuildTimeline(workout.Steps)
	if err != nil {
		var unsupported *compliance.UnsupportedStepTypeError
		if errors.As(err, &unsupported) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, segments)
}

// executionRequest is the wire form of a recorded execution. Telemetry is
// keyed by channel name, matching upstream stream payloads.
type executionRequest struct {
	ID        uuid.UUID               `json:"id"`
	Source    string                  `json:"source"`
	StartedAt time.Time               `json:"started_at"`
	Telemetry *models.TelemetryStream `json:"telemetry"`
}

func (s *Server) handleCreateExecution(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.workoutFromPath(w, r)
	if !ok {
		return
	}

	var req executionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Telemetry == nil {
		req.Telemetry = &models.TelemetryStream{}
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	steps, summary, err := compliance.ComputeWorkout(workout.Steps, req.Telemetry)
	if err != nil {
		var unsupported *compliance.UnsupportedStepTypeError
		if errors.As(err, &unsupported) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	exec := storage.Execution{
		ID:        req.ID,
		WorkoutID: workout.ID,
		Source:    req.Source,
		StartedAt: req.StartedAt,
		Telemetry: req.Telemetry,
	}
	if _, err := s.store.InsertExecution(r.Context(), exec); err != nil {
		s.log.Error("insert execution", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.store.UpsertCompliance(r.Context(), exec.ID, workout.ID, summary, steps); err != nil {
		s.log.Error("store compliance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, storage.ComplianceReport{
		ExecutionID: exec.ID,
		WorkoutID:   workout.ID,
		Summary:     summary,
		Steps:       steps,
		ComputedAt:  time.Now().UTC(),
	})
}

func (s *Server) handleQueryExecutions(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.workoutFromPath(w, r)
	if !ok {
		return
	}

	execs, err := s.store.QueryExecutions(r.Context(), workout.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, execs)
}

func (s *Server) handleGetCompliance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid execution ID"})
		return
	}

	report, err := s.store.GetCompliance(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "compliance not found"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRecentCompliance(w http.ResponseWriter, r *http.Request) {
	since := time.Now().AddDate(0, 0, -30)
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := parseFlexTime(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		since = t
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	reports, err := s.store.QueryRecentCompliance(r.Context(), since, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// workoutFromPath loads the workout named by the {id} URL parameter,
// writing the error response itself when it cannot.
func (s *Server) workoutFromPath(w http.ResponseWriter, r *http.Request) (*models.Workout, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return nil, false
	}
	workout, err := s.store.GetWorkout(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return nil, false
	}
	return workout, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days plus a week ahead, so upcoming plans show.
		now := time.Now()
		return now.AddDate(0, 0, -7), now.AddDate(0, 0, 7), nil
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now().AddDate(0, 0, 7)
		return
	}
	end, err = parseFlexTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return
}

// parseFlexTime accepts RFC3339 or bare dates. Bare dates resolve to
// midnight UTC.
func parseFlexTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
