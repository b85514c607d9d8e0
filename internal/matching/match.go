// Package matching pairs a recorded activity with the planned workout it
// most plausibly executes. The score is a weighted blend of sport match,
// start-time proximity, and duration similarity; compliance scoring only
// runs once a pairing clears the threshold.
package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/artachobruno/athletespace/internal/models"
)

const (
	sportWeight    = 0.4
	timeWeight     = 0.4
	durationWeight = 0.2

	// MatchThreshold is the minimum blended score for a pairing to count.
	MatchThreshold = 0.6

	// timeDecayWindow is how far from the scheduled time the proximity
	// score decays to zero.
	timeDecayWindow = 36 * time.Hour
)

// RecordedActivity is the minimal view of an uploaded activity the matcher
// needs.
type RecordedActivity struct {
	Sport           string
	Start           time.Time
	DurationSeconds int
}

// Candidate pairs a planned workout with its blended score.
type Candidate struct {
	Workout models.Workout
	Score   float64
}

// Score rates how plausibly activity executes the planned workout, in [0,1].
func Score(planned models.Workout, activity RecordedActivity) float64 {
	score := 0.0

	if sportsMatch(planned.Sport, activity.Sport) {
		score += sportWeight
	}

	if !planned.Scheduled.IsZero() && !activity.Start.IsZero() {
		gap := planned.Scheduled.Sub(activity.Start)
		if gap < 0 {
			gap = -gap
		}
		if gap < timeDecayWindow {
			score += timeWeight * (1.0 - float64(gap)/float64(timeDecayWindow))
		}
	}

	plannedSec := planned.TotalPlannedSeconds()
	if plannedSec > 0 && activity.DurationSeconds > 0 {
		ratio := float64(activity.DurationSeconds) / float64(plannedSec)
		if ratio > 1 {
			ratio = 1 / ratio
		}
		score += durationWeight * ratio
	}

	return score
}

// BestMatch scores every planned workout against the activity and returns
// the highest-scoring candidate, with ok=false when nothing clears the
// threshold. Ties break toward the earlier scheduled workout so reruns are
// deterministic.
func BestMatch(planned []models.Workout, activity RecordedActivity) (Candidate, bool) {
	candidates := make([]Candidate, 0, len(planned))
	for _, w := range planned {
		candidates = append(candidates, Candidate{Workout: w, Score: Score(w, activity)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Workout.Scheduled.Before(candidates[j].Workout.Scheduled)
	})

	if len(candidates) == 0 || candidates[0].Score < MatchThreshold {
		return Candidate{}, false
	}
	return candidates[0], true
}

// sportsMatch compares sports loosely: case-insensitive, and common
// provider aliases collapse onto one name.
func sportsMatch(a, b string) bool {
	return canonicalSport(a) == canonicalSport(b) && canonicalSport(a) != ""
}

var sportAliases = map[string]string{
	"run":          "run",
	"running":      "run",
	"trailrun":     "run",
	"ride":         "ride",
	"cycling":      "ride",
	"virtualride":  "ride",
	"swim":         "swim",
	"swimming":     "swim",
	"walk":         "walk",
	"walking":      "walk",
}

func canonicalSport(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if canonical, ok := sportAliases[key]; ok {
		return canonical
	}
	return key
}
