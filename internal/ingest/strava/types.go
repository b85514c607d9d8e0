package strava

import "time"

// DefaultBaseURL is the Strava v3 API root.
const DefaultBaseURL = "https://www.strava.com/api/v3"

// Activity is the subset of a Strava activity this service reads.
type Activity struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	SportType      string    `json:"sport_type"`
	StartDate      time.Time `json:"start_date"`
	ElapsedTime    int       `json:"elapsed_time"`
	MovingTime     int       `json:"moving_time"`
	DistanceMeters float64   `json:"distance"`
	Trainer        bool      `json:"trainer"`
}

// stream is one channel of a key_by_type streams response. Samples are
// pointers because Strava emits null for gaps.
type stream struct {
	Data []*float64 `json:"data"`
}

// streamsResponse is the key_by_type=true shape: channel name to samples.
type streamsResponse map[string]stream

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}
