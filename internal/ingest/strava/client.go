// Package strava fetches activities and their telemetry streams from the
// Strava v3 API. The stream channel names (time, heartrate, velocity_smooth,
// watts, cadence, altitude) are the canonical names the rest of the system
// aligns on.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/artachobruno/athletespace/internal/models"
)

// requestedStreams is the channel set fetched for compliance scoring.
var requestedStreams = []string{
	models.ChannelTime,
	models.ChannelHeartrate,
	models.ChannelVelocity,
	models.ChannelWatts,
	models.ChannelCadence,
	models.ChannelAltitude,
}

// Client talks to the Strava API on behalf of one athlete. Tokens live in
// the local state store and refresh automatically on a 401.
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string

	httpClient *http.Client
	state      *StateDB
	log        *slog.Logger
}

// NewClient creates a Client backed by the given state store.
func NewClient(clientID, clientSecret string, state *StateDB, log *slog.Logger) *Client {
	return &Client{
		BaseURL:      DefaultBaseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		state:        state,
		log:          log,
	}
}

// GetActivity fetches an activity header.
func (c *Client) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	var activity Activity
	path := fmt.Sprintf("/activities/%d", id)
	if err := c.getJSON(ctx, path, &activity); err != nil {
		return nil, fmt.Errorf("fetching activity %d: %w", id, err)
	}
	return &activity, nil
}

// ListActivities fetches the athlete's most recent activities, newest
// first. perPage is capped by Strava at 200.
func (c *Client) ListActivities(ctx context.Context, perPage int) ([]Activity, error) {
	var activities []Activity
	path := fmt.Sprintf("/athlete/activities?per_page=%d", perPage)
	if err := c.getJSON(ctx, path, &activities); err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return activities, nil
}

// GetStreams fetches the telemetry channels of an activity as a
// TelemetryStream. Channels Strava never recorded are simply absent.
func (c *Client) GetStreams(ctx context.Context, activityID int64) (*models.TelemetryStream, error) {
	path := fmt.Sprintf("/activities/%d/streams?keys=%s&key_by_type=true",
		activityID, strings.Join(requestedStreams, ","))

	var resp streamsResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching streams for activity %d: %w", activityID, err)
	}
	return streamToTelemetry(resp), nil
}

// streamToTelemetry converts the wire response into the typed channel map.
func streamToTelemetry(resp streamsResponse) *models.TelemetryStream {
	channels := make(map[string][]*float64, len(resp))
	for name, s := range resp {
		channels[name] = s.Data
	}
	return models.StreamFromChannels(channels)
}

// getJSON performs an authenticated GET, refreshing the access token once
// on a 401 before giving up.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.doGet(ctx, path)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.log.Info("access token rejected, refreshing")
		if err := c.RefreshToken(ctx); err != nil {
			return fmt.Errorf("refreshing token: %w", err)
		}
		resp, err = c.doGet(ctx, path)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("strava returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	token, err := c.state.AccessToken()
	if err != nil {
		return nil, fmt.Errorf("reading access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.httpClient.Do(req)
}

// RefreshToken exchanges the stored refresh token for a new access token
// and persists both.
func (c *Client) RefreshToken(ctx context.Context) error {
	refresh, err := c.state.RefreshToken()
	if err != nil {
		return fmt.Errorf("reading refresh token: %w", err)
	}

	form := url.Values{
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"refresh_token": {refresh},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(c.BaseURL, "/api/v3")+"/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tokens tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}
	if err := c.state.SaveTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return fmt.Errorf("persisting tokens: %w", err)
	}
	c.log.Info("strava tokens refreshed")
	return nil
}
