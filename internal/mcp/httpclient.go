package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/models"
	"github.com/artachobruno/athletespace/internal/storage"
)

// HTTPClient implements DataSource by calling the AthleteSpace REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	var workout models.Workout
	if err := json.Unmarshal(body, &workout); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &workout, nil
}

func (c *HTTPClient) QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var workouts []models.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) QueryExecutions(ctx context.Context, workoutID uuid.UUID) ([]storage.Execution, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+workoutID.String()+"/executions", nil)
	if err != nil {
		return nil, err
	}

	var execs []storage.Execution
	if err := json.Unmarshal(body, &execs); err != nil {
		return nil, fmt.Errorf("httpclient: decode executions: %w", err)
	}
	return execs, nil
}

func (c *HTTPClient) GetCompliance(ctx context.Context, executionID uuid.UUID) (*storage.ComplianceReport, error) {
	body, err := c.get(ctx, "/api/v1/executions/"+executionID.String()+"/compliance", nil)
	if err != nil {
		return nil, err
	}

	var report storage.ComplianceReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("httpclient: decode compliance: %w", err)
	}
	return &report, nil
}

func (c *HTTPClient) QueryRecentCompliance(ctx context.Context, since time.Time, limit int) ([]storage.ComplianceReport, error) {
	params := url.Values{}
	params.Set("since", since.Format(time.RFC3339))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/compliance/recent", params)
	if err != nil {
		return nil, err
	}

	var reports []storage.ComplianceReport
	if err := json.Unmarshal(body, &reports); err != nil {
		return nil, fmt.Errorf("httpclient: decode recent compliance: %w", err)
	}
	return reports, nil
}
