package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) upcomingWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	start := time.Now()
	end := start.AddDate(0, 0, 7)

	workouts, err := h.ds.QueryWorkouts(ctx, start, end)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(workouts)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentCompliance(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	since := time.Now().AddDate(0, 0, -30)

	reports, err := h.ds.QueryRecentCompliance(ctx, since, 50)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(reports)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
