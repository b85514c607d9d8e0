package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("AthleteSpace", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("AthleteSpace training server. Query planned workouts, their timelines, recorded executions, and compliance verdicts comparing what an athlete did against what was planned."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetWorkoutTimeline, Handler: h.getWorkoutTimeline},
		server.ServerTool{Tool: toolGetWorkoutExecutions, Handler: h.getWorkoutExecutions},
		server.ServerTool{Tool: toolGetExecutionCompliance, Handler: h.getExecutionCompliance},
		server.ServerTool{Tool: toolGetRecentCompliance, Handler: h.getRecentCompliance},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resUpcomingWorkouts, Handler: h.upcomingWorkouts},
		server.ServerResource{Resource: resRecentCompliance, Handler: h.recentCompliance},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resUpcomingWorkouts = mcp.NewResource(
	"athletespace://upcoming_workouts",
	"Upcoming Workouts",
	mcp.WithResourceDescription("Planned workouts scheduled in the next 7 days, with their structured steps"),
	mcp.WithMIMEType("application/json"),
)

var resRecentCompliance = mcp.NewResource(
	"athletespace://recent_compliance",
	"Recent Compliance",
	mcp.WithResourceDescription("Compliance verdicts computed in the last 30 days"),
	mcp.WithMIMEType("application/json"),
)
