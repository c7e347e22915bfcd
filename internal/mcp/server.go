package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/studyplan/internal/models"
	"github.com/joescharf/studyplan/internal/schedule"
	"github.com/joescharf/studyplan/internal/store"
	"github.com/joescharf/studyplan/internal/timeutil"
)

// Server wraps the studyplan data layer and exposes it as MCP tools.
type Server struct {
	store      store.Store
	defaultGap int
}

// NewServer creates the MCP server wrapper. defaultGap is the configured rest
// gap used when a tool call doesn't supply one.
func NewServer(s store.Store, defaultGap int) *Server {
	return &Server{store: s, defaultGap: defaultGap}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("studyplan", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.addSessionTool())
	srv.AddTool(s.listSessionsTool())
	srv.AddTool(s.removeSessionTool())
	srv.AddTool(s.clearSessionsTool())
	srv.AddTool(s.optimizeTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// plan_add_session
func (s *Server) addSessionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("plan_add_session",
		mcp.WithDescription("Add a candidate study session. Times accept HH:MM text or integer minutes since midnight. Overlapping sessions are allowed; the optimizer resolves conflicts."),
		mcp.WithString("start", mcp.Required(), mcp.Description("Start time (HH:MM or minutes)")),
		mcp.WithString("end", mcp.Required(), mcp.Description("End time (HH:MM or minutes)")),
		mcp.WithNumber("weight", mcp.Required(), mcp.Description("Benefit weight, must be positive")),
		mcp.WithString("label", mcp.Required(), mcp.Description("Session label")),
	)
	return tool, s.handleAddSession
}

func (s *Server) handleAddSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startText, err := request.RequireString("start")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: start"), nil
	}
	endText, err := request.RequireString("end")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: end"), nil
	}
	weight, err := request.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: weight"), nil
	}
	label, err := request.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: label"), nil
	}

	start, err := timeutil.ParseClock(startText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start: %v", err)), nil
	}
	end, err := timeutil.ParseClock(endText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end: %v", err)), nil
	}

	// Run planner validation before touching the store.
	p, err := schedule.NewPlanner(0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := p.Add(start, end, weight, label); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session := &models.Session{Label: label, Start: start, End: end, Weight: weight}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store session: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(`{"id": %q}`, session.ID)), nil
}

// plan_list_sessions
func (s *Server) listSessionsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("plan_list_sessions",
		mcp.WithDescription("List all stored candidate sessions. Returns a JSON array with id, label, start, end (HH:MM), and weight."),
	)
	return tool, s.handleListSessions
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}

	type sessionOut struct {
		ID     string  `json:"id"`
		Label  string  `json:"label"`
		Start  string  `json:"start"`
		End    string  `json:"end"`
		Weight float64 `json:"weight"`
	}

	out := make([]sessionOut, len(sessions))
	for i, session := range sessions {
		startText, _ := timeutil.Text(session.Start)
		endText, _ := timeutil.Text(session.End)
		out[i] = sessionOut{
			ID:     session.ID,
			Label:  session.Label,
			Start:  startText,
			End:    endText,
			Weight: session.Weight,
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal sessions: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// plan_remove_session
func (s *Server) removeSessionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("plan_remove_session",
		mcp.WithDescription("Remove a stored session by id (full ULID or unique prefix)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Session id or id prefix")),
	)
	return tool, s.handleRemoveSession
}

func (s *Server) handleRemoveSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	session, err := findSession(ctx, s.store, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.store.DeleteSession(ctx, session.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove session: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"removed": %q}`, session.ID)), nil
}

// plan_clear_sessions
func (s *Server) clearSessionsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("plan_clear_sessions",
		mcp.WithDescription("Remove all stored sessions."),
	)
	return tool, s.handleClearSessions
}

func (s *Server) handleClearSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.store.ClearSessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear sessions: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"removed": %d}`, n)), nil
}

// plan_optimize
func (s *Server) optimizeTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("plan_optimize",
		mcp.WithDescription("Compute the maximum-benefit non-overlapping schedule over all stored sessions, honoring the rest gap between consecutive picks. Returns total benefit and the chosen sessions sorted by start time."),
		mcp.WithNumber("gap", mcp.Description("Rest gap in minutes (defaults to the configured rest_gap)")),
	)
	return tool, s.handleOptimize
}

func (s *Server) handleOptimize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gap := request.GetInt("gap", s.defaultGap)

	planner, err := schedule.NewPlanner(gap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}
	for _, session := range sessions {
		if err := planner.AddSession(*session); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("stored session %s is invalid: %v", session.ID, err)), nil
		}
	}

	result := planner.Solve()

	type entryOut struct {
		Label  string  `json:"label"`
		Start  string  `json:"start"`
		End    string  `json:"end"`
		Weight float64 `json:"weight"`
	}

	entries := make([]entryOut, len(result.Entries))
	for i, e := range result.Entries {
		entries[i] = entryOut{Label: e.Label, Start: e.StartText, End: e.EndText, Weight: e.Weight}
	}

	data, err := json.Marshal(map[string]any{
		"total":    result.Total,
		"gap":      gap,
		"schedule": entries,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal schedule: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// findSession resolves a session by full id or unique prefix.
func findSession(ctx context.Context, s store.Store, id string) (*models.Session, error) {
	if session, err := s.GetSession(ctx, id); err == nil {
		return session, nil
	}

	upper := strings.ToUpper(id)
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*models.Session
	for _, session := range sessions {
		if strings.HasPrefix(session.ID, upper) {
			matches = append(matches, session)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("session not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous session id %s: matches %d sessions", id, len(matches))
	}
}
