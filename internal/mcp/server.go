package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/civic/internal/inbox"
	"github.com/joescharf/civic/internal/lifecycle"
	"github.com/joescharf/civic/internal/models"
	"github.com/joescharf/civic/internal/report"
	"github.com/joescharf/civic/internal/stats"
	"github.com/joescharf/civic/internal/store"
)

// Server wraps the civic data layer and exposes it as MCP tools.
type Server struct {
	store           store.Store
	classifier      report.Classifier
	scorer          *stats.Scorer
	reporter        string
	timestampFormat string
	now             func() time.Time
}

// NewServer creates the MCP server wrapper. A nil classifier falls back to
// keyword classification.
func NewServer(s store.Store, classifier report.Classifier, reporter, timestampFormat string) *Server {
	if classifier == nil {
		classifier = report.KeywordClassifier{}
	}
	if timestampFormat == "" {
		timestampFormat = "Jan 2 15:04"
	}
	return &Server{
		store:           s,
		classifier:      classifier,
		scorer:          stats.NewScorer(),
		reporter:        reporter,
		timestampFormat: timestampFormat,
		now:             time.Now,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("civic", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listIssuesTool())
	srv.AddTool(s.getIssueTool())
	srv.AddTool(s.issueProgressTool())
	srv.AddTool(s.reportIssueTool())
	srv.AddTool(s.advanceIssueTool())
	srv.AddTool(s.addEventTool())
	srv.AddTool(s.listAlertsTool())
	srv.AddTool(s.communityStatsTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) timestamp() string {
	return s.now().Format(s.timestampFormat)
}

func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal %s: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Issues
// ---------------------------------------------------------------------------

// civic_list_issues
func (s *Server) listIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("civic_list_issues",
		mcp.WithDescription("List reported civic issues, newest first. Returns a JSON array of issues with id, title, type, priority, stage, status, location and reporter."),
		mcp.WithString("status", mcp.Description("Filter by status: pending, in-progress, resolved")),
		mcp.WithString("priority", mcp.Description("Filter by priority: low, medium, high")),
		mcp.WithString("type", mcp.Description("Filter by type: infrastructure, safety, environment, noise")),
		mcp.WithString("reporter", mcp.Description("Filter by reporter name")),
		mcp.WithString("query", mcp.Description("Search title, description and location")),
	)
	return tool, s.handleListIssues
}

func (s *Server) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := store.IssueListFilter{
		Status:   models.IssueStatus(request.GetString("status", "")),
		Priority: models.Priority(request.GetString("priority", "")),
		Type:     models.IssueType(request.GetString("type", "")),
		Reporter: request.GetString("reporter", ""),
		Query:    request.GetString("query", ""),
	}
	if filter.Status != "" && filter.Status.Stages() == nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid status: %s", filter.Status)), nil
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("invalid priority: %s", filter.Priority)), nil
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("invalid type: %s", filter.Type)), nil
	}

	issues, err := s.store.ListIssues(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list issues: %v", err)), nil
	}

	type issueOut struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Type      string `json:"type"`
		Priority  string `json:"priority"`
		Stage     string `json:"stage"`
		Status    string `json:"status"`
		Location  string `json:"location"`
		Reporter  string `json:"reporter"`
		CreatedAt string `json:"created_at"`
	}

	out := make([]issueOut, len(issues))
	for i, issue := range issues {
		out[i] = issueOut{
			ID:        issue.ID,
			Title:     issue.Title,
			Type:      string(issue.Type),
			Priority:  string(issue.Priority),
			Stage:     string(issue.Stage),
			Status:    string(issue.Status()),
			Location:  issue.Location,
			Reporter:  issue.Reporter,
			CreatedAt: issue.CreatedAt.Format(time.RFC3339),
		}
	}
	return jsonResult(out, "issues")
}

// civic_get_issue
func (s *Server) getIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("civic_get_issue",
		mcp.WithDescription("Get one issue with its full timeline. Accepts a full ID or unique prefix."),
		mcp.WithString("issue", mcp.Required(), mcp.Description("Issue ID or unique prefix")),
	)
	return tool, s.handleGetIssue
}

func (s *Server) handleGetIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue"), nil
	}
	issue, err := store.FindIssue(ctx, s.store, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(issue, "issue")
}

// civic_issue_progress
func (s *Server) issueProgressTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("civic_issue_progress",
		mcp.WithDescription("Show an issue's lifecycle stepper: each stage with completed/current flags, the current stage detail, percent complete and any timeline inconsistencies."),
		mcp.WithString("issue", mcp.Required(), mcp.Description("Issue ID or unique prefix")),
	)
	return tool, s.handleIssueProgress
}

func (s *Server) handleIssueProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue"), nil
	}
	issue, err := store.FindIssue(ctx, s.store, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(lifecycle.ForIssue(issue), "progress")
}

// civic_report_issue
func (s *Server) reportIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("civic_report_issue",
		mcp.WithDescription("Report a new civic issue. Type and priority are inferred from the description when omitted. Returns the created issue as JSON."),
		mcp.WithString("description", mcp.Description("What is wrong and where (required unless quick is given)")),
		mcp.WithString("quick", mcp.Description("Quick report template: emergency, roads, electrical, water, traffic, parks, lighting")),
		mcp.WithString("title", mcp.Description("Short title (default: first line of the description)")),
		mcp.WithString("type", mcp.Description("Issue type: infrastructure, safety, environment, noise")),
		mcp.WithString("priority", mcp.Description("Issue priority: low, medium, high")),
		mcp.WithString("location", mcp.Description("Where the issue is")),
		mcp.WithString("reporter", mcp.Description("Reporter name (default: configured reporter)")),
	)
	return tool, s.handleReportIssue
}

func (s *Server) handleReportIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	form := report.Form{
		Title:       request.GetString("title", ""),
		Description: request.GetString("description", ""),
		Type:        request.GetString("type", ""),
		Priority:    request.GetString("priority", ""),
		Location:    request.GetString("location", ""),
	}
	if quick := request.GetString("quick", ""); quick != "" {
		tmpl, ok := report.QuickReport(quick)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown quick report: %s", quick)), nil
		}
		form = tmpl.Apply(form)
	}

	reporter := request.GetString("reporter", s.reporter)
	issue, err := report.Submit(ctx, s.store, s.classifier, form, reporter, s.timestamp())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to report issue: %v", err)), nil
	}
	return jsonResult(issue, "issue")
}

// civic_advance_issue
func (s *Server) advanceIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("civic_advance_issue",
		mcp.WithDescription("Move an issue to the next lifecycle stage (reported, assigned, in-progress, resolved) and record a timeline event."),
		mcp.WithString("issue", mcp.Required(), mcp.Description("Issue ID or unique prefix")),
		mcp.WithString("description", mcp.Description("Timeline note (default: \"Moved to <stage>\")")),
	)
	return tool, s.handleAdvanceIssue
}

func (s *Server) handleAdvanceIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue"), nil
	}
	found, err := store.FindIssue(ctx, s.store, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	issue, err := store.Advance(ctx, s.store, found.ID, request.GetString("description", ""), s.timestamp())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to advance issue: %v", err)), nil
	}
	return jsonResult(lifecycle.ForIssue(issue), "progress")
}

// civic_add_event
func (s *Server) addEventTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("civic_add_event",
		mcp.WithDescription("Append a timeline event to an issue without enforcing stage order. Use civic_advance_issue for normal progress."),
		mcp.WithString("issue", mcp.Required(), mcp.Description("Issue ID or unique prefix")),
		mcp.WithString("stage", mcp.Required(), mcp.Description("Stage: reported, assigned, in-progress, resolved")),
		mcp.WithString("description", mcp.Description("What happened")),
		mcp.WithString("timestamp", mcp.Description("Display timestamp (default: now)")),
		mcp.WithBoolean("set_current", mcp.Description("Also make this the issue's current stage")),
	)
	return tool, s.handleAddEvent
}

func (s *Server) handleAddEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue"), nil
	}
	rawStage, err := request.RequireString("stage")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: stage"), nil
	}
	stage, err := models.ParseStage(rawStage)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found, err := store.FindIssue(ctx, s.store, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev := &models.TimelineEvent{
		Stage:       stage,
		Timestamp:   request.GetString("timestamp", s.timestamp()),
		Description: request.GetString("description", ""),
	}
	if err := s.store.AppendTimelineEvent(ctx, found.ID, ev, request.GetBool("set_current", false)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add event: %v", err)), nil
	}
	return jsonResult(ev, "event")
}

// ---------------------------------------------------------------------------
// Alerts and stats
// ---------------------------------------------------------------------------

// civic_list_alerts
func (s *Server) listAlertsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("civic_list_alerts",
		mcp.WithDescription("List community alerts for an inbox tab, with unread and per-tab counts."),
		mcp.WithString("tab", mcp.Description("Inbox tab: all, chats, notifications, announcements (default: all)")),
		mcp.WithString("query", mcp.Description("Search title, content and sender")),
		mcp.WithBoolean("unread_only", mcp.Description("Only unread alerts")),
	)
	return tool, s.handleListAlerts
}

func (s *Server) handleListAlerts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tab, err := inbox.ParseTab(request.GetString("tab", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	all, err := s.store.ListAlerts(ctx, store.AlertListFilter{})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list alerts: %v", err)), nil
	}

	filtered := inbox.Filter(all, request.GetString("query", ""), tab)
	out := make([]*models.Alert, 0, len(filtered))
	unreadOnly := request.GetBool("unread_only", false)
	for _, a := range filtered {
		if unreadOnly && !a.Unread {
			continue
		}
		out = append(out, a)
	}

	return jsonResult(map[string]any{
		"tab":          tab,
		"alerts":       out,
		"unread_count": inbox.UnreadCount(all),
		"tab_counts":   inbox.TabCounts(all),
	}, "alerts")
}

// civic_community_stats
func (s *Server) communityStatsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("civic_community_stats",
		mcp.WithDescription("Community summary (counts by status, type, priority and this week's activity) plus one reporter's points and achievements."),
		mcp.WithString("reporter", mcp.Description("Reporter to score (default: configured reporter)")),
	)
	return tool, s.handleCommunityStats
}

func (s *Server) handleCommunityStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issues, err := s.store.ListIssues(ctx, store.IssueListFilter{})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list issues: %v", err)), nil
	}
	reporter := request.GetString("reporter", s.reporter)
	now := s.now()

	return jsonResult(map[string]any{
		"summary":     stats.Summarize(issues),
		"week":        stats.ThisWeek(issues, now),
		"weekly_text": stats.WeeklySummary(issues, now),
		"reporter":    reporter,
		"score":       s.scorer.ScoreReporter(reporter, issues, now),
	}, "stats")
}
