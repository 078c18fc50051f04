package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joescharf/civic/internal/inbox"
	"github.com/joescharf/civic/internal/lifecycle"
	"github.com/joescharf/civic/internal/models"
	"github.com/joescharf/civic/internal/nav"
	"github.com/joescharf/civic/internal/report"
	"github.com/joescharf/civic/internal/stats"
	"github.com/joescharf/civic/internal/store"
)

// Server provides the REST API handlers.
type Server struct {
	store           store.Store
	classifier      report.Classifier
	scorer          *stats.Scorer
	reporter        string
	timestampFormat string
	now             func() time.Time
}

// NewServer creates a new API server. The classifier may be nil, in which
// case reports are classified by keyword.
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

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/issues", s.listIssues)
	mux.HandleFunc("POST /api/v1/issues", s.createIssue)
	mux.HandleFunc("GET /api/v1/issues/{id}", s.getIssue)
	mux.HandleFunc("PUT /api/v1/issues/{id}", s.updateIssue)
	mux.HandleFunc("DELETE /api/v1/issues/{id}", s.deleteIssue)
	mux.HandleFunc("GET /api/v1/issues/{id}/progress", s.issueProgress)
	mux.HandleFunc("POST /api/v1/issues/{id}/events", s.appendEvent)
	mux.HandleFunc("POST /api/v1/issues/{id}/advance", s.advanceIssue)

	mux.HandleFunc("GET /api/v1/alerts", s.listAlerts)
	mux.HandleFunc("POST /api/v1/alerts/{id}/read", s.markAlertRead)

	mux.HandleFunc("GET /api/v1/stats", s.communityStats)
	mux.HandleFunc("GET /api/v1/quick-reports", s.quickReports)
	mux.HandleFunc("GET /api/v1/screens", s.screens)

	return corsMiddleware(logRequests(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store and validation errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case report.IsValidationError(err), errors.Is(err, models.ErrInvalidStage):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrNoNextStage):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// patchString applies a string value from a JSON patch map to the target if the key is present and non-empty.
func patchString(patch map[string]any, key string, target *string) {
	if v, ok := patch[key]; ok {
		if str, ok := v.(string); ok && str != "" {
			*target = str
		}
	}
}

func (s *Server) timestamp() string {
	return s.now().Format(s.timestampFormat)
}

// --- Issues ---

func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.IssueListFilter{
		Status:   models.IssueStatus(q.Get("status")),
		Priority: models.Priority(q.Get("priority")),
		Type:     models.IssueType(q.Get("type")),
		Reporter: q.Get("reporter"),
		Query:    q.Get("q"),
	}
	if filter.Status != "" && filter.Status.Stages() == nil {
		writeError(w, http.StatusBadRequest, "invalid status: "+string(filter.Status))
		return
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		writeError(w, http.StatusBadRequest, "invalid priority: "+string(filter.Priority))
		return
	}
	if filter.Type != "" && !filter.Type.Valid() {
		writeError(w, http.StatusBadRequest, "invalid type: "+string(filter.Type))
		return
	}

	issues, err := s.store.ListIssues(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if issues == nil {
		issues = []*models.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

// createIssueRequest is a report form, optionally prefilled from a quick
// report template.
type createIssueRequest struct {
	report.Form
	Quick    string `json:"quick,omitempty"`
	Reporter string `json:"reporter,omitempty"`
}

func (s *Server) createIssue(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	form := req.Form
	if req.Quick != "" {
		tmpl, ok := report.QuickReport(req.Quick)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, "unknown quick report: "+req.Quick)
			return
		}
		form = tmpl.Apply(req.Form)
	}

	reporter := req.Reporter
	if reporter == "" {
		reporter = s.reporter
	}

	issue, err := report.Submit(r.Context(), s.store, s.classifier, form, reporter, s.timestamp())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := s.store.GetIssue(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) updateIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := s.store.GetIssue(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	typ, prio := string(issue.Type), string(issue.Priority)
	patchString(patch, "title", &issue.Title)
	patchString(patch, "description", &issue.Description)
	patchString(patch, "location", &issue.Location)
	patchString(patch, "type", &typ)
	patchString(patch, "priority", &prio)
	if !models.IssueType(typ).Valid() {
		writeError(w, http.StatusUnprocessableEntity, report.ErrInvalidType.Error()+": "+typ)
		return
	}
	if !models.Priority(prio).Valid() {
		writeError(w, http.StatusUnprocessableEntity, report.ErrInvalidPriority.Error()+": "+prio)
		return
	}
	issue.Type, issue.Priority = models.IssueType(typ), models.Priority(prio)

	if err := s.store.UpdateIssue(r.Context(), issue); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) deleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteIssue(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) issueProgress(w http.ResponseWriter, r *http.Request) {
	issue, err := s.store.GetIssue(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	resp := lifecycle.ForIssue(issue)
	for _, warn := range resp.Warnings {
		slog.Warn("timeline inconsistency", "issue", issue.ID, "kind", warn.Kind, "stage", warn.Stage, "message", warn.Message)
	}
	writeJSON(w, http.StatusOK, resp)
}

type appendEventRequest struct {
	Stage       string `json:"stage"`
	Timestamp   string `json:"timestamp,omitempty"`
	Description string `json:"description"`
	SetCurrent  bool   `json:"set_current,omitempty"`
}

func (s *Server) appendEvent(w http.ResponseWriter, r *http.Request) {
	var req appendEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	stage, err := models.ParseStage(req.Stage)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	ts := req.Timestamp
	if ts == "" {
		ts = s.timestamp()
	}

	ev := &models.TimelineEvent{Stage: stage, Timestamp: ts, Description: strings.TrimSpace(req.Description)}
	if err := s.store.AppendTimelineEvent(r.Context(), r.PathValue("id"), ev, req.SetCurrent); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

type advanceRequest struct {
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

func (s *Server) advanceIssue(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	ts := req.Timestamp
	if ts == "" {
		ts = s.timestamp()
	}

	issue, err := store.Advance(r.Context(), s.store, r.PathValue("id"), req.Description, ts)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// --- Alerts ---

// AlertsResponse is the inbox view: filtered alerts plus badge counts over
// the whole inbox.
type AlertsResponse struct {
	Alerts      []*models.Alert   `json:"alerts"`
	UnreadCount int               `json:"unread_count"`
	TabCounts   map[inbox.Tab]int `json:"tab_counts"`
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab, err := inbox.ParseTab(q.Get("tab"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	all, err := s.store.ListAlerts(r.Context(), store.AlertListFilter{})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	filtered := inbox.Filter(all, q.Get("q"), tab)
	if q.Get("unread") == "true" {
		var unread []*models.Alert
		for _, a := range filtered {
			if a.Unread {
				unread = append(unread, a)
			}
		}
		filtered = unread
	}
	if filtered == nil {
		filtered = []*models.Alert{}
	}

	writeJSON(w, http.StatusOK, AlertsResponse{
		Alerts:      filtered,
		UnreadCount: inbox.UnreadCount(all),
		TabCounts:   inbox.TabCounts(all),
	})
}

func (s *Server) markAlertRead(w http.ResponseWriter, r *http.Request) {
	if err := s.store.MarkAlertRead(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// --- Stats ---

// StatsResponse combines the community summary with one reporter's score.
type StatsResponse struct {
	Summary    *stats.Summary       `json:"summary"`
	Week       stats.Week           `json:"week"`
	WeeklyText string               `json:"weekly_text"`
	Reporter   string               `json:"reporter"`
	Score      *stats.ReporterScore `json:"score"`
}

func (s *Server) communityStats(w http.ResponseWriter, r *http.Request) {
	issues, err := s.store.ListIssues(r.Context(), store.IssueListFilter{})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	reporter := r.URL.Query().Get("reporter")
	if reporter == "" {
		reporter = s.reporter
	}

	now := s.now()
	writeJSON(w, http.StatusOK, StatsResponse{
		Summary:    stats.Summarize(issues),
		Week:       stats.ThisWeek(issues, now),
		WeeklyText: stats.WeeklySummary(issues, now),
		Reporter:   reporter,
		Score:      s.scorer.ScoreReporter(reporter, issues, now),
	})
}

func (s *Server) quickReports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, report.QuickReports())
}

// ScreensResponse describes the app's navigation model.
type ScreensResponse struct {
	Screens     []nav.ScreenName `json:"screens"`
	Tabs        []nav.Tab        `json:"tabs"`
	Transitions []nav.Transition `json:"transitions"`
}

func (s *Server) screens(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ScreensResponse{
		Screens:     nav.ScreenNames(),
		Tabs:        nav.Tabs(),
		Transitions: nav.Transitions(),
	})
}
