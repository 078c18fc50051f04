package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/civic/internal/lifecycle"
	"github.com/joescharf/civic/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection
	// serializes all access, including timeline appends from concurrent
	// HTTP requests.
	db.SetMaxOpenConns(1)

	pragmas := []struct{ stmt, what string }{
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{"PRAGMA busy_timeout=5000", "set busy timeout"},
		{"PRAGMA foreign_keys=ON", "enable foreign keys"},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p.what, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Reset deletes every issue, timeline event and alert.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"timeline_events", "issues", "alerts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- Issues ---

const issueColumns = `id, title, description, type, priority, stage, location, map_x, map_y,
	has_photo, has_audio, has_location, reporter, created_at, updated_at, resolved_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*models.Issue, error) {
	issue := &models.Issue{}
	var issueType, priority, stage string
	var resolvedAt sql.NullTime

	err := row.Scan(&issue.ID, &issue.Title, &issue.Description, &issueType, &priority, &stage,
		&issue.Location, &issue.MapX, &issue.MapY,
		&issue.HasPhoto, &issue.HasAudio, &issue.HasLocation, &issue.Reporter,
		&issue.CreatedAt, &issue.UpdatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	issue.Type = models.IssueType(issueType)
	issue.Priority = models.Priority(priority)
	issue.Stage = models.Stage(stage)
	if resolvedAt.Valid {
		issue.ResolvedAt = &resolvedAt.Time
	}
	return issue, nil
}

// CreateIssue inserts the issue and its initial timeline in one transaction.
// A preset CreatedAt is kept so fixtures can carry historical dates.
func (s *SQLiteStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if issue.ID == "" {
		issue.ID = newULID()
	}
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.CreatedAt = issue.CreatedAt.UTC()
	issue.UpdatedAt = now
	if issue.Stage == "" {
		issue.Stage = models.StageReported
	}
	if issue.Stage == models.StageResolved && issue.ResolvedAt == nil {
		issue.ResolvedAt = &now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO issues (`+issueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		issue.ID, issue.Title, issue.Description, string(issue.Type), string(issue.Priority), string(issue.Stage),
		issue.Location, issue.MapX, issue.MapY,
		boolToInt(issue.HasPhoto), boolToInt(issue.HasAudio), boolToInt(issue.HasLocation), issue.Reporter,
		issue.CreatedAt, issue.UpdatedAt, issue.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}

	for i := range issue.Timeline {
		ev := &issue.Timeline[i]
		ev.Seq = i + 1
		if err := insertEvent(ctx, tx, issue.ID, ev, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, issueID string, ev *models.TimelineEvent, now time.Time) error {
	if ev.ID == "" {
		ev.ID = newULID()
	}
	ev.IssueID = issueID
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO timeline_events (id, issue_id, seq, stage, timestamp, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.IssueID, ev.Seq, string(ev.Stage), ev.Timestamp, ev.Description, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert timeline event: %w", err)
	}
	return nil
}

// GetIssue returns the issue with its timeline in append order.
func (s *SQLiteStore) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = ?`, id)
	issue, err := scanIssue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}

	events, err := s.listEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	issue.Timeline = events
	return issue, nil
}

// ListIssues returns issues newest first.
func (s *SQLiteStore) ListIssues(ctx context.Context, filter IssueListFilter) ([]*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues`
	var conditions []string
	var args []any

	if filter.Status != "" {
		stages := filter.Status.Stages()
		if len(stages) == 0 {
			return nil, nil
		}
		placeholders := make([]string, len(stages))
		for i, st := range stages {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		conditions = append(conditions, "stage IN ("+strings.Join(placeholders, ",")+")")
	}
	if filter.Priority != "" {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Reporter != "" {
		conditions = append(conditions, "reporter = ?")
		args = append(args, filter.Reporter)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + q + "%"
		conditions = append(conditions, "(title LIKE ? OR description LIKE ? OR location LIKE ?)")
		args = append(args, like, like, like)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var issues []*models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// UpdateIssue saves the issue's own fields. The timeline is append-only and
// is not touched.
func (s *SQLiteStore) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	issue.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE issues SET title=?, description=?, type=?, priority=?, stage=?, location=?, map_x=?, map_y=?,
		has_photo=?, has_audio=?, has_location=?, reporter=?, updated_at=?, resolved_at=?
		WHERE id=?`,
		issue.Title, issue.Description, string(issue.Type), string(issue.Priority), string(issue.Stage),
		issue.Location, issue.MapX, issue.MapY,
		boolToInt(issue.HasPhoto), boolToInt(issue.HasAudio), boolToInt(issue.HasLocation), issue.Reporter,
		issue.UpdatedAt, issue.ResolvedAt, issue.ID,
	)
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("issue %s: %w", issue.ID, ErrNotFound)
	}
	return nil
}

// DeleteIssue removes the issue; its timeline goes with it.
func (s *SQLiteStore) DeleteIssue(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM issues WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}
	return nil
}

// --- Timeline ---

// AppendTimelineEvent assigns the next seq inside a transaction so concurrent
// appends to one issue never collide.
func (s *SQLiteStore) AppendTimelineEvent(ctx context.Context, issueID string, ev *models.TimelineEvent, setCurrent bool) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := issueStage(ctx, tx, issueID); err != nil {
			return err
		}
		return appendEvent(ctx, tx, issueID, ev, setCurrent)
	})
}

// AdvanceIssue reads the declared stage and records the next one in a single
// transaction, so two advances of the same issue land on successive stages.
func (s *SQLiteStore) AdvanceIssue(ctx context.Context, issueID, description, timestamp string) (*models.TimelineEvent, error) {
	var ev *models.TimelineEvent
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := issueStage(ctx, tx, issueID)
		if err != nil {
			return err
		}
		next, ok := lifecycle.Next(current)
		if !ok {
			return fmt.Errorf("advance issue %s from %q: %w", issueID, current, ErrNoNextStage)
		}
		if description == "" {
			description = "Moved to " + next.Label()
		}
		ev = &models.TimelineEvent{Stage: next, Timestamp: timestamp, Description: description}
		return appendEvent(ctx, tx, issueID, ev, true)
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func issueStage(ctx context.Context, tx *sql.Tx, issueID string) (models.Stage, error) {
	var stage string
	err := tx.QueryRowContext(ctx, "SELECT stage FROM issues WHERE id = ?", issueID).Scan(&stage)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("issue %s: %w", issueID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read issue stage: %w", err)
	}
	return models.Stage(stage), nil
}

func appendEvent(ctx context.Context, tx *sql.Tx, issueID string, ev *models.TimelineEvent, setCurrent bool) error {
	var maxSeq int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM timeline_events WHERE issue_id = ?", issueID).Scan(&maxSeq); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	now := time.Now().UTC()
	ev.Seq = maxSeq + 1
	if err := insertEvent(ctx, tx, issueID, ev, now); err != nil {
		return err
	}

	var err error
	if setCurrent {
		var resolvedAt *time.Time
		if ev.Stage == models.StageResolved {
			resolvedAt = &now
		}
		_, err = tx.ExecContext(ctx, "UPDATE issues SET stage=?, updated_at=?, resolved_at=? WHERE id=?",
			string(ev.Stage), now, resolvedAt, issueID)
	} else {
		_, err = tx.ExecContext(ctx, "UPDATE issues SET updated_at=? WHERE id=?", now, issueID)
	}
	if err != nil {
		return fmt.Errorf("touch issue: %w", err)
	}
	return nil
}

// ListTimelineEvents returns the issue's events in append order.
func (s *SQLiteStore) ListTimelineEvents(ctx context.Context, issueID string) ([]models.TimelineEvent, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM issues WHERE id = ?", issueID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check issue: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("issue %s: %w", issueID, ErrNotFound)
	}
	return s.listEvents(ctx, issueID)
}

func (s *SQLiteStore) listEvents(ctx context.Context, issueID string) ([]models.TimelineEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, issue_id, seq, stage, timestamp, description, created_at
		FROM timeline_events WHERE issue_id = ? ORDER BY seq`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.TimelineEvent
	for rows.Next() {
		var ev models.TimelineEvent
		var stage string
		if err := rows.Scan(&ev.ID, &ev.IssueID, &ev.Seq, &stage, &ev.Timestamp, &ev.Description, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		ev.Stage = models.Stage(stage)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// --- Alerts ---

const alertColumns = `id, type, sender, title, content, timestamp, unread, priority, location, issue_ref, participants, avatar, created_at`

// CreateAlert inserts an alert. A preset CreatedAt is kept.
func (s *SQLiteStore) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = newULID()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	alert.CreatedAt = alert.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (`+alertColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, string(alert.Type), alert.Sender, alert.Title, alert.Content, alert.Timestamp,
		boolToInt(alert.Unread), string(alert.Priority), alert.Location, alert.IssueRef,
		alert.Participants, alert.Avatar, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// ListAlerts returns alerts newest first.
func (s *SQLiteStore) ListAlerts(ctx context.Context, filter AlertListFilter) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts`
	var conditions []string
	var args []any

	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conditions = append(conditions, "type IN ("+strings.Join(placeholders, ",")+")")
	}
	if filter.UnreadOnly {
		conditions = append(conditions, "unread = 1")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var alerts []*models.Alert
	for rows.Next() {
		a := &models.Alert{}
		var alertType, priority string
		if err := rows.Scan(&a.ID, &alertType, &a.Sender, &a.Title, &a.Content, &a.Timestamp,
			&a.Unread, &priority, &a.Location, &a.IssueRef, &a.Participants, &a.Avatar, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Type = models.AlertType(alertType)
		a.Priority = models.Priority(priority)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkAlertRead clears the unread flag.
func (s *SQLiteStore) MarkAlertRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE alerts SET unread = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}
