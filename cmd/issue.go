package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/civic/internal/lifecycle"
	"github.com/joescharf/civic/internal/models"
	"github.com/joescharf/civic/internal/output"
	"github.com/joescharf/civic/internal/report"
	"github.com/joescharf/civic/internal/store"
	"github.com/joescharf/civic/internal/theme"
)

var (
	issueTitle      string
	issueDesc       string
	issuePriority   string
	issueType       string
	issueStatus     string
	issueLocation   string
	issueReporter   string
	issueQuery      string
	issueQuick      string
	issuePhoto      bool
	issueAudio      bool
	issueGPS        bool
	issueMine       bool
	issueNote       string
	issueStage      string
	issueTimestamp  string
	issueSetCurrent bool
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Report and track civic issues",
	Long:  "Report civic issues and follow them from reported to resolved.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun()
	},
}

var issueAddCmd = &cobra.Command{
	Use:   "add [description...]",
	Short: "Report a new issue",
	Long: `Report a new issue. The description may be given as arguments or --desc.
Type and priority are inferred from the description when omitted.
Use --quick to start from a quick report template (see 'civic issue quick').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && issueDesc == "" {
			issueDesc = strings.Join(args, " ")
		}
		return issueAddRun()
	},
}

var issueListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun()
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show <issue-id>",
	Short: "Show issue details with its progress stepper and timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueShowRun(args[0])
	},
}

var issueProgressCmd = &cobra.Command{
	Use:   "progress <issue-id>",
	Short: "Show the progress stepper for an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueProgressRun(args[0])
	},
}

var issueAdvanceCmd = &cobra.Command{
	Use:   "advance <issue-id>",
	Short: "Move an issue to its next stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueAdvanceRun(args[0])
	},
}

var issueEventCmd = &cobra.Command{
	Use:   "event <issue-id>",
	Short: "Record a timeline event for an issue",
	Long: `Record a timeline event without enforcing stage order.
Use --set-current to also move the issue to that stage.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueEventRun(args[0])
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <issue-id>",
	Short: "Update an issue's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueUpdateRun(args[0])
	},
}

var issueDeleteCmd = &cobra.Command{
	Use:     "delete <issue-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an issue and its timeline",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueDeleteRun(args[0])
	},
}

var issueQuickCmd = &cobra.Command{
	Use:   "quick",
	Short: "List quick report templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueQuickRun()
	},
}

func init() {
	issueAddCmd.Flags().StringVar(&issueDesc, "desc", "", "What is wrong")
	issueAddCmd.Flags().StringVar(&issueTitle, "title", "", "Short title (default: first line of the description)")
	issueAddCmd.Flags().StringVar(&issueType, "type", "", "Type: infrastructure, safety, environment, noise")
	issueAddCmd.Flags().StringVar(&issuePriority, "priority", "", "Priority: low, medium, high")
	issueAddCmd.Flags().StringVar(&issueLocation, "location", "", "Where the issue is")
	issueAddCmd.Flags().StringVar(&issueQuick, "quick", "", "Quick report template key")
	issueAddCmd.Flags().StringVar(&issueReporter, "reporter", "", "Reporter name (default: config reporter)")
	issueAddCmd.Flags().BoolVar(&issuePhoto, "photo", false, "A photo is attached")
	issueAddCmd.Flags().BoolVar(&issueAudio, "audio", false, "A voice note is attached")
	issueAddCmd.Flags().BoolVar(&issueGPS, "gps", false, "Location was captured by GPS")

	issueListCmd.Flags().StringVar(&issueStatus, "status", "", "Filter by status: pending, in-progress, resolved")
	issueListCmd.Flags().StringVar(&issuePriority, "priority", "", "Filter by priority")
	issueListCmd.Flags().StringVar(&issueType, "type", "", "Filter by type")
	issueListCmd.Flags().StringVar(&issueReporter, "reporter", "", "Filter by reporter")
	issueListCmd.Flags().StringVarP(&issueQuery, "query", "q", "", "Search title, description and location")
	issueListCmd.Flags().BoolVar(&issueMine, "mine", false, "Only issues you reported")

	issueAdvanceCmd.Flags().StringVar(&issueNote, "note", "", "Timeline note (default: \"Moved to <stage>\")")

	issueEventCmd.Flags().StringVar(&issueStage, "stage", "", "Stage: reported, assigned, in-progress, resolved (required)")
	issueEventCmd.Flags().StringVar(&issueNote, "note", "", "What happened")
	issueEventCmd.Flags().StringVar(&issueTimestamp, "timestamp", "", "Display timestamp (default: now)")
	issueEventCmd.Flags().BoolVar(&issueSetCurrent, "set-current", false, "Also make this the current stage")
	_ = issueEventCmd.MarkFlagRequired("stage")

	issueUpdateCmd.Flags().StringVar(&issueTitle, "title", "", "New title")
	issueUpdateCmd.Flags().StringVar(&issueDesc, "desc", "", "New description")
	issueUpdateCmd.Flags().StringVar(&issueType, "type", "", "New type")
	issueUpdateCmd.Flags().StringVar(&issuePriority, "priority", "", "New priority")
	issueUpdateCmd.Flags().StringVar(&issueLocation, "location", "", "New location")

	issueCmd.AddCommand(issueAddCmd)
	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueProgressCmd)
	issueCmd.AddCommand(issueAdvanceCmd)
	issueCmd.AddCommand(issueEventCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueDeleteCmd)
	issueCmd.AddCommand(issueQuickCmd)
	rootCmd.AddCommand(issueCmd)
}

// nowStamp formats the current time as a timeline timestamp.
func nowStamp() string {
	return time.Now().Format(viper.GetString("timestamp_format"))
}

func issueAddRun() error {
	form := report.Form{
		Title:       issueTitle,
		Description: issueDesc,
		Type:        issueType,
		Priority:    issuePriority,
		Location:    issueLocation,
		Photo:       issuePhoto,
		Audio:       issueAudio,
		GPS:         issueGPS,
	}
	if issueQuick != "" {
		tmpl, ok := report.QuickReport(issueQuick)
		if !ok {
			return fmt.Errorf("unknown quick report: %s (see 'civic issue quick')", issueQuick)
		}
		form = tmpl.Apply(form)
	}

	reporter := issueReporter
	if reporter == "" {
		reporter = viper.GetString("reporter")
	}

	if dryRun {
		if err := report.Validate(form); err != nil {
			return err
		}
		ui.DryRunMsg("Would report issue by %s: %s", reporter, report.TitleFromDescription(form.Description))
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	issue, err := report.Submit(context.Background(), s, newClassifier(), form, reporter, nowStamp())
	if err != nil {
		return err
	}

	ui.Success("Reported issue %s: %s [%s/%s]", output.Cyan(shortID(issue.ID)), issue.Title,
		issue.Type, output.PriorityColor(issue.Priority))
	return nil
}

func issueListRun() error {
	s, err := getProvider()
	if err != nil {
		return err
	}
	ctx := context.Background()

	filter := store.IssueListFilter{
		Status:   models.IssueStatus(issueStatus),
		Priority: models.Priority(issuePriority),
		Type:     models.IssueType(issueType),
		Reporter: issueReporter,
		Query:    issueQuery,
	}
	if issueMine {
		filter.Reporter = viper.GetString("reporter")
	}
	if filter.Status != "" && filter.Status.Stages() == nil {
		return fmt.Errorf("invalid status: %s (use pending, in-progress, resolved)", filter.Status)
	}

	issues, err := s.ListIssues(ctx, filter)
	if err != nil {
		return err
	}

	if len(issues) == 0 {
		ui.Info("No issues found.")
		return nil
	}

	table := ui.Table([]string{"ID", "", "Title", "Status", "Priority", "Location", "Reporter", "Age"})
	for _, issue := range issues {
		_ = table.Append([]string{
			shortID(issue.ID),
			theme.TypeIcon(issue.Type),
			issue.Title,
			output.StatusColor(issue.Status()),
			output.PriorityColor(issue.Priority),
			issue.Location,
			issue.Reporter,
			timeAgo(issue.CreatedAt),
		})
	}
	_ = table.Render()
	return nil
}

func issueShowRun(id string) error {
	s, err := getProvider()
	if err != nil {
		return err
	}

	issue, err := store.FindIssue(context.Background(), s, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s %s\n", output.Cyan(shortID(issue.ID)), theme.TypeIcon(issue.Type), issue.Title)
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.StatusColor(issue.Status()))
	fmt.Fprintf(ui.Out, "  Priority:   %s\n", output.PriorityColor(issue.Priority))
	fmt.Fprintf(ui.Out, "  Type:       %s\n", issue.Type)
	if issue.Description != "" && issue.Description != issue.Title {
		fmt.Fprintf(ui.Out, "  Desc:       %s\n", issue.Description)
	}
	if issue.Location != "" {
		fmt.Fprintf(ui.Out, "  Location:   %s\n", issue.Location)
	}
	if media := mediaSummary(issue); media != "" {
		fmt.Fprintf(ui.Out, "  Attached:   %s\n", media)
	}
	fmt.Fprintf(ui.Out, "  Reporter:   %s\n", issue.Reporter)
	fmt.Fprintf(ui.Out, "  Reported:   %s (%s)\n", issue.CreatedAt.Local().Format(time.RFC3339), timeAgo(issue.CreatedAt))
	if issue.ResolvedAt != nil {
		fmt.Fprintf(ui.Out, "  Resolved:   %s\n", issue.ResolvedAt.Local().Format(time.RFC3339))
	}
	fmt.Fprintf(ui.Out, "  Full ID:    %s\n", issue.ID)
	fmt.Fprintln(ui.Out)

	printProgress(issue)

	views := lifecycle.ProjectEvents(issue.Timeline, issue.Stage)
	fmt.Fprintln(ui.Out)
	fmt.Fprintln(ui.Out, "Timeline")
	fmt.Fprintln(ui.Out, output.RenderTimeline(views))
	return nil
}

func issueProgressRun(id string) error {
	s, err := getProvider()
	if err != nil {
		return err
	}

	issue, err := store.FindIssue(context.Background(), s, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s\n\n", output.Cyan(shortID(issue.ID)), issue.Title)
	printProgress(issue)
	return nil
}

// printProgress renders the stepper, the current stage box and any
// inconsistencies found in the timeline.
func printProgress(issue *models.Issue) {
	p := lifecycle.ForIssue(issue)
	fmt.Fprintln(ui.Out, output.RenderStepper(p.Steps))
	if box := output.RenderCurrentDetail(p.Steps); box != "" {
		fmt.Fprintln(ui.Out, box)
	}
	fmt.Fprintf(ui.Out, "Progress: %s\n", output.ProgressColor(p.Percent))
	for _, w := range p.Warnings {
		ui.Warning("%s", w.Message)
	}
}

func issueAdvanceRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	issue, err := store.FindIssue(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		next, ok := lifecycle.Next(issue.Stage)
		if !ok {
			return fmt.Errorf("issue %s: %w", shortID(issue.ID), store.ErrNoNextStage)
		}
		ui.DryRunMsg("Would move issue %s from %s to %s", shortID(issue.ID), issue.Stage.Label(), next.Label())
		return nil
	}

	updated, err := store.Advance(ctx, s, issue.ID, issueNote, nowStamp())
	if err != nil {
		return err
	}

	ui.Success("Issue %s is now %s", output.Cyan(shortID(updated.ID)), output.StatusColor(updated.Status()))
	printProgress(updated)
	return nil
}

func issueEventRun(id string) error {
	stage, err := models.ParseStage(issueStage)
	if err != nil {
		return err
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	issue, err := store.FindIssue(ctx, s, id)
	if err != nil {
		return err
	}

	ts := issueTimestamp
	if ts == "" {
		ts = nowStamp()
	}
	ev := &models.TimelineEvent{Stage: stage, Timestamp: ts, Description: issueNote}

	if dryRun {
		ui.DryRunMsg("Would record %s event on issue %s", stage.Label(), shortID(issue.ID))
		return nil
	}

	if err := s.AppendTimelineEvent(ctx, issue.ID, ev, issueSetCurrent); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	ui.Success("Recorded %s event #%d on issue %s", stage.Label(), ev.Seq, output.Cyan(shortID(issue.ID)))
	for _, w := range lifecycle.Check(append(issue.Timeline, *ev), currentAfter(issue.Stage, stage)) {
		ui.Warning("%s", w.Message)
	}
	return nil
}

func currentAfter(current, recorded models.Stage) models.Stage {
	if issueSetCurrent {
		return recorded
	}
	return current
}

func issueUpdateRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	issue, err := store.FindIssue(ctx, s, id)
	if err != nil {
		return err
	}

	changed := false
	if issueTitle != "" {
		issue.Title = issueTitle
		changed = true
	}
	if issueDesc != "" {
		issue.Description = issueDesc
		changed = true
	}
	if issueLocation != "" {
		issue.Location = issueLocation
		issue.HasLocation = true
		changed = true
	}
	if issueType != "" {
		if !models.IssueType(issueType).Valid() {
			return fmt.Errorf("%w: %s", report.ErrInvalidType, issueType)
		}
		issue.Type = models.IssueType(issueType)
		changed = true
	}
	if issuePriority != "" {
		if !models.Priority(issuePriority).Valid() {
			return fmt.Errorf("%w: %s", report.ErrInvalidPriority, issuePriority)
		}
		issue.Priority = models.Priority(issuePriority)
		changed = true
	}

	if !changed {
		return fmt.Errorf("no updates specified (use --title, --desc, --type, --priority, or --location)")
	}

	if dryRun {
		ui.DryRunMsg("Would update issue %s", shortID(issue.ID))
		return nil
	}

	if err := s.UpdateIssue(ctx, issue); err != nil {
		return fmt.Errorf("update issue: %w", err)
	}

	ui.Success("Updated issue %s", output.Cyan(shortID(issue.ID)))
	return nil
}

func issueDeleteRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	issue, err := store.FindIssue(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete issue %s: %s", shortID(issue.ID), issue.Title)
		return nil
	}

	if err := s.DeleteIssue(ctx, issue.ID); err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}

	ui.Success("Deleted issue %s: %s", output.Cyan(shortID(issue.ID)), issue.Title)
	return nil
}

func issueQuickRun() error {
	table := ui.Table([]string{"Key", "Label", "Type", "Priority", "Description"})
	for _, t := range report.QuickReports() {
		label := t.Label
		if t.Emergency {
			label = output.Red(label)
		}
		_ = table.Append([]string{
			t.Key,
			label,
			string(t.Type),
			output.PriorityColor(t.Priority),
			t.Description,
		})
	}
	_ = table.Render()
	return nil
}

func mediaSummary(issue *models.Issue) string {
	var parts []string
	if issue.HasPhoto {
		parts = append(parts, "photo")
	}
	if issue.HasAudio {
		parts = append(parts, "voice note")
	}
	if issue.HasLocation {
		parts = append(parts, "location")
	}
	return strings.Join(parts, ", ")
}

// shortID returns a truncated ULID for display (first 12 chars).
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// timeAgo renders a coarse relative age like "3h ago".
func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/(24*7)))
	}
}
