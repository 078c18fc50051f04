package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/civic/internal/inbox"
	"github.com/joescharf/civic/internal/models"
	"github.com/joescharf/civic/internal/output"
	"github.com/joescharf/civic/internal/stats"
	"github.com/joescharf/civic/internal/store"
	"github.com/joescharf/civic/internal/theme"
)

var (
	statusLimit   int
	statsReporter string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the community dashboard",
	Long: `Show the community dashboard: issue counts by status, this week's
activity, unread alerts, and the most recent reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show community statistics and a reporter's score",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsRun()
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 5, "Number of recent issues to show")
	statsCmd.Flags().StringVar(&statsReporter, "reporter", "", "Reporter to score (default: config reporter)")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
}

func statusRun() error {
	s, err := getProvider()
	if err != nil {
		return err
	}
	ctx := context.Background()

	issues, err := s.ListIssues(ctx, store.IssueListFilter{})
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		ui.Info("No issues reported yet. Use 'civic issue add' or 'civic seed' to get started.")
		return nil
	}

	sum := stats.Summarize(issues)
	counts := map[models.IssueStatus]int{
		models.IssueStatusPending:    sum.Pending,
		models.IssueStatusInProgress: sum.InProgress,
		models.IssueStatusResolved:   sum.Resolved,
	}
	var parts []string
	for _, st := range models.AllIssueStatuses() {
		parts = append(parts, fmt.Sprintf("%s %d %s", theme.StatusIcon(st), counts[st], output.StatusColor(st)))
	}
	fmt.Fprintln(ui.Out, strings.Join(parts, "   "))
	fmt.Fprintln(ui.Out, stats.WeeklySummary(issues, time.Now()))

	if alerts, err := s.ListAlerts(ctx, store.AlertListFilter{UnreadOnly: true}); err == nil && len(alerts) > 0 {
		ui.Info("%d unread alert(s). Run 'civic alert list --unread'.", inbox.UnreadCount(alerts))
	}
	fmt.Fprintln(ui.Out)

	recent := issues
	if statusLimit > 0 && len(recent) > statusLimit {
		recent = recent[:statusLimit]
	}
	table := ui.Table([]string{"ID", "", "Title", "Status", "Priority", "Age"})
	for _, issue := range recent {
		_ = table.Append([]string{
			shortID(issue.ID),
			theme.TypeIcon(issue.Type),
			issue.Title,
			output.StatusColor(issue.Status()),
			output.PriorityColor(issue.Priority),
			timeAgo(issue.CreatedAt),
		})
	}
	_ = table.Render()
	return nil
}

func statsRun() error {
	s, err := getProvider()
	if err != nil {
		return err
	}

	issues, err := s.ListIssues(context.Background(), store.IssueListFilter{})
	if err != nil {
		return err
	}

	sum := stats.Summarize(issues)
	fmt.Fprintln(ui.Out, "Community")
	fmt.Fprintf(ui.Out, "  Total:        %d\n", sum.Total)
	fmt.Fprintf(ui.Out, "  Pending:      %d\n", sum.Pending)
	fmt.Fprintf(ui.Out, "  In progress:  %d\n", sum.InProgress)
	fmt.Fprintf(ui.Out, "  Resolved:     %d (%s)\n", sum.Resolved, output.ProgressColor(sum.ResolutionRate))
	fmt.Fprintf(ui.Out, "  This week:    %s\n", stats.WeeklySummary(issues, time.Now()))
	fmt.Fprintln(ui.Out)

	table := ui.Table([]string{"Type", "Issues"})
	for _, t := range models.AllIssueTypes() {
		_ = table.Append([]string{theme.TypeIcon(t) + " " + string(t), fmt.Sprintf("%d", sum.ByType[t])})
	}
	_ = table.Render()
	fmt.Fprintln(ui.Out)

	reporter := statsReporter
	if reporter == "" {
		reporter = viper.GetString("reporter")
	}
	score := stats.NewScorer().ScoreReporter(reporter, issues, time.Now())

	fmt.Fprintf(ui.Out, "%s: %s points\n", output.Cyan(reporter), output.Green(fmt.Sprintf("%d", score.Points)))
	fmt.Fprintf(ui.Out, "  %d report(s) x50, %d resolved x25, %d with photo x10\n", score.Reports, score.Resolved, score.WithPhoto)

	var earned []string
	for _, a := range score.Earned() {
		earned = append(earned, a.Title)
	}
	if len(earned) > 0 {
		fmt.Fprintf(ui.Out, "  Achievements: %s\n", strings.Join(earned, ", "))
	}
	return nil
}
