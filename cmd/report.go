package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/civic/internal/lifecycle"
	"github.com/joescharf/civic/internal/models"
	"github.com/joescharf/civic/internal/stats"
	"github.com/joescharf/civic/internal/store"
)

var (
	reportFormat string
	exportType   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data as JSON, CSV, or Markdown",
	Long:  "Export issues, timeline events, or alerts in various formats.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun()
	},
}

func init() {
	exportCmd.Flags().StringVar(&reportFormat, "format", "json", "Output format: json, csv, markdown")
	exportCmd.Flags().StringVar(&exportType, "type", "issues", "Data type: issues, events, alerts")
	rootCmd.AddCommand(exportCmd)
}

func exportRun() error {
	s, err := getProvider()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch exportType {
	case "issues":
		return exportIssues(ctx, s, ui.Out, reportFormat)
	case "events":
		return exportEvents(ctx, s, ui.Out, reportFormat)
	case "alerts":
		return exportAlerts(ctx, s, ui.Out, reportFormat)
	default:
		return fmt.Errorf("unknown export type: %s (use: issues, events, alerts)", exportType)
	}
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exportIssues(ctx context.Context, s store.Provider, w io.Writer, format string) error {
	issues, err := s.ListIssues(ctx, store.IssueListFilter{})
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return writeJSONTo(w, issues)
	case "csv":
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"ID", "Title", "Type", "Priority", "Stage", "Status", "Location", "Reporter", "Created", "Resolved"})
		for _, i := range issues {
			resolved := ""
			if i.ResolvedAt != nil {
				resolved = i.ResolvedAt.Format(time.RFC3339)
			}
			_ = cw.Write([]string{i.ID, i.Title, string(i.Type), string(i.Priority), string(i.Stage), string(i.Status()),
				i.Location, i.Reporter, i.CreatedAt.Format(time.RFC3339), resolved})
		}
		cw.Flush()
		return cw.Error()
	case "markdown":
		fmt.Fprintln(w, "# Issues")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Title | Type | Priority | Status | Location |")
		fmt.Fprintln(w, "|-------|------|----------|--------|----------|")
		for _, i := range issues {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n", i.Title, i.Type, i.Priority, i.Status().Label(), i.Location)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func exportEvents(ctx context.Context, s store.Provider, w io.Writer, format string) error {
	issues, err := s.ListIssues(ctx, store.IssueListFilter{})
	if err != nil {
		return err
	}

	type issueEvents struct {
		Issue  *models.Issue
		Events []models.TimelineEvent
	}
	var all []issueEvents
	for _, i := range issues {
		evs, err := s.ListTimelineEvents(ctx, i.ID)
		if err != nil {
			return fmt.Errorf("events for %s: %w", i.ID, err)
		}
		all = append(all, issueEvents{Issue: i, Events: evs})
	}

	switch format {
	case "json":
		out := make(map[string][]models.TimelineEvent, len(all))
		for _, ie := range all {
			out[ie.Issue.ID] = ie.Events
		}
		return writeJSONTo(w, out)
	case "csv":
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"IssueID", "Seq", "Stage", "Timestamp", "Description"})
		for _, ie := range all {
			for _, ev := range ie.Events {
				_ = cw.Write([]string{ie.Issue.ID, strconv.Itoa(ev.Seq), string(ev.Stage), ev.Timestamp, ev.Description})
			}
		}
		cw.Flush()
		return cw.Error()
	case "markdown":
		fmt.Fprintln(w, "# Timelines")
		for _, ie := range all {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "## %s (%d%%)\n", ie.Issue.Title, lifecycle.Progress(lifecycle.ProjectEvents(ie.Events, ie.Issue.Stage)))
			fmt.Fprintln(w)
			for _, ev := range ie.Events {
				fmt.Fprintf(w, "- **%s** %s: %s\n", ev.Stage.Label(), ev.Timestamp, ev.Description)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func exportAlerts(ctx context.Context, s store.Provider, w io.Writer, format string) error {
	alerts, err := s.ListAlerts(ctx, store.AlertListFilter{})
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return writeJSONTo(w, alerts)
	case "csv":
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"ID", "Type", "Sender", "Title", "Timestamp", "Unread", "Priority"})
		for _, a := range alerts {
			_ = cw.Write([]string{a.ID, string(a.Type), a.Sender, a.Title, a.Timestamp, strconv.FormatBool(a.Unread), string(a.Priority)})
		}
		cw.Flush()
		return cw.Error()
	case "markdown":
		fmt.Fprintln(w, "# Alerts")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Type | Title | From | When |")
		fmt.Fprintln(w, "|------|-------|------|------|")
		for _, a := range alerts {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", a.Type, a.Title, a.Sender, a.Timestamp)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate reports",
	Long:  "Generate summary reports of community activity.",
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Generate weekly activity summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getProvider()
		if err != nil {
			return err
		}
		return reportWeekly(context.Background(), s, ui.Out, time.Now())
	},
}

func init() {
	reportCmd.AddCommand(reportWeeklyCmd)
	rootCmd.AddCommand(reportCmd)
}

func reportWeekly(ctx context.Context, s store.Provider, w io.Writer, now time.Time) error {
	issues, err := s.ListIssues(ctx, store.IssueListFilter{})
	if err != nil {
		return err
	}

	week := stats.ThisWeek(issues, now)
	sum := stats.Summarize(issues)

	fmt.Fprintln(w, "# Weekly Report")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "- Reported: %d\n", week.Reported)
	fmt.Fprintf(w, "- Resolved: %d\n", week.Resolved)
	fmt.Fprintf(w, "- In progress: %d\n", week.InProgress)
	fmt.Fprintf(w, "- Resolution rate (all time): %d%%\n", sum.ResolutionRate)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Open high-priority issues")
	fmt.Fprintln(w)
	open := 0
	for _, i := range issues {
		if i.Priority == models.PriorityHigh && i.Status() != models.IssueStatusResolved {
			fmt.Fprintf(w, "- %s (%s, %s)\n", i.Title, i.Location, i.Status().Label())
			open++
		}
	}
	if open == 0 {
		fmt.Fprintln(w, "- none")
	}
	return nil
}
