package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/civic/internal/inbox"
	"github.com/joescharf/civic/internal/models"
	"github.com/joescharf/civic/internal/output"
	"github.com/joescharf/civic/internal/store"
	"github.com/joescharf/civic/internal/theme"
)

var (
	alertTab    string
	alertQuery  string
	alertUnread bool
)

var alertCmd = &cobra.Command{
	Use:     "alert",
	Aliases: []string{"alerts", "inbox"},
	Short:   "Read community alerts, chats and announcements",
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertListRun()
	},
}

var alertListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List alerts for an inbox tab",
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertListRun()
	},
}

var alertReadCmd = &cobra.Command{
	Use:   "read <alert-id>",
	Short: "Mark an alert as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertReadRun(args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{alertCmd, alertListCmd} {
		c.Flags().StringVarP(&alertTab, "tab", "t", "all", "Inbox tab: all, chats, notifications, announcements")
		c.Flags().StringVarP(&alertQuery, "query", "q", "", "Search title, content and sender")
		c.Flags().BoolVar(&alertUnread, "unread", false, "Only unread alerts")
	}
	alertCmd.AddCommand(alertListCmd)
	alertCmd.AddCommand(alertReadCmd)
	rootCmd.AddCommand(alertCmd)
}

func alertListRun() error {
	tab, err := inbox.ParseTab(alertTab)
	if err != nil {
		return err
	}

	s, err := getProvider()
	if err != nil {
		return err
	}

	all, err := s.ListAlerts(context.Background(), store.AlertListFilter{})
	if err != nil {
		return err
	}

	counts := inbox.TabCounts(all)
	var header []string
	for _, t := range inbox.Tabs() {
		label := fmt.Sprintf("%s (%d)", t.Label(), counts[t])
		if t == tab {
			label = output.Cyan("[" + label + "]")
		}
		header = append(header, label)
	}
	fmt.Fprintln(ui.Out, strings.Join(header, "  "))
	if n := inbox.UnreadCount(all); n > 0 {
		ui.Info("%d unread", n)
	}
	fmt.Fprintln(ui.Out)

	var shown []*models.Alert
	for _, a := range inbox.Filter(all, alertQuery, tab) {
		if alertUnread && !a.Unread {
			continue
		}
		shown = append(shown, a)
	}
	if len(shown) == 0 {
		ui.Info("No alerts.")
		return nil
	}

	table := ui.Table([]string{"ID", "", "Title", "From", "When", "Priority"})
	for _, a := range shown {
		title := a.Title
		if a.Unread {
			title = output.ToneColor(theme.AlertTone(a.Type), "• "+title)
		}
		prio := ""
		if a.Priority != "" {
			prio = output.ToneColor(theme.AlertPriorityTone(a.Priority), string(a.Priority))
		}
		_ = table.Append([]string{
			shortID(a.ID),
			theme.AlertIcon(a.Type),
			title,
			a.Sender,
			a.Timestamp,
			prio,
		})
	}
	_ = table.Render()
	return nil
}

func alertReadRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	alert, err := findAlert(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would mark alert %s as read", shortID(alert.ID))
		return nil
	}

	if err := s.MarkAlertRead(ctx, alert.ID); err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	ui.Success("Marked %s as read: %s", output.Cyan(shortID(alert.ID)), alert.Title)
	return nil
}

// findAlert resolves an alert by full ID or unique prefix.
func findAlert(ctx context.Context, s store.Store, id string) (*models.Alert, error) {
	alerts, err := s.ListAlerts(ctx, store.AlertListFilter{})
	if err != nil {
		return nil, err
	}
	var matches []*models.Alert
	for _, a := range alerts {
		if a.ID == id {
			return a, nil
		}
		if len(id) > 0 && len(a.ID) >= len(id) && strings.EqualFold(a.ID[:len(id)], id) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("alert %s: %w", id, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous alert ID %s: matches %d alerts", id, len(matches))
	}
}
