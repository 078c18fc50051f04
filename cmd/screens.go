package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/civic/internal/nav"
	"github.com/joescharf/civic/internal/output"
)

var screensCmd = &cobra.Command{
	Use:   "screens",
	Short: "Show the app's screens and navigation table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return screensRun()
	},
}

var screensWalkCmd = &cobra.Command{
	Use:   "walk <event>...",
	Short: "Replay navigation events from the splash screen",
	Long: `Replay navigation events from the splash screen, printing the screen
after each one. Events are written as their name, with an argument after
a colon where needed:

  civic screens walk splash-done signed-in navigate:map select-issue:3 back`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return screensWalkRun(args)
	},
}

func init() {
	screensCmd.AddCommand(screensWalkCmd)
	rootCmd.AddCommand(screensCmd)
}

func screensRun() error {
	var tabs []string
	for _, t := range nav.Tabs() {
		tabs = append(tabs, fmt.Sprintf("%s (%s)", t.Label, t.Target))
	}
	fmt.Fprintf(ui.Out, "Tabs: %s\n\n", strings.Join(tabs, ", "))

	table := ui.Table([]string{"From", "Event", "To"})
	for _, tr := range nav.Transitions() {
		_ = table.Append([]string{string(tr.From), tr.Event, string(tr.To)})
	}
	_ = table.Render()
	return nil
}

func screensWalkRun(args []string) error {
	c := nav.NewController()
	fmt.Fprintf(ui.Out, "  %s\n", output.Cyan(describeScreen(c.Current())))

	for _, arg := range args {
		ev, err := nav.ParseEvent(arg)
		if err != nil {
			return err
		}
		s, err := c.Dispatch(ev)
		if err != nil {
			return err
		}
		fmt.Fprintf(ui.Out, "%s -> %s\n", arg, output.Cyan(describeScreen(s)))
	}
	return nil
}

// describeScreen names a screen with its per-screen state and active tab.
func describeScreen(s nav.Screen) string {
	var details []string
	switch cur := s.(type) {
	case nav.Dashboard:
		if cur.SelectedIssueID != "" {
			details = append(details, "selected="+cur.SelectedIssueID)
		}
		if cur.Satellite {
			details = append(details, "satellite")
		}
	case nav.Map:
		if cur.SelectedIssueID != "" {
			details = append(details, "selected="+cur.SelectedIssueID)
		}
		if cur.Satellite {
			details = append(details, "satellite")
		}
	case nav.Notifications:
		if cur.ExpandedIssueID != "" {
			details = append(details, "expanded="+cur.ExpandedIssueID)
		}
	}
	if i := nav.ActiveTab(s); i >= 0 {
		details = append(details, "tab="+nav.Tabs()[i].Label)
	}

	name := string(s.Name())
	if len(details) > 0 {
		name += " [" + strings.Join(details, " ") + "]"
	}
	return name
}
