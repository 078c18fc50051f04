package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	civicmcp "github.com/joescharf/civic/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients report issues, follow their lifecycle, and read
community alerts. Configure your client with:

  {
    "mcpServers": {
      "civic": { "command": "civic", "args": ["mcp"] }
    }
  }

Available tools: civic_list_issues, civic_get_issue, civic_issue_progress,
civic_report_issue, civic_advance_issue, civic_add_event,
civic_list_alerts, civic_community_stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		srv := civicmcp.NewServer(s, newClassifier(), viper.GetString("reporter"), viper.GetString("timestamp_format"))
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
