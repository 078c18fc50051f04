package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/civic/internal/sample"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample neighbourhood issues and alerts",
	Long: `Load the built-in sample data: ten issues at different lifecycle
stages and eight community alerts. Refuses to run on a database that
already has issues unless --force is given, which clears it first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return seedRun()
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Clear existing issues and alerts first")
	rootCmd.AddCommand(seedCmd)
}

func seedRun() error {
	now := time.Now()

	if dryRun {
		data, err := sample.Load(now)
		if err != nil {
			return err
		}
		ui.DryRunMsg("Would load %d issues and %d alerts", len(data.Issues), len(data.Alerts))
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	res, err := sample.Seed(context.Background(), s, now, seedForce)
	if err != nil {
		return err
	}

	ui.Success("Loaded %d issues (%d timeline events) and %d alerts", res.Issues, res.Events, res.Alerts)
	return nil
}
