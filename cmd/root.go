package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/civic/internal/output"
	"github.com/joescharf/civic/internal/sample"
	"github.com/joescharf/civic/internal/store"
)

// Shared by every command; set up in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "civic",
	Short: "Report neighbourhood issues and follow them to resolution",
	Long: `civic records civic issues (potholes, broken lights, noise, dumping)
and tracks each one through reported, assigned, in progress and resolved.

Running bare 'civic' shows the community dashboard.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeStore()
	},
}

// Execute runs the root command with build metadata from main.
func Execute(version, commit, date string) {
	buildVersion, buildCommit, buildDate = version, commit, date

	err := rootCmd.Execute()
	closeStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose output and debug logging")
	pf.BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	pf.String("config", "", "Config file (default ~/.config/civic/config.yaml)")
	pf.Bool("demo", false, "Read the built-in sample neighbourhood instead of the database")
	_ = viper.BindPFlag("demo", pf.Lookup("demo"))
}

// setDefaults registers every config key with its default, rooted at dir.
func setDefaults(dir string) {
	defaults := map[string]any{
		"state_dir":          dir,
		"db_path":            filepath.Join(dir, "civic.db"),
		"port":               8080,
		"reporter":           "you",
		"timestamp_format":   "Jan 2 15:04",
		"anthropic.api_key":  "",
		"anthropic.model":    "claude-haiku-4-5-20251001",
		"report.ai_classify": false,
		"demo":               false,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func initConfig() {
	dir, err := configDirFunc()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
		os.Exit(1)
	}
	setDefaults(dir)

	viper.SetEnvPrefix("CIVIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfg, _ := rootCmd.PersistentFlags().GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(dir)
	}
	// The file is optional; defaults and env cover a fresh install.
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// errDemoReadOnly is returned by getStore when --demo is set.
var errDemoReadOnly = errors.New("demo data is read-only (drop --demo to use the database)")

// getProvider returns the read side for listing and display commands: the
// in-memory sample data with --demo, the database otherwise.
func getProvider() (store.Provider, error) {
	if viper.GetBool("demo") {
		ui.VerboseLog("Using built-in sample data")
		p, err := sample.NewProvider(time.Now())
		if err != nil {
			return nil, fmt.Errorf("load sample data: %w", err)
		}
		return p, nil
	}
	return getStore()
}

// getStore opens and migrates the database on first use, so commands that
// never touch it (config, version, screens) work without one.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}
	if viper.GetBool("demo") {
		return nil, errDemoReadOnly
	}

	dbPath := viper.GetString("db_path")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	ui.VerboseLog("Opening database %s", dbPath)

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

func closeStore() {
	if dataStore == nil {
		return
	}
	if err := dataStore.Close(); err != nil {
		slog.Debug("close database", "error", err)
	}
	dataStore = nil
}
