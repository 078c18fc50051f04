package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "civic"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage civic configuration.

Values come from, in order of precedence: CIVIC_* environment variables,
the config file, and built-in defaults. Bare 'civic config' runs 'show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file from the current values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective values and where each one comes from",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configCheckRun()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := configFilePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(ui.Out, p)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Replace an existing config file")
	for _, c := range []*cobra.Command{configInitCmd, configShowCmd, configCheckCmd, configPathCmd, configEditCmd} {
		configCmd.AddCommand(c)
	}
	rootCmd.AddCommand(configCmd)
}

const configTemplate = `# civic configuration
# Effective values and their sources: civic config show

# Where civic keeps its database, PID and log files
# state_dir: {{ .StateDir }}

# SQLite database
# db_path: {{ .DBPath }}

# Port for 'civic serve'
port: {{ .Port }}

# Your name on new reports; 'stats' and 'issue list --mine' use it too
reporter: "{{ .Reporter }}"

# Go time layout used to stamp timeline events
timestamp_format: "{{ .TimestampFormat }}"

anthropic:
  # Prefer the ANTHROPIC_API_KEY environment variable over storing a key here
  # api_key: ""
  model: "{{ .AnthropicModel }}"

report:
  # Let the model pick type and priority when a report leaves them blank
  ai_classify: {{ .AIClassify }}
`

type configTemplateData struct {
	StateDir        string
	DBPath          string
	Port            int
	Reporter        string
	TimestampFormat string
	AnthropicModel  string
	AIClassify      bool
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func renderConfig() ([]byte, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse config template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, configTemplateData{
		StateDir:        viper.GetString("state_dir"),
		DBPath:          viper.GetString("db_path"),
		Port:            viper.GetInt("port"),
		Reporter:        viper.GetString("reporter"),
		TimestampFormat: viper.GetString("timestamp_format"),
		AnthropicModel:  viper.GetString("anthropic.model"),
		AIClassify:      viper.GetBool("report.ai_classify"),
	})
	if err != nil {
		return nil, fmt.Errorf("render config template: %w", err)
	}
	return buf.Bytes(), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	_, statErr := os.Stat(cfgPath)
	exists := statErr == nil
	if exists && !configForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
	}

	content, err := renderConfig()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would write %s", cfgPath)
		fmt.Fprintf(ui.Out, "\n%s", content)
		return nil
	}

	if exists {
		ui.Warning("Replacing %s", cfgPath)
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	ui.Success("Wrote %s", cfgPath)
	fmt.Fprintf(ui.Out, "\n%s", content)
	return nil
}

// configKey describes one setting for show and check.
type configKey struct {
	Key    string
	EnvVar string
	Secret bool
	Check  func(v any) error
}

var configKeys = []configKey{
	{Key: "state_dir", EnvVar: "CIVIC_STATE_DIR", Check: nonEmpty},
	{Key: "db_path", EnvVar: "CIVIC_DB_PATH", Check: nonEmpty},
	{Key: "port", EnvVar: "CIVIC_PORT", Check: validPort},
	{Key: "reporter", EnvVar: "CIVIC_REPORTER", Check: nonEmpty},
	{Key: "timestamp_format", EnvVar: "CIVIC_TIMESTAMP_FORMAT", Check: validLayout},
	{Key: "anthropic.api_key", EnvVar: "CIVIC_ANTHROPIC_API_KEY", Secret: true},
	{Key: "anthropic.model", EnvVar: "CIVIC_ANTHROPIC_MODEL", Check: nonEmpty},
	{Key: "report.ai_classify", EnvVar: "CIVIC_REPORT_AI_CLASSIFY"},
	{Key: "demo", EnvVar: "CIVIC_DEMO"},
}

func nonEmpty(v any) error {
	if strings.TrimSpace(fmt.Sprint(v)) == "" {
		return errors.New("must not be empty")
	}
	return nil
}

func validPort(v any) error {
	var port int
	if _, err := fmt.Sscan(fmt.Sprint(v), &port); err != nil {
		return fmt.Errorf("not a number: %v", v)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("out of range: %d", port)
	}
	return nil
}

// validLayout rejects layouts without any reference-time element, which
// would stamp every event with the same literal text.
func validLayout(v any) error {
	layout := fmt.Sprint(v)
	if layout == "" {
		return errors.New("must not be empty")
	}
	probe := time.Date(2001, time.February, 3, 4, 5, 6, 0, time.UTC)
	if probe.Format(layout) == layout {
		return fmt.Errorf("%q has no date or time elements", layout)
	}
	return nil
}

func maskSecret(v any) string {
	s := fmt.Sprint(v)
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****" + s[len(s)-4:]
	}
}

// configProblems checks every key and returns one message per bad value.
func configProblems() []string {
	var problems []string
	for _, k := range configKeys {
		if k.Check == nil {
			continue
		}
		if err := k.Check(viper.Get(k.Key)); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", k.Key, err))
		}
	}
	if viper.GetBool("report.ai_classify") && newLLMKey() == "" {
		problems = append(problems, "report.ai_classify: no Anthropic API key configured; keywords will be used")
	}
	return problems
}

func newLLMKey() string {
	if k := viper.GetString("anthropic.api_key"); k != "" {
		return k
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none, run 'civic config init')")
	}

	fileValues := readConfigFileValues(cfgPath)
	table := ui.Table([]string{"Key", "Value", "Source"})
	for _, k := range configKeys {
		val := fmt.Sprint(viper.Get(k.Key))
		if k.Secret {
			val = maskSecret(val)
		}
		_ = table.Append([]string{k.Key, val, detectSource(k.Key, k.EnvVar, fileValues)})
	}
	_ = table.Render()

	for _, p := range configProblems() {
		ui.Warning("%s", p)
	}
	return nil
}

func configCheckRun() error {
	problems := configProblems()
	if len(problems) == 0 {
		ui.Success("Configuration OK")
		return nil
	}
	for _, p := range problems {
		ui.Error("%s", p)
	}
	return fmt.Errorf("%d configuration problem(s)", len(problems))
}

// readConfigFileValues returns the dotted keys set in the YAML file at path.
// A missing or unparsable file yields an empty set.
func readConfigFileValues(path string) map[string]bool {
	keys := make(map[string]bool)
	data, err := os.ReadFile(path)
	if err != nil {
		return keys
	}
	var doc map[string]any
	if yaml.Unmarshal(data, &doc) == nil {
		flattenKeys("", doc, keys)
	}
	return keys
}

// flattenKeys records the leaf keys of m in dot notation.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenKeys(k, nested, result)
			continue
		}
		result[k] = true
	}
}

func detectSource(key, envVar string, fileValues map[string]bool) string {
	switch {
	case os.Getenv(envVar) != "":
		return "env " + envVar
	case fileValues[key]:
		return "file"
	default:
		return "default"
	}
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return errors.New("$EDITOR is not set (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config file not found: %s (run 'civic config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	c := exec.Command(editor, cfgPath)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("run %s: %w", editor, err)
	}

	if err := viper.ReadInConfig(); err == nil {
		for _, p := range configProblems() {
			ui.Warning("%s", p)
		}
	}
	return nil
}
