package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/civic/internal/output"
)

// testEnv points config at a temp dir, resets viper to civic's defaults and
// gives the package a fresh UI.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	orig := configDirFunc
	configDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDirFunc = orig })

	viper.Reset()
	setDefaults(dir)

	ui = output.New()
	ui.Out = &bytes.Buffer{}
	ui.ErrOut = &bytes.Buffer{}
	configForce = false

	return dir
}

func TestConfigInit(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		force    bool
		wantErr  string
	}{
		{name: "creates file"},
		{name: "refuses overwrite", existing: "port: 1\n", wantErr: "already exists"},
		{name: "force overwrites", existing: "port: 1\n", force: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testEnv(t)
			cfgPath := filepath.Join(dir, "config.yaml")
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(cfgPath, []byte(tt.existing), 0o644))
			}
			configForce = tt.force

			err := configInitRun()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				data, _ := os.ReadFile(cfgPath)
				assert.Equal(t, tt.existing, string(data))
				return
			}
			require.NoError(t, err)

			data, err := os.ReadFile(cfgPath)
			require.NoError(t, err)
			assert.Contains(t, string(data), "civic configuration")
			assert.Contains(t, string(data), "anthropic:")
			assert.Contains(t, string(data), filepath.Join(dir, "civic.db"))
			assert.Contains(t, string(data), `reporter: "you"`)
		})
	}
}

func TestConfigInit_RoundTrips(t *testing.T) {
	dir := testEnv(t)
	viper.Set("reporter", "Meena")
	require.NoError(t, configInitRun())

	viper.Reset()
	viper.SetConfigFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, viper.ReadInConfig())
	assert.Equal(t, "Meena", viper.GetString("reporter"))
	assert.Equal(t, 8080, viper.GetInt("port"))
	assert.Equal(t, "Jan 2 15:04", viper.GetString("timestamp_format"))
	assert.False(t, viper.GetBool("report.ai_classify"))
}

func TestConfigInit_DryRun(t *testing.T) {
	dir := testEnv(t)
	dryRun = true
	ui.DryRun = true
	t.Cleanup(func() { dryRun = false })

	require.NoError(t, configInitRun())

	_, err := os.Stat(filepath.Join(dir, "config.yaml"))
	assert.True(t, os.IsNotExist(err), "dry run must not write the file")
}

func TestConfigShow(t *testing.T) {
	testEnv(t)
	viper.Set("anthropic.api_key", "sk-ant-1234567890abcd")
	require.NoError(t, configShowRun())

	out := ui.Out.(*bytes.Buffer).String()
	assert.Contains(t, out, "(none")
	assert.Contains(t, out, "timestamp_format")
	assert.Contains(t, out, "sk-a****abcd")
	assert.NotContains(t, out, "sk-ant-1234567890abcd")

	require.NoError(t, configInitRun())
	ui.Out.(*bytes.Buffer).Reset()
	require.NoError(t, configShowRun())
	assert.Contains(t, ui.Out.(*bytes.Buffer).String(), "config.yaml")
}

func TestConfigCheck(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr bool
	}{
		{name: "defaults are valid"},
		{name: "port out of range", key: "port", value: 70000, wantErr: true},
		{name: "port not numeric", key: "port", value: "http", wantErr: true},
		{name: "blank reporter", key: "reporter", value: "  ", wantErr: true},
		{name: "literal timestamp layout", key: "timestamp_format", value: "today", wantErr: true},
		{name: "custom layout", key: "timestamp_format", value: "2006-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testEnv(t)
			t.Setenv("ANTHROPIC_API_KEY", "")
			if tt.key != "" {
				viper.Set(tt.key, tt.value)
			}
			err := configCheckRun()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigCheck_AIClassifyWithoutKey(t *testing.T) {
	testEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	viper.Set("report.ai_classify", true)

	problems := configProblems()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "no Anthropic API key")

	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	assert.Empty(t, configProblems())
}

func TestConfigEdit_Errors(t *testing.T) {
	testEnv(t)

	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	err := configEditRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$EDITOR is not set")

	t.Setenv("EDITOR", "true")
	err = configEditRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDetectSource(t *testing.T) {
	fileValues := map[string]bool{"reporter": true}
	t.Setenv("CIVIC_PORT", "9090")

	assert.Equal(t, "env CIVIC_PORT", detectSource("port", "CIVIC_PORT", fileValues))
	assert.Equal(t, "file", detectSource("reporter", "CIVIC_REPORTER_UNSET", fileValues))
	assert.Equal(t, "default", detectSource("db_path", "CIVIC_DB_PATH_UNSET", fileValues))
}

func TestFlattenKeys(t *testing.T) {
	result := make(map[string]bool)
	flattenKeys("", map[string]any{
		"port": 8080,
		"anthropic": map[string]any{
			"model":   "m",
			"api_key": "k",
		},
	}, result)

	assert.Equal(t, map[string]bool{"port": true, "anthropic.model": true, "anthropic.api_key": true}, result)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd****wxyz", maskSecret("abcdefghwxyz"))
}
