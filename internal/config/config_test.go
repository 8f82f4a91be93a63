package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, 3000, cfg.Window.MaxTime)
	assert.Equal(t, 60, cfg.Window.MinTime)
	assert.False(t, cfg.Tracing.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
window:
  max_time: 1000
  min_time: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("LOANRISK_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 1000, cfg.Window.MaxTime)
	assert.Equal(t, 30, cfg.Window.MinTime)
	// Settings the file does not touch keep their defaults.
	assert.Equal(t, "console", cfg.Logging.Output)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  max_time: 1000\n"), 0o644))
	t.Setenv("LOANRISK_CONFIG_FILE", path)
	t.Setenv("LOANRISK_WINDOW_MAX_TIME", "2000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Window.MaxTime)
}

func TestValidateRejectsInvertedWindow(t *testing.T) {
	cfg := Default()
	cfg.Window.MaxTime = 30
	cfg.Window.MinTime = 60

	assert.Error(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: ["), 0o644))
	t.Setenv("LOANRISK_CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
}

func TestPathsResolution(t *testing.T) {
	paths, err := NewPaths(PathsConfig{DataDir: "data", OutDir: "out", LogsDir: "logs"})
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(paths.DataDir))
	assert.Equal(t, filepath.Join(paths.DataDir, "client.asc"), paths.GetDataPath("client.asc"))
	assert.Equal(t, filepath.Join(paths.OutDir, FeatureTableCSVName), paths.GetOutputPath(FeatureTableCSVName))
}

func TestEnsureDirectoriesSkipsDataDir(t *testing.T) {
	base := t.TempDir()
	paths := &Paths{
		DataDir: filepath.Join(base, "data"),
		OutDir:  filepath.Join(base, "out"),
		LogsDir: filepath.Join(base, "logs"),
	}

	require.NoError(t, paths.EnsureDirectories())

	_, err := os.Stat(paths.OutDir)
	assert.NoError(t, err)
	_, err = os.Stat(paths.LogsDir)
	assert.NoError(t, err)
	// A missing extract directory is an input error, not ours to create.
	_, err = os.Stat(paths.DataDir)
	assert.True(t, os.IsNotExist(err))
}
