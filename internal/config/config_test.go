package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at fresh temp dirs so
// a developer's real config can't leak into the test.
func isolate(t *testing.T) (home, cwd string) {
	t.Helper()
	home = t.TempDir()
	cwd = t.TempDir()
	t.Setenv("HOME", home)
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(cwd))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return home, cwd
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "http://localhost:8000", cfg.API.URL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.Interval)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)

	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
api:
  url: https://fleet.internal:8443
  timeout: 3s
dashboard:
  interval: 2s
output:
  color: never
log:
  level: debug
  file: /tmp/fleetdash.log
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "https://fleet.internal:8443", cfg.API.URL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Dashboard.Interval)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/fleetdash.log", cfg.Log.File)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("api:\n  url: http://10.0.0.5:8000\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8000", cfg.API.URL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.Interval)
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("api: [unclosed\n"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_BadDuration(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("dashboard:\n  interval: soon\n"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid config format")
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("api:\n  url: http://from-file:8000\n"), 0644))

	t.Setenv("FLEETDASH_API_URL", "http://from-env:9000")
	t.Setenv("FLEETDASH_DASHBOARD_INTERVAL", "750ms")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:9000", cfg.API.URL)
	assert.Equal(t, 750*time.Millisecond, cfg.Dashboard.Interval)
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

		found, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		isolate(t)
		_, err := Find(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("current directory", func(t *testing.T) {
		_, cwd := isolate(t)
		local := filepath.Join(cwd, ConfigFileName)
		require.NoError(t, os.WriteFile(local, []byte("version: 1\n"), 0644))

		found, err := Find("")
		require.NoError(t, err)

		// macOS temp dirs resolve through /private, so compare by name
		assert.Equal(t, ConfigFileName, filepath.Base(found))
	})

	t.Run("global config", func(t *testing.T) {
		home, _ := isolate(t)
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		require.NoError(t, os.MkdirAll(filepath.Dir(global), 0755))
		require.NoError(t, os.WriteFile(global, []byte("version: 1\n"), 0644))

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, global, found)
	})

	t.Run("nothing found", func(t *testing.T) {
		isolate(t)
		found, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("defaults when no file", func(t *testing.T) {
		isolate(t)
		cfg, path, err := LoadOrDefault("")
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("env applies without a file", func(t *testing.T) {
		isolate(t)
		t.Setenv("FLEETDASH_API_URL", "http://manager:8000")
		t.Setenv("FLEETDASH_OUTPUT_COLOR", "NEVER")

		cfg, _, err := LoadOrDefault("")
		require.NoError(t, err)
		assert.Equal(t, "http://manager:8000", cfg.API.URL)
		assert.Equal(t, "never", cfg.Output.Color)
	})

	t.Run("explicit file", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "fleet.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))

		cfg, found, err := LoadOrDefault(path)
		require.NoError(t, err)
		assert.Equal(t, path, found)
		assert.Equal(t, "warn", cfg.Log.Level)
	})
}

func TestExpandHome(t *testing.T) {
	home, _ := isolate(t)

	assert.Equal(t, filepath.Join(home, "logs", "fd.log"), expandHome("~/logs/fd.log"))
	assert.Equal(t, "/var/log/fd.log", expandHome("/var/log/fd.log"))
	assert.Equal(t, "", expandHome(""))
}
