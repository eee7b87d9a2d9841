package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/geolog-mcp/internal/cascade"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvDBPath, EnvLogMode, EnvCoreNumbering, EnvIDMaxAttempts} {
		t.Setenv(k, "")
	}
	t.Setenv(EnvHTTPAddr, "")
	_ = os.Unsetenv(EnvHTTPAddr)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, cfg.Database.Path)
	assert.Empty(t, cfg.HTTP.Addr)
	assert.Equal(t, "count", cfg.Numbering.CoreRuns)
	assert.Equal(t, cascade.DefaultIDAttempts, cfg.IDs.MaxAttempts)
	assert.InDelta(t, 0.1, cfg.Permeability.DisplayThreshold, 1e-12)
	assert.Zero(t, cfg.Permeability.DescriptionThreshold)

	eng := cfg.Engine()
	assert.Equal(t, cascade.NumberByCount, eng.CoreNumbering)
	assert.Equal(t, cascade.DefaultIDBaseDelay, eng.IDRetry.BaseDelay)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "geolog.yaml")
	content := `
database:
  path: /tmp/file.db
http:
  addr: ":9090"
  allowed_origins: ["http://localhost:3000"]
log:
  mode: production
ids:
  max_attempts: 9
  base_delay: 3ms
  max_delay: 40ms
  multiplier: 1.5
numbering:
  core_runs: max
permeability:
  description_threshold: 0.1
  display_threshold: 0.05
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDBPath, "/tmp/env.db")
	t.Setenv(EnvIDMaxAttempts, "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "production", cfg.Log.Mode)
	assert.Equal(t, 12, cfg.IDs.MaxAttempts)
	assert.Equal(t, 3*time.Millisecond, cfg.IDs.BaseDelay)
	assert.Equal(t, 40*time.Millisecond, cfg.IDs.MaxDelay)
	assert.Equal(t, cascade.NumberByMax, cfg.Engine().CoreNumbering)
	assert.InDelta(t, 0.1, cfg.Engine().Permeability.Threshold, 1e-12)
	assert.InDelta(t, 0.05, cfg.Display().Threshold, 1e-12)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad numbering", map[string]string{EnvCoreNumbering: "depth"}},
		{"bad attempts", map[string]string{EnvIDMaxAttempts: "many"}},
		{"zero attempts", map[string]string{EnvIDMaxAttempts: "0"}},
		{"missing file", map[string]string{EnvConfig: "/nonexistent/geolog.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.IDs.MaxDelay = time.Microsecond
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.IDs.Multiplier = 0.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Permeability.DisplayThreshold = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Database.Path = " "
	assert.Error(t, cfg.Validate())
}

func TestDBFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Database.Path = filepath.Join(dir, "nested", "geolog.db")

	path, err := cfg.DBFile()
	require.NoError(t, err)
	assert.Equal(t, cfg.Database.Path, path)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	t.Setenv("HOME", dir)
	cfg.Database.Path = "~/.geolog/geolog.db"
	path, err = cfg.DBFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".geolog", "geolog.db"), path)

	cfg.Database.Path = ":memory:"
	path, err = cfg.DBFile()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", path)
}
