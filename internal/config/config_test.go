package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soilqc/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Sample ID", cfg.Identity.Column)
	assert.Equal(t, "_", cfg.Identity.Delimiter)
	assert.Equal(t, "Dup", cfg.Identity.DuplicateMarker)
	assert.Equal(t, 0.05, cfg.Stats.Alpha)
	assert.Equal(t, 3.0, cfg.Stats.DegreesOfFreedom)
	assert.Equal(t, 10, cfg.Stats.PrecisionSkip)
	assert.Equal(t, 30*time.Second, cfg.Source.HTTPTimeout)
	assert.Equal(t, "EPSG:4326", cfg.Spatial.CRS)
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "soilqc.yaml")
	yaml := `
stats:
  alpha: 0.01
  precision_skip: 2
identity:
  column: Lab ID
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("SOILQC_STATS_PRECISION_SKIP", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.01, cfg.Stats.Alpha)
	assert.Equal(t, 4, cfg.Stats.PrecisionSkip)
	assert.Equal(t, "Lab ID", cfg.Identity.Column)
	assert.Equal(t, "Field", cfg.Identity.GroupColumn)
}

func TestLoad_InvalidAlpha(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SOILQC_STATS_ALPHA", "1.5")

	_, err := Load("")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestLoad_Delimiter(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SOILQC_SOURCE_DELIMITER", ";")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ";", cfg.Source.Delimiter)

	t.Setenv("SOILQC_SOURCE_DELIMITER", ";;")
	_, err = Load("")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}
