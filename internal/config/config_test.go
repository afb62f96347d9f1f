package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "lurie_ebs.csv", cfg.Catalog.File)
	assert.Equal(t, "https://mast.stsci.edu", cfg.Archive.BaseURL)
	assert.Equal(t, 120*time.Second, cfg.Archive.Timeout)
	assert.Equal(t, 401, cfg.Pipeline.FlattenWindow)
	assert.InDelta(t, 5.0, cfg.Pipeline.OutlierSigma, 1e-12)
	assert.Equal(t, 5, cfg.Pipeline.Oversample)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CATALOG_FILE", "other.xlsx")
	t.Setenv("ARCHIVE_TIMEOUT", "30s")
	t.Setenv("FLATTEN_WINDOW", "101")
	t.Setenv("OUTLIER_SIGMA", "3.5")
	t.Setenv("DATABASE_URL", "postgres://localhost/runs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "other.xlsx", cfg.Catalog.File)
	assert.Equal(t, 30*time.Second, cfg.Archive.Timeout)
	assert.Equal(t, 101, cfg.Pipeline.FlattenWindow)
	assert.InDelta(t, 3.5, cfg.Pipeline.OutlierSigma, 1e-12)
	assert.Equal(t, "postgres://localhost/runs", cfg.Database.URL)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("FLATTEN_WINDOW", "lots")
	t.Setenv("ARCHIVE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 401, cfg.Pipeline.FlattenWindow)
	assert.Equal(t, 120*time.Second, cfg.Archive.Timeout)
}

func TestLoad_InvalidWindowRejected(t *testing.T) {
	t.Setenv("FLATTEN_WINDOW", "2")

	_, err := Load()
	assert.Error(t, err)
}
