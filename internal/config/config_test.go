package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/central-university-dev/go-linkchecker/internal/config"
)

func TestDefault_MetricsPortsDiffer(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 9095, cfg.MetricsPort)
	assert.Equal(t, 9096, cfg.ScanMetricsPort)
	assert.False(t, cfg.RecheckBroken)
	assert.Empty(t, cfg.RecheckURL)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := config.LoadConfig()

	assert.NotEqual(t, cfg.MetricsPort, cfg.ScanMetricsPort)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, "all", cfg.SelectedTypes)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SCAN_METRICS_PORT", "9200")
	t.Setenv("RECHECK_BROKEN", "true")
	t.Setenv("RECHECK_URL", "https://example.com/x")

	cfg := config.LoadConfig()

	assert.Equal(t, 9200, cfg.ScanMetricsPort)
	assert.True(t, cfg.RecheckBroken)
	assert.Equal(t, "https://example.com/x", cfg.RecheckURL)
}
