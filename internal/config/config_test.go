package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
app:
  name: props-edge
  environment: development
  log_level: info

database:
  host: localhost
  port: 5432
  name: props_edge
  user: props
  password: ${TEST_DB_PASSWORD}
  ssl_mode: disable
  max_connections: 10

stats_provider:
  base_url: https://stats.nba.com/stats
  season: "2025-26"
  timeout_seconds: 60
  max_retries: 3
  requests_per_second: 0.8

odds_provider:
  base_url: https://api.the-odds-api.com/v4
  api_key: test-key
  regions: us
  timeout_seconds: 30
  max_retries: 3
  requests_per_second: 2.0

analysis:
  trailing_games: 5
  freshness_hours: 12
  timezone: America/New_York

grading:
  settlement_delay_hours: 4

models:
  pulsar:
    active: true
    stake: 10.0
  sentinel:
    active: true
    base_stake: 10.0
    mid_stake: 15.0
    high_stake: 20.0
    mid_pct_threshold: 75
    high_pct_threshold: 80
    under_floor_pct: 75
    stat_under_floor_pct:
      PTS: 70
      REB: 70
  maverick:
    active: true
    band_low: 0.75
    band_high: 1.25
    base_stake: 10.0
    boost_stake: 15.0

schedule:
  stats_sync: "0 * * * *"
  analysis: "10 * * * *"
  grading: "30 * * * *"

metrics:
  enabled: true
  port: 9090
  path: /metrics

health:
  port: 8080
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	cfg, err := Load(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "props-edge", cfg.App.Name)
	assert.Equal(t, "2025-26", cfg.StatsProvider.Season)
	assert.Equal(t, 5, cfg.Analysis.TrailingGames)
	assert.Equal(t, 70.0, cfg.Models.Sentinel.StatUnderFloorPct["PTS"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	cfg, err := Load(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	yaml := strings.Replace(testConfigYAML, "environment: development", "environment: sandbox", 1)
	cfg, err := Load(writeTestConfig(t, yaml))
	require.NoError(t, err)

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment")
}

func TestValidateRejectsUnknownStatFloorKey(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	yaml := strings.Replace(testConfigYAML, "PTS: 70", "GOALS: 70", 1)
	cfg, err := Load(writeTestConfig(t, yaml))
	require.NoError(t, err)

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stattypes")
}

func TestValidateRejectsInvertedSentinelThresholds(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	yaml := strings.Replace(testConfigYAML, "high_pct_threshold: 80", "high_pct_threshold: 60", 1)
	cfg, err := Load(writeTestConfig(t, yaml))
	require.NoError(t, err)

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "high_pct_threshold")
}

func TestValidateRequiresAnActiveModel(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	yaml := strings.ReplaceAll(testConfigYAML, "active: true", "active: false")
	cfg, err := Load(writeTestConfig(t, yaml))
	require.NoError(t, err)

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one model")
}

func TestDurationHelpers(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	cfg, err := Load(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "12h0m0s", cfg.Analysis.Freshness().String())
	assert.Equal(t, "4h0m0s", cfg.Grading.SettlementDelay().String())
}
