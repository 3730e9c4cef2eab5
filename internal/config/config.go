// Package config provides configuration management for the Props Edge application.
package config

import "time"

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	StatsProvider StatsProviderConfig `mapstructure:"stats_provider" validate:"required"`
	OddsProvider  OddsProviderConfig  `mapstructure:"odds_provider" validate:"required"`
	Analysis      AnalysisConfig      `mapstructure:"analysis" validate:"required"`
	Grading       GradingConfig       `mapstructure:"grading" validate:"required"`
	Models        ModelsConfig        `mapstructure:"models" validate:"required"`
	Schedule      ScheduleConfig      `mapstructure:"schedule" validate:"required"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
	Health        HealthConfig        `mapstructure:"health" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// StatsProviderConfig represents the box-score stats feed configuration.
// The stats host throttles cloud provider IPs aggressively, hence the
// conservative pacing defaults.
type StatsProviderConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	Season            string  `mapstructure:"season" validate:"required"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"required,gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
}

// OddsProviderConfig represents the sportsbook line feed configuration
type OddsProviderConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	Regions           string  `mapstructure:"regions" validate:"required"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"required,gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
}

// AnalysisConfig represents signal engine configuration
type AnalysisConfig struct {
	TrailingGames  int    `mapstructure:"trailing_games" validate:"required,gt=0"`
	FreshnessHours int    `mapstructure:"freshness_hours" validate:"required,gt=0"`
	Timezone       string `mapstructure:"timezone" validate:"required"`
}

// GradingConfig represents outcome reconciliation configuration
type GradingConfig struct {
	SettlementDelayHours int `mapstructure:"settlement_delay_hours" validate:"required,gt=0"`
}

// ModelsConfig holds per-model strategy parameters
type ModelsConfig struct {
	Pulsar   PulsarConfig   `mapstructure:"pulsar" validate:"required"`
	Sentinel SentinelConfig `mapstructure:"sentinel" validate:"required"`
	Maverick MaverickConfig `mapstructure:"maverick" validate:"required"`
}

// PulsarConfig configures the flat-stake baseline model
type PulsarConfig struct {
	Active bool    `mapstructure:"active"`
	Stake  float64 `mapstructure:"stake" validate:"required,gt=0"`
}

// SentinelConfig configures the conservative variable-stake model
type SentinelConfig struct {
	Active            bool               `mapstructure:"active"`
	BaseStake         float64            `mapstructure:"base_stake" validate:"required,gt=0"`
	MidStake          float64            `mapstructure:"mid_stake" validate:"required,gt=0"`
	HighStake         float64            `mapstructure:"high_stake" validate:"required,gt=0"`
	MidPctThreshold   float64            `mapstructure:"mid_pct_threshold" validate:"required,gt=0,lte=100"`
	HighPctThreshold  float64            `mapstructure:"high_pct_threshold" validate:"required,gt=0,lte=100"`
	UnderFloorPct     float64            `mapstructure:"under_floor_pct" validate:"required,gt=0,lte=100"`
	StatUnderFloorPct map[string]float64 `mapstructure:"stat_under_floor_pct" validate:"stattypes"`
}

// MaverickConfig configures the contrarian barbell model. Signals with
// |z| inside [band_low, band_high) are faded; outside the band the raw
// signal is followed at the boosted stake. Band bounds are retuned from
// observed performance, never hardcoded.
type MaverickConfig struct {
	Active     bool    `mapstructure:"active"`
	BandLow    float64 `mapstructure:"band_low" validate:"required,gt=0"`
	BandHigh   float64 `mapstructure:"band_high" validate:"required,gtfield=BandLow"`
	BaseStake  float64 `mapstructure:"base_stake" validate:"required,gt=0"`
	BoostStake float64 `mapstructure:"boost_stake" validate:"required,gt=0"`
}

// ScheduleConfig holds cron expressions for the three batch jobs
type ScheduleConfig struct {
	StatsSync string `mapstructure:"stats_sync" validate:"required"`
	Analysis  string `mapstructure:"analysis" validate:"required"`
	Grading   string `mapstructure:"grading" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Freshness returns the stats cache freshness window as a duration
func (c *AnalysisConfig) Freshness() time.Duration {
	return time.Duration(c.FreshnessHours) * time.Hour
}

// SettlementDelay returns the minimum lock age before grading
func (c *GradingConfig) SettlementDelay() time.Duration {
	return time.Duration(c.SettlementDelayHours) * time.Hour
}
