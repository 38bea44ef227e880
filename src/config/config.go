package config

import (
	"fmt"
	"os"
	"time"

	"spread-observer/src/helpers"
	"spread-observer/src/models"
	"spread-observer/src/utils"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig loads, defaults and validates the YAML file at configPath.
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every zero value that has a sensible default.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "spread-observer"
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 5000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.GrpcHost == "" {
		c.GrpcHost = c.Host
	}

	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "spread_observer.db"
	}

	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}

	if c.Feeds.RealtimeTimeout == 0 {
		c.Feeds.RealtimeTimeout = 5
	}
	if c.Feeds.HistoryTimeout == 0 {
		c.Feeds.HistoryTimeout = 10
	}

	if c.Monitor.CacheTTLSeconds == 0 {
		c.Monitor.CacheTTLSeconds = int(utils.DefaultCacheTTL / time.Second)
	}
	if c.Monitor.CacheSweepSeconds == 0 {
		c.Monitor.CacheSweepSeconds = 60
	}
	if c.Monitor.IntradayTolerance == "" {
		c.Monitor.IntradayTolerance = utils.DefaultIntradayTolerance.String()
	}
	if c.Monitor.FiveDayTolerance == "" {
		c.Monitor.FiveDayTolerance = utils.DefaultFiveDayTolerance.String()
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "warn", "error", "critical":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535 || c.GrpcPort == c.Port) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.Storage.DBType)
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	for _, p := range c.Network.Proxies {
		if !helpers.ValidateProxy(p) {
			return fmt.Errorf("invalid proxy %q", p)
		}
	}

	if c.Feeds.RealtimeTimeout <= 0 || c.Feeds.HistoryTimeout <= 0 {
		return fmt.Errorf("feed timeouts must be greater than 0")
	}

	if c.Monitor.CacheTTLSeconds <= 0 {
		return fmt.Errorf("cache ttl must be greater than 0")
	}
	if c.Monitor.CacheSweepSeconds <= 0 {
		return fmt.Errorf("cache sweep interval must be greater than 0")
	}
	for name, tol := range map[string]string{
		"intraday_tolerance": c.Monitor.IntradayTolerance,
		"five_day_tolerance": c.Monitor.FiveDayTolerance,
	} {
		if d, err := time.ParseDuration(tol); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q", name, tol)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// DefaultPair returns the pair configured under monitor.
func (c *Config) DefaultPair() models.MTrackedPair {
	return models.MTrackedPair{
		CodeA: utils.Qualify(c.Monitor.StockA),
		CodeB: utils.Qualify(c.Monitor.StockB),
	}
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
