package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	GrpcHost string         `yaml:"grpc_host"`
	GrpcPort int            `yaml:"grpc_port"`
	Storage  MStorageConfig `yaml:"storage"`
	Network  MNetworkConfig `yaml:"network"`
	Feeds    MFeedConfig    `yaml:"feeds"`
	Monitor  MMonitorConfig `yaml:"monitor"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
	RateLimit      int      `yaml:"rate_limit"` // requests per second, 0 = unlimited
}

// MFeedConfig holds the upstream endpoints. Timeouts are in seconds.
type MFeedConfig struct {
	RealtimeURL     string `yaml:"realtime_url"`
	IntradayURL     string `yaml:"intraday_url"`
	FiveDayURL      string `yaml:"five_day_url"`
	RealtimeTimeout int    `yaml:"realtime_timeout"`
	HistoryTimeout  int    `yaml:"history_timeout"`
}

// MMonitorConfig holds the default pair and the alignment/caching knobs.
type MMonitorConfig struct {
	StockA            string `yaml:"stock_a"`
	StockB            string `yaml:"stock_b"`
	CacheTTLSeconds   int    `yaml:"cache_ttl_seconds"`
	CacheSweepSeconds int    `yaml:"cache_sweep_seconds"`
	IntradayTolerance string `yaml:"intraday_tolerance"` // time.ParseDuration format
	FiveDayTolerance  string `yaml:"five_day_tolerance"`
}

// GetLogLevel exposes the configured level to the logger package.
func (c *MConfig) GetLogLevel() string {
	return c.LogLevel
}
