package config

import "time"

// WatcherConfig is the root configuration for a market watcher instance.
type WatcherConfig struct {
	API       APIConfig       `yaml:"api"`
	Poller    PollerConfig    `yaml:"poller"`
	Storage   StorageConfig   `yaml:"storage"`
	Items     ItemsConfig     `yaml:"items"`
	Watchlist WatchlistConfig `yaml:"watchlist"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig holds market API settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"` // 0 = the next poll tick is the retry
}

// PollerConfig holds price poller settings.
type PollerConfig struct {
	Interval          time.Duration `yaml:"interval"`
	CountdownInterval time.Duration `yaml:"countdown_interval"`
	FetchOnStart      *bool         `yaml:"fetch_on_start"`
}

// StorageConfig selects and configures the snapshot store backend.
type StorageConfig struct {
	Backend  string      `yaml:"backend"` // file, memory, postgres, redis
	Dir      string      `yaml:"dir"`     // file backend directory
	Postgres DBConfig    `yaml:"postgres"`
	Redis    RedisConfig `yaml:"redis"`
	History  bool        `yaml:"history"` // postgres only: keep every snapshot in price_history
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisConfig holds a Redis connection.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// ItemsConfig points at the item ID to name catalog.
type ItemsConfig struct {
	CatalogPath string `yaml:"catalog_path"`
}

// WatchlistConfig holds watchlist settings.
type WatchlistConfig struct {
	Muted bool `yaml:"muted"`
}

// ServerConfig holds the HTTP/WebSocket server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ShouldFetchOnStart reports whether the poller fetches before the first tick.
func (p PollerConfig) ShouldFetchOnStart() bool {
	return p.FetchOnStart == nil || *p.FetchOnStart
}
