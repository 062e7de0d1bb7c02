package config

import "time"

// Config is the root configuration for a tickerd instance.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Feed   FeedConfig   `yaml:"feed"`
	Store  StoreConfig  `yaml:"store"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds the local UI surface settings.
type ServerConfig struct {
	Addr string `yaml:"addr"` // loopback listen address for the UI layer
}

// FeedConfig holds push-price feed settings.
type FeedConfig struct {
	URL              string        `yaml:"url"`
	Instruments      []string      `yaml:"instruments"`
	ReconnectDelay   time.Duration `yaml:"reconnect_delay"` // fixed, applied between every attempt
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
}

// StoreConfig holds durable settings storage.
type StoreConfig struct {
	Path string `yaml:"path"` // BuntDB file for the persisted settings record
}

// FetchConfig holds one-shot fetcher settings.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig holds the observability sink settings.
type LogConfig struct {
	File       string `yaml:"file"`  // rotating JSON log file; empty logs to stdout only
	Level      string `yaml:"level"` // debug, info, warn, error
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}
