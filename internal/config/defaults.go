package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultServerAddr       = "127.0.0.1:17890"
	DefaultFeedURL          = "wss://quote.jdjygold.com/quote/ws"
	DefaultReconnectDelay   = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultFetchTimeout     = 15 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogMaxSizeMB     = 10
	DefaultLogMaxBackups    = 3
)

// DefaultInstruments are the instrument keys subscribed on the feed.
func DefaultInstruments() []string {
	return []string{"xau", "ms", "gh", "zs"}
}

// DefaultStorePath is the settings database next to the user config dir,
// falling back to the temp dir when the config dir cannot be resolved.
func DefaultStorePath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "JDfund", "settings.db")
}

// DefaultLogFile matches the original JDfund log location.
func DefaultLogFile() string {
	return filepath.Join(os.TempDir(), "JDfund.log")
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}

	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if len(c.Feed.Instruments) == 0 {
		c.Feed.Instruments = DefaultInstruments()
	}
	if c.Feed.ReconnectDelay == 0 {
		c.Feed.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Feed.HandshakeTimeout == 0 {
		c.Feed.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultWriteTimeout
	}

	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath()
	}

	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = DefaultFetchTimeout
	}

	if c.Log.File == "" {
		c.Log.File = DefaultLogFile()
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = DefaultLogMaxBackups
	}
}
