// Package config assembles runtime settings for the journal CLI: defaults,
// then an optional JSON file, then command-line flags, with later sources
// taking precedence.
package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the journal CLI.
//
// An empty RemoteEndpointURL is a valid configuration meaning local-only
// operation; sync stays disabled until one is provided.
type Config struct {
	DataDir             string
	RemoteEndpointURL   string
	RemoteAPIKey        string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "./data"
	c.RemoteEndpointURL = ""
	c.RemoteAPIKey = ""
	c.OnlineCheckInterval = 30 * time.Second
}

// DatabasePath is the record database file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "journal.db")
}

// BlobDatabasePath is the blob database file inside DataDir.
func (c *Config) BlobDatabasePath() string {
	return filepath.Join(c.DataDir, "blobs.db")
}

// BackupDir is where archive files are written.
func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backups")
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
