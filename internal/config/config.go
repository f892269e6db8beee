// Package config loads the application configuration from YAML.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/famtime/backend/internal/family"
)

// FeedConfig describes one ICS subscription acting as the external calendar.
type FeedConfig struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir holds the SQLite database.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Timezone is the IANA zone used for "today", suggestions and the
	// free-time grid.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LookaheadDays bounds the external calendar enumeration window.
	LookaheadDays int `yaml:"lookahead_days" json:"lookahead_days"`

	// RefreshCron is the cron-style schedule for periodic feed refresh
	// (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Feeds are the ICS subscriptions used as the external calendar. With no
	// feeds configured the external collaborator is unavailable and all
	// events are stored locally.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	// Members are the family members shown in the overview and free-time
	// screens.
	Members []family.Member `yaml:"members" json:"members"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8099",
		DataDir:       "./data",
		Timezone:      "Europe/Copenhagen",
		LookaheadDays: 30,
		RefreshCron:   "*/15 * * * *",
		Feeds:         []FeedConfig{},
		Members: []family.Member{
			{Name: "Mor", Role: "parent"},
			{Name: "Far", Role: "parent"},
			{Name: "Emma", Role: "child"},
			{Name: "Lucas", Role: "school"},
		},
	}
}

// Normalize fills in missing or zero values so partially-filled configs still
// behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8099"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Copenhagen"
	}
	if c.LookaheadDays <= 0 {
		c.LookaheadDays = 30
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
	if len(c.Members) == 0 {
		c.Members = DefaultConfig().Members
	}
}

// Location resolves the configured timezone. An unknown zone falls back to
// UTC rather than failing startup.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load loads configuration from the given YAML path. A missing file yields
// a freshly written default config.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically via a temp file and rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".famtime-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
