// Package config loads and saves the videolabels configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Nomadcxx/videolabels/internal/classify"
	"github.com/Nomadcxx/videolabels/internal/logging"
	"github.com/Nomadcxx/videolabels/internal/metacache"
	"github.com/Nomadcxx/videolabels/internal/paths"
	"github.com/Nomadcxx/videolabels/internal/resolver"
)

type OptionsConfig struct {
	DryRun          bool `mapstructure:"dry_run"`
	VerifyChecksums bool `mapstructure:"verify_checksums"`
	// Workers bounds the probing pool; 0 means one per CPU core.
	Workers int `mapstructure:"workers"`
	// ExtrasDuplicatePolicy is "keep-both" or "escalate".
	ExtrasDuplicatePolicy string `mapstructure:"extras_duplicate_policy"`
}

type AIConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Endpoint       string `mapstructure:"endpoint"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ClientConfig converts to the classifier client's config.
func (a AIConfig) ClientConfig() classify.Config {
	return classify.Config{
		Endpoint:       a.Endpoint,
		Model:          a.Model,
		TimeoutSeconds: a.TimeoutSeconds,
	}
}

type WatchConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SettleSeconds int    `mapstructure:"settle_seconds"`
	StatusAddr    string `mapstructure:"status_addr"`
}

type Config struct {
	Source  string           `mapstructure:"source"`
	Target  string           `mapstructure:"target"`
	Options OptionsConfig    `mapstructure:"options"`
	AI      AIConfig         `mapstructure:"ai"`
	Cache   metacache.Config `mapstructure:"cache"`
	Watch   WatchConfig      `mapstructure:"watch"`
	Logging logging.Config   `mapstructure:"logging"`
}

// ExtrasPolicy returns the configured extras duplicate policy, defaulting to
// keep-both for unknown values.
func (c *Config) ExtrasPolicy() resolver.ExtrasPolicy {
	if c.Options.ExtrasDuplicatePolicy == string(resolver.ExtrasEscalate) {
		return resolver.ExtrasEscalate
	}
	return resolver.ExtrasKeepBoth
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Source: "",
		Target: "",
		Options: OptionsConfig{
			DryRun:                false,
			VerifyChecksums:       false,
			Workers:               0,
			ExtrasDuplicatePolicy: string(resolver.ExtrasKeepBoth),
		},
		AI: AIConfig{
			Enabled:        true,
			Endpoint:       "http://localhost:11434",
			Model:          "llama3.1:8b",
			TimeoutSeconds: 120,
		},
		Cache: metacache.DefaultConfig(),
		Watch: WatchConfig{
			Enabled:       false,
			SettleSeconds: 10,
			StatusAddr:    ":8787",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads the config file, layering it over defaults. A missing file is
// not an error.
func Load() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadPath(configPath)
}

// LoadPath reads a config file from an explicit location.
func LoadPath(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the default location.
func (c *Config) Save() error {
	configFile, err := paths.ConfigPath()
	if err != nil {
		return err
	}
	return c.SavePath(configFile)
}

// SavePath writes the configuration to an explicit location.
func (c *Config) SavePath(configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	return os.WriteFile(configFile, []byte(c.ToTOML()), 0644)
}

// ConfigExists reports whether a config file is present at the default
// location.
func ConfigExists() bool {
	path, err := paths.ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ToTOML renders the configuration as a commented TOML document.
func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# videolabels configuration
# Generated by: videolabels config init

# Source directory scanned for unorganized video files
source = %q

# Target library root; Movies/ and "TV Shows"/ are created beneath it
target = %q

[options]
# Preview only, never touch the filesystem
dry_run = %v
# Verify SHA-256 checksums after cross-filesystem copies
verify_checksums = %v
# Concurrent probe workers (0 = one per CPU core)
workers = %d
# What to do with duplicate extras whose content differs:
#   "keep-both" - leave both copies in place
#   "escalate"  - apply the main-content quality resolution
extras_duplicate_policy = %q

[ai]
# Batched filename classification via an Ollama-compatible endpoint
enabled = %v
endpoint = %q
model = %q
timeout_seconds = %d

[cache]
# Metadata cache (probe results, content hashes) keyed by file signature
enabled = %v
max_entries = %d
ttl_hours = %d

[watch]
# Watch the source directory and organize automatically once it settles
enabled = %v
settle_seconds = %d
# Local status endpoint ("" disables it)
status_addr = %q

[logging]
# Levels: debug, info, warn, error
level = %q
# Log file path (empty = ~/.config/videolabels/logs/videolabels.log)
file = %q
max_size_mb = %d
max_backups = %d
`,
		c.Source,
		c.Target,
		c.Options.DryRun,
		c.Options.VerifyChecksums,
		c.Options.Workers,
		c.Options.ExtrasDuplicatePolicy,
		c.AI.Enabled,
		c.AI.Endpoint,
		c.AI.Model,
		c.AI.TimeoutSeconds,
		c.Cache.Enabled,
		c.Cache.MaxEntries,
		c.Cache.TTLHours,
		c.Watch.Enabled,
		c.Watch.SettleSeconds,
		c.Watch.StatusAddr,
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)
}
