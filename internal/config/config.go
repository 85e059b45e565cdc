package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/trustbot/core/config"
	coredatabase "github.com/m3rciful/trustbot/core/database"
)

// BotConfig tunes conversations and search.
type BotConfig struct {
	// SuperOperatorIDs are seeded as super-operators at startup.
	SuperOperatorIDs IDList        `yaml:"super_operator_ids" envconfig:"BOT_SUPER_OPERATOR_IDS"`
	SessionTTL       time.Duration `yaml:"session_ttl" envconfig:"BOT_SESSION_TTL"`
	SessionCapacity  int           `yaml:"session_capacity" envconfig:"BOT_SESSION_CAPACITY"`
	// SearchWindow is how long /search waits for the query.
	SearchWindow time.Duration `yaml:"search_window" envconfig:"BOT_SEARCH_WINDOW"`
	ExportLimit  int           `yaml:"export_limit" envconfig:"BOT_EXPORT_LIMIT"`
}

// AnalyticsConfig points the usage tracker at a collector.
type AnalyticsConfig struct {
	Enabled  bool          `yaml:"enabled" envconfig:"ANALYTICS_ENABLED"`
	Endpoint string        `yaml:"endpoint" envconfig:"ANALYTICS_ENDPOINT"`
	Token    string        `yaml:"token" envconfig:"ANALYTICS_TOKEN"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"ANALYTICS_TIMEOUT"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database  coredatabase.Config `yaml:"database"`
	Bot       BotConfig           `yaml:"bot"`
	Analytics AnalyticsConfig     `yaml:"analytics"`
}

// CoreConfig exposes the embedded framework configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}

	if c.Bot.SessionTTL <= 0 {
		c.Bot.SessionTTL = 30 * time.Minute
	}
	if c.Bot.SessionCapacity <= 0 {
		c.Bot.SessionCapacity = 10000
	}
	if c.Bot.SearchWindow <= 0 {
		c.Bot.SearchWindow = 30 * time.Second
	}
	if c.Bot.ExportLimit <= 0 {
		c.Bot.ExportLimit = 100
	}

	if c.Analytics.Enabled && strings.TrimSpace(c.Analytics.Endpoint) == "" {
		return fmt.Errorf("analytics.endpoint is required when analytics.enabled is true")
	}
	if c.Analytics.Timeout <= 0 {
		c.Analytics.Timeout = 5 * time.Second
	}
	return nil
}

// IDList is a list of Telegram user ids. From the environment it is read as
// a comma separated string.
type IDList []int64

// Decode implements envconfig.Decoder.
func (l *IDList) Decode(value string) error {
	var out IDList
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", part, err)
		}
		out = append(out, id)
	}
	*l = out
	return nil
}
