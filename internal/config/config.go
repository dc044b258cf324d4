package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Course   CourseConfig   `mapstructure:"course"`
	Download DownloadConfig `mapstructure:"download"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// CourseConfig describes the course page that lists the downloadable items
type CourseConfig struct {
	PageURL string            `mapstructure:"page_url"`
	Headers map[string]string `mapstructure:"headers"`

	// TypeFilters maps a filter label to the marker searched for in an item's
	// resource details, e.g. "pdf" -> "PDF document".
	TypeFilters map[string]string `mapstructure:"type_filters"`
}

// DownloadConfig holds transport and pacing settings
type DownloadConfig struct {
	OutputDir            string   `mapstructure:"output_dir"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"` // course page fetches only
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	DelayMinMs           int      `mapstructure:"delay_min_ms"`
	DelayMaxMs           int      `mapstructure:"delay_max_ms"`
	Proxies              []string `mapstructure:"proxies"`

	// InsecureSkipVerify disables TLS certificate checks for the course site
	// and proxy validation. Configured headers (cookies) travel over those connections.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// LedgerConfig selects the attempt ledger backend
type LedgerConfig struct {
	Backend string `mapstructure:"backend"` // memory or redis
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	Database   int    `mapstructure:"database"`
	SessionTTL int    `mapstructure:"session_ttl"` // seconds
}

// DatabaseConfig holds the attempt journal database configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	LedgerBackendMemory = "memory"
	LedgerBackendRedis  = "redis"
)

// Load loads configuration from config.yaml in the current directory with
// environment variable overrides
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads config.yaml from dir. A missing file is not an error: defaults
// and environment variables still apply.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings that have no usable default
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Course.PageURL) == "" {
		return fmt.Errorf("course.page_url is required (set it in config.yaml or COURSE_PAGE_URL)")
	}
	if c.Download.DelayMinMs < 0 || c.Download.DelayMaxMs < 0 {
		return fmt.Errorf("download delays must not be negative")
	}
	if c.Download.DelayMinMs > c.Download.DelayMaxMs {
		return fmt.Errorf("download.delay_min_ms (%d) exceeds download.delay_max_ms (%d)",
			c.Download.DelayMinMs, c.Download.DelayMaxMs)
	}
	switch c.Ledger.Backend {
	case LedgerBackendMemory, LedgerBackendRedis:
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("course.page_url", "")
	v.SetDefault("course.type_filters", map[string]string{"pdf": "PDF document"})

	v.SetDefault("download.output_dir", "./downloads")
	v.SetDefault("download.timeout", 60)
	v.SetDefault("download.max_retries", 3)
	v.SetDefault("download.max_requests_per_second", 2)
	v.SetDefault("download.delay_min_ms", 5000)
	v.SetDefault("download.delay_max_ms", 10000)
	v.SetDefault("download.insecure_skip_verify", false)

	v.SetDefault("ledger.backend", LedgerBackendMemory)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.session_ttl", 86400)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "wattle")
	v.SetDefault("database.user", "wattle_user")
	v.SetDefault("database.password", "wattle_pass")

	v.SetDefault("log.level", "info")
}
