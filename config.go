package trailblog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server binary needs. Values come from a TOML
// or YAML file, then environment variables override whatever the file set.
type Config struct {
	Addr         string `env:"TRAILBLOG_ADDR" toml:"addr" yaml:"addr"`
	BaseURL      string `env:"TRAILBLOG_BASE_URL" toml:"base_url" yaml:"base_url"`
	DataDir      string `env:"TRAILBLOG_DATA_DIR" toml:"data_dir" yaml:"data_dir"`
	PagesDir     string `env:"TRAILBLOG_PAGES_DIR" toml:"pages_dir" yaml:"pages_dir"`
	StoreBackend string `env:"TRAILBLOG_STORE" toml:"store" yaml:"store"` // bolt or sqlite
	CacheBackend string `env:"TRAILBLOG_CACHE" toml:"cache" yaml:"cache"` // memory or bolt
	SearchOff    bool   `env:"TRAILBLOG_SEARCH_OFF" toml:"search_off" yaml:"search_off"`

	AdminUser     string `env:"TRAILBLOG_ADMIN_USER" toml:"admin_user" yaml:"admin_user"`
	AdminPassword string `env:"TRAILBLOG_ADMIN_PASSWORD" toml:"admin_password" yaml:"admin_password"`
	SessionSecret string `env:"TRAILBLOG_SESSION_SECRET" toml:"session_secret" yaml:"session_secret"`

	SMTPHost     string `env:"TRAILBLOG_SMTP_HOST" toml:"smtp_host" yaml:"smtp_host"`
	SMTPPort     int    `env:"TRAILBLOG_SMTP_PORT" toml:"smtp_port" yaml:"smtp_port"`
	SMTPUsername string `env:"TRAILBLOG_SMTP_USERNAME" toml:"smtp_username" yaml:"smtp_username"`
	SMTPPassword string `env:"TRAILBLOG_SMTP_PASSWORD" toml:"smtp_password" yaml:"smtp_password"`
	MailFrom     string `env:"TRAILBLOG_MAIL_FROM" toml:"mail_from" yaml:"mail_from"`
	MailTo       string `env:"TRAILBLOG_MAIL_TO" toml:"mail_to" yaml:"mail_to"`
}

// DefaultConfig returns the config used when no file and no environment are
// present.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		DataDir:      "data",
		PagesDir:     "pages",
		StoreBackend: "bolt",
		CacheBackend: "memory",
		SMTPPort:     587,
	}
}

// LoadConfig reads the config file at path (TOML by default, YAML for
// .yaml/.yml), then applies environment overrides. An empty path skips the
// file and uses defaults plus the environment.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse TOML config: %w", err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case "bolt", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}

	switch c.CacheBackend {
	case "memory", "bolt":
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}

	return nil
}
