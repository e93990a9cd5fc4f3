// Package config loads service settings from an optional YAML file and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"colroute/internal/ga"
)

type Server struct {
	Addr      string  `yaml:"addr"`
	RateRPS   float64 `yaml:"rateRps"`
	RateBurst int     `yaml:"rateBurst"`
	// MaxPoints caps the matrix size accepted over HTTP.
	MaxPoints int `yaml:"maxPoints"`
}

type Database struct {
	URL     string `yaml:"url"`
	Migrate bool   `yaml:"migrate"`
}

type Redis struct {
	URL string `yaml:"url"`
}

type Auth struct {
	Mode       string `yaml:"mode"` // dev or hmac
	HMACSecret string `yaml:"hmacSecret"`
}

type Webhooks struct {
	URLs        []string `yaml:"urls"`
	Secret      string   `yaml:"secret"`
	MaxAttempts int      `yaml:"maxAttempts"`
}

type Config struct {
	Server   Server    `yaml:"server"`
	Database Database  `yaml:"database"`
	Redis    Redis     `yaml:"redis"`
	Auth     Auth      `yaml:"auth"`
	Webhooks Webhooks  `yaml:"webhooks"`
	GA       ga.Config `yaml:"ga"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Server:   Server{Addr: ":8080", RateRPS: 5, RateBurst: 10, MaxPoints: 500},
		Database: Database{Migrate: true},
		Auth:     Auth{Mode: "dev"},
		Webhooks: Webhooks{MaxAttempts: 10},
		GA: ga.Config{
			PopulationSize: 100,
			EliteSize:      20,
			MutationRate:   0.01,
			Generations:    1000,
			ProgressEvery:  50,
		},
	}
}

// Load reads path (if non-empty) over Default and then applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path returns the config file named by COLROUTE_CONFIG, if any.
func Path() string { return os.Getenv("COLROUTE_CONFIG") }

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := getenv("RATE_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_RPS: %w", err)
		}
		c.Server.RateRPS = f
	}
	if v := getenv("RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_BURST: %w", err)
		}
		c.Server.RateBurst = n
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := getenv("DB_MIGRATE"); v != "" {
		c.Database.Migrate = v != "false"
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := getenv("AUTH_MODE"); v != "" {
		c.Auth.Mode = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv("AUTH_HMAC_SECRET"); v != "" {
		c.Auth.HMACSecret = v
	}
	if v := getenv("WEBHOOK_URLS"); v != "" {
		c.Webhooks.URLs = nil
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.Webhooks.URLs = append(c.Webhooks.URLs, u)
			}
		}
	}
	if v := getenv("WEBHOOK_SECRET"); v != "" {
		c.Webhooks.Secret = v
	}
	if v := getenv("WEBHOOK_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WEBHOOK_MAX_ATTEMPTS: %w", err)
		}
		if n < 1 {
			return fmt.Errorf("WEBHOOK_MAX_ATTEMPTS must be >= 1 (got %d)", n)
		}
		c.Webhooks.MaxAttempts = n
	}
	return nil
}

// Validate checks server settings and the GA defaults.
func (c Config) Validate() error {
	if c.Server.RateRPS < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("server rate limit must be >= 0")
	}
	if c.Server.MaxPoints < 2 {
		return fmt.Errorf("server.maxPoints must be >= 2 (got %d)", c.Server.MaxPoints)
	}
	switch c.Auth.Mode {
	case "dev":
	case "hmac":
		if c.Auth.HMACSecret == "" {
			return fmt.Errorf("auth mode hmac requires a secret")
		}
	default:
		return fmt.Errorf("unsupported auth mode: %s", c.Auth.Mode)
	}
	if c.Webhooks.MaxAttempts < 1 {
		return fmt.Errorf("webhooks.maxAttempts must be >= 1")
	}
	if err := c.GA.Validate(); err != nil {
		return fmt.Errorf("ga defaults: %w", err)
	}
	return nil
}
