// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type GatewayConfig struct {
	PortOne struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		BaseURL   string `yaml:"base_url"`
		Sandbox   bool   `yaml:"sandbox"`
	} `yaml:"portone"`
	Currency string `yaml:"currency"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"` // price catalog TTL, default 5m
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"` // shared secret exchanged for a session at /login
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	RateLimit  int           `yaml:"rate_limit"` // requests per minute per admin
}

type APIConfig struct {
	Port int `yaml:"port"`
}

type SchedulerConfig struct {
	ReconcileInterval   time.Duration `yaml:"reconcile_interval"`    // activation retry scan
	ReconcileStaleAfter time.Duration `yaml:"reconcile_stale_after"` // how old an approved record must be
	ExpiryInterval      time.Duration `yaml:"expiry_interval"`       // expiring-content scan
	ExpiryNoticeDays    int           `yaml:"expiry_notice_days"`    // notify this many days ahead
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Admin     AdminConfig     `yaml:"admin"`
	API       APIConfig       `yaml:"api"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Gateway.Currency == "" {
		cfg.Gateway.Currency = "KRW"
	}
	if cfg.Catalog.CacheTTL <= 0 {
		cfg.Catalog.CacheTTL = 5 * time.Minute
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Admin.RateLimit <= 0 {
		cfg.Admin.RateLimit = 120
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = time.Minute
	}
	if cfg.Scheduler.ReconcileStaleAfter <= 0 {
		cfg.Scheduler.ReconcileStaleAfter = 5 * time.Minute
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = 24 * time.Hour
	}
	if cfg.Scheduler.ExpiryNoticeDays <= 0 {
		cfg.Scheduler.ExpiryNoticeDays = 3
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}
