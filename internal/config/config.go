package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	// Embedded zone database so the booking timezone resolves on images
	// without /usr/share/zoneinfo.
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        Server        `yaml:"server"`
	Redis         Redis         `yaml:"redis"`
	Postgres      Postgres      `yaml:"postgres"`
	Email         Email         `yaml:"email"`
	Notifications Notifications `yaml:"notifications"`
	RateLimit     RateLimit     `yaml:"rateLimit"`
	Content       Content       `yaml:"content"`
	Admin         Admin         `yaml:"admin"`
	Booking       Booking       `yaml:"booking"`
	Log           Log           `yaml:"log"`
}

type Server struct {
	Port           string   `yaml:"port"`
	StaticDir      string   `yaml:"staticDir"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	TrustedProxies []string `yaml:"trustedProxies"`
	ReadTimeout    string   `yaml:"readTimeout"`
	WriteTimeout   string   `yaml:"writeTimeout"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Postgres struct {
	URL string `yaml:"url"`
}

type Email struct {
	// Provider is "sendgrid" or "log". Empty picks sendgrid when an API key is set.
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"apiKey"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	SiteName string `yaml:"siteName"`
}

type Notifications struct {
	Workers   int    `yaml:"workers"`
	QueueSize int    `yaml:"queueSize"`
	QueueKey  string `yaml:"queueKey"`
}

type RateLimit struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
	Burst             int `yaml:"burst"`
}

// Content points at the marketing content source. CacheTTL bounds how long a
// database load is reused; RefreshInterval, when set, reloads periodically.
type Content struct {
	Path            string `yaml:"path"`
	CacheTTL        string `yaml:"cacheTTL"`
	RefreshInterval string `yaml:"refreshInterval"`
}

type Admin struct {
	Token string `yaml:"token"`
}

type Booking struct {
	Timezone string `yaml:"timezone"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: Server{
			Port:         "8080",
			ReadTimeout:  "15s",
			WriteTimeout: "15s",
		},
		Email: Email{
			From:     "noreply@capleosage.com",
			To:       "capleosage@outlook.com",
			SiteName: "CAPLEO Sage Solutions",
		},
		Notifications: Notifications{
			Workers:   2,
			QueueSize: 256,
			QueueKey:  "leadgen:notifications",
		},
		RateLimit: RateLimit{RequestsPerMinute: 10, Burst: 5},
		Content:   Content{CacheTTL: "5m"},
		Booking:   Booking{Timezone: "America/Edmonton"},
		Log:       Log{Level: "info"},
	}
}

// Load reads YAML config from path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("PORT", &cfg.Server.Port)
	set("REDIS_ADDR", &cfg.Redis.Addr)
	set("REDIS_PASSWORD", &cfg.Redis.Password)
	set("DATABASE_URL", &cfg.Postgres.URL)
	set("SENDGRID_API_KEY", &cfg.Email.APIKey)
	set("ADMIN_TOKEN", &cfg.Admin.Token)
	set("LOG_LEVEL", &cfg.Log.Level)
	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	return nil
}

// Location resolves the booking timezone, falling back to UTC when unset.
func (b Booking) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
