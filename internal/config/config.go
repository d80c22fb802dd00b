package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	MapQuest MapQuestConfig `mapstructure:"mapquest"`
	Rental   RentalConfig   `mapstructure:"rental"`
	Maps     MapsConfig     `mapstructure:"maps"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ClientTimeout  time.Duration `mapstructure:"client_timeout"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig points at the upstream response cache. An empty URL disables it.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type SessionConfig struct {
	SecretKey    string `mapstructure:"secret_key"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type MapQuestConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type RentalConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	APIHost string `mapstructure:"api_host"`
}

// MapsConfig holds the browser key for the Google Maps JavaScript API.
type MapsConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// env maps config keys to the environment variables the app has always used.
var env = map[string]string{
	"server.port":            "PORT",
	"server.log_level":       "LOG_LEVEL",
	"server.allowed_origins": "CORS_ALLOWED_ORIGINS",
	"server.client_timeout":  "HTTP_CLIENT_TIMEOUT",
	"database.url":           "DATABASE_URL",
	"redis.url":              "REDIS_URL",
	"session.secret_key":     "SECRET_KEY",
	"session.cookie_secure":  "COOKIE_SECURE",
	"mapquest.base_url":      "MQ_API_BASE_URL",
	"mapquest.api_key":       "MQ_SECRET_KEY",
	"rental.base_url":        "RM_API_BASE_URL",
	"rental.api_key":         "RM_SECRET_KEY",
	"rental.api_host":        "RM_API_HOST",
	"maps.api_key":           "GOOGLE_MAPS_API_KEY",
}

// Load returns application configuration loaded from a .env file (if any)
// and environment variables, falling back to local development defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.client_timeout", "10s")

	v.SetDefault("database.url", "postgres://localhost:5432/movein?sslmode=disable")
	v.SetDefault("redis.url", "")

	v.SetDefault("session.secret_key", "this is wildly unpredictable")
	v.SetDefault("session.cookie_secure", false)

	v.SetDefault("mapquest.base_url", "https://www.mapquestapi.com/geocoding/v1")
	v.SetDefault("mapquest.api_key", "")

	v.SetDefault("rental.base_url", "https://realty-mole-property-api.p.rapidapi.com/zipCodes")
	v.SetDefault("rental.api_key", "")
	v.SetDefault("rental.api_host", "realty-mole-property-api.p.rapidapi.com")

	v.SetDefault("maps.api_key", "")
}

// splitOrigins accepts both a list and a single comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
