package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port               int    `mapstructure:"PORT"`
	Env                string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize     int    `mapstructure:"WORKER_POOL_SIZE"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	CORSOrigins        string `mapstructure:"CORS_ORIGINS"`

	// Database. Empty DATABASE_URL runs the in-memory store (demo only).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis. Empty REDIS_URL disables async report jobs.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Jornada comercial
	BusinessTimezone       string `mapstructure:"BUSINESS_TIMEZONE"`
	CommercialDayStartHour int    `mapstructure:"COMMERCIAL_DAY_START_HOUR"`
	CierreWatchdogEnabled  bool   `mapstructure:"CIERRE_WATCHDOG_ENABLED"`

	// SMTP
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`
	SMTPUser      string `mapstructure:"SMTP_USER"`
	SMTPPassword  string `mapstructure:"SMTP_PASSWORD"`
	ReportEmailTo string `mapstructure:"REPORT_EMAIL_TO"`

	PDFStoragePath string `mapstructure:"PDF_STORAGE_PATH"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", 8000)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("WORKER_POOL_SIZE", 2)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 600)
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("BUSINESS_TIMEZONE", "America/Bogota")
	viper.SetDefault("COMMERCIAL_DAY_START_HOUR", 6)
	viper.SetDefault("CIERRE_WATCHDOG_ENABLED", true)
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("REPORT_EMAIL_TO", "")
	viper.SetDefault("PDF_STORAGE_PATH", "/tmp/sanroque/reportes")

	// Optional .env file for local development, does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the ledger cannot run with.
func (c *Config) Validate() error {
	if c.CommercialDayStartHour < 0 || c.CommercialDayStartHour > 23 {
		return fmt.Errorf("COMMERCIAL_DAY_START_HOUR fuera de rango: %d", c.CommercialDayStartHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Env == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET es obligatorio en produccion")
	}
	return nil
}

// Location resolves BUSINESS_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("BUSINESS_TIMEZONE invalida %q: %w", c.BusinessTimezone, err)
	}
	return loc, nil
}

// ReportRecipients splits REPORT_EMAIL_TO into addresses.
func (c *Config) ReportRecipients() []string {
	return splitList(c.ReportEmailTo)
}

// AllowedOrigins splits CORS_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSOrigins)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
