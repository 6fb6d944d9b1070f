package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Env       string `mapstructure:"TF_ENV"`
	HTTPAddr  string `mapstructure:"TF_HTTP_ADDR"`
	PublicURL string `mapstructure:"TF_PUBLIC_ORIGIN"`

	Site     SiteConfig     `mapstructure:",squash"`
	Database DBConfig       `mapstructure:",squash"`
	Cache    CacheConfig    `mapstructure:",squash"`
	Auth     AuthConfig     `mapstructure:",squash"`
	Contact  ContactConfig  `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

// SiteConfig selects which brochure-site profile this instance serves.
// The two corporate sites share one backend; only the profile differs.
type SiteConfig struct {
	Profile string `mapstructure:"TF_SITE_PROFILE"`
	BaseURL string `mapstructure:"TF_SITE_BASE_URL"`
}

type DBConfig struct {
	Type        string `mapstructure:"TF_DB_TYPE"` // "memory", "postgres"
	PostgresDSN string `mapstructure:"TF_POSTGRES_DSN"`
}

type CacheConfig struct {
	RedisAddr string `mapstructure:"TF_REDIS_ADDR"`
}

type AuthConfig struct {
	SessionTTL time.Duration `mapstructure:"TF_SESSION_TTL"`
	BcryptCost int           `mapstructure:"TF_BCRYPT_COST"`
}

type ContactConfig struct {
	Recipient string `mapstructure:"TF_CONTACT_RECIPIENT"` // inbox the mailer forwards to
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"TF_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"TF_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("backend", ".env"),
		filepath.Join("..", ".env"),
		filepath.Join("..", "backend", ".env"),
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if !filepath.IsAbs(path) {
			if resolved, err := filepath.Abs(path); err == nil {
				abs = resolved
			}
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // ignore errors; env vars already set take precedence
		}
	}
}

func Load() (*Config, error) {
	loadDotEnvFiles()

	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("TF_ENV", "dev")
	viper.SetDefault("TF_HTTP_ADDR", ":8080")
	viper.SetDefault("TF_PUBLIC_ORIGIN", "http://localhost:3000")
	viper.SetDefault("TF_SITE_PROFILE", "techflow")
	viper.SetDefault("TF_SITE_BASE_URL", "https://techflow.co.kr")
	viper.SetDefault("TF_DB_TYPE", "memory")
	viper.SetDefault("TF_POSTGRES_DSN", "")
	viper.SetDefault("TF_REDIS_ADDR", "127.0.0.1:6379")
	viper.SetDefault("TF_SESSION_TTL", "24h")
	viper.SetDefault("TF_BCRYPT_COST", 10)
	viper.SetDefault("TF_CONTACT_RECIPIENT", "hello@techflow.co.kr")
	viper.SetDefault("TF_RATE_LIMIT_RPM", 120)
	viper.SetDefault("TF_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	// Handle array parsing for comma-separated values
	if origins := viper.GetString("TF_CORS_ALLOWED_ORIGINS"); origins != "" {
		viper.Set("TF_CORS_ALLOWED_ORIGINS", strings.Split(origins, ","))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid TF_ENV %q (must be dev or prod)", c.Env)
	}
	switch c.Database.Type {
	case "memory":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("TF_POSTGRES_DSN is required when TF_DB_TYPE=postgres")
		}
	default:
		return fmt.Errorf("invalid TF_DB_TYPE %q (must be memory or postgres)", c.Database.Type)
	}
	if c.Site.Profile == "" {
		return fmt.Errorf("TF_SITE_PROFILE is required")
	}
	if !strings.HasPrefix(c.Site.BaseURL, "http") {
		return fmt.Errorf("invalid TF_SITE_BASE_URL %q", c.Site.BaseURL)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("TF_SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
