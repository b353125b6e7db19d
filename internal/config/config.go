package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	APIPort int

	// Storage
	AttachmentStoragePath string

	// Out-of-band notifications
	EmailNotificationsEnabled bool
	SMTPRelayAddr             string
	SMTPFrom                  string
	SMTPUsername              string
	SMTPPassword              string

	// Search
	SearchEnabled       bool
	SearchEngine        string
	OpenSearchAddresses []string
	OpenSearchUsername  string
	OpenSearchPassword  string
	OpenSearchIndex     string

	// Logging
	LogLevel string

	// Security
	AllowedOrigins string
	AppEnv         string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	// API_PORT (default: 8080)
	apiPort := os.Getenv("API_PORT")
	if apiPort == "" {
		cfg.APIPort = 8080
	} else {
		port, err := strconv.Atoi(apiPort)
		if err != nil {
			return nil, fmt.Errorf("API_PORT must be a valid integer: %w", err)
		}
		cfg.APIPort = port
	}

	// ATTACHMENT_STORAGE_PATH (default: ./attachments)
	cfg.AttachmentStoragePath = os.Getenv("ATTACHMENT_STORAGE_PATH")
	if cfg.AttachmentStoragePath == "" {
		cfg.AttachmentStoragePath = "./attachments"
	}

	// USES_EMAIL_NOTIFICATIONS (default: false)
	if raw := os.Getenv("USES_EMAIL_NOTIFICATIONS"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("USES_EMAIL_NOTIFICATIONS must be a valid boolean: %w", err)
		}
		cfg.EmailNotificationsEnabled = enabled
	}

	cfg.SMTPRelayAddr = os.Getenv("SMTP_RELAY_ADDR")
	cfg.SMTPFrom = os.Getenv("SMTP_FROM")
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = "no-reply@mailfold.local"
	}
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")

	// SEARCH_ENABLED (default: false)
	if raw := os.Getenv("SEARCH_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("SEARCH_ENABLED must be a valid boolean: %w", err)
		}
		cfg.SearchEnabled = enabled
	}

	// SEARCH_ENGINE (default: memory when search is enabled)
	cfg.SearchEngine = os.Getenv("SEARCH_ENGINE")
	if cfg.SearchEngine == "" {
		cfg.SearchEngine = "memory"
	}

	if raw := os.Getenv("OPENSEARCH_ADDRESSES"); raw != "" {
		for _, addr := range strings.Split(raw, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.OpenSearchAddresses = append(cfg.OpenSearchAddresses, addr)
			}
		}
	}
	cfg.OpenSearchUsername = os.Getenv("OPENSEARCH_USERNAME")
	cfg.OpenSearchPassword = os.Getenv("OPENSEARCH_PASSWORD")
	cfg.OpenSearchIndex = os.Getenv("OPENSEARCH_INDEX")
	if cfg.OpenSearchIndex == "" {
		cfg.OpenSearchIndex = "mailfold-notifications"
	}

	// LOG_LEVEL (default: info)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.AttachmentStoragePath == "" {
		return fmt.Errorf("AttachmentStoragePath cannot be empty")
	}
	if c.EmailNotificationsEnabled && c.SMTPRelayAddr == "" {
		return fmt.Errorf("SMTP_RELAY_ADDR is required when email notifications are enabled")
	}
	if c.SearchEnabled {
		switch c.SearchEngine {
		case "memory":
		case "opensearch":
			if len(c.OpenSearchAddresses) == 0 {
				return fmt.Errorf("OPENSEARCH_ADDRESSES is required for the opensearch engine")
			}
		default:
			return fmt.Errorf("SEARCH_ENGINE must be one of: memory, opensearch")
		}
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	// Check for sslmode=disable in database URL
	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	if c.SearchEnabled && c.SearchEngine == "memory" {
		return fmt.Errorf("the memory search engine is not allowed in production")
	}

	return nil
}

// AllowedOriginList splits the configured origins into a cleaned slice
func (c *Config) AllowedOriginList() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.String("storage_path", c.AttachmentStoragePath),
		slog.Bool("email_notifications", c.EmailNotificationsEnabled),
		slog.Bool("search_enabled", c.SearchEnabled),
		slog.String("search_engine", c.SearchEngine),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
	)
}
