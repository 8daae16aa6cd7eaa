package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode            string        `mapstructure:"GIN_MODE"`
	ServerHost         string        `mapstructure:"SERVER_HOST"`
	ServerPort         string        `mapstructure:"SERVER_PORT"`
	ServerTimeout      time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`
	CORSAllowedOrigins []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSQLitePath      string        `mapstructure:"DB_SQLITE_PATH"`
	DBAutoMigrate     bool          `mapstructure:"DB_AUTO_MIGRATE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// FirebaseCheckRevoked makes every token verification also ask Firebase whether
	// the session was revoked. Costs one extra round trip per request.
	FirebaseCheckRevoked bool `mapstructure:"FIREBASE_CHECK_REVOKED"`

	// AdminUserIDs are Firebase uids that receive the admin role when provisioned.
	AdminUserIDs []string `mapstructure:"ADMIN_USER_IDS"`

	// Object storage
	StorageBucket         string `mapstructure:"STORAGE_BUCKET"`
	StoragePublicBaseURL  string `mapstructure:"STORAGE_PUBLIC_BASE_URL"`
	StoragePlaceholderURL string `mapstructure:"STORAGE_PLACEHOLDER_URL"`
	MaxImageUploadMB      int64  `mapstructure:"MAX_IMAGE_UPLOAD_MB"`

	// Elasticsearch Configuration. Empty URL disables indexing.
	ElasticsearchURL        string `mapstructure:"ELASTICSEARCH_URL"`
	ElasticsearchUsername   string `mapstructure:"ELASTICSEARCH_USERNAME"`
	ElasticsearchPassword   string `mapstructure:"ELASTICSEARCH_PASSWORD"`
	ElasticsearchMaxRetries int    `mapstructure:"ELASTICSEARCH_MAX_RETRIES"`

	// Cron Jobs
	HistoryPruneJobSchedule string `mapstructure:"HISTORY_PRUNE_JOB_SCHEDULE"`
	HistoryRetentionDays    int    `mapstructure:"HISTORY_RETENTION_DAYS"`

	// Application Specific Configuration
	FeaturedPropertiesLimit int `mapstructure:"FEATURED_PROPERTIES_LIMIT"`
	SearchResultsLimit      int `mapstructure:"SEARCH_RESULTS_LIMIT"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.AdminUserIDs = splitList(v.GetString("ADMIN_USER_IDS"))
	cfg.StoragePublicBaseURL = strings.TrimRight(cfg.StoragePublicBaseURL, "/")
	if cfg.StoragePublicBaseURL == "" && cfg.StorageBucket != "" {
		cfg.StoragePublicBaseURL = "https://storage.googleapis.com/" + cfg.StorageBucket
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "estate_market_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SQLITE_PATH", "estate_market.db")
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("FIREBASE_CHECK_REVOKED", false)
	v.SetDefault("ADMIN_USER_IDS", "")

	v.SetDefault("STORAGE_BUCKET", "")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "")
	v.SetDefault("STORAGE_PLACEHOLDER_URL", "https://placehold.co/800x600?text=Property")
	v.SetDefault("MAX_IMAGE_UPLOAD_MB", 10)

	v.SetDefault("ELASTICSEARCH_URL", "")
	v.SetDefault("ELASTICSEARCH_USERNAME", "")
	v.SetDefault("ELASTICSEARCH_PASSWORD", "")
	v.SetDefault("ELASTICSEARCH_MAX_RETRIES", 3)

	v.SetDefault("HISTORY_PRUNE_JOB_SCHEDULE", "@daily")
	v.SetDefault("HISTORY_RETENTION_DAYS", 90)

	v.SetDefault("FEATURED_PROPERTIES_LIMIT", 6)
	v.SetDefault("SEARCH_RESULTS_LIMIT", 20)
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("FATAL: DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if strings.TrimSpace(c.FirebaseServiceAccountKeyPath) == "" {
		return fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
	}
	if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath)
	}
	return nil
}

// StorageConfigured reports whether every setting needed for real uploads is present.
func (c *Config) StorageConfigured() bool {
	return c.StorageBucket != "" && c.StoragePublicBaseURL != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
