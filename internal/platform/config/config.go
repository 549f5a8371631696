package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Auth
	JWTSecret     string
	AuthDisabled  bool
	DefaultUserID string
	ServiceAPIKey string

	CORSAllowedOrigins []string
	RateLimit          string

	// Plaid
	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string
	PlaidProducts []string

	// Teller
	TellerAPIBaseURL string
	TellerCertFile   string
	TellerKeyFile    string

	// Outbound HTTP and refresh behaviour
	HTTPMaxAttempts    int
	HTTPInitialBackoff time.Duration
	RefreshTimeout     time.Duration
	RefreshCooldown    time.Duration
	UpsertBatchSize    int

	// Sinks
	ArchiveDir         string
	ArchiveGCSBucket   string
	GCSCredentialsFile string
	KafkaBrokers       []string
	KafkaRefreshTopic  string
	PosthogAPIKey      string
	PosthogEndpoint    string

	TokenEncryptionKey   string
	ExportDir            string
	ExportIncludeSecrets bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("AUTH_DISABLED", false)
	v.SetDefault("DEFAULT_USER_ID", "default")
	v.SetDefault("SERVICE_API_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("PLAID_CLIENT_ID", "")
	v.SetDefault("PLAID_SECRET", "")
	v.SetDefault("PLAID_ENV", "sandbox")
	v.SetDefault("PLAID_PRODUCTS", "transactions")
	v.SetDefault("TELLER_API_BASE_URL", "https://api.teller.io")
	v.SetDefault("TELLER_CERT_FILE", "")
	v.SetDefault("TELLER_KEY_FILE", "")
	v.SetDefault("HTTP_MAX_ATTEMPTS", 3)
	v.SetDefault("HTTP_INITIAL_BACKOFF", "10s")
	v.SetDefault("REFRESH_TIMEOUT", "2m")
	v.SetDefault("REFRESH_COOLDOWN", "24h")
	v.SetDefault("UPSERT_BATCH_SIZE", 100)
	v.SetDefault("ARCHIVE_DIR", "data/archive")
	v.SetDefault("ARCHIVE_GCS_BUCKET", "")
	v.SetDefault("GCS_CREDENTIALS_FILE", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_REFRESH_TOPIC", "account.refreshed")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	v.SetDefault("TOKEN_ENCRYPTION_KEY", "")
	v.SetDefault("EXPORT_DIR", "data")
	v.SetDefault("EXPORT_INCLUDE_SECRETS", false)
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	cfg.AuthDisabled = v.GetBool("AUTH_DISABLED")
	cfg.DefaultUserID = v.GetString("DEFAULT_USER_ID")
	cfg.ServiceAPIKey = v.GetString("SERVICE_API_KEY")
	if !cfg.AuthDisabled && cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set and AUTH_DISABLED is false. All API requests will be rejected.")
	}
	if cfg.AuthDisabled {
		log.Printf("Warning: AUTH_DISABLED is set. Every request acts as user %q.\n", cfg.DefaultUserID)
	}

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = v.GetString("RATE_LIMIT")

	cfg.PlaidClientID = v.GetString("PLAID_CLIENT_ID")
	cfg.PlaidSecret = v.GetString("PLAID_SECRET")
	cfg.PlaidEnv = v.GetString("PLAID_ENV")
	cfg.PlaidProducts = splitList(v.GetString("PLAID_PRODUCTS"))
	if cfg.PlaidClientID == "" || cfg.PlaidSecret == "" {
		log.Println("Warning: PLAID_CLIENT_ID or PLAID_SECRET not set. Plaid linking and refresh will not function.")
	}

	cfg.TellerAPIBaseURL = strings.TrimRight(v.GetString("TELLER_API_BASE_URL"), "/")
	cfg.TellerCertFile = v.GetString("TELLER_CERT_FILE")
	cfg.TellerKeyFile = v.GetString("TELLER_KEY_FILE")
	if cfg.TellerCertFile == "" || cfg.TellerKeyFile == "" {
		log.Println("Warning: TELLER_CERT_FILE or TELLER_KEY_FILE not set. Teller requests will be sent without a client certificate.")
	}

	cfg.HTTPMaxAttempts = v.GetInt("HTTP_MAX_ATTEMPTS")
	if cfg.HTTPMaxAttempts < 1 {
		log.Printf("Warning: Invalid value for HTTP_MAX_ATTEMPTS (%d). Defaulting to 3.\n", cfg.HTTPMaxAttempts)
		cfg.HTTPMaxAttempts = 3
	}
	cfg.HTTPInitialBackoff = durationOr(v, "HTTP_INITIAL_BACKOFF", 10*time.Second)
	cfg.RefreshTimeout = durationOr(v, "REFRESH_TIMEOUT", 2*time.Minute)
	cfg.RefreshCooldown = durationOr(v, "REFRESH_COOLDOWN", 24*time.Hour)

	cfg.UpsertBatchSize = v.GetInt("UPSERT_BATCH_SIZE")
	if cfg.UpsertBatchSize < 1 {
		log.Printf("Warning: Invalid value for UPSERT_BATCH_SIZE (%d). Defaulting to 100.\n", cfg.UpsertBatchSize)
		cfg.UpsertBatchSize = 100
	}

	cfg.ArchiveDir = v.GetString("ARCHIVE_DIR")
	cfg.ArchiveGCSBucket = v.GetString("ARCHIVE_GCS_BUCKET")
	cfg.GCSCredentialsFile = v.GetString("GCS_CREDENTIALS_FILE")
	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.KafkaRefreshTopic = v.GetString("KAFKA_REFRESH_TOPIC")
	cfg.PosthogAPIKey = v.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = v.GetString("POSTHOG_ENDPOINT")

	cfg.TokenEncryptionKey = v.GetString("TOKEN_ENCRYPTION_KEY")
	if cfg.TokenEncryptionKey == "" {
		log.Println("Warning: TOKEN_ENCRYPTION_KEY not set. Access tokens will be stored unencrypted.")
	}
	cfg.ExportDir = v.GetString("EXPORT_DIR")
	cfg.ExportIncludeSecrets = v.GetBool("EXPORT_INCLUDE_SECRETS")

	return cfg
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
