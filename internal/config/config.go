// internal/config/config.go
package config

import (
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Upstream UpstreamConfig
	Refresh  RefreshConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Events   EventsConfig
	Storage  StorageConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	SessionIdleMin int
}

type LogConfig struct {
	Level  string
	Format string
}

// UpstreamConfig points at the analytics backend that produces the prediction,
// suggestion, profitability and dashboard payloads.
type UpstreamConfig struct {
	BaseURL            string
	TimeoutSeconds     int
	PredictionsPath    string
	SuggestionsPath    string
	ProfitabilityPath  string
	DashboardPath      string
	ClientID           string
	ClientSecret       string
	TokenURL           string
	Scopes             []string
	MaxResponseSizeMiB int
}

// RefreshConfig selects where snapshots come from: "upstream" (HTTP) or "drive".
type RefreshConfig struct {
	Enabled         bool
	IntervalSeconds int
	Source          string
}

type DatabaseConfig struct {
	Enabled       bool
	Driver        string
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConcurrent int64
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	SnapshotTTLSeconds int
}

type EventsConfig struct {
	Enabled        bool
	Brokers        []string
	ApprovalTopic  string
	QuantityTopic  string
	WriteTimeoutMs int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type DriveConfig struct {
	CredentialsJSON string
	FolderPath      string
	Port            string
}

func (c UpstreamConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ServerConfig) SessionIdle() time.Duration {
	if c.SessionIdleMin <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.SessionIdleMin) * time.Minute
}

func (c RefreshConfig) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		setDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = fromViper(v)
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_SESSION_IDLE_MINUTES", 120)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:5000")
	v.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 15)
	v.SetDefault("UPSTREAM_PREDICTIONS_PATH", "/api/predictions")
	v.SetDefault("UPSTREAM_SUGGESTIONS_PATH", "/api/order-suggestions")
	v.SetDefault("UPSTREAM_PROFITABILITY_PATH", "/api/profitability")
	v.SetDefault("UPSTREAM_DASHBOARD_PATH", "/api/dashboard")
	v.SetDefault("UPSTREAM_CLIENT_ID", "")
	v.SetDefault("UPSTREAM_CLIENT_SECRET", "")
	v.SetDefault("UPSTREAM_TOKEN_URL", "")
	v.SetDefault("UPSTREAM_SCOPES", []string{})
	v.SetDefault("UPSTREAM_MAX_RESPONSE_MIB", 16)

	v.SetDefault("REFRESH_ENABLED", true)
	v.SetDefault("REFRESH_INTERVAL_SECONDS", 300)
	v.SetDefault("REFRESH_SOURCE", "upstream")

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "bookstock")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONCURRENT", 10)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_SNAPSHOT_TTL_SECONDS", 900)

	v.SetDefault("EVENTS_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("KAFKA_APPROVAL_TOPIC", "bookstock.order.approved")
	v.SetDefault("KAFKA_QUANTITY_TOPIC", "bookstock.order.quantity_changed")
	v.SetDefault("KAFKA_WRITE_TIMEOUT_MS", 5000)

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "bookstock-exports")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", false)
	v.SetDefault("STORAGE_PREFIX", "exports/")

	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("DRIVE_FOLDER_PATH", "")
	v.SetDefault("DRIVE_SYNC_PORT", "8081")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: splitList(v.GetStringSlice("SERVER_ALLOWED_ORIGINS")),
			SessionIdleMin: v.GetInt("SERVER_SESSION_IDLE_MINUTES"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Upstream: UpstreamConfig{
			BaseURL:            strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
			TimeoutSeconds:     v.GetInt("UPSTREAM_TIMEOUT_SECONDS"),
			PredictionsPath:    v.GetString("UPSTREAM_PREDICTIONS_PATH"),
			SuggestionsPath:    v.GetString("UPSTREAM_SUGGESTIONS_PATH"),
			ProfitabilityPath:  v.GetString("UPSTREAM_PROFITABILITY_PATH"),
			DashboardPath:      v.GetString("UPSTREAM_DASHBOARD_PATH"),
			ClientID:           v.GetString("UPSTREAM_CLIENT_ID"),
			ClientSecret:       v.GetString("UPSTREAM_CLIENT_SECRET"),
			TokenURL:           v.GetString("UPSTREAM_TOKEN_URL"),
			Scopes:             splitList(v.GetStringSlice("UPSTREAM_SCOPES")),
			MaxResponseSizeMiB: v.GetInt("UPSTREAM_MAX_RESPONSE_MIB"),
		},
		Refresh: RefreshConfig{
			Enabled:         v.GetBool("REFRESH_ENABLED"),
			IntervalSeconds: v.GetInt("REFRESH_INTERVAL_SECONDS"),
			Source:          strings.ToLower(v.GetString("REFRESH_SOURCE")),
		},
		Database: DatabaseConfig{
			Enabled:       v.GetBool("DB_ENABLED"),
			Driver:        v.GetString("DB_DRIVER"),
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASSWORD"),
			DBName:        v.GetString("DB_NAME"),
			SSLMode:       v.GetString("DB_SSLMODE"),
			MaxConcurrent: v.GetInt64("DB_MAX_CONCURRENT"),
		},
		Cache: CacheConfig{
			Enabled:            v.GetBool("CACHE_ENABLED"),
			RedisURL:           v.GetString("REDIS_URL"),
			RedisHost:          v.GetString("REDIS_HOST"),
			RedisPort:          v.GetString("REDIS_PORT"),
			RedisPassword:      v.GetString("REDIS_PASSWORD"),
			RedisDB:            v.GetInt("REDIS_DB"),
			SnapshotTTLSeconds: v.GetInt("CACHE_SNAPSHOT_TTL_SECONDS"),
		},
		Events: EventsConfig{
			Enabled:        v.GetBool("EVENTS_ENABLED"),
			Brokers:        splitList(v.GetStringSlice("KAFKA_BROKERS")),
			ApprovalTopic:  v.GetString("KAFKA_APPROVAL_TOPIC"),
			QuantityTopic:  v.GetString("KAFKA_QUANTITY_TOPIC"),
			WriteTimeoutMs: v.GetInt("KAFKA_WRITE_TIMEOUT_MS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderPath:      v.GetString("DRIVE_FOLDER_PATH"),
			Port:            v.GetString("DRIVE_SYNC_PORT"),
		},
	}
}

// splitList flattens comma-separated entries coming from env vars
// (KAFKA_BROKERS=a:9092,b:9092) into a clean slice.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
