package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Postgres  PostgresConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Tracker   TrackerConfig
	Media     MediaConfig
	Notify    NotifyConfig
	Log       LogConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// BackendConfig points at the hosted data store and object storage.
type BackendConfig struct {
	URL            string        `mapstructure:"url"`
	APIKey         string        `mapstructure:"api_key"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	Bucket        string `mapstructure:"bucket"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioSecure   bool   `mapstructure:"minio_secure"`
	MinioPublic   string `mapstructure:"minio_public_url"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type TrackerConfig struct {
	CatalogPath       string        `mapstructure:"catalog_path"`
	EnforceGating     bool          `mapstructure:"enforce_gating"`
	CompensateOrphans bool          `mapstructure:"compensate_orphans"`
	SubmitLockSeconds int           `mapstructure:"submit_lock_ttl_seconds"`
	SubmitLockTTL     time.Duration `mapstructure:"-"`
	MaxUploadMB       int64         `mapstructure:"max_upload_mb"`
}

type MediaConfig struct {
	ProbeVideo bool `mapstructure:"probe_video"`
}

type NotifyConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

type LogConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

const (
	StoreDriverPostgREST = "postgrest"
	StoreDriverPostgres  = "postgres"
	StoreDriverMySQL     = "mysql"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("backend.timeout_seconds", 15)
	v.SetDefault("store.driver", StoreDriverPostgREST)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("storage.type", "supabase")
	v.SetDefault("storage.bucket", "treasure-hunt")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("tracker.enforce_gating", true)
	v.SetDefault("tracker.compensate_orphans", true)
	v.SetDefault("tracker.submit_lock_ttl_seconds", 60)
	v.SetDefault("tracker.max_upload_mb", 50)
	v.SetDefault("log.path", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("HUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Backend
	v.BindEnv("backend.url", "SUPABASE_URL")
	v.BindEnv("backend.api_key", "SUPABASE_ANON_KEY")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// Stores
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("postgres.url", "DATABASE_URL")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")

	// Notifications
	v.BindEnv("notify.telegram_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("notify.telegram_chat_id", "TELEGRAM_CHAT_ID")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Backend.Timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	cfg.Tracker.SubmitLockTTL = time.Duration(cfg.Tracker.SubmitLockSeconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// Validate checks that every selected driver has what it needs.
func (c *Config) Validate() error {
	needsBackend := c.Store.Driver == StoreDriverPostgREST || c.Storage.Type == "supabase"
	if needsBackend && (c.Backend.URL == "" || c.Backend.APIKey == "") {
		return fmt.Errorf("backend.url and backend.api_key are required for store %q / storage %q", c.Store.Driver, c.Storage.Type)
	}

	switch c.Store.Driver {
	case StoreDriverPostgREST:
	case StoreDriverPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is required for store driver %q", c.Store.Driver)
		}
	case StoreDriverMySQL:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("database.host and database.dbname are required for store driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Storage.Type {
	case "supabase", "local":
	case "minio":
		if c.Storage.MinioEndpoint == "" {
			return fmt.Errorf("storage.minio_endpoint is required for minio storage")
		}
	case "oss":
		if c.Storage.OSSEndpoint == "" {
			return fmt.Errorf("storage.oss_endpoint is required for oss storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	if c.Storage.Bucket == "" && c.Storage.Type != "local" {
		return fmt.Errorf("storage.bucket is required")
	}

	if c.Tracker.MaxUploadMB <= 0 {
		return fmt.Errorf("tracker.max_upload_mb must be positive")
	}

	return nil
}
