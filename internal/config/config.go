package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server      ServerConfig
	App         AppConfig
	StoreAPI    StoreAPIConfig
	VendorCache VendorCacheConfig
	TargetDB    TargetDBConfig
	Cache       CacheConfig
	Sync        SyncConfig
}

// ServerConfig holds HTTP server settings for the admin API.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"gameshelf-sync"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	AdminKey    string `envconfig:"ADMIN_KEY" default:""` // Shared key guarding the admin sync routes
}

// StoreAPIConfig holds settings for the game-store REST API client.
type StoreAPIConfig struct {
	APIKey           string        `envconfig:"STORE_API_KEY" default:""`
	BaseURL          string        `envconfig:"STORE_API_BASE_URL" default:"https://api.steampowered.com"`
	StoreBaseURL     string        `envconfig:"STORE_FRONT_BASE_URL" default:"https://store.steampowered.com"`
	Timeout          time.Duration `envconfig:"STORE_API_TIMEOUT" default:"30s"`
	RetryMaxAttempts int           `envconfig:"STORE_RETRY_MAX_ATTEMPTS" default:"3"`
	RetryDelay       time.Duration `envconfig:"STORE_RETRY_DELAY" default:"1s"`
	DefaultLanguage  string        `envconfig:"STORE_DEFAULT_LANGUAGE" default:"english"`
	DefaultCountry   string        `envconfig:"STORE_DEFAULT_COUNTRY" default:"US"`
	AccountID        string        `envconfig:"STORE_ACCOUNT_ID" default:""`
	PlatformTag      string        `envconfig:"STORE_PLATFORM_TAG" default:"steam"`
}

// VendorCacheConfig holds the location of the vendor client's local database.
type VendorCacheConfig struct {
	Path string `envconfig:"VENDOR_CACHE_PATH" default:""`
}

// TargetDBConfig holds target relational store settings.
type TargetDBConfig struct {
	Type string `envconfig:"TARGET_DB_TYPE" default:"sqlite"` // sqlite, mysql, or postgres
	Path string `envconfig:"TARGET_DB_PATH" default:"./data/library.db"`
	// MySQL / PostgreSQL settings
	Host     string `envconfig:"TARGET_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"TARGET_DB_PORT" default:"0"`
	Name     string `envconfig:"TARGET_DB_NAME" default:"gameshelf"`
	User     string `envconfig:"TARGET_DB_USER" default:""`
	Password string `envconfig:"TARGET_DB_PASS" default:""`
	SSLMode  string `envconfig:"TARGET_DB_SSLMODE" default:"disable"`
}

// CacheConfig holds settings for the store-API response cache.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"24h"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SyncConfig holds pipeline behavior settings.
type SyncConfig struct {
	InterchangePath string `envconfig:"SYNC_INTERCHANGE_PATH" default:"./data/library-export.json"`
	// The original updater wrote the logo URL into horizontalCover as well.
	// Switchable because it may be a denormalization, not a requirement.
	MirrorHorizontalCover bool `envconfig:"SYNC_MIRROR_HORIZONTAL_COVER" default:"true"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// MySQLDSN returns the MySQL data source name.
func (d *TargetDBConfig) MySQLDSN() string {
	port := d.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, port, d.Name)
}

// PostgresDSN returns the PostgreSQL connection string.
func (d *TargetDBConfig) PostgresDSN() string {
	port := d.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, port, d.Name, d.SSLMode)
}

// ResolvePath returns the configured vendor cache path, falling back to the
// vendor client's default storage location for the current OS.
func (v *VendorCacheConfig) ResolvePath() string {
	if v.Path != "" {
		return v.Path
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("PROGRAMDATA"), "GOG.com", "Galaxy", "storage", "galaxy-2.0.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Application Support", "GOG.com", "Galaxy", "storage", "galaxy-2.0.db")
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
