package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds all configuration for the application.
type Config struct {
	ServiceName string
	Logger      LoggerConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NewRelic    NewRelicConfig
	Auth        AuthConfig
	Azure       AzureConfig
	Google      GoogleConfig
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// AuthConfig holds token signing and actor resolution settings.
type AuthConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	// Required rejects identity-bearing requests that carry no bearer token.
	Required bool
}

// AzureConfig holds Azure Blob Storage and Communication Services settings.
type AzureConfig struct {
	StorageConnectionString  string
	WhatsAppConnectionString string
	WhatsAppChannelID        string
	WhatsAppTemplate         string
}

// GoogleConfig holds Google Maps Platform settings.
type GoogleConfig struct {
	PlacesAPIKey string
	BaseURL      string
}

// DefaultTokenSecret is the signing secret used when TOKEN_SECRET is unset.
// It is public, so tokens signed with it can be forged.
const DefaultTokenSecret = "dev-secret-change-me"

// ErrDefaultTokenSecret is returned by Validate when auth is required but the
// token secret was left at its default.
var ErrDefaultTokenSecret = errors.New("TOKEN_SECRET must be set when AUTH_REQUIRED is enabled")

// Load loads configuration from the environment, reading a .env file first
// when one is present.
func Load() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "cabbook"),
		Logger: LoggerConfig{
			Level: getEnv("LOGGER_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "3000"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "cabbook"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			AutoMigrate: getBoolEnv("DB_AUTO_MIGRATE", true),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "cabbook-api"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Auth: AuthConfig{
			TokenSecret: getEnv("TOKEN_SECRET", DefaultTokenSecret),
			TokenTTL:    getDurationEnv("TOKEN_TTL", 24*time.Hour),
			Required:    getBoolEnv("AUTH_REQUIRED", false),
		},
		Azure: AzureConfig{
			StorageConnectionString:  getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),
			WhatsAppConnectionString: getEnv("AZURE_WHATSAPP_CONNECTION_STRING", ""),
			WhatsAppChannelID:        getEnv("AZURE_WHATSAPP_CHANNEL_ID", ""),
			WhatsAppTemplate:         getEnv("AZURE_WHATSAPP_TEMPLATE", "verifyacc"),
		},
		Google: GoogleConfig{
			PlacesAPIKey: getEnv("GOOGLE_PLACES_API_KEY", ""),
			BaseURL:      getEnv("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com"),
		},
	}
}

// UsesDefaultSecret reports whether tokens are signed with DefaultTokenSecret.
func (c AuthConfig) UsesDefaultSecret() bool {
	return c.TokenSecret == DefaultTokenSecret
}

// Validate rejects combinations that are unsafe to serve with.
func (c *Config) Validate() error {
	if c.Auth.Required && c.Auth.UsesDefaultSecret() {
		return ErrDefaultTokenSecret
	}
	return nil
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := cast.ToIntE(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := cast.ToBoolE(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := cast.ToDurationE(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
