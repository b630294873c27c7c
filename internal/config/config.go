package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds configuration for the HTTP API server.
type ServerConfig struct {
	Host           string        `mapstructure:"HOST"`
	Port           string        `mapstructure:"PORT"`
	ReadTimeout    time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"WRITE_TIMEOUT"`
	MaxHeaderBytes int           `mapstructure:"MAX_HEADER_BYTES"`
	CORS           CORSConfig    `mapstructure:"CORS"`
}

// CORSConfig holds configuration for CORS.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `mapstructure:"ALLOWED_METHODS"`
	AllowedHeaders   []string `mapstructure:"ALLOWED_HEADERS"`
	AllowCredentials bool     `mapstructure:"ALLOW_CREDENTIALS"`
	MaxAge           int      `mapstructure:"MAX_AGE"`
}

// DatabaseConfig holds configuration for the relational store.
type DatabaseConfig struct {
	Type     string `mapstructure:"TYPE"`
	Host     string `mapstructure:"HOST"`
	Port     int    `mapstructure:"PORT"`
	User     string `mapstructure:"USER"`
	Password string `mapstructure:"PASSWORD"`
	DBName   string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"SSL_MODE"`
}

// RedisConfig holds configuration for Redis (session store).
type RedisConfig struct {
	Addr     string `mapstructure:"ADDR"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
}

// SessionConfig 保存会话相关配置。TTL 是滑动过期窗口。
type SessionConfig struct {
	TTL time.Duration `mapstructure:"TTL"`
}

// StorageConfig holds configuration for uploaded file storage.
type StorageConfig struct {
	LocalPath     string `mapstructure:"LOCAL_PATH"`
	MaxFileSizeMB int64  `mapstructure:"MAX_FILE_SIZE_MB"`
}

// RoutingConfig holds configuration for the external OSRM routing
// service proxied by the /routes endpoint.
type RoutingConfig struct {
	BaseURL  string  `mapstructure:"BASE_URL"`
	StartLat float64 `mapstructure:"START_LAT"`
	StartLng float64 `mapstructure:"START_LNG"`
}

// LoggingConfig holds configuration for the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"LEVEL"`
	Format string `mapstructure:"FORMAT"` // "json" or "console"
}

// Config holds all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName  string         `mapstructure:"APP_NAME"`
	Server   ServerConfig   `mapstructure:"SERVER"`
	Database DatabaseConfig `mapstructure:"DATABASE"`
	Redis    RedisConfig    `mapstructure:"REDIS"`
	Session  SessionConfig  `mapstructure:"SESSION"`
	Storage  StorageConfig  `mapstructure:"STORAGE"`
	Routing  RoutingConfig  `mapstructure:"ROUTING"`
	Logging  LoggingConfig  `mapstructure:"LOGGING"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "places-go")

	// Server defaults
	v.SetDefault("SERVER.HOST", "0.0.0.0")
	v.SetDefault("SERVER.PORT", "3000")
	v.SetDefault("SERVER.READ_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER.WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER.MAX_HEADER_BYTES", 1<<20) // 1 MB
	v.SetDefault("SERVER.CORS.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.CORS.ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("SERVER.CORS.ALLOWED_HEADERS", []string{"Accept", "Content-Type", "session-id"})
	v.SetDefault("SERVER.CORS.ALLOW_CREDENTIALS", false)
	v.SetDefault("SERVER.CORS.MAX_AGE", 300)

	// Database defaults (PostgreSQL)
	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "password")
	v.SetDefault("DATABASE.DB_NAME", "places_db")
	v.SetDefault("DATABASE.SSL_MODE", "disable")

	// Redis defaults
	v.SetDefault("REDIS.ADDR", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)

	// Session defaults：30 分钟滑动过期
	v.SetDefault("SESSION.TTL", 30*time.Minute)

	// Storage defaults
	v.SetDefault("STORAGE.LOCAL_PATH", "./assets")
	v.SetDefault("STORAGE.MAX_FILE_SIZE_MB", 10)

	// Routing defaults (OSRM public instance, default start point)
	v.SetDefault("ROUTING.BASE_URL", "https://router.project-osrm.org")
	v.SetDefault("ROUTING.START_LAT", 35.349961)
	v.SetDefault("ROUTING.START_LNG", 1.3205712)

	// Logging defaults
	v.SetDefault("LOGGING.LEVEL", "info")
	v.SetDefault("LOGGING.FORMAT", "console")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		// Config file not found; defaults plus env are enough.
	}

	err = v.Unmarshal(&config)
	return
}
