package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	ApplicationName    string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the S3-compatible disk.
// The disk is only registered when Endpoint is set.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Public marks the bucket as publicly readable so files get a URL.
	Public bool
}

// StorageConfig describes the disks files are written to and the ingestion defaults.
type StorageConfig struct {
	// DefaultDisk is used when an ingestion does not name a disk.
	DefaultDisk string
	// LocalDisk is the id under which the local filesystem disk is registered.
	LocalDisk    string
	LocalRoot    string
	LocalBaseURL string
	// MinIODisk is the id under which the S3-compatible disk is registered.
	MinIODisk string
	// MaxStreamBytes bounds how much of a raw stream is buffered in memory.
	// Zero disables the bound.
	MaxStreamBytes int64
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	LogLevel slog.Level
	Database DatabaseConfig
	MinIO    MinIOConfig
	Storage  StorageConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "info")),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			ApplicationName:    getEnv("DB_APPLICATION_NAME", "fileapi"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			Public:    getEnvBool("MINIO_PUBLIC", false),
		},
		Storage: StorageConfig{
			DefaultDisk:    getEnv("STORAGE_DEFAULT_DISK", "local"),
			LocalDisk:      getEnv("STORAGE_LOCAL_DISK", "local"),
			LocalRoot:      getEnv("STORAGE_LOCAL_ROOT", "./storage"),
			LocalBaseURL:   strings.TrimRight(getEnv("STORAGE_LOCAL_BASE_URL", ""), "/"),
			MinIODisk:      getEnv("STORAGE_MINIO_DISK", "s3"),
			MaxStreamBytes: getEnvInt64("STORAGE_MAX_STREAM_BYTES", 32<<20),
		},
	}
}

func parseLogLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil && i >= 0 {
			return i
		}
	}
	return def
}
