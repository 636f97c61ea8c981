// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ストアの種類
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// DefaultEnvFile は起動時に読み込む.envファイルのパス。
const DefaultEnvFile = ".env"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Auth
	AuthSecret string
	TokenTTL   time.Duration

	// Store
	StoreDriver string
	DatabaseURL string
	AutoMigrate bool

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// Load は.envファイルと環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}
	return FromEnv()
}

// LoadEnvFile は.envファイルの内容を環境変数に反映する。
// 既に設定済みの環境変数は上書きしない。ファイルが存在しない場合は何もしない。
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// FromEnv は現在の環境変数からConfigを組み立てる。
func FromEnv() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.AuthSecret = os.Getenv("AUTH_SECRET")
	if cfg.AuthSecret == "" {
		missing = append(missing, "AUTH_SECRET")
	}

	cfg.StoreDriver = getEnvString("STORE_DRIVER", StoreDriverPostgres)
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreDriverMemory:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q (want %q or %q)", cfg.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 7*24*time.Hour)
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	cfg.AutoMigrate = getEnvBool("AUTO_MIGRATE", true)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
