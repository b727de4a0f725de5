package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Redis  RedisConfig
	Auth   AuthConfig
}

type ServerConfig struct {
	Port      string
	RateLimit string
}

type StoreConfig struct {
	// Driver selects the persistence backend: "csv", "sqlite" or "postgres".
	Driver      string
	DataDir     string
	SQLitePath  string
	PostgresDSN string
}

type AuthConfig struct {
	// JWTSecret enables bearer-token protection of mutating routes when set.
	JWTSecret   string
	OperatorKey string
	TokenTTL    time.Duration
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTLHours, _ := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "12"))

	return Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "8080"),
			RateLimit: getEnv("RATE_LIMIT", "60-M"),
		},
		Store: StoreConfig{
			Driver:      getEnv("STORE_DRIVER", "csv"),
			DataDir:     getEnv("DATA_DIR", "data"),
			SQLitePath:  getEnv("SQLITE_PATH", "data/shopledger.db"),
			PostgresDSN: getEnv("POSTGRES_DSN", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			OperatorKey: getEnv("OPERATOR_KEY", ""),
			TokenTTL:    time.Duration(tokenTTLHours) * time.Hour,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
