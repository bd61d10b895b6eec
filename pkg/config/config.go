package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	// Cart persistence. Backend is one of "memory", "redis", "postgres".
	CartBackend   string
	CartKeyPrefix string
	TaxRate       string

	RedisAddr string

	PostgresHost string
	PostgresPort int
	PostgresUser string
	PostgresPass string
	PostgresDB   string
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		CartBackend:   getEnv("CART_BACKEND", "memory"),
		CartKeyPrefix: getEnv("CART_KEY_PREFIX", "softhub_cart"),
		TaxRate:       getEnv("TAX_RATE", "0.19"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		PostgresHost: getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser: getEnv("POSTGRES_USER", "softhub"),
		PostgresPass: getEnv("POSTGRES_PASSWORD", "softhubpassword"),
		PostgresDB:   getEnv("POSTGRES_DB", "softhub_db"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
