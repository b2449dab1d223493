/*
Package config loads engine configuration from environment variables.

PURPOSE:
  A handful of env vars with sensible defaults; main loads a .env file
  first (godotenv) so local development needs no exported shell state.

VARIABLES:
  PORT                HTTP port (default 8080)
  APP_ENV             "development" or "production" (default development)
  LOG_LEVEL           zap level (default debug in development, info otherwise)
  ALLOWED_ORIGINS     comma-separated CORS origins
  STORE               memory | sqlite | redis (default sqlite)
  SQLITE_PATH         database path (default storefront.db)
  REDIS_ADDR/PASSWORD/DB
  DELIVERY_MODE       geocode | zip (default zip unless GEOCODER_BASE_URL set)
  GEOCODER_BASE_URL   geocoding provider endpoint
  PAYMENT_ENDPOINT    checkout-session endpoint URL
*/
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Store    StoreConfig
	Delivery DeliveryConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port           int
	AppEnv         string
	AllowedOrigins []string
}

type LoggerConfig struct {
	Level string
}

type StoreConfig struct {
	Kind          string // memory | sqlite | redis
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type DeliveryConfig struct {
	Mode           string // geocode | zip
	GeocoderBaseURL string
}

type PaymentConfig struct {
	EndpointURL string
}

// Load reads configuration from the environment.
func Load() *Config {
	appEnv := getEnv("APP_ENV", "development")

	defaultLevel := "info"
	if appEnv == "development" {
		defaultLevel = "debug"
	}

	geocoderURL := getEnv("GEOCODER_BASE_URL", "")
	defaultMode := "zip"
	if geocoderURL != "" {
		defaultMode = "geocode"
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			AppEnv:         appEnv,
			AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", defaultLevel),
		},
		Store: StoreConfig{
			Kind:          getEnv("STORE", "sqlite"),
			SQLitePath:    getEnv("SQLITE_PATH", "storefront.db"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Delivery: DeliveryConfig{
			Mode:           getEnv("DELIVERY_MODE", defaultMode),
			GeocoderBaseURL: geocoderURL,
		},
		Payment: PaymentConfig{
			EndpointURL: getEnv("PAYMENT_ENDPOINT", "http://localhost:9000/create-checkout-session"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
