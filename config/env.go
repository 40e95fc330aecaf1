package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	APIPath     string

	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig

	VATRate        float64
	RateLimit      string
	AllowedOrigins []string
}

type DBConfig struct {
	DSN string
}

type AuthConfig struct {
	JWTSecret       string
	SessionHours    int
	BcryptRounds    int
	DefaultPassword string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	sessionHours, _ := strconv.Atoi(getEnv("SESSION_VALIDITY_HOURS", "24"))
	bcryptRounds, _ := strconv.Atoi(getEnv("BCRYPT_ROUNDS", "12"))
	vatRate, err := strconv.ParseFloat(getEnv("VAT_RATE", "0.075"), 64)
	if err != nil {
		vatRate = 0.075
	}

	return Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		APIPath:     "/api/" + getEnv("API_VERSION", "v1"),
		DB: DBConfig{
			DSN: getEnv("DB_DSN", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Enabled:  getEnv("REDIS_ENABLED", "true") == "true",
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			SessionHours:    sessionHours,
			BcryptRounds:    bcryptRounds,
			DefaultPassword: getEnv("DEFAULT_PASSWORD", "password"),
		},
		VATRate:        vatRate,
		RateLimit:      getEnv("RATE_LIMIT", "100-M"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
