package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port           string
	MongoURI       string
	DBName         string
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration

	// RedisAddr enables idempotent order submission when set.
	RedisAddr      string
	RedisPassword  string
	IdempotencyTTL time.Duration
	// PendingTTL caps how long an unfinished submission holds its key.
	PendingTTL     time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	return Config{
		Port:           getEnvOrDefault("PORT", "5000"),
		MongoURI:       getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:         getEnvOrDefault("DB_NAME", "foodstore"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		TokenTTL:       getDurationEnv("TOKEN_TTL", 120, time.Hour),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 5, time.Second),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword:  getEnvOrDefault("REDIS_PASSWORD", ""),
		IdempotencyTTL: getDurationEnv("IDEMPOTENCY_TTL", 24*60, time.Minute),
		PendingTTL:     getDurationEnv("IDEMPOTENCY_PENDING_TTL", 60, time.Second),
	}
}
