package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all environment-driven settings for the server.
type Config struct {
	Port         string
	MongoURI     string
	DBName       string
	JWTSecret    string
	TokenExpiry  time.Duration
	GeminiAPIKey string
}

// LoadConfig reads configuration from a .env file and the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	expiry := 24 * time.Hour
	if raw := os.Getenv("TOKEN_EXPIRY"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			expiry = parsed
		} else {
			logrus.WithError(err).Warn("Invalid TOKEN_EXPIRY, falling back to 24h")
		}
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:       getEnv("DB_NAME", "green_commitment_wall"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenExpiry:  expiry,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
