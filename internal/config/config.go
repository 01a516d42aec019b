package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL        string
	RedisURL           string
	BaseURL            string // Backend base URL (OAuth callback, links in mail)
	FrontendURL        string // Frontend base URL (QR deep links, OAuth success redirect)
	JWTSecret          string // Secret key for JWT token signing
	JWTTTL             int    // JWT token expiration time in hours
	OTPTTLMinutes      int    // Lifetime of a one-time verification code
	ResetTTLMinutes    int    // Lifetime of a password reset token
	SMTPAddr           string // host:port of the SMTP relay; empty enables the log mailer
	SMTPFrom           string
	SMTPUsername       string
	SMTPPassword       string
	GoogleClientID     string
	GoogleClientSecret string
	RateLimitRPS       float64 // Rate limit for general API endpoints (requests per second)
	RateLimitBurst     int
	RateLimitAuthRPS   float64 // Rate limit for auth endpoints (stricter)
	RateLimitAuthBurst int
	ListenAddr         string
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             getEnvInt("JWT_TTL_HOURS", 24),
		OTPTTLMinutes:      getEnvInt("OTP_TTL_MINUTES", 10),
		ResetTTLMinutes:    getEnvInt("RESET_TTL_MINUTES", 60),
		SMTPAddr:           getEnv("SMTP_ADDR", ""),
		SMTPFrom:           getEnv("SMTP_FROM", "no-reply@scribesnap.app"),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		GoogleClientID:     getEnv("GOOGLE_OAUTH_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_OAUTH_CLIENT_SECRET", ""),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:   getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst: getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
