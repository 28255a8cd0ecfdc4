package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string
	JWTSecret  string
	ServerPort string

	LogFormat string
	LogLevel  string

	SendGridAPIKey string
	MailFromEmail  string
	MailFromName   string

	// Verified-expert evaluation pool
	EvaluatorWorkers   int
	EvaluatorQueueSize int
	EvaluatorTimeout   time.Duration

	BulkSummaryConcurrency int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "prompt_market"),
		DBPath:     getEnv("DB_PATH", "prompt_market.db"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		LogFormat: getEnv("LOG_FORMAT", "console"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		MailFromEmail:  getEnv("MAIL_FROM_EMAIL", "no-reply@promptmarket.local"),
		MailFromName:   getEnv("MAIL_FROM_NAME", "Prompt Market"),

		EvaluatorWorkers:   getEnvInt("EVALUATOR_WORKERS", 2),
		EvaluatorQueueSize: getEnvInt("EVALUATOR_QUEUE_SIZE", 256),
		EvaluatorTimeout:   getEnvDuration("EVALUATOR_TIMEOUT", 30*time.Second),

		BulkSummaryConcurrency: getEnvInt("BULK_SUMMARY_CONCURRENCY", 8),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer in %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration in %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
