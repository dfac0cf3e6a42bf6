package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	CourseAPIURL     string
	CourseAPITimeout time.Duration
	RedisURL         string
	QuizCacheTTL     time.Duration
	KafkaBrokers     []string
	KafkaTopic       string
	Environment      string
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine outside development; the environment wins anyway.
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		CourseAPIURL:     getEnv("COURSE_API_URL", "http://localhost:9090/api/v1"),
		CourseAPITimeout: getDuration("COURSE_API_TIMEOUT", 15*time.Second),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		QuizCacheTTL:     getDuration("QUIZ_CACHE_TTL", 5*time.Minute),
		KafkaBrokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "quiz-authoring-events"),
		Environment:      getEnv("ENVIRONMENT", "development"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are treated as seconds.
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
