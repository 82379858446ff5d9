package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// JWT settings. The secret is required; main refuses to start without it
	// because tokens issued with an empty secret could never be verified.
	JWTSecret           string
	JWTRegisterTTLHours int
	JWTLoginTTLHours    int

	CORSAllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	QuestionCacheTTLSeconds int

	OTLPEndpoint string
}

func Load() Config {
	return Config{
		Env:                 getEnv("APP_ENV", "dev"),
		Port:                getEnvInt("PORT", 5500),
		DBURL:               buildDBURL(),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTRegisterTTLHours: getEnvInt("JWT_REGISTER_TTL_HOURS", 24),
		JWTLoginTTLHours:    getEnvInt("JWT_LOGIN_TTL_HOURS", 168),
		CORSAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),

		QuestionCacheTTLSeconds: getEnvInt("QUESTION_CACHE_TTL_SECONDS", 30),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func (c Config) RegisterTokenTTL() time.Duration {
	return time.Duration(c.JWTRegisterTTLHours) * time.Hour
}

func (c Config) LoginTokenTTL() time.Duration {
	return time.Duration(c.JWTLoginTTLHours) * time.Hour
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "qna")
	pass := getEnv("DB_PASSWORD", "qna")
	name := getEnv("DB_NAME", "qna")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)

	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}

	return out
}
