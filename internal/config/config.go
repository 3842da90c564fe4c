package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	StoreDriver string // mongo|memory
	MongoURI    string
	MongoDB     string

	JWTSecret    string
	TokenTTL     time.Duration
	RefreshGrace time.Duration

	UploadDir   string
	CORSOrigins []string

	AuditDSN       string
	AuditRetention time.Duration
	AuditPruneCron string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	AMQPURL      string
	AMQPExchange string

	OTelEndpoint string

	LogLevel  string
	LogFormat string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads the process environment, after merging an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: getEnv("STORE_DRIVER", "mongo"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "sports"),

		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:     getDuration("TOKEN_TTL", time.Hour),
		RefreshGrace: getDuration("REFRESH_GRACE", 24*time.Hour),

		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),

		AuditDSN:       os.Getenv("AUDIT_DATABASE_URL"),
		AuditRetention: getDuration("AUDIT_RETENTION", 90*24*time.Hour),
		AuditPruneCron: getEnv("AUDIT_PRUNE_CRON", "0 3 * * *"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		CacheTTL:      getDuration("CACHE_TTL", time.Minute),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "sports.events"),

		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.StoreDriver != "mongo" && cfg.StoreDriver != "memory" {
		return nil, errors.New("STORE_DRIVER must be mongo or memory")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
