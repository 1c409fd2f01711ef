package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenStorePostgres = "postgres"
	TokenStoreRedis    = "redis"
)

type Config struct {
	Env        string
	Port       int
	DBURL      string
	DBMaxConns int32

	TokenSecret string
	TokenStore  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminEmail    string
	AdminPassword string
	AdminName     string

	OTelEnabled  bool
	OTelEndpoint string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	RunMigrations      bool
}

// Load reads an optional .env file and then the process environment; real
// environment variables win over .env entries.
func Load() Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = buildDBURL()
	}

	return Config{
		Env:        env,
		Port:       port,
		DBURL:      dbURL,
		DBMaxConns: int32(getEnvInt("DB_MAX_CONNS", 5)),

		TokenSecret: tokenSecret(env),
		TokenStore:  strings.ToLower(getEnv("TOKEN_STORE", TokenStorePostgres)),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),

		OTelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
	}
}

const devTokenSecret = "dev-token-secret"

// tokenSecret only falls back to a built-in key in dev. Elsewhere a missing
// TOKEN_SECRET stays empty and Validate refuses to start.
func tokenSecret(env string) string {
	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		return v
	}
	if env == "dev" {
		return devTokenSecret
	}

	slog.Error("TOKEN_SECRET is not set", "env", env)
	return ""
}

// Validate reports settings the API cannot run with.
func (c Config) Validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET must be set when APP_ENV=%s", c.Env)
	}

	switch c.TokenStore {
	case TokenStorePostgres, TokenStoreRedis:
	default:
		return fmt.Errorf("unknown TOKEN_STORE %q", c.TokenStore)
	}
	return nil
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "recipebox")
	pass := getEnv("DB_PASSWORD", "recipebox")
	name := getEnv("DB_NAME", "recipebox")
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
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

// comma separated, blanks dropped
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
