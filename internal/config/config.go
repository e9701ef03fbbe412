package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-only-insecure-secret"

type Config struct {
	Env  string
	Port int

	// Persistence endpoint. The URI scheme selects the backend.
	StoreURI      string
	MongoDatabase string

	GoogleClientID string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit  int
	AuthRateWindow time.Duration

	CORSOrigins  []string
	MaxBodyBytes int64

	OTLPEndpoint string
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")

	secret := getEnv("JWT_SECRET", "")
	if secret == "" && env == "dev" {
		secret = devJWTSecret
	}

	return Config{
		Env:            env,
		Port:           getEnvInt("PORT", 3000),
		StoreURI:       getEnv("MONGODB_URI", ""),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "expensehub"),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		JWTSecret:      secret,
		JWTTTL:         getEnvDuration("JWT_TTL", 7*24*time.Hour),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: getEnvDuration("AUTH_RATE_WINDOW", time.Minute),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// StoreBackend returns "mongo", "postgres" or "memory" depending on the
// StoreURI scheme, or "" when the scheme is not recognised.
func (c Config) StoreBackend() string {
	u, err := url.Parse(c.StoreURI)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return "mongo"
	case "postgres", "postgresql":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return ""
	}
}

// GoogleEnabled reports whether federated sign-in is configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != ""
}

// Validate returns every configuration problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.StoreURI == "" {
		problems = append(problems, "MONGODB_URI is required")
	} else if c.StoreBackend() == "" {
		problems = append(problems, "MONGODB_URI must use a mongodb://, mongodb+srv://, postgres:// or memory:// scheme")
	}

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required outside dev")
	}
	if c.JWTTTL <= 0 {
		problems = append(problems, "JWT_TTL must be positive")
	}

	if c.AuthRateLimit < 1 || c.AuthRateWindow <= 0 {
		problems = append(problems, "AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive")
	}

	if c.MaxBodyBytes <= 0 {
		problems = append(problems, "MAX_BODY_BYTES must be positive")
	}

	if len(problems) > 0 {
		return errors.New("config validation failed: " + strings.Join(problems, "; "))
	}
	return nil
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fallback
		}
		return d
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ClientConfig configures the command-line client.
type ClientConfig struct {
	BaseURL   string
	StatePath string
	Timeout   time.Duration
}

func LoadClient() ClientConfig {
	return ClientConfig{
		BaseURL:   strings.TrimRight(getEnv("EXPENSEHUB_URL", "http://localhost:3000/api"), "/"),
		StatePath: getEnv("EXPENSEHUB_STATE", defaultStatePath()),
		Timeout:   getEnvDuration("EXPENSEHUB_TIMEOUT", 10*time.Second),
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "expensehub.db"
	}
	return filepath.Join(dir, "expensehub", "state.db")
}
