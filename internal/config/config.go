package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Guardrail GuardrailConfig
	Admin     AdminConfig
	Alerts    AlertConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// GuardrailConfig carries the thresholds for both protection layers: the
// persistent limiter (MaxAttempts/LockoutDuration/AttemptReset) and the
// in-memory pattern detector (the rest).
type GuardrailConfig struct {
	MaxAttempts       int
	LockoutDuration   time.Duration
	AttemptReset      time.Duration
	VelocityWindow    time.Duration
	SoftLimit         int
	HardLimit         int
	HardBlockDuration time.Duration
	EnumerationWindow time.Duration
	CleanupInterval   time.Duration
}

type AdminConfig struct {
	InitialPIN  string
	TokenSecret string
	TokenExpiry time.Duration
}

// AlertConfig enables operator emails on new hard blocks. Alerts are off
// unless both the region and recipient are set.
type AlertConfig struct {
	AWSRegion   string
	FromAddress string
	ToAddress   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "isitopen"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 1)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
		},
		Guardrail: GuardrailConfig{
			MaxAttempts:       getEnvAsInt("RATE_LIMIT_MAX_ATTEMPTS", 3),
			LockoutDuration:   getEnvAsDuration("RATE_LIMIT_LOCKOUT", 1*time.Hour),
			AttemptReset:      getEnvAsDuration("RATE_LIMIT_ATTEMPT_RESET", 1*time.Hour),
			VelocityWindow:    getEnvAsDuration("GUARDRAIL_WINDOW", 60*time.Second),
			SoftLimit:         getEnvAsInt("GUARDRAIL_SOFT_LIMIT", 5),
			HardLimit:         getEnvAsInt("GUARDRAIL_HARD_LIMIT", 10),
			HardBlockDuration: getEnvAsDuration("GUARDRAIL_HARD_BLOCK", 1*time.Hour),
			EnumerationWindow: getEnvAsDuration("GUARDRAIL_ENUMERATION_WINDOW", 3*time.Minute),
			CleanupInterval:   getEnvAsDuration("GUARDRAIL_CLEANUP_INTERVAL", 1*time.Hour),
		},
		Admin: AdminConfig{
			InitialPIN:  getEnv("ADMIN_PIN", ""),
			TokenSecret: getEnv("ADMIN_TOKEN_SECRET", ""),
			TokenExpiry: getEnvAsDuration("ADMIN_TOKEN_EXPIRY", 12*time.Hour),
		},
		Alerts: AlertConfig{
			AWSRegion:   getEnv("ALERT_AWS_REGION", ""),
			FromAddress: getEnv("ALERT_FROM_ADDRESS", ""),
			ToAddress:   getEnv("ALERT_TO_ADDRESS", ""),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if cfg.Admin.TokenSecret == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN_SECRET is required")
	}
	if err := validateTokenSecret(cfg.Admin.TokenSecret, env); err != nil {
		return nil, err
	}

	if cfg.Guardrail.SoftLimit >= cfg.Guardrail.HardLimit {
		return nil, fmt.Errorf("GUARDRAIL_SOFT_LIMIT (%d) must be below GUARDRAIL_HARD_LIMIT (%d)",
			cfg.Guardrail.SoftLimit, cfg.Guardrail.HardLimit)
	}

	return cfg, nil
}

// AlertsEnabled reports whether hard-block alert emails are configured.
func (c *AlertConfig) AlertsEnabled() bool {
	return c.AWSRegion != "" && c.FromAddress != "" && c.ToAddress != ""
}

// validateTokenSecret enforces minimum strength for the admin token secret
func validateTokenSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("ADMIN_TOKEN_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("ADMIN_TOKEN_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
