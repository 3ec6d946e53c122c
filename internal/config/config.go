package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// InsecureDefaultSecret is the fallback session-signing key used when
// SECRET_KEY is unset. Running with it is a known weakness; the server logs
// a warning instead of silently accepting it.
const InsecureDefaultSecret = "dev_secret_key"

type Config struct {
	// HTTP server
	Port      string
	SecretKey string

	// Database
	SQLiteDBPath string
	BusyTimeout  time.Duration

	// Sessions
	SessionTTL    time.Duration
	SweepInterval time.Duration

	// AMQP event publishing (optional, disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "5000"),
		SecretKey: getEnv("SECRET_KEY", InsecureDefaultSecret),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
		BusyTimeout:  getEnvDuration("SQLITE_BUSY_TIMEOUT", 5*time.Second),

		SessionTTL:    getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expansive"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),
	}
}

// UsingDefaultSecret reports whether the insecure fallback signing key is in
// use.
func (c *Config) UsingDefaultSecret() bool {
	return c.SecretKey == InsecureDefaultSecret
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SecretKey == "" {
		errors = append(errors, "secret key cannot be empty")
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.BusyTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid busy timeout %v: must be at least 1 second", c.BusyTimeout))
	} else if c.BusyTimeout > 10*time.Second {
		errors = append(errors, fmt.Sprintf("invalid busy timeout %v: must be at most 10 seconds", c.BusyTimeout))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SweepInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session sweep interval %v: must be at least 1 minute", c.SweepInterval))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
