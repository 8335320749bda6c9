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

type Config struct {
	// HTTP Server
	Port string

	// Ledger
	BaseCurrency string

	// Snapshot backend selection
	DataBackend    string
	LedgerFilePath string
	SQLiteDBPath   string

	// Exchange rate service
	ExchangeAPIURL  string
	ExchangeAPIKey  string
	ExchangeTimeout time.Duration

	// AMQP ledger events (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		BaseCurrency: getEnv("BASE_CURRENCY", "SGD"),

		DataBackend:    getEnv("DATA_BACKEND", "file"),
		LedgerFilePath: getEnv("LEDGER_FILE_PATH", "./data/ledger.json"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/tracker.db"),

		ExchangeAPIURL:  getEnv("EXCHANGE_API_URL", "https://v6.exchangerate-api.com/v6"),
		ExchangeAPIKey:  getEnv("EXCHANGE_API_KEY", ""),
		ExchangeTimeout: getEnvDuration("EXCHANGE_TIMEOUT", 10*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tracker"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate base currency (3-letter code, user-declared)
	cur := strings.ToUpper(strings.TrimSpace(c.BaseCurrency))
	if len(cur) != 3 {
		errors = append(errors, fmt.Sprintf("invalid base currency '%s': must be a 3-letter code", c.BaseCurrency))
	} else {
		for _, r := range cur {
			if r < 'A' || r > 'Z' {
				errors = append(errors, fmt.Sprintf("invalid base currency '%s': must be a 3-letter code", c.BaseCurrency))
				break
			}
		}
	}

	// Validate data backend
	validBackends := []string{"file", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate backend paths and make sure their directories exist
	switch c.DataBackend {
	case "file":
		if c.LedgerFilePath == "" {
			errors = append(errors, "ledger file path cannot be empty when using file backend")
		} else {
			errors = append(errors, ensureDir(filepath.Dir(c.LedgerFilePath), "ledger file")...)
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			errors = append(errors, ensureDir(filepath.Dir(c.SQLiteDBPath), "SQLite database")...)
		}
	}

	// Validate exchange service configuration
	if c.ExchangeAPIURL == "" {
		errors = append(errors, "exchange API URL cannot be empty")
	} else if parsed, err := url.Parse(c.ExchangeAPIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid exchange API URL '%s': %v", c.ExchangeAPIURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid exchange API URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}
	if c.ExchangeTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid exchange timeout %v: must be at least 1 second", c.ExchangeTimeout))
	} else if c.ExchangeTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid exchange timeout %v: must be at most 1 minute", c.ExchangeTimeout))
	}

	// Validate AMQP URL if provided
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

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func ensureDir(dir, what string) []string {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return []string{fmt.Sprintf("cannot create %s directory '%s': %v", what, dir, err)}
		}
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
