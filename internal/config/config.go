package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tipjar/internal/price"
	"tipjar/internal/stellar"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// Tip history
	HistoryLimit int

	// Stellar
	RecipientAddress  string
	HorizonURL        string
	NetworkPassphrase string

	// Price feed
	PriceAPIURL string
	PriceTTL    time.Duration

	// AMQP (empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8082"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tipjar.db"),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 50),

		RecipientAddress:  getEnv("RECIPIENT_ADDRESS", ""),
		HorizonURL:        getEnv("HORIZON_URL", stellar.TestnetHorizonURL),
		NetworkPassphrase: getEnv("NETWORK_PASSPHRASE", stellar.TestnetPassphrase),

		PriceAPIURL: getEnv("PRICE_API_URL", price.DefaultAPIURL),
		PriceTTL:    getEnvDuration("PRICE_TTL", price.DefaultTTL),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tipjar"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "tip_events"),
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

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
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

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate history limit
	if c.HistoryLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid history limit %d: must be at least 1", c.HistoryLimit))
	} else if c.HistoryLimit > 1000 {
		errors = append(errors, fmt.Sprintf("invalid history limit %d: must be at most 1000", c.HistoryLimit))
	}

	// Validate recipient address (Stellar ed25519 public key)
	if c.RecipientAddress == "" {
		errors = append(errors, "recipient address is required (set RECIPIENT_ADDRESS)")
	} else if len(c.RecipientAddress) != 56 || !strings.HasPrefix(c.RecipientAddress, "G") {
		errors = append(errors, fmt.Sprintf("invalid recipient address '%s': must be a 56-character key starting with G", c.RecipientAddress))
	}

	// Validate Horizon URL
	if parsedURL, err := url.Parse(c.HorizonURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid Horizon URL '%s': %v", c.HorizonURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid Horizon URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.NetworkPassphrase == "" {
		errors = append(errors, "network passphrase cannot be empty")
	}

	// Validate price feed configuration
	if parsedURL, err := url.Parse(c.PriceAPIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid price API URL '%s': %v", c.PriceAPIURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid price API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.PriceTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid price TTL %v: must be at least 1 second", c.PriceTTL))
	} else if c.PriceTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid price TTL %v: must be at most 24 hours", c.PriceTTL))
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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
