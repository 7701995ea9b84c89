package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once at bootstrap
// and injected; there is no package-level instance.
type Config struct {
	// Database configuration
	DatabaseURL string

	// Payment gateway configuration
	PaymentProvider    string        // "mock" or "mercadopago"
	PaymentAccessToken string        // external provider credential
	MockAutoConfirm    time.Duration // mock only: delayed auto-confirmation, 0 disables

	// Environment: "development", "production" or "test"
	Environment string
}

// Load reads configuration from the environment, with optional .env support
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		PaymentProvider:    os.Getenv("PAYMENT_PROVIDER"),
		PaymentAccessToken: os.Getenv("PAYMENT_ACCESS_TOKEN"),
		Environment:        os.Getenv("ENVIRONMENT"),
	}

	if seconds := os.Getenv("MOCK_AUTO_CONFIRM_SECONDS"); seconds != "" {
		parsed, err := strconv.Atoi(seconds)
		if err != nil {
			return nil, fmt.Errorf("invalid MOCK_AUTO_CONFIRM_SECONDS: %w", err)
		}
		config.MockAutoConfirm = time.Duration(parsed) * time.Second
	}

	if config.Environment == "" {
		config.Environment = "development"
	}
	if config.PaymentProvider == "" {
		config.PaymentProvider = "mock"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.PaymentProvider != "mock" && config.PaymentAccessToken == "" {
			return nil, fmt.Errorf("PAYMENT_ACCESS_TOKEN is required for provider %q", config.PaymentProvider)
		}
	}

	return config, nil
}
