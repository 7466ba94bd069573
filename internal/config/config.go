package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppName string
	AppPort string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// DefaultGateway is the online gateway credit card / wallet payments
	// are routed to when no explicit mapping exists.
	DefaultGateway string

	KashierAPIKey     string
	KashierMerchantID string
	KashierMode       string

	PaymobSecretKey  string
	PaymobPublicKey  string
	PaymobHMACSecret string
	PaymobMode       string

	RedirectURL       string
	FailureURL        string
	WebhookBaseURL    string
	InstapayUploadURL string

	AdminJWTSecret string
}

// LoadConfig reads the environment (optionally seeded from .env) and fails
// hard when a required value is missing. Gateway secrets are never allowed
// to silently default to empty strings.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:  os.Getenv("APP_ENV"),
		AppName: os.Getenv("APP_NAME"),
		AppPort: os.Getenv("APP_PORT"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),

		DefaultGateway: os.Getenv("PAYMENT_GATEWAY"),

		KashierAPIKey:     os.Getenv("KASHIER_API_KEY"),
		KashierMerchantID: os.Getenv("KASHIER_MERCHANT_ID"),
		KashierMode:       os.Getenv("KASHIER_MODE"),

		PaymobSecretKey:  os.Getenv("PAYMOB_SECRET_KEY"),
		PaymobPublicKey:  os.Getenv("PAYMOB_PUBLIC_KEY"),
		PaymobHMACSecret: os.Getenv("PAYMOB_HMAC_SECRET"),
		PaymobMode:       os.Getenv("PAYMOB_MODE"),

		RedirectURL:       os.Getenv("PAYMENT_REDIRECT_URL"),
		FailureURL:        os.Getenv("PAYMENT_FAILURE_URL"),
		WebhookBaseURL:    os.Getenv("WEBHOOK_BASE_URL"),
		InstapayUploadURL: os.Getenv("INSTAPAY_UPLOAD_URL"),

		AdminJWTSecret: os.Getenv("SECRET_KEY"),
	}

	if cfg.DefaultGateway == "" {
		cfg.DefaultGateway = "kashier"
	}
	if cfg.KashierMode == "" {
		cfg.KashierMode = "test"
	}
	if cfg.PaymobMode == "" {
		cfg.PaymobMode = "test"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	var missing []string
	required := map[string]string{
		"APP_NAME":            cfg.AppName,
		"DB_HOST":             cfg.DBHost,
		"DB_USER":             cfg.DBUser,
		"DB_NAME":             cfg.DBName,
		"DB_PORT":             cfg.DBPort,
		"KASHIER_API_KEY":     cfg.KashierAPIKey,
		"KASHIER_MERCHANT_ID": cfg.KashierMerchantID,
		"PAYMOB_SECRET_KEY":   cfg.PaymobSecretKey,
		"PAYMOB_HMAC_SECRET":  cfg.PaymobHMACSecret,
	}
	for key, val := range required {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
