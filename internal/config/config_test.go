package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("APP_NAME", "Soukly")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("KASHIER_API_KEY", "kashier_secret")
	t.Setenv("KASHIER_MERCHANT_ID", "MID-100")
	t.Setenv("PAYMOB_SECRET_KEY", "paymob_secret")
	t.Setenv("PAYMOB_HMAC_SECRET", "paymob_hmac")
}

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("APP_ENV", "test")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("PAYMENT_GATEWAY", "paymob")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "Soukly", cfg.AppName)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "9090", cfg.AppPort)
		assert.Equal(t, "paymob", cfg.DefaultGateway)
		assert.Equal(t, "kashier_secret", cfg.KashierAPIKey)
		assert.Equal(t, "MID-100", cfg.KashierMerchantID)
		assert.Equal(t, "paymob_hmac", cfg.PaymobHMACSecret)
		assert.Equal(t, "test", cfg.AppEnv)
	})

	t.Run("Defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("PAYMENT_GATEWAY", "")
		t.Setenv("KASHIER_MODE", "")
		t.Setenv("PAYMOB_MODE", "")
		t.Setenv("APP_PORT", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "kashier", cfg.DefaultGateway)
		assert.Equal(t, "test", cfg.KashierMode)
		assert.Equal(t, "test", cfg.PaymobMode)
		assert.Equal(t, "8080", cfg.AppPort)
	})

	t.Run("Missing gateway secret is fatal", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("PAYMOB_HMAC_SECRET", "")

		cfg, err := LoadConfig()
		assert.Nil(t, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PAYMOB_HMAC_SECRET")
	})

	t.Run("Missing app name is fatal", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("APP_NAME", "")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APP_NAME")
	})

	t.Run("Missing variables are listed sorted", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("PAYMOB_SECRET_KEY", "")
		t.Setenv("DB_HOST", "")
		t.Setenv("KASHIER_API_KEY", "")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_HOST, KASHIER_API_KEY, PAYMOB_SECRET_KEY")
	})
}
