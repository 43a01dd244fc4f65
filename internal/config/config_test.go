package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"livestock-ledger/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
		"CORS_ALLOWED_ORIGINS", "LEDGER_TX_TIMEOUT", "AUTH_VERIFY_URL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.AuthVerifyURL)
	assert.Equal(t, logger.Info, cfg.LogLevel)
	assert.Equal(t, logger.FormatText, cfg.LogFormat)
	assert.Equal(t, "livestock-ledger", cfg.AppName)
	assert.Equal(t, 5*time.Second, cfg.LedgerTxTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "sqlite://data/ledger.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LEDGER_TX_TIMEOUT", "3")
	t.Setenv("HTTP_WRITE_TIMEOUT", "750ms")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "sqlite://data/ledger.db", cfg.DatabaseURL)
	assert.Equal(t, logger.Debug, cfg.LogLevel)
	assert.Equal(t, logger.FormatJSON, cfg.LogFormat)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.LedgerTxTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.HTTPWriteTimeout)
}

func TestLoad_DotEnvFile(t *testing.T) {
	keys := []string{"PORT", "DATABASE_URL", "AUTH_VERIFY_URL", "LEDGER_TX_TIMEOUT"}
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"PORT=7070\n"+
			"DATABASE_URL=sqlite://ledger.db\n"+
			"AUTH_VERIFY_URL=http://identity.local\n"+
			"LEDGER_TX_TIMEOUT=2s\n"), 0o600))

	// El proceso tiene prioridad sobre el archivo.
	require.NoError(t, os.Setenv("PORT", "9999"))

	cfg := Load(path)
	assert.Equal(t, ":9999", cfg.Addr())
	assert.Equal(t, "sqlite://ledger.db", cfg.DatabaseURL)
	assert.Equal(t, "http://identity.local", cfg.AuthVerifyURL)
	assert.Equal(t, 2*time.Second, cfg.LedgerTxTimeout)
}
