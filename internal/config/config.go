// Package config carga la configuración del servicio desde variables de entorno.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"livestock-ledger/internal/platform/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Vacío => store in-memory. postgres://... => pgx. sqlite://path o path => SQLite.
	DatabaseURL string

	LogLevel  logger.Level
	LogFormat logger.Format
	AppName   string

	CORSAllowedOrigins []string

	// Servicio de identidad. Vacío => modo dev (headers X-Debug-*).
	AuthVerifyURL string
	AuthAPIKey    string

	// Timeout aplicado a cada transacción del ledger.
	LedgerTxTimeout time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	ShutdownTimeout  time.Duration
}

// Load lee el entorno. Antes carga los archivos .env indicados (default ".env");
// las variables ya definidas en el proceso no se pisan.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)

	return Config{
		Port:               getenv("PORT", "8080"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:           logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		LogFormat:          logger.ParseFormat(os.Getenv("LOG_FORMAT")),
		AppName:            getenv("APP_NAME", "livestock-ledger"),
		CORSAllowedOrigins: getenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AuthVerifyURL:      strings.TrimSpace(os.Getenv("AUTH_VERIFY_URL")),
		AuthAPIKey:         strings.TrimSpace(os.Getenv("AUTH_API_KEY")),
		LedgerTxTimeout:    getenvDuration("LEDGER_TX_TIMEOUT", 5*time.Second),
		HTTPReadTimeout:    getenvDuration("HTTP_READ_TIMEOUT", 5*time.Second),
		HTTPWriteTimeout:   getenvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout:    getenvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// Addr devuelve la dirección de escucha (":8080").
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Acepta "5s", "250ms" o un entero en segundos.
func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func getenvList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
