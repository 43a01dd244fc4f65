package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"livestock-ledger/internal/adapters/auth/identity"
	"livestock-ledger/internal/adapters/storage/sqlstore"
	"livestock-ledger/internal/config"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"
	"livestock-ledger/internal/ports/auth"
	"livestock-ledger/internal/router"
)

//go:generate swag init -g main.go -d ./,../../internal -o ../../docs

// @title Livestock Ledger API
// @version 1.0
// @description Ventas, muertes, ordeñes y series analíticas de animales.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey DebugUser
// @in header
// @name X-Debug-User-ID
func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		App:    cfg.AppName,
	})

	var db *sqlstore.DB
	if cfg.DatabaseURL != "" {
		opened, err := sqlstore.Open(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Error("database unavailable", map[string]any{"error": err})
			os.Exit(1)
		}
		defer opened.Close()
		db = opened
		log.Info("using sql store", map[string]any{"driver": string(db.Driver())})
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store", nil)
	}

	var verifier auth.AuthVerifier
	if cfg.AuthVerifyURL != "" {
		v, err := identity.NewVerifier(identity.Config{BaseURL: cfg.AuthVerifyURL, APIKey: cfg.AuthAPIKey})
		if err != nil {
			log.Error("identity verifier", map[string]any{"error": err})
			os.Exit(1)
		}
		verifier = v
	} else {
		log.Warn("AUTH_VERIFY_URL not set, accepting X-Debug-User-ID headers", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier:       verifier, // nil = modo dev
		DB:                 db,
		Logger:             log,
		Metrics:            metrics.New(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LedgerTxTimeout:    cfg.LedgerTxTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", map[string]any{"error": err})
	}
}
