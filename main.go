package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"civix-api/config"
	"civix-api/database"
	adminapi "civix-api/internal/api/admin"
	authapi "civix-api/internal/api/auth"
	contributorsapi "civix-api/internal/api/contributors"
	issuesapi "civix-api/internal/api/issues"
	profileapi "civix-api/internal/api/profile"
	routes "civix-api/internal/app/http"
	"civix-api/internal/infra/csrf"
	"civix-api/internal/infra/logger"
	"civix-api/internal/infra/metrics"
	"civix-api/internal/infra/sanitizer"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logr := logger.New(cfg.LogLevel, nil)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		logr.WithError(err).Fatal("database unavailable")
	}
	logr.Info("connected and migrated")

	csrfStore, err := csrf.NewStore(cfg.CSRFSecrets,
		csrf.WithCookieName(cfg.CSRFCookieName),
		csrf.WithSecure(cfg.IsProduction()),
		csrf.WithDomain(cfg.CookieDomain),
	)
	if err != nil {
		logr.WithError(err).Fatal("invalid CSRF configuration")
	}
	exempt, err := csrf.ParseRules(cfg.CSRFExemptPaths)
	if err != nil {
		logr.WithError(err).Fatal("invalid CSRF exemption list")
	}
	if cfg.WebhookSecret == "" {
		logr.Warn("WEBHOOK_SECRET not set, webhooks will be refused")
	}

	r := routes.New(routes.Options{
		Logger:  logr,
		Metrics: metrics.New(),

		Sanitizer:    sanitizer.New(),
		MaxBodyBytes: cfg.MaxBodyBytes,
		CSRFStore:    csrfStore,
		CSRFExempt:   exempt,

		JWTSecret:     []byte(cfg.JWTSecret),
		WebhookSecret: []byte(cfg.WebhookSecret),
		CORSOrigins:   cfg.CORSOrigins,
		Production:    cfg.IsProduction(),

		Issues:       issuesapi.NewGormStore(db),
		Users:        authapi.NewGormStore(db),
		Profiles:     profileapi.NewGormStore(db),
		Contributors: contributorsapi.NewGormStore(db),
		Admin:        adminapi.NewGormStore(db),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
