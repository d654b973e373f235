// Package main is the entry point for the SARA voice ordering assistant.
package main

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ristoranteadam/sara/internal/audit"
	"github.com/ristoranteadam/sara/internal/config"
	"github.com/ristoranteadam/sara/internal/customer"
	"github.com/ristoranteadam/sara/internal/database"
	"github.com/ristoranteadam/sara/internal/delivery"
	"github.com/ristoranteadam/sara/internal/dialogue"
	"github.com/ristoranteadam/sara/internal/handler"
	"github.com/ristoranteadam/sara/internal/kv"
	"github.com/ristoranteadam/sara/internal/logging"
	"github.com/ristoranteadam/sara/internal/menu"
	"github.com/ristoranteadam/sara/internal/metrics"
	"github.com/ristoranteadam/sara/internal/middleware"
	"github.com/ristoranteadam/sara/internal/order"
	"github.com/ristoranteadam/sara/internal/overrides"
	"github.com/ristoranteadam/sara/internal/prompts"
	"github.com/ristoranteadam/sara/internal/repository"
	"github.com/ristoranteadam/sara/internal/session"
	"github.com/ristoranteadam/sara/internal/shutdown"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zapLogger := logger.Zap()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	location, err := time.LoadLocation(cfg.Restaurant.Timezone)
	if err != nil {
		zapLogger.Warn("unknown restaurant timezone, defaulting to UTC", zap.String("tz", cfg.Restaurant.Timezone), zap.Error(err))
		location = time.UTC
	}

	appMetrics := metrics.NewMetrics()
	businessEvents := metrics.NewBusinessEventLogger(zapLogger)

	zapLogger.Info("starting sara server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Environment),
	)

	ctx := context.Background()

	db, err := database.New(ctx, &cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	migrator := database.NewMigrator(db.Pool, zapLogger)
	if err := migrator.MigrateFromDir(ctx, "migrations"); err != nil {
		zapLogger.Fatal("failed to run database migrations", zap.Error(err))
	}
	zapLogger.Info("database migrations completed successfully")

	store, err := kv.New(cfg.Redis.URL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to runtime key-value store", zap.Error(err))
	}

	menuIndex, err := menu.Load(cfg.Paths.MenuPath)
	if err != nil {
		zapLogger.Warn("failed to load menu catalogue, falling back to an empty menu", zap.Error(err))
	}

	deliveryConfig, err := delivery.Load(cfg.Paths.DeliveryConfigPath)
	if err != nil {
		zapLogger.Warn("failed to load delivery config, falling back to defaults", zap.Error(err))
		deliveryConfig = delivery.Config{SLA: delivery.Default().SLA}
	}

	promptSet, err := prompts.Load(cfg.Paths.PromptsPath)
	if err != nil {
		zapLogger.Warn("failed to load prompt templates, responses will show placeholder text", zap.Error(err))
	}

	customerDirectory := customer.New(cfg.Paths.CustomerCSVPath)

	sessionStore := session.NewStore(store)
	overridesStore := overrides.NewStore(store, zapLogger)
	orderRepo := repository.NewOrderRepository(db.Pool)
	orderService := order.NewService(orderRepo, store)
	auditLogger := audit.NewLogger(zapLogger)

	controller := &dialogue.Controller{
		Sessions:  sessionStore,
		Menu:      menuIndex,
		Delivery:  deliveryConfig,
		Customers: customerDirectory,
		Orders:    orderService,
		Prompts:   promptSet,
		Location:  location,
		Now:       func() time.Time { return time.Now().In(location) },
		Logger:    zapLogger,
	}

	webhookHandler := handler.NewWebhookHandler(handler.WebhookHandlerConfig{
		Controller: controller,
		Overrides:  overridesStore,
		Audit:      auditLogger,
		Events:     businessEvents,
		Telephony:  cfg.Telephony,
		Logger:     zapLogger,
	})

	adminHandler := handler.NewAdminHandler(handler.AdminHandlerConfig{
		Overrides: overridesStore,
		Store:     store,
		Location:  location,
		Now:       func() time.Time { return time.Now().In(location) },
		AuthUser:  cfg.Admin.BasicAuthUser,
		AuthPass:  cfg.Admin.BasicAuthPassword,
		Logger:    zapLogger,
	})

	callsHandler := handler.NewCallsHandler(handler.CallsHandlerConfig{
		Menu:      menuIndex,
		Delivery:  deliveryConfig,
		Customers: customerDirectory,
		Orders:    orderService,
		Overrides: overridesStore,
		Events:    businessEvents,
		Now:       func() time.Time { return time.Now().In(location) },
		Logger:    zapLogger,
	})

	correlation := middleware.NewRequestCorrelation(zapLogger)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, zapLogger)

	r := chi.NewRouter()
	r.Use(correlation.Middleware)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(zapLogger))
	r.Use(middleware.Recovery(zapLogger))
	r.Use(chimiddleware.Compress(5))
	r.Use(appMetrics.Middleware)
	r.Use(middleware.BodySizeLimiterForm())
	r.Use(middleware.RateLimit(rateLimiter))

	r.Handle("/metrics", appMetrics.Handler())
	r.Get("/healthz", adminHandler.HandleHealthz)
	r.Get("/runtime/status", adminHandler.HandleRuntimeStatus)
	r.Post("/admin/toggles", adminHandler.HandleToggles)
	r.Get("/crm/lookup", callsHandler.HandleCRMLookup)
	r.Post("/order/submit", callsHandler.HandleOrderSubmit)

	r.Post("/voice/incoming", webhookHandler.HandleIncoming)
	r.Post("/voice/step", webhookHandler.HandleStep)
	r.Post("/voice/handle", webhookHandler.HandleTurn)
	r.Post("/voice/status", webhookHandler.HandleStatus)

	logLevelHandler := handler.NewLogLevelHandler(logger.AtomicLevel(), zapLogger)
	r.Handle("/admin/log-level", requireBasicAuth(cfg.Admin.BasicAuthUser, cfg.Admin.BasicAuthPassword, logLevelHandler))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	shutdownCoord := shutdown.NewCoordinator(&shutdown.Config{
		Timeout: 30 * time.Second,
	}, zapLogger)

	metricsStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				if stats != nil {
					appMetrics.UpdateDBConnections(int(stats.TotalConns()), int(stats.AcquiredConns()))
				}
			case <-metricsStop:
				return
			}
		}
	}()
	shutdownCoord.RegisterFunc(shutdown.PhaseCleanup, "metrics-updater", func(ctx context.Context) error {
		close(metricsStop)
		return nil
	})

	shutdownCoord.RegisterFunc(shutdown.PhaseDrain, "http-server", func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})
	shutdownCoord.RegisterFunc(shutdown.PhaseCleanup, "kv-store", func(ctx context.Context) error {
		return store.Close()
	})
	shutdownCoord.RegisterFunc(shutdown.PhaseCleanup, "database", func(ctx context.Context) error {
		db.Close()
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("received shutdown signal")

	if err := shutdownCoord.Shutdown(ctx); err != nil {
		zapLogger.Error("shutdown completed with errors", zap.Error(err))
	}
}

// initLogger builds the runtime-adjustable logger, honoring APP_ENV for the
// initial level and encoder choice.
func initLogger() (*logging.Logger, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	cfg := &logging.Config{
		Level:       "info",
		Format:      "json",
		Environment: env,
	}
	if env != "production" {
		cfg.Level = "debug"
		cfg.Format = "console"
	}

	return logging.New(cfg)
}

// requireBasicAuth gates an operator-only handler behind the same
// credentials as POST /admin/toggles.
func requireBasicAuth(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, ok := r.BasicAuth()
		userMatch := subtle.ConstantTimeCompare([]byte(gotUser), []byte(user)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(gotPass), []byte(pass)) == 1
		if !ok || !userMatch || !passMatch {
			w.Header().Set("WWW-Authenticate", `Basic realm="sara-admin"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
