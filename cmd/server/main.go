package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	catalogapp "github.com/exoorder/backend/internal/application/catalog"
	customerapp "github.com/exoorder/backend/internal/application/customer"
	orderapp "github.com/exoorder/backend/internal/application/order"
	prefapp "github.com/exoorder/backend/internal/application/preference"
	"github.com/exoorder/backend/internal/domain/order"
	"github.com/exoorder/backend/internal/infrastructure/cache"
	"github.com/exoorder/backend/internal/infrastructure/config"
	"github.com/exoorder/backend/internal/infrastructure/logger"
	"github.com/exoorder/backend/internal/infrastructure/remote"
	"github.com/exoorder/backend/internal/infrastructure/telemetry"
	"github.com/exoorder/backend/internal/interfaces/http/handler"
	"github.com/exoorder/backend/internal/interfaces/http/middleware"
	"github.com/exoorder/backend/internal/interfaces/http/router"
)

const (
	appVersion         = "1.0.0"
	slowQueryThreshold = 200 * time.Millisecond
	shutdownTimeout    = 30 * time.Second
)

func main() {
	// A local .env file may supply EXO_ variables; real environment wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OTLP log export needs a logger of its own, so the application logger
	// is rebuilt once the bridge core exists.
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		bridged, err := logger.New(logCfg, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			log.Fatal("Failed to attach log export", zap.Error(err))
		}
		log = bridged
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ExoOrder backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter("exo-order")

	// Preference storage
	storeOpts := []cache.PreferenceStoreFactoryOption{
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Storage.FallbackToMemory),
	}
	if meterProvider.IsEnabled() {
		dbMetrics, err := telemetry.NewDBMetrics(meter, slowQueryThreshold)
		if err != nil {
			log.Warn("Database metrics unavailable", zap.Error(err))
		} else {
			storeOpts = append(storeOpts, cache.WithDBMetrics(dbMetrics))
		}
	}
	store, err := cache.NewPreferenceStoreFactory(cfg, storeOpts...).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to open preference store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing preference store", zap.Error(err))
		}
	}()

	preferences := prefapp.NewService(store, log)
	if err := preferences.Load(ctx); err != nil {
		log.Warn("Failed to load stored preferences", zap.Error(err))
	}
	if preferences.APIKey() == "" {
		log.Warn("No API key configured; submissions are refused until one is set")
	}

	// Remote backend
	client, err := remote.NewClient(remote.Config{
		BaseURL:            cfg.Remote.BaseURL,
		Timeout:            cfg.Remote.Timeout,
		BreakerFailures:    cfg.Remote.BreakerFailures,
		BreakerOpenTimeout: cfg.Remote.BreakerOpenTimeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to create remote client", zap.Error(err))
	}

	// Application services
	banks := order.DefaultBankDirectory()
	registry := orderapp.NewRegistry(cfg.Form.IdleTimeout, time.Now)
	submitter := orderapp.NewSubmitter(client, banks, log,
		orderapp.WithLegacyItemFormat(cfg.Remote.LegacyItemFormat),
		orderapp.WithTracerProvider(otel.GetTracerProvider()),
	)
	formService := orderapp.NewFormService(registry, banks, submitter, preferences, log)
	customerService := customerapp.NewService(client, preferences, log)
	productService := catalogapp.NewProductService(client, preferences, log)

	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meter,
			Logger:          log,
			SessionProvider: registry,
		})
		if err != nil {
			log.Warn("Business metrics unavailable", zap.Error(err))
		} else {
			submitter.SetBusinessMetrics(businessMetrics)
			customerService.SetBusinessMetrics(businessMetrics)
			productService.SetBusinessMetrics(businessMetrics)
			businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
			defer businessMetrics.Stop()
		}
	}

	// Cached products are served immediately; with an empty cache the remote
	// list is fetched in the background and appears when the fetch completes.
	productService.Start(ctx)

	// Handlers
	handlers := router.Handlers{
		System:    handler.NewSystemHandler(cfg.App.Name, appVersion, preferences, registry),
		Settings:  handler.NewSettingsHandler(preferences),
		Catalog:   handler.NewCatalogHandler(productService),
		Banks:     handler.NewBankHandler(banks),
		OrderForm: handler.NewOrderFormHandler(formService),
		Customer:  handler.NewCustomerHandler(customerService),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id first so every later layer can tag with it,
	// then panic recovery, tracing, access log, metrics and the HTTP guards.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meter, log))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	router.NewRouter(engine).Register(router.APIGroups(handlers)...).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Telemetry pipelines flush independently
	var g errgroup.Group
	g.Go(func() error { return meterProvider.Shutdown(shutdownCtx) })
	g.Go(func() error { return tracerProvider.Shutdown(shutdownCtx) })
	g.Go(func() error { return logProvider.Shutdown(shutdownCtx) })
	if err := g.Wait(); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
