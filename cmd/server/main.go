package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/academy/backend/internal/application/billing"
	"github.com/academy/backend/internal/infrastructure/auth"
	"github.com/academy/backend/internal/infrastructure/cache"
	"github.com/academy/backend/internal/infrastructure/config"
	"github.com/academy/backend/internal/infrastructure/idgen"
	"github.com/academy/backend/internal/infrastructure/logger"
	"github.com/academy/backend/internal/infrastructure/persistence"
	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/academy/backend/internal/interfaces/http/handler"
	"github.com/academy/backend/internal/interfaces/http/middleware"
	"github.com/academy/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Academy Billing API
//	@version		1.0
//	@description	Enrollment ledger, payment allocation and collections reporting

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token issued by the identity provider. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Providers come up before the final logger so the OTLP log core can be teed in
	otelProviders, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:     cfg.Telemetry.ServiceName,
		ServiceVersion:  version,
		Endpoint:        cfg.Telemetry.CollectorEndpoint,
		Insecure:        cfg.Telemetry.Insecure,
		Traces:          cfg.Telemetry.Enabled,
		SamplingRatio:   cfg.Telemetry.SamplingRatio,
		Metrics:         cfg.Telemetry.MetricsEnabled,
		MetricsInterval: cfg.Telemetry.MetricsInterval,
		Logs:            cfg.Telemetry.LogsEnabled,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	log, err := logger.New(logCfg, otelProviders.LogCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting academy billing",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal("Invalid business timezone", zap.Error(err))
	}

	meter := otelProviders.Meter()

	billingMetrics, err := telemetry.NewBillingMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create billing metrics", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected")

	repos := persistence.NewRepositories(db.DB)

	components, err := cache.NewFactory(cfg.Redis, cfg.Billing, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to initialize balance cache", zap.Error(err))
	}
	defer func() {
		if err := components.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	references, err := idgen.NewSnowflakeReferenceGenerator(cfg.Billing.ReferenceNode)
	if err != nil {
		log.Fatal("Failed to create reference generator", zap.Error(err))
	}

	checker := auth.NewRoleCapabilityChecker(nil)
	jwtService := auth.NewJWTService(cfg.JWT)

	withMetrics := billingapp.WithMetrics(billingMetrics)
	ledgerService := billingapp.NewLedgerService(
		repos.Enrollments, repos.Charges, repos.Payments, repos.Allocations, repos.Balances,
		components.BalanceCache, checker,
	)
	paymentService := billingapp.NewPaymentService(
		ledgerService, repos.Payments, repos.Allocations,
		components.BalanceCache, components.PostingLock, references, checker,
		withMetrics,
	)
	chargeService := billingapp.NewChargeService(
		repos.Enrollments, repos.Charges, repos.ChargeTypes, components.BalanceCache, checker,
		withMetrics,
	)
	worklistService := billingapp.NewWorklistService(
		repos.Enrollments, repos.Charges, repos.Balances, repos.Guardians, repos.Teams, checker, loc,
	)
	dashboardService := billingapp.NewDashboardService(
		repos.Enrollments, repos.Charges, repos.Payments, repos.Balances, checker, loc,
	)
	reportService := billingapp.NewReportService(
		repos.Enrollments, repos.Charges, repos.Payments, repos.Balances, checker, loc,
	)

	billingHandler := handler.NewBillingHandler(ledgerService, paymentService, chargeService)
	collectionsHandler := handler.NewCollectionsHandler(worklistService, dashboardService, reportService)

	checks := map[string]handler.ReadinessCheck{"database": db.Ping}
	if components.Client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return components.Client.Ping(ctx).Err()
		}
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, checks)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	// Order matters: the request id must exist before the request logger,
	// and the tracing span before anything that annotates it.
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     otelProviders.TracingEnabled(),
		}),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		httpMetrics,
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
	)

	var writeLimit gin.HandlerFunc
	if cfg.HTTP.WriteRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.WriteRateLimit, time.Minute)
		go limiter.Run(ctx)
		writeLimit = middleware.RateLimitByActor(limiter)
		log.Info("Write rate limiting enabled", zap.Int("per_minute", cfg.HTTP.WriteRateLimit))
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log

	router.RegisterSystemRoutes(engine, systemHandler)
	router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAPIMiddleware(middleware.JWTAuthMiddlewareWithConfig(jwtConfig)),
	).
		Register(router.BillingRoutes(billingHandler, writeLimit)).
		Register(router.CollectionsRoutes(collectionsHandler)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := otelProviders.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
