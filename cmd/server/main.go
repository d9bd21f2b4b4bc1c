package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/corpfin/backend/internal/application/finance"
	reportapp "github.com/corpfin/backend/internal/application/report"
	"github.com/corpfin/backend/internal/infrastructure/auth"
	"github.com/corpfin/backend/internal/infrastructure/cache"
	"github.com/corpfin/backend/internal/infrastructure/config"
	"github.com/corpfin/backend/internal/infrastructure/logger"
	"github.com/corpfin/backend/internal/infrastructure/rendering"
	"github.com/corpfin/backend/internal/infrastructure/telemetry"
	"github.com/corpfin/backend/internal/interfaces/http/handler"
	"github.com/corpfin/backend/internal/interfaces/http/middleware"
	"github.com/corpfin/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			CorpFin Backend API
//	@version		1.0
//	@description	Corporate finance analytics API. Runs a linked three-statement projection model (income statement, balance sheet, cash flow) and renders projection reports.

//	@contact.name	API Support
//	@contact.url	https://github.com/corpfin/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CorpFin Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Initialize telemetry providers. Traces, metrics and logs share the
	// collector endpoint and the service resource.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log provider", zap.Error(err))
	}

	// Route application logs through the OTLP bridge alongside the
	// configured output
	if logsProvider.IsEnabled() {
		bridged, err := telemetry.CreateBridgedLoggerFromConfig(&telemetry.BaseLoggerConfig{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: cfg.Log.Output,
		}, logsProvider, cfg.Telemetry.ServiceName)
		if err != nil {
			log.Warn("Failed to bridge logs to the collector", zap.Error(err))
		} else {
			log = bridged
			log.Info("Log export to collector enabled",
				zap.String("endpoint", cfg.Telemetry.CollectorEndpoint),
			)
		}
	}

	// Continuous profiling. The solver is CPU bound and report rendering
	// allocates heavily, so the default profile selection covers both.
	profilerCfg := telemetry.ProfilerConfig{Enabled: false}
	if cfg.Profiling.Enabled {
		profilerCfg = telemetry.DefaultProfilerConfig(cfg.Profiling.ApplicationName, cfg.Profiling.ServerAddress)
		profilerCfg.BasicAuthUser = cfg.Profiling.BasicAuthUser
		profilerCfg.BasicAuthPassword = cfg.Profiling.BasicAuthPassword
	}
	profiler, err := telemetry.NewProfiler(profilerCfg, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	// Link spans to flame graphs when both tracing and profiling are on
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Initialize the projection result cache
	resultCache, err := cache.NewResultCacheFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize result cache", zap.Error(err))
	}
	defer func() {
		if err := resultCache.Close(); err != nil {
			log.Error("Error closing result cache", zap.Error(err))
		}
	}()

	// Projection metrics with periodic cache gauge sampling
	modelMetrics, err := telemetry.NewModelMetrics(telemetry.ModelMetricsConfig{
		Meter:         meterProvider.Meter("corpfin.model"),
		Logger:        log,
		CacheProvider: resultCache,
		CacheBackend:  cfg.Cache.Backend,
	})
	if err != nil {
		log.Fatal("Failed to initialize model metrics", zap.Error(err))
	}
	modelMetrics.StartPeriodicCollection(ctx, time.Minute)

	// Initialize services
	tokenService := auth.NewTokenService(cfg.Auth)

	projectionService := financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{
		SolverIterations:   cfg.Model.SolverIterations,
		MaxProjectionYears: cfg.Model.MaxProjectionYears,
		Cache:              resultCache,
		CacheTTL:           cfg.Cache.TTL,
		Metrics:            modelMetrics,
		Logger:             log,
	})

	var pdfRenderer rendering.PDFRenderer
	if cfg.Rendering.Enabled {
		pdfRenderer, err = rendering.NewPDFRenderer(cfg.Rendering, log)
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		log.Info("Report rendering enabled", zap.String("engine", cfg.Rendering.Engine))
	}

	reportService := reportapp.NewReportService(reportapp.ReportServiceConfig{
		Projections: projectionService,
		Renderer:    pdfRenderer,
		EngineName:  cfg.Rendering.Engine,
		Metrics:     modelMetrics,
		Logger:      log,
	})
	defer func() {
		if err := reportService.Close(); err != nil {
			log.Error("Error closing report renderer", zap.Error(err))
		}
	}()

	// Initialize handlers
	projectionHandler := handler.NewProjectionHandler(projectionService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(tokenService, cfg.Auth)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tracing / Metrics / Profiling - Telemetry instrumentation
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Telemetry middleware
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(reportService, cfg.Cache.Backend))

	// OpenAPI document and Swagger UI, both behind the same protection
	swaggerGuard := middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}, middleware.AuthMiddleware(tokenService))
	engine.GET("/api/v1/openapi.yaml", swaggerGuard, func(c *gin.Context) {
		c.File(cfg.Swagger.SpecPath)
	})
	engine.GET("/swagger/*any", swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/api/v1/openapi.yaml"),
	))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply service token authentication to API routes. When enforcement is
	// off, presented tokens are still parsed so token introspection and
	// client attribution in logs keep working.
	if cfg.Auth.Enabled {
		r.Use(middleware.AuthMiddlewareWithConfig(middleware.AuthMiddlewareConfig{
			TokenService: tokenService,
			SkipPaths: []string{
				"/api/v1/system/ping",
				"/api/v1/system/info",
				"/api/v1/auth/token",
			},
			Logger: log,
		}))
		log.Info("Service token authentication enabled")
	} else {
		r.Use(middleware.OptionalAuthMiddleware(tokenService))
	}

	// scoped wraps a route with scope enforcement when token auth is on
	scoped := func(scopes ...string) gin.HandlerFunc {
		if !cfg.Auth.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RequireAnyScope(scopes...)
	}

	// Model domain (projection runs, validation, rendered reports)
	modelRoutes := router.NewDomainGroup("model", "/model")
	modelRoutes.POST("/projections",
		scoped(auth.ScopeModelRun),
		projectionHandler.RunProjection)
	modelRoutes.POST("/projections/validate",
		scoped(auth.ScopeModelRun, auth.ScopeModelValidate),
		projectionHandler.ValidateProjection)
	modelRoutes.POST("/reports/projection",
		scoped(auth.ScopeModelRun, auth.ScopeReportsRender),
		reportHandler.RenderProjectionReport)

	// Auth domain. Token minting gets its own limiter so credential probing
	// cannot ride the general rate limit.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/token", middleware.AuthRateLimit(authLimiter), authHandler.IssueToken)
	authRoutes.GET("/token/info", authHandler.TokenInfo)

	// System domain
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(modelRoutes).
		Register(authRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Flush telemetry after the last request has drained. The log provider
	// goes last so the shutdown messages still reach the collector.
	modelMetrics.Stop()
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := meterProvider.Shutdown(flushCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(flushCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := logsProvider.Shutdown(flushCtx); err != nil {
		log.Error("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(reports *reportapp.ReportService, cacheBackend string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reportsStatus := "disabled"
		if reports.Enabled() {
			reportsStatus = "ok"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"reports": reportsStatus,
			"cache":   cacheBackend,
		})
	}
}
