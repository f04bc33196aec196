package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intelapp "github.com/bizlens/backend/internal/application/intel"
	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/infrastructure/cache"
	"github.com/bizlens/backend/internal/infrastructure/config"
	"github.com/bizlens/backend/internal/infrastructure/event"
	"github.com/bizlens/backend/internal/infrastructure/logger"
	"github.com/bizlens/backend/internal/infrastructure/persistence"
	"github.com/bizlens/backend/internal/infrastructure/scheduler"
	"github.com/bizlens/backend/internal/infrastructure/storage"
	"github.com/bizlens/backend/internal/infrastructure/telemetry"
	"github.com/bizlens/backend/internal/interfaces/http/handler"
	"github.com/bizlens/backend/internal/interfaces/http/middleware"
	"github.com/bizlens/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "github.com/bizlens/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			BizLens Intelligence API
//	@version		1.0
//	@description	Company intelligence profile aggregation service

//	@contact.name	API Support
//	@contact.url	https://github.com/bizlens/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// Initialize OpenTelemetry providers. Each is a no-op when telemetry
	// is disabled, so the wiring below stays unconditional.
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
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Export logs to the collector and replace the plain logger with a
	// bridged one when telemetry is on.
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logs provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logsProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logs provider", zap.Error(err))
		}
	}()
	if logsProvider.IsEnabled() {
		bridged, err := telemetry.CreateBridgedLoggerFromConfig(&telemetry.BaseLoggerConfig{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}, logsProvider, cfg.Telemetry.ServiceName)
		if err != nil {
			log.Warn("Failed to create OTEL-bridged logger, keeping plain logger", zap.Error(err))
		} else {
			log = bridged
		}
	}

	// Continuous profiling (pyroscope)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Telemetry.ProfilingEnabled,
		ServerAddress:       cfg.Telemetry.ProfilingEndpoint,
		ApplicationName:     cfg.App.Name,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
		if profiler.IsEnabled() && tracerProvider.IsEnabled() {
			if err := tracerProvider.EnableSpanProfiles(); err != nil {
				log.Warn("Failed to enable span profiles", zap.Error(err))
			}
		}
	}

	log.Info("Starting BizLens Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing and metrics
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}
	if meterProvider.IsEnabled() {
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("db.client"), telemetry.DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err != nil {
			log.Warn("Failed to create database metrics", zap.Error(err))
		} else if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
			log.Warn("Failed to register database metrics plugin", zap.Error(err))
		}
	}

	// Initialize repositories
	recordRepo := persistence.NewGormRecordRepository(db.DB)
	sourceRepo := persistence.NewGormDossierSourceRepository(db.DB)
	dossierRepo := persistence.NewGormDossierRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Profile cache: Redis preferred, in-memory fallback
	var cacheBackend intel.ProfileCache
	if cfg.Intel.CacheEnabled {
		factory := cache.NewProfileCacheFactory(cfg.Redis, cfg.Intel.CacheTTL, cache.WithLogger(log))
		created, err := factory.CreateCache()
		if err != nil {
			log.Fatal("Failed to create profile cache", zap.Error(err))
		}
		cacheBackend = created
		defer func() {
			if err := created.Close(); err != nil {
				log.Error("Error closing profile cache", zap.Error(err))
			}
		}()
	}

	// Initialize application services
	dossierService := intelapp.NewDossierService(sourceRepo, dossierRepo, eventBus, log)
	profileService := intelapp.NewProfileService(recordRepo, dossierService, cacheBackend, intelapp.ProfileServiceConfig{
		SourceTimeout: cfg.Intel.SourceTimeout,
		CacheTTL:      cfg.Intel.CacheTTL,
		CacheEnabled:  cfg.Intel.CacheEnabled,
	}, log)

	// Cross-instance invalidation over Redis Pub/Sub. Best effort: without
	// it, stale profiles on other instances expire by TTL.
	var broadcaster intelapp.ProfileInvalidationBroadcaster
	if cfg.Intel.CacheEnabled {
		invalidator, err := cache.NewRedisProfileInvalidator(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cache.WithInvalidatorLogger(log))
		if err != nil {
			log.Warn("Redis invalidation channel unavailable, skipping cross-instance invalidation", zap.Error(err))
		} else {
			defer func() {
				if err := invalidator.Close(); err != nil {
					log.Error("Error closing profile invalidator", zap.Error(err))
				}
			}()
			if err := invalidator.Subscribe(ctx, func(msg cache.ProfileInvalidationMessage) {
				profileService.InvalidateCachedProfile(context.Background(), msg.CompanyID)
			}); err != nil {
				log.Warn("Failed to subscribe to profile invalidations", zap.Error(err))
			}
			broadcaster = &redisBroadcaster{invalidator: invalidator}
		}
	}

	// Dossier rebuilt -> drop cached profile
	rebuiltHandler := intelapp.NewDossierRebuiltHandler(profileService, broadcaster, log)
	eventBus.Subscribe(rebuiltHandler)
	log.Info("Event handlers registered",
		zap.Strings("dossier_rebuilt_events", rebuiltHandler.EventTypes()),
	)

	// Archive storage backend
	var archiveStorage intelapp.ArchiveStorage
	if cfg.Archive.Backend == "s3" {
		archiveStorage, err = storage.NewS3ArchiveStorage(&cfg.Archive)
		if err != nil {
			log.Fatal("Failed to initialize S3 archive storage", zap.Error(err))
		}
		log.Info("Archive storage initialized",
			zap.String("backend", "s3"),
			zap.String("bucket", cfg.Archive.Bucket),
		)
	} else {
		archiveStorage, err = storage.NewLocalArchiveStorage(cfg.Archive.LocalDir)
		if err != nil {
			log.Fatal("Failed to initialize local archive storage", zap.Error(err))
		}
		log.Info("Archive storage initialized",
			zap.String("backend", "local"),
			zap.String("dir", cfg.Archive.LocalDir),
		)
	}
	archiveService := intelapp.NewArchiveService(profileService, archiveStorage, log)

	// Background refresh of stale dossier snapshots
	if cfg.Dossier.RefreshEnabled {
		executor := intelapp.NewRefreshExecutor(dossierService, log)

		schedulerConfig := scheduler.DefaultRefreshSchedulerConfig()
		if cfg.Dossier.RefreshWorkers > 0 {
			schedulerConfig.Workers = cfg.Dossier.RefreshWorkers
		}
		if cfg.Dossier.RefreshQueue > 0 {
			schedulerConfig.QueueSize = cfg.Dossier.RefreshQueue
		}
		refreshScheduler, err := scheduler.NewRefreshScheduler(schedulerConfig, executor, log)
		if err != nil {
			log.Fatal("Failed to create refresh scheduler", zap.Error(err))
		}
		if err := refreshScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start refresh scheduler", zap.Error(err))
		}
		defer func() {
			if err := refreshScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping refresh scheduler", zap.Error(err))
			}
		}()

		trigger, err := scheduler.NewRefreshTrigger(scheduler.RefreshTriggerConfig{
			CheckInterval: cfg.Dossier.RefreshInterval,
			StaleAfter:    cfg.Dossier.StaleAfter,
			BatchSize:     cfg.Dossier.RefreshBatch,
		}, refreshScheduler, dossierRepo, log)
		if err != nil {
			log.Fatal("Failed to create refresh trigger", zap.Error(err))
		}
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start refresh trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping refresh trigger", zap.Error(err))
			}
		}()

		log.Info("Dossier refresh scheduler started",
			zap.Int("workers", schedulerConfig.Workers),
			zap.Duration("check_interval", cfg.Dossier.RefreshInterval),
			zap.Duration("stale_after", cfg.Dossier.StaleAfter),
		)
	}

	// Domain metrics for profile builds and dossier rebuilds
	var profileMetrics *telemetry.ProfileMetrics
	if meterProvider.IsEnabled() {
		profileMetrics, err = telemetry.NewProfileMetrics(telemetry.ProfileMetricsConfig{
			Meter:           meterProvider.Meter("intel"),
			Logger:          log,
			StaleAfter:      cfg.Dossier.StaleAfter,
			DossierProvider: telemetry.NewGormDossierStatsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to create profile metrics", zap.Error(err))
			profileMetrics = nil
		} else {
			profileMetrics.StartPeriodicCollection(ctx, 5*time.Minute, cfg.Dossier.StaleAfter)
			defer profileMetrics.Stop()
		}
	}

	// Initialize HTTP handlers
	intelligenceHandler := handler.NewIntelligenceHandler(profileService, profileMetrics)
	dossierHandler := handler.NewDossierHandler(dossierService, profileMetrics)
	archiveHandler := handler.NewArchiveHandler(archiveService)
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
	// 4. Tracing/Metrics/Profiling - Observability (when enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if tracerProvider.IsEnabled() {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}
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

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.CompanyRoutes(intelligenceHandler, dossierHandler, archiveHandler)).
		Register(router.SystemRoutes(systemHandler))
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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

	log.Info("Server exited gracefully")
}

// redisBroadcaster publishes profile invalidations over Redis Pub/Sub
type redisBroadcaster struct {
	invalidator *cache.RedisProfileInvalidator
}

func (b *redisBroadcaster) Broadcast(ctx context.Context, companyID uuid.UUID, reason string) error {
	return b.invalidator.Publish(ctx, cache.ProfileInvalidationMessage{
		CompanyID: companyID,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	})
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
