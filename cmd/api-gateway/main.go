package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/prepacolles/colle-scheduler/api/swagger"
	internalhandler "github.com/prepacolles/colle-scheduler/internal/handler"
	internalmiddleware "github.com/prepacolles/colle-scheduler/internal/middleware"
	"github.com/prepacolles/colle-scheduler/internal/repository"
	"github.com/prepacolles/colle-scheduler/internal/service"
	"github.com/prepacolles/colle-scheduler/pkg/cache"
	"github.com/prepacolles/colle-scheduler/pkg/config"
	"github.com/prepacolles/colle-scheduler/pkg/database"
	"github.com/prepacolles/colle-scheduler/pkg/jobs"
	"github.com/prepacolles/colle-scheduler/pkg/logger"
	corsmiddleware "github.com/prepacolles/colle-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/prepacolles/colle-scheduler/pkg/middleware/requestid"
	"github.com/prepacolles/colle-scheduler/pkg/storage"
)

// @title Colle Scheduler API
// @version 0.1.0
// @description Catalog upload, CP-SAT planning generation, and export pipeline for weekly oral exam ("colle") scheduling.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(authRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "colle-scheduler",
		Audience:           []string{"colle-scheduler-clients"},
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
	authRoutes.POST("/reset-password", authHandler.ResetPassword)
	protectedAuth := authRoutes.Group("")
	protectedAuth.Use(internalmiddleware.JWT(authSvc))
	protectedAuth.POST("/logout", authHandler.Logout)
	protectedAuth.POST("/change-password", authHandler.ChangePassword)
	protectedAuth.GET("/me", authHandler.Me)

	var redisClient interface{ Close() error }
	var analysisCacheRepo *repository.CacheRepository
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("analysis cache disabled", "error", err)
	} else {
		redisClient = client
		analysisCacheRepo = repository.NewCacheRepository(client, logr)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	catalogRepo := repository.NewColleCatalogRepository(db)
	planningRepo := repository.NewCollePlanningRepository(db)
	exportJobRepo := repository.NewColleExportJobRepository(db)

	catalogSvc := service.NewColleCatalogService(catalogRepo, nil, logr, service.ColleCatalogServiceConfig{MaxCSVBytes: cfg.Catalogs.MaxCSVBytes})
	analysisCache := service.NewCacheService(analysisCacheRepo, metricsSvc, cfg.Planning.AnalysisCacheTTL, logr, analysisCacheRepo != nil)
	planningCfg := service.CollePlanningServiceConfig{
		AnalysisCacheTTL:  cfg.Planning.AnalysisCacheTTL,
		SolverTierTimeout: cfg.Solver.TierTimeout,
	}
	planningSvc := service.NewCollePlanningService(catalogSvc, planningRepo, analysisCache, nil, logr, planningCfg)

	if cfg.Exports.SignedURLSecret == "" {
		logr.Sugar().Fatal("exports signed url secret not configured")
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	exportSigner := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewColleExportService(planningRepo, catalogSvc, exportStore, exportSigner, service.ColleExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	exportWorker := service.NewColleExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
	workers := cfg.Exports.WorkerConcurrency
	if workers <= 0 {
		workers = 1
	}
	queueCfg := jobs.QueueConfig{
		Workers:    workers,
		BufferSize: workers * 4,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	}
	queueCtx, cancel := context.WithCancel(context.Background())
	exportQueue := jobs.NewQueue("colle-exports", exportWorker.Handle, queueCfg)
	exportQueue.Start(queueCtx)
	defer func() {
		cancel()
		exportQueue.Stop()
	}()

	exportJobSvc := service.NewColleExportJobService(exportJobRepo, exportQueue, exportSvc, logr, service.ColleExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})
	exportJobSvc.RecoverPendingJobs(queueCtx)
	exportJobSvc.StartCleanup(queueCtx)

	colleHandler := internalhandler.NewColleHandler(catalogSvc, planningSvc)
	colleExportHandler := internalhandler.NewColleExportHandler(exportJobSvc)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	colleGroup := secured.Group("/colle")
	colleGroup.POST("/catalogs", colleHandler.UploadCatalog)
	colleGroup.GET("/catalogs", colleHandler.ListCatalogs)
	colleGroup.GET("/catalogs/:id", colleHandler.GetCatalog)
	colleGroup.POST("/catalogs/:id/plannings", colleHandler.GeneratePlanning)
	colleGroup.GET("/catalogs/:id/plannings", colleHandler.ListPlannings)
	colleGroup.GET("/plannings/:id/analysis", colleHandler.AnalyzePlanning)
	colleGroup.POST("/plannings/:id/extend", colleHandler.ExtendPlanning)
	colleGroup.POST("/plannings/:id/exports", colleExportHandler.CreateExport)
	colleGroup.GET("/exports/:jobId", colleExportHandler.ExportStatus)
	colleGroup.GET("/exports/:jobId/download", colleExportHandler.DownloadExport)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
