package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fieldpilot/dispatch-api/api/swagger"
	"github.com/fieldpilot/dispatch-api/internal/handler"
	"github.com/fieldpilot/dispatch-api/internal/marketplace"
	"github.com/fieldpilot/dispatch-api/internal/middleware"
	"github.com/fieldpilot/dispatch-api/internal/models"
	"github.com/fieldpilot/dispatch-api/internal/poller"
	"github.com/fieldpilot/dispatch-api/internal/repository"
	"github.com/fieldpilot/dispatch-api/internal/service"
	"github.com/fieldpilot/dispatch-api/pkg/cache"
	"github.com/fieldpilot/dispatch-api/pkg/config"
	"github.com/fieldpilot/dispatch-api/pkg/database"
	"github.com/fieldpilot/dispatch-api/pkg/logger"
	corsmiddleware "github.com/fieldpilot/dispatch-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fieldpilot/dispatch-api/pkg/middleware/requestid"
)

// @title FieldPilot Dispatch API
// @version 1.0.0
// @description Work-order auto-dispatch engine: matching configuration, evaluation history and marketplace integration
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	cronRepo := repository.NewCronRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "dispatch-api",
	})
	cronSvc := service.NewCronService(cronRepo, validate, logr)
	exportSvc := service.NewExportService(evaluationRepo, logr, cfg.Exports.MaxRows)

	marketplaceClient := marketplace.NewClient(cfg.Marketplace, logr, metricsSvc)
	dedupe := service.NewRedisDedupe(redisClient, cfg.Dispatch.DedupeTTL)
	dispatchSvc := service.NewDispatchService(
		cronRepo,
		assignmentRepo,
		evaluationRepo,
		marketplaceClient,
		dedupe,
		metricsSvc,
		logr,
		cfg.Dispatch.HistoryRetention,
		cfg.Dispatch.WorkerConcurrency,
	)

	authHandler := handler.NewAuthHandler(authSvc)
	cronHandler := handler.NewCronHandler(cronSvc, dispatchSvc)
	evaluationHandler := handler.NewEvaluationHandler(evaluationRepo, exportSvc, metricsSvc)
	dispatchHandler := handler.NewDispatchHandler(dispatchSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	crons := authed.Group("/crons")
	crons.GET("", cronHandler.List)
	crons.POST("", adminOnly, cronHandler.Create)
	crons.GET("/:id", cronHandler.Get)
	crons.PUT("/:id", adminOnly, cronHandler.Update)
	crons.DELETE("/:id", adminOnly, cronHandler.Delete)
	crons.POST("/:id/evaluate", cronHandler.Evaluate)

	evaluations := authed.Group("/evaluations")
	evaluations.GET("", evaluationHandler.List)
	evaluations.GET("/export", evaluationHandler.Export)
	evaluations.GET("/metrics", evaluationHandler.Metrics)

	authed.POST("/dispatch/run", dispatchHandler.Run)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatchSvc.Start(rootCtx)

	var cronPoller *poller.Poller
	if cfg.Dispatch.Enabled {
		cronPoller, err = poller.New(cfg.Dispatch.PollSchedule, dispatchSvc, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to build poller", "error", err)
		}
		if err := cronPoller.Start(); err != nil {
			logr.Sugar().Fatalw("failed to start poller", "error", err)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "dispatch_enabled", cfg.Dispatch.Enabled)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutdown signal received")

	if cronPoller != nil {
		cronPoller.Stop()
	}
	dispatchSvc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
