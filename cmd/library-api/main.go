package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/library-admin-api/api/swagger"
	"github.com/noah-isme/library-admin-api/internal/handler"
	"github.com/noah-isme/library-admin-api/internal/repository"
	"github.com/noah-isme/library-admin-api/internal/service"
	"github.com/noah-isme/library-admin-api/pkg/cache"
	"github.com/noah-isme/library-admin-api/pkg/config"
	"github.com/noah-isme/library-admin-api/pkg/database"
	"github.com/noah-isme/library-admin-api/pkg/logger"
)

// @title Library Admin API
// @version 1.0.0
// @description Catalog, membership, loan ledger and reporting for a library admin panel
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	readiness := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	validate := service.NewValidator()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	reportRepo := repository.NewReportRepository(db)

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Dashboard.CacheTTL, logr, true)
	}
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Repo:   reportRepo,
		Cache:  cacheSvc,
		Logger: logr,
		Config: service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	bookSvc := service.NewBookService(bookRepo, dashboardSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, dashboardSvc, validate, logr)
	loanSvc := service.NewLoanService(service.LoanServiceParams{
		Repo:        loanRepo,
		Invalidator: dashboardSvc,
		Metrics:     metrics,
		Validator:   validate,
		Logger:      logr,
		Config:      service.LoanConfig{PeriodDays: cfg.Loans.PeriodDays, OverdueFine: cfg.Loans.OverdueFine},
	})
	exportSvc := service.NewExportService(loanSvc, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	if cfg.Bootstrap.AdminEmail != "" {
		created, err := authSvc.EnsureAdmin(ctx, service.EnsureAdminRequest{
			Email:    cfg.Bootstrap.AdminEmail,
			Password: cfg.Bootstrap.AdminPassword,
			FullName: cfg.Bootstrap.AdminName,
		})
		if err != nil {
			logr.Fatal("failed to seed admin account", zap.Error(err))
		}
		if created {
			logr.Info("admin account seeded", zap.String("email", cfg.Bootstrap.AdminEmail))
		}
	}

	deps := routerDeps{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
		Audit:          userRepo,
		Auth:           handler.NewAuthHandler(authSvc),
		Books:          handler.NewBookHandler(bookSvc),
		Students:       handler.NewStudentHandler(studentSvc),
		Loans:          handler.NewLoanHandler(loanSvc, exportSvc),
		Dashboard:      handler.NewDashboardHandler(dashboardSvc),
		Ops:            handler.NewMetricsHandler(metrics, readiness),
	}
	if cfg.Env != config.EnvProduction {
		deps.Docs = ginSwagger.WrapHandler(swaggerFiles.Handler)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
