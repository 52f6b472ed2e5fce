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
	"go.uber.org/zap"

	_ "github.com/noah-isme/spi-admin-api/api/swagger"
	"github.com/noah-isme/spi-admin-api/internal/credential"
	"github.com/noah-isme/spi-admin-api/internal/handler"
	"github.com/noah-isme/spi-admin-api/internal/repository"
	"github.com/noah-isme/spi-admin-api/internal/router"
	"github.com/noah-isme/spi-admin-api/internal/service"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	"github.com/noah-isme/spi-admin-api/pkg/config"
	"github.com/noah-isme/spi-admin-api/pkg/database"
	"github.com/noah-isme/spi-admin-api/pkg/jobs"
	"github.com/noah-isme/spi-admin-api/pkg/logger"
	"github.com/noah-isme/spi-admin-api/pkg/redisclient"
	"github.com/noah-isme/spi-admin-api/pkg/storage"
)

// @title SPI Admin API
// @version 1.0.0
// @description Administration API for student profiles and their children
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name spi_session

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, logr, "up"); err != nil {
			return err
		}
	}

	redisClient, err := redisclient.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	sessionRepo := repository.NewSessionRepository(redisClient, logr)
	defer sessionRepo.Close() //nolint:errcheck

	adminRepo := repository.NewAdminRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	childRepo := repository.NewChildRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	hasher := credential.NewHasher(cfg.Security.BcryptCost)
	validator := validation.New()

	var metricsSvc *service.MetricsService
	if cfg.Features.Metrics {
		metricsSvc = service.NewMetricsService()
	}

	auditSvc := service.NewAuditService(auditRepo, logr)
	if cfg.Audit.Async {
		auditSvc.StartAsync(ctx, jobs.QueueConfig{
			Workers:    cfg.Audit.Workers,
			MaxRetries: cfg.Audit.MaxRetries,
			RetryDelay: cfg.Audit.RetryDelay,
			Logger:     logr,
		})
	}
	defer auditSvc.Close()

	photoStore, err := storage.NewLocalStorage(cfg.Storage.PhotoDir)
	if err != nil {
		return err
	}
	statsSvc := service.NewStatsService(statsRepo)
	adminSvc := service.NewAdminService(adminRepo, sessionRepo, hasher, validator, auditSvc, logr)
	studentSvc := service.NewStudentService(studentRepo, validator, auditSvc, logr)
	childSvc := service.NewChildService(childRepo, studentRepo, validator, auditSvc, logr)
	reportSvc := service.NewReportService(studentRepo, childRepo, statsSvc, auditSvc, auditSvc, metricsSvc, logr)
	photoSvc := service.NewPhotoService(studentRepo, photoStore, storage.NewSignedURLSigner(cfg.Session.Secret, cfg.Storage.LinkTTL), auditSvc, logr, service.PhotoConfig{
		MaxBytes: cfg.Storage.MaxPhotoBytes,
		LinkBase: cfg.APIPrefix + "/files/photos",
	})
	authSvc := service.NewAuthService(adminRepo, sessionRepo, hasher, validator, auditSvc, metricsSvc, logr, service.AuthConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Issuer: "spi-admin-api",
	})

	if cfg.Bootstrap.Enabled() {
		admin, err := adminSvc.EnsureBootstrap(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Password, cfg.Bootstrap.FullName)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if admin != nil {
			logr.Info("bootstrap admin created", zap.String("username", admin.Username))
		}
	}

	engine := router.New(router.Deps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authSvc,
		Metrics: metricsSvc,
		Handlers: router.Handlers{
			Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
				Name:   cfg.Session.CookieName,
				Secure: cfg.Session.CookieSecure,
			}),
			Admins:    handler.NewAdminHandler(adminSvc),
			Students:  handler.NewStudentHandler(studentSvc),
			Children:  handler.NewChildHandler(childSvc),
			Dashboard: handler.NewDashboardHandler(statsSvc, auditSvc, reportSvc),
			Health:    handler.NewHealthHandler(statsSvc, metricsSvc, logr),
			Photos:    handler.NewPhotoHandler(photoSvc),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
