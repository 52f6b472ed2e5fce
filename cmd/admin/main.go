package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/credential"
	"github.com/noah-isme/spi-admin-api/internal/repository"
	"github.com/noah-isme/spi-admin-api/internal/service"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	"github.com/noah-isme/spi-admin-api/pkg/config"
	"github.com/noah-isme/spi-admin-api/pkg/database"
	"github.com/noah-isme/spi-admin-api/pkg/logger"
	"github.com/noah-isme/spi-admin-api/pkg/redisclient"
)

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

	db, err := database.NewPostgres(cfg.Database)
	errAndDie(logr, err)
	defer db.Close()

	redisClient, err := redisclient.New(cfg.Redis)
	errAndDie(logr, err)
	sessions := repository.NewSessionRepository(redisClient, logr)
	defer sessions.Close() //nolint:errcheck

	auditSvc := service.NewAuditService(repository.NewAuditRepository(db), logr)
	cli := commandLine{
		db:     db,
		admins: service.NewAdminService(repository.NewAdminRepository(db), sessions, credential.NewHasher(cfg.Security.BcryptCost), validation.New(), auditSvc, logr),
		logger: logr,
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logr.Error("command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}

func errAndDie(logr *zap.Logger, err error) {
	if err != nil {
		logr.Fatal("admin cli setup failed", zap.Error(err))
	}
}
