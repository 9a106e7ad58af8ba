package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authservice/backend/internal/config"
	authdomain "authservice/backend/internal/domain/auth"
	"authservice/backend/internal/httpserver"
	"authservice/backend/internal/infrastructure/memory"
	"authservice/backend/internal/infrastructure/postgres"
	"authservice/backend/internal/infrastructure/token"
	"authservice/backend/internal/logging"
	authusecase "authservice/backend/internal/usecase/auth"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	rootCtx := context.Background()
	var users authdomain.UserRepository
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory user store; users are lost on restart")
		users = memory.NewUserRepository()
	default:
		db, err := postgres.New(rootCtx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(rootCtx); err != nil {
			logger.Fatalf("failed to run database migrations: %v", err)
		}
		users = postgres.NewUserRepository(db.Pool)
	}

	tokenManager := token.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)
	authService := authusecase.NewService(users, tokenManager)

	server := httpserver.NewServer(cfg, authService, logger)
	logger.WithField("addr", server.Addr()).
		WithField("store", cfg.StoreDriver).
		Info("HTTP server listening")

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				logger.Info("HTTP server closed")
				return
			}
			logger.Fatalf("server error: %v", err)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	} else {
		logger.Info("graceful shutdown completed")
	}
}
