package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Proof-social/proof-social-instagram-auth/internal/app"
	"github.com/Proof-social/proof-social-instagram-auth/internal/config"
	"github.com/Proof-social/proof-social-instagram-auth/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	defer func() { _ = logger.Sync() }()

	log := logger.L()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize app", zap.Error(err))
	}

	go func() {
		if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	log.Info("instagram-auth-service started", zap.String("port", cfg.AppPort))

	<-ctx.Done() // wait for Ctrl+C

	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Fatal("graceful shutdown failed", zap.Error(err))
	}

	log.Info("instagram-auth-service stopped cleanly")
}
