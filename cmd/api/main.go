package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shinyyama/readinglist-backend/internal/config"
	"github.com/shinyyama/readinglist-backend/internal/db"
	"github.com/shinyyama/readinglist-backend/internal/logger"
	"github.com/shinyyama/readinglist-backend/internal/repository"
	"github.com/shinyyama/readinglist-backend/internal/server"
)

// Set via -ldflags "-X main.gitSHA=... -X main.buildTime=...".
var (
	gitSHA    string
	buildTime string
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	conn, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}

	srv := server.New(repository.NewStore(conn), cfg, zl, server.Options{GitSHA: gitSHA, BuildTime: buildTime})
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		zl.Info("starting server", zap.String("addr", addr), zap.String("db_driver", cfg.DBDriver))
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	zl.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
