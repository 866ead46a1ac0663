package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agora/internal/app/bootstrap"

	"go.uber.org/automaxprocs/maxprocs"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (registry + use cases + HTTP server).
// 3) Serve until SIGINT/SIGTERM, then drain.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		logger.Info(fmt.Sprintf(format, v...), "process", "api")
	})); err != nil {
		logger.Error("set GOMAXPROCS failed", "error", err.Error())
	}

	app, err := bootstrap.BuildAPI()
	if err != nil {
		logger.Error("bootstrap api failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("api shutdown close failed", "error", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Run(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("agora api stopped with error", "error", err.Error())
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.Error("api graceful shutdown failed", "error", err.Error())
		}
	}
}
