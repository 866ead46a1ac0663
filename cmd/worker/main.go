package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"agora/internal/app/bootstrap"

	_ "go.uber.org/automaxprocs"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Relay the vote record outbox until SIGINT/SIGTERM.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	app, err := bootstrap.BuildWorker()
	if err != nil {
		logger.Error("bootstrap worker failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("worker shutdown close failed", "error", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.Error("agora worker stopped with error", "error", err.Error())
		os.Exit(1)
	}
}
