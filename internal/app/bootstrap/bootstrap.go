package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	votingbooth "agora/contexts/governance/voting-booth"
	postgresadapter "agora/contexts/governance/voting-booth/adapters/postgres"
	workerapp "agora/contexts/governance/voting-booth/application/workers"
	contractsv1 "agora/contracts/gen/events/v1"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/fixtures"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
	"agora/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	database *db.Database
	logger   *slog.Logger
}

type WorkerApp struct {
	database     *db.Database
	bus          *messaging.Kafka
	outboxRelay  workerapp.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	database, repo, err := openRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	module := votingbooth.NewModule(votingbooth.Dependencies{
		Registry:          repo,
		Outbox:            repo,
		Clock:             postgresadapter.SystemClock{},
		IDGen:             postgresadapter.UUIDGenerator{},
		Metrics:           metrics.NewBooth(registry),
		RemoteCallTimeout: cfg.RemoteCallTimeout,
		Logger:            logger,
	})

	server := httpserver.New(module, registry, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		database: database,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if !cfg.EnableOutboxRelay {
		return nil, errors.New("outbox relay is disabled; set ENABLE_OUTBOX_RELAY=true to run the worker")
	}

	database, repo, err := openRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	return &WorkerApp{
		database: database,
		bus:      kafka,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

// openRegistry connects the configured driver, migrates when asked and loads
// the fixture file if one is configured.
func openRegistry(cfg config.Config, logger *slog.Logger) (*db.Database, *postgresadapter.Repository, error) {
	var (
		database *db.Database
		err      error
	)
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		database, err = db.OpenSQLite(cfg.SQLitePath)
	default:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, nil, errors.New("POSTGRES_DSN is required")
		}
		database, err = db.Connect(cfg.PostgresDSN)
	}
	if err != nil {
		return nil, nil, err
	}

	repo := postgresadapter.NewRepository(database.DB, logger)
	ctx := context.Background()
	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, nil, fmt.Errorf("migrate registry: %w", err)
		}
	}
	if cfg.FixtureFile != "" {
		file, err := fixtures.Load(cfg.FixtureFile)
		if err != nil {
			_ = database.Close()
			return nil, nil, err
		}
		if err := file.Apply(ctx, repo); err != nil {
			_ = database.Close()
			return nil, nil, fmt.Errorf("apply fixture: %w", err)
		}
		logger.Info("registry fixture loaded",
			"event", "bootstrap_fixture_loaded",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"path", cfg.FixtureFile,
			"election_count", len(file.Elections),
		)
	}
	return database, repo, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

func (a *APIApp) Close() error {
	if a.database != nil {
		return a.database.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.bus.Subscribe(ctx, contractsv1.TopicVoteRecordCreated, "voting-booth-audit-cg", w.auditVoteRecord); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Warn("outbox relay cycle failed",
				"event", "bootstrap_worker_relay_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// auditVoteRecord writes one structured log line per relayed vote record.
func (w *WorkerApp) auditVoteRecord(_ context.Context, event contractsv1.Envelope) error {
	var data contractsv1.VoteRecordCreated
	if err := event.DecodeData(&data); err != nil {
		return err
	}
	w.logger.Info("vote record relayed",
		"event", "bootstrap_vote_record_audit",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"event_id", event.EventID,
		"record_id", data.RecordID,
		"election_id", data.ElectionID,
		"session_id", data.SessionID,
		"item_id", data.ItemID,
		"weight", data.Weight,
	)
	return nil
}

func (w *WorkerApp) Close() error {
	if w.database != nil {
		return w.database.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
