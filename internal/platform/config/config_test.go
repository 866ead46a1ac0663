package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.DatabaseDriver != DriverPostgres || cfg.SessionPollInterval != time.Minute || cfg.RemoteCallTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileYAMLThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agora.yaml")
	content := []byte(`
serviceName: agora-test
databaseDriver: SQLite
sqlitePath: /tmp/agora.db
sessionPollInterval: 15s
kafkaBrokers: [" broker-a:9092 ", ""]
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_POLL_INTERVAL", "30s")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "agora-test" || cfg.SQLitePath != "/tmp/agora.db" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.DatabaseDriver != DriverSQLite {
		t.Fatalf("driver must be normalised, got %q", cfg.DatabaseDriver)
	}
	if cfg.HTTPPort != "9090" || cfg.SessionPollInterval != 30*time.Second {
		t.Fatalf("environment must override yaml: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "broker-a:9092" {
		t.Fatalf("brokers must be trimmed, got %q", cfg.KafkaBrokers)
	}
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")
	if _, err := LoadFile(""); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("REMOTE_CALL_TIMEOUT", "0s")
	if _, err := LoadFile(""); err == nil {
		t.Fatalf("expected non-positive timeout error")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
