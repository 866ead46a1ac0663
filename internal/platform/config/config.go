package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is centralized process configuration.
// Values resolve in order: built-in defaults, the YAML file named by
// AGORA_CONFIG_FILE, then environment variables.
type Config struct {
	ServiceName  string   `yaml:"serviceName"  envconfig:"SERVICE_NAME"`
	HTTPPort     string   `yaml:"httpPort"     envconfig:"HTTP_PORT"`
	KafkaBrokers []string `yaml:"kafkaBrokers" envconfig:"KAFKA_BROKERS"`

	DatabaseDriver string `yaml:"databaseDriver" envconfig:"DATABASE_DRIVER"`
	PostgresDSN    string `yaml:"postgresDsn"    envconfig:"POSTGRES_DSN"`
	SQLitePath     string `yaml:"sqlitePath"     envconfig:"SQLITE_PATH"`
	AutoMigrate    bool   `yaml:"autoMigrate"    envconfig:"AUTO_MIGRATE"`
	FixtureFile    string `yaml:"fixtureFile"    envconfig:"FIXTURE_FILE"`

	RemoteCallTimeout   time.Duration `yaml:"remoteCallTimeout"   envconfig:"REMOTE_CALL_TIMEOUT"`
	SessionPollInterval time.Duration `yaml:"sessionPollInterval" envconfig:"SESSION_POLL_INTERVAL"`
	OutboxPollInterval  time.Duration `yaml:"outboxPollInterval"  envconfig:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize     int           `yaml:"outboxBatchSize"     envconfig:"OUTBOX_BATCH_SIZE"`
	EnableOutboxRelay   bool          `yaml:"enableOutboxRelay"   envconfig:"ENABLE_OUTBOX_RELAY"`

	APIBaseURL string `yaml:"apiBaseUrl" envconfig:"API_BASE_URL"`
}

func Default() Config {
	return Config{
		ServiceName:         "agora",
		HTTPPort:            "8080",
		KafkaBrokers:        []string{"localhost:9092"},
		DatabaseDriver:      DriverPostgres,
		SQLitePath:          "file::memory:?cache=shared",
		RemoteCallTimeout:   10 * time.Second,
		SessionPollInterval: 60 * time.Second,
		OutboxPollInterval:  2 * time.Second,
		OutboxBatchSize:     100,
		EnableOutboxRelay:   true,
		APIBaseURL:          "http://localhost:8080",
	}
}

func Load() (Config, error) {
	return LoadFile(strings.TrimSpace(os.Getenv("AGORA_CONFIG_FILE")))
}

// LoadFile applies path (if non-empty) over the defaults, then the
// environment over both.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	var brokers []string
	for _, value := range c.KafkaBrokers {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	c.KafkaBrokers = brokers

	if c.RemoteCallTimeout <= 0 {
		return Config{}, fmt.Errorf("remote call timeout must be positive, got %s", c.RemoteCallTimeout)
	}
	if c.SessionPollInterval <= 0 {
		return Config{}, fmt.Errorf("session poll interval must be positive, got %s", c.SessionPollInterval)
	}
	if c.OutboxPollInterval <= 0 {
		c.OutboxPollInterval = 2 * time.Second
	}
	return c, nil
}
