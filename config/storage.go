package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageBackend selects where per-device key/value state is kept.
type StorageBackend string

const (
	// StorageBackendRedis keeps device state in Redis with a sliding TTL.
	StorageBackendRedis StorageBackend = "redis"
	// StorageBackendPostgres keeps device state in the device_storage table.
	StorageBackendPostgres StorageBackend = "postgres"
	// StorageBackendMemory keeps device state in process memory (development only).
	StorageBackendMemory StorageBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (b *StorageBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "postgres", "memory":
		*b = StorageBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: redis, postgres, memory)", v)
	}
}

// StorageConfig controls the device storage backend.
type StorageConfig struct {
	Backend StorageBackend `env:"BACKEND" envDefault:"redis"`

	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"educonnect:device:"`

	// TTL expires idle device namespaces. Zero disables expiry.
	TTL time.Duration `env:"TTL" envDefault:"720h"`

	// SweepInterval is how often expired Postgres rows are purged. Zero disables the sweeper.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`

	// SweepBatchSize caps rows deleted per sweep statement.
	SweepBatchSize int `env:"SWEEP_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies defaults to storage configuration values.
func (c *StorageConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = StorageBackendRedis
	}
	if c.KeyPrefix = strings.TrimSpace(c.KeyPrefix); c.KeyPrefix == "" {
		c.KeyPrefix = "educonnect:device:"
	}
	if c.TTL < 0 {
		c.TTL = 0
	}
	if c.SweepInterval < 0 {
		c.SweepInterval = 0
	}
	if c.SweepBatchSize <= 0 {
		c.SweepBatchSize = 1000
	}
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"educonnect"`
	Password string `env:"PASSWORD"                envDefault:"educonnect"`
	Name     string `env:"NAME"                    envDefault:"educonnect"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
