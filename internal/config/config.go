package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Import   ImportConfig   `yaml:"import"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ImportConfig holds importer settings shared by the catalog and inventory
// commands.
type ImportConfig struct {
	// BatchSize bounds junction-row buffers flushed per COPY.
	BatchSize int `yaml:"batch_size" env:"IMPORT_BATCH_SIZE" env-default:"5000"`
	// KeepGoing makes the inventory importer skip unresolvable rows and
	// report them at the end instead of aborting the run.
	KeepGoing bool `yaml:"keep_going" env:"IMPORT_KEEP_GOING" env-default:"false"`
	// LockKey is the advisory-lock key guarding schema migration.
	LockKey int64 `yaml:"lock_key" env:"IMPORT_LOCK_KEY" env-default:"0"`
}
