package statestore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arkankau/coffee-chatted/db"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

type Config struct {
	Driver string
	// Dir is the FileKV directory.
	Dir string
	// SQLite is used when Driver is sqlite. An empty DSN falls back to
	// SQLitePath.
	SQLite     db.Config
	SQLitePath string
	// Logger receives sqlite statement logs at debug.
	Logger *slog.Logger
}

// Open returns the KV backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverFile:
		return NewFileKV(cfg.Dir)
	case DriverSQLite:
		dsn, err := db.ResolveSQLiteDSN(cfg.SQLite.DSN, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("resolve sqlite dsn: %w", err)
		}
		dbCfg := cfg.SQLite
		dbCfg.DSN = dsn
		dbCfg.AutoMigrate = true
		gdb, err := db.Open(ctx, dbCfg, cfg.Logger)
		if err != nil {
			return nil, err
		}
		return NewSQLiteKV(gdb)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
