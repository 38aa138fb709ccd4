package db

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

type SQLiteConfig struct {
	BusyTimeoutMs int
	WAL           bool
}

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type Config struct {
	DSN         string
	Pool        PoolConfig
	SQLite      SQLiteConfig
	AutoMigrate bool
}

func DefaultConfig() Config {
	return Config{
		Pool: PoolConfig{
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		SQLite: SQLiteConfig{
			BusyTimeoutMs: 5000,
			WAL:           true,
		},
		AutoMigrate: true,
	}
}

// ResolveSQLiteDSN returns dsn when set, otherwise fallbackPath after
// making sure its directory exists.
func ResolveSQLiteDSN(dsn, fallbackPath string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn != "" {
		return dsn, nil
	}
	fallbackPath = strings.TrimSpace(fallbackPath)
	if fallbackPath == "" {
		return "", os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(fallbackPath), 0o700); err != nil {
		return "", err
	}
	return fallbackPath, nil
}
