package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
)

// Open connects to the database described by the configuration and verifies the connection.
//
// SQLite databases are limited to a single open connection. Every transaction against the file is
// therefore serialized, and a check followed by a write inside one transaction cannot interleave
// with another writer.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var dsn string
	switch cfg.Driver {
	case "sqlite":
		dsn = sqliteDSN(cleanPath(cfg.Path))
	case "sqlite3":
		dsn = withParams(cleanPath(cfg.Path), "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	case "mysql":
		dsn = mysqlDSN(cfg.Host, cfg.User, cfg.Password, cfg.Name)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	if cfg.Driver == "mysql" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Hour)
	} else {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}
	return db, nil
}

// cleanPath leaves in-memory database names untouched and cleans file paths.
func cleanPath(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return filepath.Clean(path)
}

// withParams appends query parameters to a SQLite path that may already carry some.
func withParams(path, params string) string {
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}
