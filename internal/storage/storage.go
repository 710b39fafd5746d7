// Package storage opens the bun database for the configured driver and
// applies the embedded schema migrations.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var (
	ErrUnsupportedDriver = errors.New("storage: unsupported driver")
	ErrDSNRequired       = errors.New("storage: dsn is required")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the database.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// NormalizeDriver maps driver aliases onto DriverSQLite or DriverPostgres.
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3", "":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx", "pg":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
}

// Open connects to the database and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	driver, err := NormalizeDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrDSNRequired
	}

	var db *bun.DB
	switch driver {
	case DriverPostgres:
		sqlDB, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("database open: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("database open: %w", err)
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
		// in-memory databases are private to their connection
		db.SetMaxOpenConns(1)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return db, nil
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *bun.DB, driver string) error {
	normalized, err := NormalizeDriver(driver)
	if err != nil {
		return err
	}
	dialect := "postgres"
	if normalized == DriverSQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrationsFS exposes the embedded migration files.
func MigrationsFS() embed.FS {
	return embedMigrations
}
