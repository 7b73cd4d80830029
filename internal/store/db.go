package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/log"

	// Register migrate's sqlite3 driver.
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"

	// Register sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ConnectionString returns the migrate connection string for the configured
// database.
func ConnectionString(cfg *config.Settings) string {
	return "sqlite3://" + cfg.DBPath
}

// Connect opens the configured SQLite database, creating its parent directory
// on first run.
func Connect(configProvider config.Provider, logger log.Logger) (*sql.DB, error) {
	dbPath := strings.TrimPrefix(configProvider.GetConfig().DBPath, "sqlite3://")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	logger.Debug("Connected to database", "path", dbPath)
	return db, nil
}

// Up applies all pending schema migrations.
func Up(configProvider config.Provider, logger log.Logger) error {
	m, err := migrationInstance(configProvider, logger)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("No new database migrations to apply")
			return nil
		}
		return err
	}
	logger.Info("Database migrations applied")
	return nil
}

func migrationInstance(configProvider config.Provider, logger log.Logger) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, ConnectionString(configProvider.GetConfig()))
	if err != nil {
		return nil, err
	}
	m.Log = &migrationLogger{logger: logger}
	return m, nil
}

type migrationLogger struct {
	logger log.Logger
}

func (l *migrationLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug("Migration: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrationLogger) Verbose() bool { return false }
