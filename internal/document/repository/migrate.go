package repository

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"ignita/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationFS embed.FS

// MigratePostgres brings the schema at url up to date. It uses its own
// connection, closed before returning.
func MigratePostgres(url string) error {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("failed to open postgres database: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := newMigrate("migrations/postgres", "postgres", driver)
	if err != nil {
		db.Close()
		return err
	}
	defer m.Close()
	return up(m)
}

// MigrateSQLite migrates db in place. The handle stays open.
func MigrateSQLite(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := newMigrate("migrations/sqlite", "sqlite3", driver)
	if err != nil {
		return err
	}
	return up(m)
}

func newMigrate(dir, name string, driver database.Driver) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, name, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate migrations: %w", err)
	}
	return m, nil
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err == nil {
		logger.Sugar.Infof("Schema at version %d (dirty=%v)", version, dirty)
	}
	return nil
}
