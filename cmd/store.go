package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"ignita/config"
	"ignita/config/database"
	"ignita/internal/document/model"
	"ignita/internal/document/repository"
	"ignita/internal/document/service"
	"ignita/pkg/logger"
)

// store is a service.DocumentStore that can also seed workspaces.
type store interface {
	service.DocumentStore
	CreateWorkspace(ctx context.Context, ws *model.Workspace) error
}

// openStore connects the store named by cfg.StoreDriver, migrating SQL
// schemas first. The returned func releases it.
func openStore(cfg *config.Config) (store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := preparePostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewDocumentRepository(db), db.Close, nil
	case config.DriverSQLite:
		repo, err := repository.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.DB.Close, nil
	case config.DriverMemory:
		return repository.NewMemoryRepository(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

var (
	connectPostgres = database.Connect
	migratePostgres = repository.MigratePostgres
)

// preparePostgres waits for the database to answer before migrating it, so
// a server that is still starting gets the connect retries.
func preparePostgres(url string) (*sql.DB, error) {
	db, err := connectPostgres(url)
	if err != nil {
		return nil, err
	}
	if err := migratePostgres(url); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// loadConfig reads the configuration and initialises the logger with its
// level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}
