package cmd

import (
	"database/sql"
	"fmt"

	"ignita/config"
	"ignita/internal/document/repository"
	"ignita/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema for the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		switch cfg.StoreDriver {
		case config.DriverPostgres:
			var db *sql.DB
			if db, err = preparePostgres(cfg.DatabaseURL); err == nil {
				err = db.Close()
			}
		case config.DriverSQLite:
			// Opening the repository migrates it.
			var repo *repository.DocumentRepository
			if repo, err = repository.NewSQLiteRepository(cfg.SQLitePath); err == nil {
				err = repo.DB.Close()
			}
		default:
			return fmt.Errorf("the %s store has no schema", cfg.StoreDriver)
		}
		if err != nil {
			return err
		}
		logger.Sugar.Infof("Migrated %s store", cfg.StoreDriver)
		return nil
	},
}
