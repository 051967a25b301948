package cmd

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"ignita/config"
	"ignita/internal/board"
	"ignita/internal/document/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := &config.Config{StoreDriver: driver, SQLitePath: filepath.Join(t.TempDir(), "ignita.db")}
			repo, closeStore, err := openStore(cfg)
			require.NoError(t, err)
			defer closeStore()

			ws := &model.Workspace{ID: uuid.NewString(), UserID: "alice", Name: "Home"}
			require.NoError(t, repo.CreateWorkspace(context.Background(), ws))
			owner, err := repo.WorkspaceOwner(context.Background(), ws.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice", owner)
		})
	}

	_, _, err := openStore(&config.Config{StoreDriver: "etcd"})
	assert.Error(t, err)
}

func TestIndexMode(t *testing.T) {
	newCmd := func(value string) *cobra.Command {
		c := &cobra.Command{}
		c.Flags().String("index-mode", string(board.IndexFinal), "")
		if value != "" {
			require.NoError(t, c.Flags().Set("index-mode", value))
		}
		return c
	}

	mode, err := indexMode(newCmd(""))
	require.NoError(t, err)
	assert.Equal(t, board.IndexFinal, mode)

	mode, err = indexMode(newCmd("slot"))
	require.NoError(t, err)
	assert.Equal(t, board.IndexSlot, mode)

	_, err = indexMode(newCmd("between"))
	assert.Error(t, err)
}

func TestPreparePostgres(t *testing.T) {
	origConnect, origMigrate := connectPostgres, migratePostgres
	t.Cleanup(func() { connectPostgres, migratePostgres = origConnect, origMigrate })

	var calls []string
	var mock sqlmock.Sqlmock
	connectPostgres = func(string) (*sql.DB, error) {
		calls = append(calls, "connect")
		db, m, err := sqlmock.New()
		mock = m
		return db, err
	}
	migratePostgres = func(string) error {
		calls = append(calls, "migrate")
		return nil
	}

	db, err := preparePostgres("postgres://db")
	require.NoError(t, err)
	assert.Equal(t, []string{"connect", "migrate"}, calls)
	mock.ExpectClose()
	require.NoError(t, db.Close())

	t.Run("unreachable database is never migrated", func(t *testing.T) {
		calls = nil
		connectPostgres = func(string) (*sql.DB, error) {
			calls = append(calls, "connect")
			return nil, errors.New("connection refused")
		}
		_, err := preparePostgres("postgres://db")
		assert.Error(t, err)
		assert.Equal(t, []string{"connect"}, calls)
	})

	t.Run("failed migration closes the connection", func(t *testing.T) {
		db, m, err := sqlmock.New()
		require.NoError(t, err)
		m.ExpectClose()
		connectPostgres = func(string) (*sql.DB, error) { return db, nil }
		migratePostgres = func(string) error { return errors.New("dirty schema") }

		_, err = preparePostgres("postgres://db")
		assert.Error(t, err)
		assert.NoError(t, m.ExpectationsWereMet())
	})
}
