package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"ignita/internal/document/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockDocID = "6f1f5c0e-5b1a-4d5e-9a59-0f3b7c2d9e11"

func TestPostgresGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewDocumentRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT n\.id, n\.workspace_id, n\.name, .* FROM notes n JOIN workspaces w ON w\.id = n\.workspace_id WHERE n\.id = \$1`).
		WithArgs(mockDocID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "name", "version", "note", "created_at", "updated_at", "user_id"}).
			AddRow(mockDocID, "ws-1", "Sprint", int64(5), `{"type":"board","content":{"containers":[]}}`, now, now, "user-1"))

	doc, owner, err := repo.Get(context.Background(), mockDocID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", owner)
	assert.Equal(t, int64(5), doc.Version)
	assert.Equal(t, model.NoteTypeBoard, doc.Note.Type)
	assert.JSONEq(t, `{"containers":[]}`, string(doc.Note.Content))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT n.id").
		WithArgs(mockDocID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err = repo.Get(context.Background(), mockDocID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompareAndSwap(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewDocumentRepository(db)

	query := regexp.QuoteMeta("UPDATE notes SET note = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND version = $4")
	at := time.Now().UTC()
	doc := &model.Document{ID: mockDocID, Version: 5, Note: model.Note{Type: model.NoteTypeBoard}}
	note := model.Note{Type: model.NoteTypeBoard, Content: []byte(`{"containers":[]}`)}

	t.Run("applied", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(sqlmock.AnyArg(), at, mockDocID, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		next, err := repo.CompareAndSwap(context.Background(), doc, note, at)
		require.NoError(t, err)
		assert.Equal(t, int64(6), next.Version)
		assert.Equal(t, at, next.UpdatedAt)
		assert.Equal(t, int64(5), doc.Version, "input document must not change")
	})

	t.Run("stale version", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(sqlmock.AnyArg(), at, mockDocID, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.CompareAndSwap(context.Background(), doc, note, at)
		assert.ErrorIs(t, err, ErrVersionConflict)
	})

	t.Run("driver failure", func(t *testing.T) {
		boom := errors.New("connection reset")
		mock.ExpectExec(query).WillReturnError(boom)

		_, err := repo.CompareAndSwap(context.Background(), doc, note, at)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrVersionConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("DELETE FROM notes WHERE id = \\$1").
		WithArgs(mockDocID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM notes WHERE id = \\$1").
		WithArgs(mockDocID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), mockDocID))
	assert.ErrorIs(t, repo.Delete(context.Background(), mockDocID), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWorkspaceOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT user_id FROM workspaces WHERE id = \\$1").
		WithArgs("ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-1"))
	mock.ExpectQuery("SELECT user_id FROM workspaces WHERE id = \\$1").
		WithArgs("ws-2").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	owner, err := repo.WorkspaceOwner(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", owner)

	_, err = repo.WorkspaceOwner(context.Background(), "ws-2")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
