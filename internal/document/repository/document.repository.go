package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ignita/internal/document/model"
	"ignita/pkg/logger"
)

// DocumentRepository stores notes and workspaces in a SQL database. The
// queries run unchanged on Postgres (lib/pq) and SQLite (go-sqlite3);
// placeholders always appear in ascending order.
type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

// Get loads a note together with the user owning its workspace.
func (r *DocumentRepository) Get(ctx context.Context, docID string) (*model.Document, string, error) {
	var (
		doc     model.Document
		note    []byte
		ownerID string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT n.id, n.workspace_id, n.name, n.version, n.note, n.created_at, n.updated_at, w.user_id
		FROM notes n JOIN workspaces w ON w.id = n.workspace_id
		WHERE n.id = $1`, docID,
	).Scan(&doc.ID, &doc.WorkspaceID, &doc.Name, &doc.Version, &note, &doc.CreatedAt, &doc.UpdatedAt, &ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get doc %s: %v", docID, err)
		return nil, "", err
	}
	if err := json.Unmarshal(note, &doc.Note); err != nil {
		return nil, "", fmt.Errorf("decode note %s: %w", docID, err)
	}
	return &doc, ownerID, nil
}

func (r *DocumentRepository) WorkspaceOwner(ctx context.Context, workspaceID string) (string, error) {
	var ownerID string
	err := r.DB.QueryRowContext(ctx, "SELECT user_id FROM workspaces WHERE id = $1", workspaceID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get owner of workspace %s: %v", workspaceID, err)
	}
	return ownerID, err
}

// CompareAndSwap writes note only if the stored version still equals
// doc.Version, bumping the version by one. It returns the stored result or
// ErrVersionConflict when no row matched.
func (r *DocumentRepository) CompareAndSwap(ctx context.Context, doc *model.Document, note model.Note, at time.Time) (*model.Document, error) {
	payload, err := json.Marshal(note)
	if err != nil {
		return nil, fmt.Errorf("encode note %s: %w", doc.ID, err)
	}
	result, err := r.DB.ExecContext(ctx,
		"UPDATE notes SET note = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND version = $4",
		string(payload), at, doc.ID, doc.Version)
	if err != nil {
		logger.Sugar.Errorf("Failed to update note for doc %s: %v", doc.ID, err)
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrVersionConflict
	}
	next := doc.Clone()
	next.Note = note.Clone()
	next.Version = doc.Version + 1
	next.UpdatedAt = at
	return next, nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal(doc.Note)
	if err != nil {
		return fmt.Errorf("encode note %s: %w", doc.ID, err)
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO notes (id, workspace_id, name, note, version, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.WorkspaceID, doc.Name, string(payload), doc.Version, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
	}
	return err
}

func (r *DocumentRepository) Delete(ctx context.Context, docID string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM notes WHERE id = $1", docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete doc %s: %v", docID, err)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) CreateWorkspace(ctx context.Context, ws *model.Workspace) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO workspaces (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)",
		ws.ID, ws.UserID, ws.Name, ws.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create workspace %s: %v", ws.ID, err)
	}
	return err
}

// ListByWorkspace returns the notes of a workspace, most recently updated first.
func (r *DocumentRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*model.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, workspace_id, name, version, note, created_at, updated_at
		FROM notes WHERE workspace_id = $1 ORDER BY updated_at DESC`, workspaceID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list docs for workspace %s: %v", workspaceID, err)
		return nil, err
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		var (
			doc  model.Document
			note []byte
		)
		if err := rows.Scan(&doc.ID, &doc.WorkspaceID, &doc.Name, &doc.Version, &note, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(note, &doc.Note); err != nil {
			return nil, fmt.Errorf("decode note %s: %w", doc.ID, err)
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}
