package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"ignita/internal/document/model"
)

// MemoryRepository keeps notes and workspaces in process. Its mutex plays
// the role of the database's row lock for CompareAndSwap.
type MemoryRepository struct {
	mu         sync.RWMutex
	docs       map[string]*model.Document
	workspaces map[string]*model.Workspace
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		docs:       make(map[string]*model.Document),
		workspaces: make(map[string]*model.Workspace),
	}
}

func (r *MemoryRepository) Get(_ context.Context, docID string) (*model.Document, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[docID]
	if !ok {
		return nil, "", ErrNotFound
	}
	ws, ok := r.workspaces[doc.WorkspaceID]
	if !ok {
		return nil, "", ErrNotFound
	}
	return doc.Clone(), ws.UserID, nil
}

func (r *MemoryRepository) WorkspaceOwner(_ context.Context, workspaceID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ws, ok := r.workspaces[workspaceID]
	if !ok {
		return "", ErrNotFound
	}
	return ws.UserID, nil
}

func (r *MemoryRepository) CompareAndSwap(_ context.Context, doc *model.Document, note model.Note, at time.Time) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.docs[doc.ID]
	if !ok || stored.Version != doc.Version {
		return nil, ErrVersionConflict
	}
	next := stored.Clone()
	next.Note = note.Clone()
	next.Version++
	next.UpdatedAt = at
	r.docs[doc.ID] = next
	return next.Clone(), nil
}

func (r *MemoryRepository) Create(_ context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[doc.ID]; ok {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	if _, ok := r.workspaces[doc.WorkspaceID]; !ok {
		return fmt.Errorf("workspace %s: %w", doc.WorkspaceID, ErrNotFound)
	}
	r.docs[doc.ID] = doc.Clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, docID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[docID]; !ok {
		return ErrNotFound
	}
	delete(r.docs, docID)
	return nil
}

func (r *MemoryRepository) CreateWorkspace(_ context.Context, ws *model.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[ws.ID]; ok {
		return fmt.Errorf("workspace %s already exists", ws.ID)
	}
	cp := *ws
	r.workspaces[ws.ID] = &cp
	return nil
}

func (r *MemoryRepository) ListByWorkspace(_ context.Context, workspaceID string) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []*model.Document
	for _, doc := range r.docs {
		if doc.WorkspaceID == workspaceID {
			docs = append(docs, doc.Clone())
		}
	}
	slices.SortFunc(docs, func(a, b *model.Document) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID, b.ID))
	})
	return docs, nil
}
