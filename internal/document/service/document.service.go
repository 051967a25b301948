package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ignita/internal/board"
	"ignita/internal/document/model"
	"ignita/internal/document/repository"
	"ignita/pkg/logger"
	"ignita/pkg/metrics"
	"ignita/pkg/retry"

	"github.com/google/uuid"
)

// Containers of a freshly created board.
var DefaultBoardColumns = []string{"Planned", "In Progress", "Finished"}

type DocumentService struct {
	Repo     DocumentStore
	Executor *Executor
}

func NewDocumentService(repo DocumentStore, policy retry.Policy, m *metrics.Mutations) *DocumentService {
	return &DocumentService{Repo: repo, Executor: NewExecutor(repo, policy, m)}
}

// Mutate validates req and runs its operation through the executor.
func (s *DocumentService) Mutate(ctx context.Context, userID string, req model.MutationRequest) (*model.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.Executor.Execute(ctx, req.DocID(), userID, req.Operation())
}

func (s *DocumentService) GetDocument(ctx context.Context, userID string, req model.GetDocumentRequest) (*model.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return loadOwned(ctx, s.Repo, req.DocumentID, userID)
}

func (s *DocumentService) CreateDocument(ctx context.Context, userID string, req model.CreateDocumentRequest) (*model.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkWorkspace(ctx, req.WorkspaceID, userID); err != nil {
		return nil, err
	}

	note, err := initialNote(req.Note)
	if err != nil {
		return nil, model.NewError(model.CodeInternal, "internal error", err)
	}
	now := time.Now().UTC()
	doc := &model.Document{
		ID:          uuid.NewString(),
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Version:     1,
		Note:        note,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		logger.Sugar.Errorf("Failed to create document in workspace %s: %v", req.WorkspaceID, err)
		return nil, model.NewError(model.CodeInternal, "internal error", err)
	}
	return doc, nil
}

func (s *DocumentService) DeleteDocument(ctx context.Context, userID string, req model.DeleteDocumentRequest) (*model.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	doc, err := loadOwned(ctx, s.Repo, req.DocumentID, userID)
	if err != nil {
		return nil, err
	}
	err = s.Repo.Delete(ctx, req.DocumentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewError(model.CodeNotFound, "document not found", nil)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to delete doc %s: %v", req.DocumentID, err)
		return nil, model.NewError(model.CodeInternal, "internal error", err)
	}
	return doc, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, userID string, req model.ListDocumentsRequest) ([]*model.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkWorkspace(ctx, req.WorkspaceID, userID); err != nil {
		return nil, err
	}
	docs, err := s.Repo.ListByWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, model.NewError(model.CodeInternal, "internal error", err)
	}
	if docs == nil {
		docs = []*model.Document{}
	}
	return docs, nil
}

func (s *DocumentService) checkWorkspace(ctx context.Context, workspaceID, userID string) error {
	ownerID, err := s.Repo.WorkspaceOwner(ctx, workspaceID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewError(model.CodeNotFound, "workspace not found", nil)
	}
	if err != nil {
		return model.NewError(model.CodeInternal, "internal error", err)
	}
	if ownerID != userID {
		return model.NewError(model.CodeForbidden, "workspace belongs to another user", nil)
	}
	return nil
}

// initialNote fills in the default content for the requested note type.
// No note at all means a board.
func initialNote(n *model.Note) (model.Note, error) {
	if n == nil {
		n = &model.Note{Type: model.NoteTypeBoard}
	}
	if len(n.Content) > 0 {
		return n.Clone(), nil
	}
	switch n.Type {
	case model.NoteTypeBoard:
		content := board.Content{}
		for _, title := range DefaultBoardColumns {
			content.Containers = append(content.Containers, board.Container{
				ID:    uuid.NewString(),
				Title: title,
				Color: board.DefaultColor,
			})
		}
		raw, err := board.Encode(content)
		if err != nil {
			return model.Note{}, err
		}
		return model.Note{Type: n.Type, Content: raw}, nil
	case model.NoteTypeText, model.NoteTypeLatex:
		return model.Note{Type: n.Type, Content: json.RawMessage(`""`)}, nil
	}
	return model.Note{Type: n.Type}, nil
}
