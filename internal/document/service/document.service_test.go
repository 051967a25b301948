package service

import (
	"context"
	"encoding/json"
	"testing"

	"ignita/internal/board"
	"ignita/internal/document/model"
	"ignita/internal/document/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutateValidates(t *testing.T) {
	repo := repository.NewMemoryRepository()
	doc := seedBoard(t, repo, 1)
	svc := NewDocumentService(repo, fastPolicy, nil)

	_, err := svc.Mutate(context.Background(), owner, model.DeleteItemRequest{DocumentID: "not-a-uuid", DeleteItem: board.DeleteItem{ItemID: "A"}})
	assert.ErrorIs(t, err, model.ErrBadRequest)

	_, err = svc.Mutate(context.Background(), owner, model.DeleteItemRequest{DocumentID: doc.ID})
	assert.ErrorIs(t, err, model.ErrBadRequest)

	got, err := svc.Mutate(context.Background(), owner, model.AddContainerRequest{
		DocumentID:   doc.ID,
		AddContainer: board.AddContainer{ID: "done", Title: "Done"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	c := boardOf(t, got)
	require.Len(t, c.Containers, 3)
	assert.Equal(t, board.DefaultColor, c.Containers[2].Color)
}

func TestCreateDocument(t *testing.T) {
	repo := repository.NewMemoryRepository()
	wsID := uuid.NewString()
	require.NoError(t, repo.CreateWorkspace(context.Background(), &model.Workspace{ID: wsID, UserID: owner}))
	svc := NewDocumentService(repo, fastPolicy, nil)

	doc, err := svc.CreateDocument(context.Background(), owner, model.CreateDocumentRequest{WorkspaceID: wsID, Name: "Roadmap"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
	assert.Equal(t, model.NoteTypeBoard, doc.Note.Type)
	c := boardOf(t, doc)
	require.Len(t, c.Containers, 3)
	for i, title := range DefaultBoardColumns {
		assert.Equal(t, title, c.Containers[i].Title)
		assert.NotEmpty(t, c.Containers[i].ID)
		assert.Empty(t, c.Containers[i].Items)
	}

	got, err := svc.GetDocument(context.Background(), owner, model.GetDocumentRequest{DocumentID: doc.ID})
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	text, err := svc.CreateDocument(context.Background(), owner, model.CreateDocumentRequest{
		WorkspaceID: wsID, Name: "Scratch", Note: &model.Note{Type: model.NoteTypeText},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `""`, string(text.Note.Content))

	docs, err := svc.ListDocuments(context.Background(), owner, model.ListDocumentsRequest{WorkspaceID: wsID})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestCreateDocumentRejections(t *testing.T) {
	repo := repository.NewMemoryRepository()
	wsID := uuid.NewString()
	require.NoError(t, repo.CreateWorkspace(context.Background(), &model.Workspace{ID: wsID, UserID: owner}))
	svc := NewDocumentService(repo, fastPolicy, nil)

	cases := []struct {
		name   string
		userID string
		req    model.CreateDocumentRequest
		want   error
	}{
		{"empty name", owner, model.CreateDocumentRequest{WorkspaceID: wsID}, model.ErrBadRequest},
		{"long name", owner, model.CreateDocumentRequest{WorkspaceID: wsID, Name: "0123456789012345678901234567890"}, model.ErrBadRequest},
		{"unknown type", owner, model.CreateDocumentRequest{WorkspaceID: wsID, Name: "x", Note: &model.Note{Type: "sheet"}}, model.ErrBadRequest},
		{"bad board", owner, model.CreateDocumentRequest{WorkspaceID: wsID, Name: "x", Note: &model.Note{Type: model.NoteTypeBoard, Content: json.RawMessage(`[1]`)}}, model.ErrBadRequest},
		{"missing workspace", owner, model.CreateDocumentRequest{WorkspaceID: uuid.NewString(), Name: "x"}, model.ErrNotFound},
		{"foreign workspace", "mallory", model.CreateDocumentRequest{WorkspaceID: wsID, Name: "x"}, model.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateDocument(context.Background(), tc.userID, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDeleteDocument(t *testing.T) {
	repo := repository.NewMemoryRepository()
	doc := seedBoard(t, repo, 3)
	svc := NewDocumentService(repo, fastPolicy, nil)

	_, err := svc.DeleteDocument(context.Background(), "mallory", model.DeleteDocumentRequest{DocumentID: doc.ID})
	assert.ErrorIs(t, err, model.ErrForbidden)

	deleted, err := svc.DeleteDocument(context.Background(), owner, model.DeleteDocumentRequest{DocumentID: doc.ID})
	require.NoError(t, err)
	assert.Equal(t, doc.ID, deleted.ID)

	_, err = svc.GetDocument(context.Background(), owner, model.GetDocumentRequest{DocumentID: doc.ID})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
