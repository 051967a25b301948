package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"ignita/internal/document/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type store interface {
	Get(ctx context.Context, docID string) (*model.Document, string, error)
	WorkspaceOwner(ctx context.Context, workspaceID string) (string, error)
	CompareAndSwap(ctx context.Context, doc *model.Document, note model.Note, at time.Time) (*model.Document, error)
	Create(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, docID string) error
	CreateWorkspace(ctx context.Context, ws *model.Workspace) error
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*model.Document, error)
}

var (
	_ store = (*DocumentRepository)(nil)
	_ store = (*MemoryRepository)(nil)
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) store { return NewMemoryRepository() })
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) store {
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
		repo, err := NewSQLiteRepository(dsn)
		require.NoError(t, err, "failed to open sqlite")
		t.Cleanup(func() { repo.DB.Close() })
		return repo
	})
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_PG_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_PG_DATABASE_URL not set")
	}
	require.NoError(t, MigratePostgres(url))
	runStoreSuite(t, func(t *testing.T) store {
		db, err := sql.Open("postgres", url)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return NewDocumentRepository(db)
	})
}

func runStoreSuite(t *testing.T, open func(t *testing.T) store) {
	t.Run("create and get", func(t *testing.T) { testCreateAndGet(t, open(t)) })
	t.Run("compare and swap", func(t *testing.T) { testCompareAndSwap(t, open(t)) })
	t.Run("concurrent swaps", func(t *testing.T) { testConcurrentSwaps(t, open(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("list", func(t *testing.T) { testList(t, open(t)) })
}

func seed(t *testing.T, s store, version int64) *model.Document {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	ws := &model.Workspace{ID: uuid.NewString(), UserID: "user-" + uuid.NewString(), Name: "Home", CreatedAt: now}
	require.NoError(t, s.CreateWorkspace(ctx, ws))

	doc := &model.Document{
		ID:          uuid.NewString(),
		WorkspaceID: ws.ID,
		Name:        "Sprint",
		Version:     version,
		Note:        model.Note{Type: model.NoteTypeBoard, Content: []byte(`{"containers":[]}`)},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.Create(ctx, doc))
	return doc
}

func testCreateAndGet(t *testing.T, s store) {
	doc := seed(t, s, 1)

	got, owner, err := s.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	ws, err := s.WorkspaceOwner(context.Background(), doc.WorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, ws, owner)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, model.NoteTypeBoard, got.Note.Type)
	assert.JSONEq(t, `{"containers":[]}`, string(got.Note.Content))
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt), "created %v, got %v", doc.CreatedAt, got.CreatedAt)

	_, _, err = s.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.WorkspaceOwner(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func testCompareAndSwap(t *testing.T, s store) {
	ctx := context.Background()
	doc := seed(t, s, 5)
	note := model.Note{Type: model.NoteTypeBoard, Content: []byte(`{"containers":[{"id":"c1","title":"Todo","items":[]}]}`)}
	at := time.Now().UTC().Truncate(time.Millisecond)

	next, err := s.CompareAndSwap(ctx, doc, note, at)
	require.NoError(t, err)
	assert.Equal(t, int64(6), next.Version)

	// The same expected version is now stale.
	_, err = s.CompareAndSwap(ctx, doc, note, at)
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, _, err := s.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Version)
	assert.JSONEq(t, string(note.Content), string(got.Note.Content))
}

func testConcurrentSwaps(t *testing.T, s store) {
	ctx := context.Background()
	doc := seed(t, s, 1)
	const writers = 8

	// Every writer starts from the same version; exactly one may win.
	var g errgroup.Group
	wins := make(chan struct{}, writers)
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			_, err := s.CompareAndSwap(ctx, doc, doc.Note, time.Now().UTC())
			switch {
			case err == nil:
				wins <- struct{}{}
			case err != ErrVersionConflict:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(wins)
	assert.Len(t, wins, 1)

	got, _, err := s.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func testDelete(t *testing.T, s store) {
	ctx := context.Background()
	doc := seed(t, s, 1)

	require.NoError(t, s.Delete(ctx, doc.ID))
	_, _, err := s.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, doc.ID), ErrNotFound)
}

func testList(t *testing.T, s store) {
	ctx := context.Background()
	doc := seed(t, s, 1)

	second := doc.Clone()
	second.ID = uuid.NewString()
	second.Name = "Later"
	second.UpdatedAt = doc.UpdatedAt.Add(time.Minute)
	require.NoError(t, s.Create(ctx, second))

	docs, err := s.ListByWorkspace(ctx, doc.WorkspaceID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, second.ID, docs[0].ID)
	assert.Equal(t, doc.ID, docs[1].ID)

	docs, err = s.ListByWorkspace(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
