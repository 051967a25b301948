package client

import (
	"context"
	"errors"
	"sync"

	"ignita/internal/document/model"

	"golang.org/x/sync/singleflight"
)

type callOptions struct {
	optimistic bool
}

type Option func(*callOptions)

// WithOptimistic toggles the optimistic prediction for one call. It is on
// by default.
func WithOptimistic(on bool) Option {
	return func(o *callOptions) { o.optimistic = on }
}

// Gateway issues board mutations against the server and keeps the local
// cache in step: the predicted document is visible as soon as a call is
// issued and is rolled back if the server rejects it.
type Gateway struct {
	transport Transport
	cache     *Cache
	fetches   singleflight.Group

	mu      sync.Mutex
	pending map[string]*fetch
}

type fetch struct {
	cancel context.CancelFunc
}

func NewGateway(t Transport) *Gateway {
	return &Gateway{transport: t, cache: NewCache(), pending: make(map[string]*fetch)}
}

func (g *Gateway) Cache() *Cache { return g.cache }

// Document returns the cached document, refetching it when missing or stale.
func (g *Gateway) Document(ctx context.Context, docID string) (*model.Document, error) {
	if doc, ok := g.cache.Fresh(docID); ok {
		return doc, nil
	}
	ch := g.fetches.DoChan(docID, func() (any, error) {
		return g.refetch(docID)
	})
	select {
	case res := <-ch:
		if res.Err != nil && errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
			// Cancelled by a mutation; the cache holds its prediction.
			if e, ok := g.cache.Peek(docID); ok {
				return e.Document, nil
			}
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Document).Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// refetch runs detached from any single caller so that one reader giving
// up does not fail the others sharing it.
func (g *Gateway) refetch(docID string) (*model.Document, error) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fetch{cancel: cancel}
	g.mu.Lock()
	g.pending[docID] = f
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		if g.pending[docID] == f {
			delete(g.pending, docID)
		}
		g.mu.Unlock()
		cancel()
	}()

	gen := g.cache.Generation(docID)
	resp, err := g.transport.Call(ctx, model.ProcGetDocument, model.GetDocumentRequest{DocumentID: docID})
	if err != nil {
		return nil, err
	}
	if resp.Document == nil {
		return nil, model.NewError(model.CodeInternal, "empty response", nil)
	}
	if !g.cache.SetIfGeneration(resp.Document, gen) {
		// A mutation wrote the cache meanwhile; its view wins.
		if e, ok := g.cache.Peek(docID); ok {
			return e.Document, nil
		}
	}
	return resp.Document, nil
}

// cancelFetch aborts an in-flight refetch of docID and lets the next read
// start a new one.
func (g *Gateway) cancelFetch(docID string) {
	g.mu.Lock()
	f, ok := g.pending[docID]
	delete(g.pending, docID)
	g.mu.Unlock()
	if ok {
		f.cancel()
	}
	g.fetches.Forget(docID)
}

func (g *Gateway) mutate(ctx context.Context, procedure string, req model.MutationRequest, opts []Option) (*model.Document, error) {
	o := callOptions{optimistic: true}
	for _, opt := range opts {
		opt(&o)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	docID := req.DocID()

	snapshot, cached := g.cache.Peek(docID)
	if o.optimistic && cached {
		if next, err := predict(snapshot.Document, req.Operation()); err == nil {
			g.cache.Predict(next, snapshot.Stale)
		}
	}
	// Readers woken by the cancellation see the prediction.
	g.cancelFetch(docID)

	resp, err := g.transport.Call(ctx, procedure, req)
	if err == nil && resp.Document == nil {
		err = model.NewError(model.CodeInternal, "empty response", nil)
	}
	if err != nil {
		if o.optimistic {
			g.cache.Restore(docID, snapshot, cached)
		}
		g.cache.Invalidate(docID)
		return nil, err
	}
	if !o.optimistic {
		g.cache.Set(resp.Document)
		g.cache.Invalidate(docID)
	}
	return resp.Document, nil
}

// predict computes the document the server will store, using the same
// operation the executor runs.
func predict(doc *model.Document, op model.Operation) (*model.Document, error) {
	note, err := op.ApplyTo(doc.Note)
	if err != nil {
		return nil, err
	}
	next := doc.Clone()
	next.Note = note
	next.Version++
	return next, nil
}

func (g *Gateway) DeleteItem(ctx context.Context, req model.DeleteItemRequest, opts ...Option) (*model.Document, error) {
	return g.mutate(ctx, model.ProcDeleteItem, req, opts)
}

func (g *Gateway) MoveItem(ctx context.Context, req model.MoveItemRequest, opts ...Option) (*model.Document, error) {
	return g.mutate(ctx, model.ProcMoveItem, req, opts)
}

func (g *Gateway) ReorderContainers(ctx context.Context, req model.ReorderContainersRequest, opts ...Option) (*model.Document, error) {
	return g.mutate(ctx, model.ProcReorderContainers, req, opts)
}

func (g *Gateway) UpdateItemTitle(ctx context.Context, req model.UpdateItemTitleRequest, opts ...Option) (*model.Document, error) {
	return g.mutate(ctx, model.ProcUpdateItemTitle, req, opts)
}

func (g *Gateway) UpdateItemBody(ctx context.Context, req model.UpdateItemBodyRequest, opts ...Option) (*model.Document, error) {
	return g.mutate(ctx, model.ProcUpdateItemBody, req, opts)
}

// AddItem fills in a fresh item id when req has none.
func (g *Gateway) AddItem(ctx context.Context, req model.AddItemRequest, opts ...Option) (*model.Document, error) {
	if req.ID == "" {
		req.ID = NewItemID()
	}
	return g.mutate(ctx, model.ProcAddItem, req, opts)
}

func (g *Gateway) DeleteContainer(ctx context.Context, req model.DeleteContainerRequest, opts ...Option) (*model.Document, error) {
	return g.mutate(ctx, model.ProcDeleteContainer, req, opts)
}

func (g *Gateway) UpdateContainer(ctx context.Context, req model.UpdateContainerRequest, opts ...Option) (*model.Document, error) {
	return g.mutate(ctx, model.ProcUpdateContainer, req, opts)
}

// AddContainer fills in a fresh container id when req has none.
func (g *Gateway) AddContainer(ctx context.Context, req model.AddContainerRequest, opts ...Option) (*model.Document, error) {
	if req.ID == "" {
		req.ID = NewContainerID()
	}
	return g.mutate(ctx, model.ProcAddContainer, req, opts)
}

func (g *Gateway) CreateDocument(ctx context.Context, req model.CreateDocumentRequest) (*model.Document, error) {
	resp, err := g.transport.Call(ctx, model.ProcCreateDocument, req)
	if err != nil {
		return nil, err
	}
	if resp.Document == nil {
		return nil, model.NewError(model.CodeInternal, "empty response", nil)
	}
	g.cache.Set(resp.Document)
	return resp.Document, nil
}

func (g *Gateway) DeleteDocument(ctx context.Context, docID string) error {
	g.cancelFetch(docID)
	_, err := g.transport.Call(ctx, model.ProcDeleteDocument, model.DeleteDocumentRequest{DocumentID: docID})
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		g.cache.Invalidate(docID)
		return err
	}
	g.cache.Remove(docID)
	return err
}

func (g *Gateway) ListDocuments(ctx context.Context, workspaceID string) ([]*model.Document, error) {
	resp, err := g.transport.Call(ctx, model.ProcListDocuments, model.ListDocumentsRequest{WorkspaceID: workspaceID})
	if err != nil {
		return nil, err
	}
	return resp.Documents, nil
}
