package service

import (
	"context"
	"errors"
	"time"

	"ignita/internal/document/model"
	"ignita/internal/document/repository"
	"ignita/pkg/logger"
	"ignita/pkg/metrics"
	"ignita/pkg/retry"
)

// DocumentStore is the persistence the service needs. Get returns the
// document with the user owning its workspace; CompareAndSwap writes only
// when the stored version equals doc.Version.
type DocumentStore interface {
	Get(ctx context.Context, docID string) (*model.Document, string, error)
	WorkspaceOwner(ctx context.Context, workspaceID string) (string, error)
	CompareAndSwap(ctx context.Context, doc *model.Document, note model.Note, at time.Time) (*model.Document, error)
	Create(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, docID string) error
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*model.Document, error)
}

// Executor runs an operation as read, transform, conditional write, and
// repeats the whole cycle when the write loses a race.
type Executor struct {
	Store   DocumentStore
	Policy  retry.Policy
	Metrics *metrics.Mutations

	now func() time.Time
}

func NewExecutor(store DocumentStore, policy retry.Policy, m *metrics.Mutations) *Executor {
	return &Executor{Store: store, Policy: policy, Metrics: m, now: time.Now}
}

// Execute applies op to the document owned by callerID and returns the
// stored result. Failures are *model.Error.
func (e *Executor) Execute(ctx context.Context, docID, callerID string, op model.Operation) (*model.Document, error) {
	start := time.Now()
	doc, err := retry.Do(ctx, e.Policy, isConflict, func(ctx context.Context, attempt int) (*model.Document, error) {
		e.Metrics.Attempt(op.Name)
		doc, err := e.attempt(ctx, docID, callerID, op)
		if isConflict(err) {
			e.Metrics.Conflict(op.Name)
			logger.Sugar.Debugf("Version conflict on doc %s (%s, attempt %d)", docID, op.Name, attempt)
		}
		return doc, err
	})
	if err != nil {
		typed := model.AsError(err)
		e.Metrics.Done(op.Name, string(typed.Code), time.Since(start))
		switch typed.Code {
		case model.CodeInternal:
			logger.Sugar.Errorf("Mutation %s on doc %s failed: %v", op.Name, docID, err)
			return nil, model.NewError(model.CodeInternal, "internal error", err)
		case model.CodeConflict:
			logger.Sugar.Warnf("Mutation %s on doc %s gave up after %d attempts", op.Name, docID, e.Policy.MaxAttempts)
		}
		return nil, typed
	}
	e.Metrics.Done(op.Name, "OK", time.Since(start))
	return doc, nil
}

func (e *Executor) attempt(ctx context.Context, docID, callerID string, op model.Operation) (*model.Document, error) {
	doc, err := loadOwned(ctx, e.Store, docID, callerID)
	if err != nil {
		return nil, err
	}
	note, err := op.ApplyTo(doc.Note)
	if err != nil {
		return nil, err
	}
	next, err := e.Store.CompareAndSwap(ctx, doc, note, e.now().UTC())
	if errors.Is(err, repository.ErrVersionConflict) {
		return nil, model.NewError(model.CodeConflict, "document was modified concurrently", err)
	}
	if err != nil {
		return nil, model.NewError(model.CodeInternal, "failed to write document", err)
	}
	return next, nil
}

// loadOwned reads a document and checks that callerID owns its workspace.
func loadOwned(ctx context.Context, store DocumentStore, docID, callerID string) (*model.Document, error) {
	doc, ownerID, err := store.Get(ctx, docID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewError(model.CodeNotFound, "document not found", nil)
	}
	if err != nil {
		return nil, model.NewError(model.CodeInternal, "failed to load document", err)
	}
	if ownerID != callerID {
		return nil, model.NewError(model.CodeForbidden, "document belongs to another user", nil)
	}
	return doc, nil
}

func isConflict(err error) bool {
	return errors.Is(err, model.ErrConflict)
}
