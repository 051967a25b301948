package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"ignita/internal/document/model"
	"ignita/internal/document/service"
	"ignita/middleware"
	"ignita/pkg/logger"
)

const (
	RPCPrefix    = "/api/rpc/"
	maxInputSize = 1 << 20
)

// Response is the body of every procedure call. Exactly one field is set.
type Response struct {
	Document  *model.Document   `json:"document,omitempty"`
	Documents []*model.Document `json:"documents,omitempty"`
	Error     *model.Error      `json:"error,omitempty"`
}

type procedure func(ctx context.Context, userID string, input json.RawMessage) (Response, error)

type DocumentHandler struct {
	Service *service.DocumentService
	procs   map[string]procedure
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	h := &DocumentHandler{Service: svc}
	h.procs = map[string]procedure{
		model.ProcDeleteItem:        mutation[model.DeleteItemRequest](svc),
		model.ProcMoveItem:          mutation[model.MoveItemRequest](svc),
		model.ProcReorderContainers: mutation[model.ReorderContainersRequest](svc),
		model.ProcUpdateItemTitle:   mutation[model.UpdateItemTitleRequest](svc),
		model.ProcUpdateItemBody:    mutation[model.UpdateItemBodyRequest](svc),
		model.ProcAddItem:           mutation[model.AddItemRequest](svc),
		model.ProcDeleteContainer:   mutation[model.DeleteContainerRequest](svc),
		model.ProcUpdateContainer:   mutation[model.UpdateContainerRequest](svc),
		model.ProcAddContainer:      mutation[model.AddContainerRequest](svc),

		model.ProcGetDocument:    single(svc.GetDocument),
		model.ProcCreateDocument: single(svc.CreateDocument),
		model.ProcDeleteDocument: single(svc.DeleteDocument),
		model.ProcListDocuments:  h.listDocuments,
	}
	return h
}

func mutation[T model.MutationRequest](svc *service.DocumentService) procedure {
	return func(ctx context.Context, userID string, input json.RawMessage) (Response, error) {
		var req T
		if err := decodeInput(input, &req); err != nil {
			return Response{}, err
		}
		doc, err := svc.Mutate(ctx, userID, req)
		return Response{Document: doc}, err
	}
}

func single[T any](fn func(context.Context, string, T) (*model.Document, error)) procedure {
	return func(ctx context.Context, userID string, input json.RawMessage) (Response, error) {
		var req T
		if err := decodeInput(input, &req); err != nil {
			return Response{}, err
		}
		doc, err := fn(ctx, userID, req)
		return Response{Document: doc}, err
	}
}

func (h *DocumentHandler) listDocuments(ctx context.Context, userID string, input json.RawMessage) (Response, error) {
	var req model.ListDocumentsRequest
	if err := decodeInput(input, &req); err != nil {
		return Response{}, err
	}
	docs, err := h.Service.ListDocuments(ctx, userID, req)
	return Response{Documents: docs}, err
}

func decodeInput(input json.RawMessage, v any) error {
	if len(bytes.TrimSpace(input)) == 0 {
		input = json.RawMessage("{}")
	}
	if err := json.Unmarshal(input, v); err != nil {
		return model.NewError(model.CodeBadRequest, "invalid input", err)
	}
	return nil
}

// Dispatch runs the named procedure for userID. It is shared by the HTTP
// and WebSocket transports; errors are *model.Error.
func (h *DocumentHandler) Dispatch(ctx context.Context, userID, name string, input json.RawMessage) (Response, error) {
	proc, ok := h.procs[name]
	if !ok {
		return Response{}, model.NewError(model.CodeNotFound, "unknown procedure "+name, nil)
	}
	resp, err := proc(ctx, userID, input)
	if err != nil {
		return Response{}, model.AsError(err)
	}
	return resp, nil
}

// ServeRPC handles POST /api/rpc/{procedure}.
func (h *DocumentHandler) ServeRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, model.NewError(model.CodeUnauthorized, "not signed in", nil))
		return
	}

	name := strings.TrimPrefix(r.URL.Path, RPCPrefix)
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInputSize))
	if err != nil {
		writeError(w, model.NewError(model.CodeBadRequest, "invalid request body", err))
		return
	}

	resp, err := h.Dispatch(r.Context(), userID, name, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, err error) {
	typed := model.AsError(err)
	if typed.Code == model.CodeInternal {
		logger.Sugar.Errorf("Handler: internal error: %v", err)
	}
	writeJSON(w, typed.HTTPStatus(), Response{Error: typed})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Handler: failed to write response: %v", err)
	}
}
