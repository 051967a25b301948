package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	docHandler "ignita/internal/document"
	"ignita/internal/document/model"
)

// Transport sends one procedure call to the server. Failures reported by
// the server come back as *model.Error.
type Transport interface {
	Call(ctx context.Context, procedure string, input any) (docHandler.Response, error)
}

// HTTPTransport calls POST {BaseURL}/api/rpc/{procedure} with a bearer token.
type HTTPTransport struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPTransport(baseURL, token string) *HTTPTransport {
	return &HTTPTransport{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, Client: http.DefaultClient}
}

func (t *HTTPTransport) Call(ctx context.Context, procedure string, input any) (docHandler.Response, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return docHandler.Response{}, fmt.Errorf("encode %s input: %w", procedure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+docHandler.RPCPrefix+procedure, bytes.NewReader(body))
	if err != nil {
		return docHandler.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	res, err := t.Client.Do(req)
	if err != nil {
		return docHandler.Response{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return docHandler.Response{}, err
	}
	var resp docHandler.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		// Plain text bodies come from the auth layer or a proxy.
		return docHandler.Response{}, model.NewError(codeForStatus(res.StatusCode), strings.TrimSpace(string(raw)), nil)
	}
	if resp.Error != nil {
		return docHandler.Response{}, resp.Error
	}
	if res.StatusCode != http.StatusOK {
		return docHandler.Response{}, model.NewError(codeForStatus(res.StatusCode), res.Status, nil)
	}
	return resp, nil
}

func codeForStatus(status int) model.Code {
	switch status {
	case http.StatusNotFound:
		return model.CodeNotFound
	case http.StatusForbidden:
		return model.CodeForbidden
	case http.StatusBadRequest:
		return model.CodeBadRequest
	case http.StatusConflict:
		return model.CodeConflict
	case http.StatusUnauthorized:
		return model.CodeUnauthorized
	}
	return model.CodeInternal
}

// Dispatcher is the server side entry point LocalTransport calls into.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID, procedure string, input json.RawMessage) (docHandler.Response, error)
}

// LocalTransport calls a dispatcher in process as userID, encoding the
// input the same way the HTTP transport does.
type LocalTransport struct {
	Dispatcher Dispatcher
	UserID     string
}

func (t *LocalTransport) Call(ctx context.Context, procedure string, input any) (docHandler.Response, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return docHandler.Response{}, fmt.Errorf("encode %s input: %w", procedure, err)
	}
	return t.Dispatcher.Dispatch(ctx, t.UserID, procedure, body)
}
