package model

import (
	"encoding/json"
	"time"

	"ignita/internal/board"

	"github.com/google/uuid"
)

type NoteType string

const (
	NoteTypeBoard     NoteType = "board"
	NoteTypeText      NoteType = "text"
	NoteTypeLatex     NoteType = "latex"
	NoteTypeDirectory NoteType = "directory"
)

func (t NoteType) Valid() bool {
	switch t {
	case NoteTypeBoard, NoteTypeText, NoteTypeLatex, NoteTypeDirectory:
		return true
	}
	return false
}

// Note is the tagged content of a document. Content is interpreted
// according to Type.
type Note struct {
	Type    NoteType        `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// Clone returns a copy that shares no memory with n.
func (n Note) Clone() Note {
	if n.Content != nil {
		n.Content = append(json.RawMessage(nil), n.Content...)
	}
	return n
}

type Document struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	Version     int64     `json:"version"`
	Note        Note      `json:"note"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Note = d.Note.Clone()
	return &out
}

// Procedure names of the RPC surface.
const (
	ProcDeleteItem        = "deleteItem"
	ProcMoveItem          = "moveItem"
	ProcReorderContainers = "reorderContainers"
	ProcUpdateItemTitle   = "updateItemTitle"
	ProcUpdateItemBody    = "updateItemBody"
	ProcAddItem           = "addItem"
	ProcDeleteContainer   = "deleteContainer"
	ProcUpdateContainer   = "updateContainer"
	ProcAddContainer      = "addContainer"

	ProcGetDocument    = "getDocument"
	ProcCreateDocument = "createDocument"
	ProcDeleteDocument = "deleteDocument"
	ProcListDocuments  = "listDocuments"
)

const MaxNameLength = 30

type GetDocumentRequest struct {
	DocumentID string `json:"documentId"`
}

func (r GetDocumentRequest) Validate() error {
	return validateDocumentID(r.DocumentID)
}

type DeleteDocumentRequest struct {
	DocumentID string `json:"documentId"`
}

func (r DeleteDocumentRequest) Validate() error {
	return validateDocumentID(r.DocumentID)
}

type CreateDocumentRequest struct {
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
	Note        *Note  `json:"note,omitempty"`
}

func (r CreateDocumentRequest) Validate() error {
	if r.WorkspaceID == "" {
		return NewError(CodeBadRequest, "workspace id is required", nil)
	}
	if r.Name == "" {
		return NewError(CodeBadRequest, "name is required", nil)
	}
	if len([]rune(r.Name)) > MaxNameLength {
		return NewError(CodeBadRequest, "name is too long", nil)
	}
	if r.Note == nil {
		return nil
	}
	if !r.Note.Type.Valid() {
		return NewError(CodeBadRequest, "unknown note type "+string(r.Note.Type), nil)
	}
	if r.Note.Type == NoteTypeBoard && len(r.Note.Content) > 0 {
		if _, err := board.Decode(r.Note.Content); err != nil {
			return NewError(CodeBadRequest, "invalid board content", err)
		}
	}
	return nil
}

type ListDocumentsRequest struct {
	WorkspaceID string `json:"workspaceId"`
}

func (r ListDocumentsRequest) Validate() error {
	if r.WorkspaceID == "" {
		return NewError(CodeBadRequest, "workspace id is required", nil)
	}
	return nil
}

func validateDocumentID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return NewError(CodeBadRequest, "invalid document id", err)
	}
	return nil
}

type Workspace struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
