package model

import (
	"encoding/json"
	"errors"

	"ignita/internal/board"
)

// Operation is one logical mutation of a note variant. Server and client
// build it from the same request so the prediction matches the write.
type Operation struct {
	Name    string
	Variant NoteType
	Apply   func(content json.RawMessage) (json.RawMessage, error)
}

// ApplyTo runs the operation against n and returns the next note.
func (op Operation) ApplyTo(n Note) (Note, error) {
	if n.Type != op.Variant {
		return Note{}, NewError(CodeBadRequest, "note is not a "+string(op.Variant), nil)
	}
	content, err := op.Apply(n.Content)
	if err != nil {
		return Note{}, err
	}
	return Note{Type: n.Type, Content: content}, nil
}

// BoardOperation wraps a board transform, translating its failures into
// typed errors.
func BoardOperation(name string, m board.Mutation) Operation {
	transform := board.Transform(m)
	return Operation{
		Name:    name,
		Variant: NoteTypeBoard,
		Apply: func(content json.RawMessage) (json.RawMessage, error) {
			out, err := transform(content)
			switch {
			case errors.Is(err, board.ErrNotFound):
				return nil, NewError(CodeNotFound, err.Error(), err)
			case err != nil:
				return nil, NewError(CodeInternal, "failed to transform board", err)
			}
			return out, nil
		},
	}
}
