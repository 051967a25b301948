package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrNotFound is returned by a transform whose target item or container is
// not part of the board.
var ErrNotFound = errors.New("target not found")

// DefaultColor is used for containers created without a color.
const DefaultColor = "#000000"

type Content struct {
	Containers []Container `json:"containers"`
}

type Container struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color,omitempty"`
	Items []Item `json:"items"`
}

type Item struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Body  json.RawMessage `json:"body"`
	Tags  []string        `json:"tags"`
}

// Mutation is a pure transform of board content. Implementations must not
// modify the Content they receive.
type Mutation interface {
	Apply(Content) (Content, error)
}

// Decode parses stored board content. An empty or null payload is an empty
// board.
func Decode(raw json.RawMessage) (Content, error) {
	var c Content
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return c, nil
	}
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return Content{}, fmt.Errorf("decode board content: %w", err)
	}
	return c, nil
}

// Encode serializes board content with empty lists written as [] rather
// than null.
func Encode(c Content) (json.RawMessage, error) {
	c = c.Clone()
	if c.Containers == nil {
		c.Containers = []Container{}
	}
	for i := range c.Containers {
		if c.Containers[i].Items == nil {
			c.Containers[i].Items = []Item{}
		}
		for j := range c.Containers[i].Items {
			item := &c.Containers[i].Items[j]
			if item.Tags == nil {
				item.Tags = []string{}
			}
			if len(item.Body) == 0 {
				item.Body = emptyBody()
			}
		}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode board content: %w", err)
	}
	return raw, nil
}

// Transform lifts m to operate on serialized content.
func Transform(m Mutation) func(json.RawMessage) (json.RawMessage, error) {
	return func(raw json.RawMessage) (json.RawMessage, error) {
		c, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		next, err := m.Apply(c)
		if err != nil {
			return nil, err
		}
		return Encode(next)
	}
}

// Clone returns a deep copy of c.
func (c Content) Clone() Content {
	if c.Containers == nil {
		return Content{}
	}
	out := Content{Containers: make([]Container, len(c.Containers))}
	for i, col := range c.Containers {
		out.Containers[i] = col.clone()
	}
	return out
}

func (c Container) clone() Container {
	out := c
	if c.Items != nil {
		out.Items = make([]Item, len(c.Items))
		for i, item := range c.Items {
			out.Items[i] = item.clone()
		}
	}
	return out
}

func (i Item) clone() Item {
	out := i
	out.Body = slices.Clone(i.Body)
	out.Tags = slices.Clone(i.Tags)
	return out
}

func (c Content) containerIndex(id string) int {
	return slices.IndexFunc(c.Containers, func(col Container) bool { return col.ID == id })
}

func (c Container) itemIndex(id string) int {
	return slices.IndexFunc(c.Items, func(item Item) bool { return item.ID == id })
}

func emptyBody() json.RawMessage {
	return json.RawMessage(`""`)
}

// insertAt inserts v at position i, clamping i into [0, len(s)].
func insertAt[T any](s []T, i int, v T) []T {
	i = max(0, min(i, len(s)))
	return slices.Insert(s, i, v)
}
