package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// IndexMode tells a move how to read its target index.
type IndexMode string

const (
	// IndexFinal is the position the entity occupies after the move.
	IndexFinal IndexMode = "final"
	// IndexSlot is a drop slot counted in the list before the entity is
	// removed. Moving forward within one list therefore lands one earlier.
	IndexSlot IndexMode = "slot"
)

func (m IndexMode) validate() error {
	switch m {
	case "", IndexFinal, IndexSlot:
		return nil
	}
	return fmt.Errorf("unknown index mode %q", m)
}

// target maps a requested index within the list the entity was removed from.
func (m IndexMode) target(from, to int) int {
	if m == IndexSlot && to > from {
		return to - 1
	}
	return to
}

// MoveItem moves an item within or between containers. By default
// TargetIndex is the item's final position, so [A B C D] moving A to 3
// gives [B C D A]. Drag-and-drop clients that report the drop slot instead
// (where A to 3 means "before D") must send IndexSlot; otherwise their
// same-container forward moves land one position later than intended.
type MoveItem struct {
	ItemID            string    `json:"itemId"`
	SourceContainerID string    `json:"sourceContainerId"`
	TargetContainerID string    `json:"targetContainerId"`
	TargetIndex       int       `json:"targetIndex"`
	IndexMode         IndexMode `json:"indexMode,omitempty"`
}

func (p MoveItem) Validate() error {
	switch {
	case p.ItemID == "":
		return errors.New("item id is required")
	case p.SourceContainerID == "":
		return errors.New("source container id is required")
	case p.TargetContainerID == "":
		return errors.New("target container id is required")
	case p.TargetIndex < 0:
		return errors.New("target index must not be negative")
	}
	return p.IndexMode.validate()
}

func (p MoveItem) Apply(c Content) (Content, error) {
	out := c.Clone()
	src := out.containerIndex(p.SourceContainerID)
	if src < 0 {
		return c, fmt.Errorf("%w: container %q", ErrNotFound, p.SourceContainerID)
	}
	from := out.Containers[src].itemIndex(p.ItemID)
	if from < 0 {
		return c, fmt.Errorf("%w: item %q in container %q", ErrNotFound, p.ItemID, p.SourceContainerID)
	}
	dst := src
	if p.TargetContainerID != p.SourceContainerID {
		if dst = out.containerIndex(p.TargetContainerID); dst < 0 {
			return c, fmt.Errorf("%w: container %q", ErrNotFound, p.TargetContainerID)
		}
	}

	item := out.Containers[src].Items[from]
	out.Containers[src].Items = slices.Delete(out.Containers[src].Items, from, from+1)

	to := p.TargetIndex
	if dst == src {
		to = p.IndexMode.target(from, to)
	}
	out.Containers[dst].Items = insertAt(out.Containers[dst].Items, to, item)
	return out, nil
}

type ReorderContainers struct {
	SourceIndex int       `json:"sourceIndex"`
	TargetIndex int       `json:"targetIndex"`
	IndexMode   IndexMode `json:"indexMode,omitempty"`
}

func (p ReorderContainers) Validate() error {
	if p.SourceIndex < 0 || p.TargetIndex < 0 {
		return errors.New("indices must not be negative")
	}
	return p.IndexMode.validate()
}

func (p ReorderContainers) Apply(c Content) (Content, error) {
	if p.SourceIndex < 0 || p.SourceIndex >= len(c.Containers) {
		return c, fmt.Errorf("%w: container at index %d", ErrNotFound, p.SourceIndex)
	}
	out := c.Clone()
	col := out.Containers[p.SourceIndex]
	out.Containers = slices.Delete(out.Containers, p.SourceIndex, p.SourceIndex+1)
	out.Containers = insertAt(out.Containers, p.IndexMode.target(p.SourceIndex, p.TargetIndex), col)
	return out, nil
}

type AddItem struct {
	ID          string          `json:"id"`
	ContainerID string          `json:"containerId"`
	Title       string          `json:"title"`
	Body        json.RawMessage `json:"body,omitempty"`
}

func (p AddItem) Validate() error {
	if p.ID == "" {
		return errors.New("item id is required")
	}
	if p.ContainerID == "" {
		return errors.New("container id is required")
	}
	return nil
}

func (p AddItem) Apply(c Content) (Content, error) {
	out := c.Clone()
	idx := out.containerIndex(p.ContainerID)
	if idx < 0 {
		return c, fmt.Errorf("%w: container %q", ErrNotFound, p.ContainerID)
	}
	body := slices.Clone(p.Body)
	if len(body) == 0 {
		body = emptyBody()
	}
	out.Containers[idx].Items = append(out.Containers[idx].Items, Item{
		ID:    p.ID,
		Title: p.Title,
		Body:  body,
		Tags:  []string{},
	})
	return out, nil
}

type UpdateItemTitle struct {
	ItemID string `json:"itemId"`
	Title  string `json:"title"`
}

func (p UpdateItemTitle) Validate() error {
	if p.ItemID == "" {
		return errors.New("item id is required")
	}
	if p.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

func (p UpdateItemTitle) Apply(c Content) (Content, error) {
	return updateItems(c, p.ItemID, func(item *Item) { item.Title = p.Title })
}

type UpdateItemBody struct {
	ItemID string          `json:"itemId"`
	Body   json.RawMessage `json:"body"`
}

func (p UpdateItemBody) Validate() error {
	if p.ItemID == "" {
		return errors.New("item id is required")
	}
	return nil
}

func (p UpdateItemBody) Apply(c Content) (Content, error) {
	return updateItems(c, p.ItemID, func(item *Item) {
		item.Body = slices.Clone(p.Body)
		if len(item.Body) == 0 {
			item.Body = emptyBody()
		}
	})
}

// updateItems applies fn to every item with the given id. Ids are not
// deduplicated, so a reused id updates each copy.
func updateItems(c Content, id string, fn func(*Item)) (Content, error) {
	out := c.Clone()
	found := false
	for i := range out.Containers {
		for j := range out.Containers[i].Items {
			if out.Containers[i].Items[j].ID == id {
				fn(&out.Containers[i].Items[j])
				found = true
			}
		}
	}
	if !found {
		return c, fmt.Errorf("%w: item %q", ErrNotFound, id)
	}
	return out, nil
}

type DeleteItem struct {
	ItemID string `json:"itemId"`
}

func (p DeleteItem) Validate() error {
	if p.ItemID == "" {
		return errors.New("item id is required")
	}
	return nil
}

func (p DeleteItem) Apply(c Content) (Content, error) {
	out := c.Clone()
	found := false
	for i := range out.Containers {
		out.Containers[i].Items = slices.DeleteFunc(out.Containers[i].Items, func(item Item) bool {
			if item.ID == p.ItemID {
				found = true
				return true
			}
			return false
		})
	}
	if !found {
		return c, fmt.Errorf("%w: item %q", ErrNotFound, p.ItemID)
	}
	return out, nil
}

type AddContainer struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Color *string `json:"color,omitempty"`
}

func (p AddContainer) Validate() error {
	if p.ID == "" {
		return errors.New("container id is required")
	}
	if p.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

func (p AddContainer) Apply(c Content) (Content, error) {
	out := c.Clone()
	color := DefaultColor
	if p.Color != nil {
		color = *p.Color
	}
	out.Containers = append(out.Containers, Container{
		ID:    p.ID,
		Title: p.Title,
		Color: color,
		Items: []Item{},
	})
	return out, nil
}

type UpdateContainer struct {
	ContainerID string  `json:"containerId"`
	Title       *string `json:"title,omitempty"`
	Color       *string `json:"color,omitempty"`
}

func (p UpdateContainer) Validate() error {
	if p.ContainerID == "" {
		return errors.New("container id is required")
	}
	if p.Title != nil && *p.Title == "" {
		return errors.New("title must not be empty")
	}
	return nil
}

func (p UpdateContainer) Apply(c Content) (Content, error) {
	out := c.Clone()
	found := false
	for i := range out.Containers {
		if out.Containers[i].ID != p.ContainerID {
			continue
		}
		found = true
		if p.Title != nil {
			out.Containers[i].Title = *p.Title
		}
		if p.Color != nil {
			out.Containers[i].Color = *p.Color
		}
	}
	if !found {
		return c, fmt.Errorf("%w: container %q", ErrNotFound, p.ContainerID)
	}
	return out, nil
}

type DeleteContainer struct {
	ContainerID string `json:"containerId"`
}

func (p DeleteContainer) Validate() error {
	if p.ContainerID == "" {
		return errors.New("container id is required")
	}
	return nil
}

func (p DeleteContainer) Apply(c Content) (Content, error) {
	out := c.Clone()
	found := false
	out.Containers = slices.DeleteFunc(out.Containers, func(col Container) bool {
		if col.ID == p.ContainerID {
			found = true
			return true
		}
		return false
	})
	if !found {
		return c, fmt.Errorf("%w: container %q", ErrNotFound, p.ContainerID)
	}
	return out, nil
}
