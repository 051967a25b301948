package client

import "github.com/oklog/ulid/v2"

// NewItemID returns a fresh, time ordered id for a card.
func NewItemID() string {
	return ulid.Make().String()
}

// NewContainerID returns a fresh, time ordered id for a column.
func NewContainerID() string {
	return ulid.Make().String()
}
