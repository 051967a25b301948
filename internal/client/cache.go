package client

import (
	"sync/atomic"

	"ignita/internal/document/model"

	"github.com/puzpuzpuz/xsync/v3"
)

// Entry is a cached document. A stale entry is still served to Peek but
// makes the next read refetch.
type Entry struct {
	Document *model.Document
	Stale    bool

	gen uint64
}

// Cache holds the client's view of documents keyed by id. Every write
// moves the entry to a new generation so a refetch can tell whether the
// cache changed while it was in flight.
type Cache struct {
	entries *xsync.MapOf[string, Entry]
	gen     atomic.Uint64
}

func NewCache() *Cache {
	return &Cache{entries: xsync.NewMapOf[string, Entry]()}
}

// Peek returns a copy of the entry regardless of staleness.
func (c *Cache) Peek(docID string) (Entry, bool) {
	e, ok := c.entries.Load(docID)
	if !ok {
		return Entry{}, false
	}
	e.Document = e.Document.Clone()
	return e, true
}

// Fresh returns the cached document when it is present and not stale.
func (c *Cache) Fresh(docID string) (*model.Document, bool) {
	e, ok := c.entries.Load(docID)
	if !ok || e.Stale {
		return nil, false
	}
	return e.Document.Clone(), true
}

// Generation is the entry's current generation, 0 when absent.
func (c *Cache) Generation(docID string) uint64 {
	e, _ := c.entries.Load(docID)
	return e.gen
}

func (c *Cache) Set(doc *model.Document) {
	c.entries.Store(doc.ID, Entry{Document: doc.Clone(), gen: c.gen.Add(1)})
}

// Predict stores a locally computed document. A prediction made from a
// stale entry stays stale so the refetch it owes still happens.
func (c *Cache) Predict(doc *model.Document, stale bool) {
	c.entries.Store(doc.ID, Entry{Document: doc.Clone(), Stale: stale, gen: c.gen.Add(1)})
}

// SetIfGeneration stores doc only if the entry has not been written since
// gen was read.
func (c *Cache) SetIfGeneration(doc *model.Document, gen uint64) bool {
	stored := false
	c.entries.Compute(doc.ID, func(old Entry, loaded bool) (Entry, bool) {
		if old.gen != gen {
			return old, !loaded
		}
		stored = true
		return Entry{Document: doc.Clone(), gen: c.gen.Add(1)}, false
	})
	return stored
}

// Restore puts a snapshot taken with Peek back in place. A snapshot of an
// absent entry removes the document.
func (c *Cache) Restore(docID string, snapshot Entry, existed bool) {
	if !existed {
		c.entries.Delete(docID)
		return
	}
	snapshot.Document = snapshot.Document.Clone()
	snapshot.gen = c.gen.Add(1)
	c.entries.Store(docID, snapshot)
}

// Invalidate marks the entry stale.
func (c *Cache) Invalidate(docID string) {
	c.entries.Compute(docID, func(old Entry, loaded bool) (Entry, bool) {
		if !loaded {
			return old, true
		}
		old.Stale = true
		old.gen = c.gen.Add(1)
		return old, false
	})
}

func (c *Cache) Remove(docID string) {
	c.entries.Delete(docID)
}
