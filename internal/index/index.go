// Package index keeps ordered member id lists in a single document, so
// collections can be enumerated without a scan query.
package index

import (
	"context"
	"fmt"

	"jobtrack/internal/document"
)

// Index is an ordered list of ids stored under one field of a document.
type Index struct {
	key   document.Key
	field []string
	doc   *document.Document
}

// Load reads the index document at key. A missing document yields an empty
// index; it is only written on the first Save.
func Load(ctx context.Context, store *document.Store, key document.Key, field string) (*Index, error) {
	doc, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = document.New()
	}
	return &Index{key: key, field: []string{field}, doc: doc}, nil
}

// List returns the string members in order.
func (i *Index) List() []string {
	seq, _ := i.doc.Seq(i.field)
	ids := make([]string, 0, len(seq))
	for _, item := range seq {
		if id, ok := item.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (i *Index) Len() int {
	seq, _ := i.doc.Seq(i.field)
	return len(seq)
}

// IndexOf returns the position of id, or -1. Positions count every entry
// of the underlying sequence, so they can be passed to RemoveAt.
func (i *Index) IndexOf(id string) int {
	seq, _ := i.doc.Seq(i.field)
	for pos, item := range seq {
		if s, ok := item.(string); ok && s == id {
			return pos
		}
	}
	return -1
}

func (i *Index) Contains(id string) bool {
	return i.IndexOf(id) >= 0
}

func (i *Index) Append(id string) error {
	return i.doc.AddIn(i.field, id)
}

func (i *Index) RemoveAt(pos int) error {
	seq, _ := i.doc.Seq(i.field)
	if pos < 0 || pos >= len(seq) {
		return fmt.Errorf("index: position %d out of range [0,%d) in %s", pos, len(seq), i.key)
	}
	out := make([]any, 0, len(seq)-1)
	out = append(out, seq[:pos]...)
	out = append(out, seq[pos+1:]...)
	i.doc.SetIn(i.field, out)
	return nil
}

// Save writes the index document back, creating it if needed.
func (i *Index) Save(ctx context.Context, store *document.Store) error {
	if _, ok := i.doc.GetIn(i.field); !ok {
		i.doc.SetIn(i.field, []any{})
	}
	return store.Set(ctx, i.key, i.doc)
}

// Reconcile drops entries that are not in present and appends members of
// present that are missing from the index, keeping present's order.
func (i *Index) Reconcile(present []string) (dropped, added []string) {
	exists := make(map[string]bool, len(present))
	for _, id := range present {
		exists[id] = true
	}
	seq, _ := i.doc.Seq(i.field)
	kept := make([]any, 0, len(seq))
	seen := make(map[string]bool, len(seq))
	for _, item := range seq {
		id, ok := item.(string)
		if !ok || !exists[id] || seen[id] {
			dropped = append(dropped, fmt.Sprint(item))
			continue
		}
		seen[id] = true
		kept = append(kept, id)
	}
	for _, id := range present {
		if !seen[id] {
			added = append(added, id)
			kept = append(kept, id)
			seen[id] = true
		}
	}
	i.doc.SetIn(i.field, kept)
	return dropped, added
}
