package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobtrack/internal/core/ports"
)

// Store maps keys to YAML documents on top of a byte level KVStore.
type Store struct {
	kv ports.KVStore
}

func NewStore(kv ports.KVStore) *Store {
	return &Store{kv: kv}
}

// Get returns nil, nil when nothing is stored under key.
func (s *Store) Get(ctx context.Context, key Key) (*Document, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	data, err := s.kv.Get(ctx, key.Path())
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jobtrack/document: get %s: %w", key, err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("jobtrack/document: get %s: %w", key, err)
	}
	return doc, nil
}

// Set overwrites whatever is stored under key.
func (s *Store) Set(ctx context.Context, key Key, doc *Document) error {
	if err := key.Validate(); err != nil {
		return err
	}
	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("jobtrack/document: set %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key.Path(), data); err != nil {
		return fmt.Errorf("jobtrack/document: set %s: %w", key, err)
	}
	return nil
}

// Delete fails with ports.ErrNotFound when nothing is stored under key.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, key.Path()); err != nil {
		return fmt.Errorf("jobtrack/document: delete %s: %w", key, err)
	}
	return nil
}

// List returns the keys stored directly inside c, sorted.
func (s *Store) List(ctx context.Context, c Collection) ([]Key, error) {
	prefix := c.Prefix()
	paths, err := s.kv.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("jobtrack/document: list %s: %w", c, err)
	}
	keys := make([]Key, 0, len(paths))
	for _, p := range paths {
		name := strings.TrimPrefix(p, prefix)
		if name == "" || strings.Contains(name, separator) {
			continue
		}
		keys = append(keys, c.Key(name))
	}
	return keys, nil
}
