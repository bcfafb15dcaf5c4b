// Package memdb keeps documents in a hashicorp/go-memdb radix tree. It is
// the default backend for tests and throwaway runs.
package memdb

import (
	"context"
	"fmt"
	"sync/atomic"

	"jobtrack/internal/core/ports"

	"github.com/hashicorp/go-memdb"
)

const (
	table   = "documents"
	idIndex = "id"
)

// Ensure Store implements ports.KVStore at compile time.
var _ ports.KVStore = (*Store)(nil)

type entry struct {
	Key   string
	Value []byte
}

type Store struct {
	db     *memdb.MemDB
	closed atomic.Bool
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			table: {
				Name: table,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {
						Name:    idIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
				},
			},
		},
	}
}

func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("jobtrack/memdb: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) check(key string) error {
	if s.closed.Load() {
		return ports.ErrStoreClosed
	}
	if key == "" {
		return ports.ErrInvalidKey
	}
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if err := s.check(key); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(table, idIndex, key)
	if err != nil {
		return nil, fmt.Errorf("jobtrack/memdb: get: %w", err)
	}
	if raw == nil {
		return nil, ports.ErrNotFound
	}
	value := raw.(*entry).Value
	return append([]byte(nil), value...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := s.check(key); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	// Stored entries are never mutated, so the value is copied in.
	e := &entry{Key: key, Value: append([]byte(nil), value...)}
	if err := txn.Insert(table, e); err != nil {
		return fmt.Errorf("jobtrack/memdb: set: %w", err)
	}
	txn.Commit()
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.check(key); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(table, idIndex, key)
	if err != nil {
		return fmt.Errorf("jobtrack/memdb: delete: %w", err)
	}
	if raw == nil {
		return ports.ErrNotFound
	}
	if err := txn.Delete(table, raw); err != nil {
		return fmt.Errorf("jobtrack/memdb: delete: %w", err)
	}
	txn.Commit()
	return nil
}

func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	if s.closed.Load() {
		return nil, ports.ErrStoreClosed
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(table, idIndex+"_prefix", prefix)
	if err != nil {
		return nil, fmt.Errorf("jobtrack/memdb: list: %w", err)
	}
	var keys []string
	for raw := it.Next(); raw != nil; raw = it.Next() {
		keys = append(keys, raw.(*entry).Key)
	}
	return keys, nil
}

func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}
