// Package pebble stores documents in an embedded cockroachdb/pebble LSM.
// Keys are kept in byte order, so prefix listing is a bounded range scan.
package pebble

import (
	"context"
	"errors"
	"fmt"

	"jobtrack/internal/core/ports"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// Ensure Store implements ports.KVStore at compile time.
var _ ports.KVStore = (*Store)(nil)

type Store struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
}

// Option configures the Store.
type Option func(*pebble.Options)

// WithFS swaps the filesystem, e.g. vfs.NewMem() in tests.
func WithFS(fs vfs.FS) Option {
	return func(o *pebble.Options) { o.FS = fs }
}

// Open opens or creates the database in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	o := &pebble.Options{}
	for _, opt := range opts {
		opt(o)
	}
	db, err := pebble.Open(dir, o)
	if err != nil {
		return nil, fmt.Errorf("jobtrack/pebble: open %s: %w", dir, err)
	}
	return &Store{db: db, writeOpts: pebble.Sync}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ports.ErrInvalidKey
	}
	val, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("jobtrack/pebble: get: %w", err)
	}
	defer closer.Close()
	// val is only valid until closer is closed.
	return append([]byte(nil), val...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ports.ErrInvalidKey
	}
	if err := s.db.Set([]byte(key), value, s.writeOpts); err != nil {
		return fmt.Errorf("jobtrack/pebble: set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.Get(ctx, key); err != nil {
		return err
	}
	if err := s.db.Delete([]byte(key), s.writeOpts); err != nil {
		return fmt.Errorf("jobtrack/pebble: delete: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	iterOpts := &pebble.IterOptions{}
	if prefix != "" {
		iterOpts.LowerBound = []byte(prefix)
		iterOpts.UpperBound = upperBound([]byte(prefix))
	}
	it, err := s.db.NewIterWithContext(ctx, iterOpts)
	if err != nil {
		return nil, fmt.Errorf("jobtrack/pebble: list: %w", err)
	}

	var keys []string
	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			it.Close()
			return nil, err
		}
		keys = append(keys, string(it.Key()))
	}
	if err := it.Error(); err != nil {
		it.Close()
		return nil, fmt.Errorf("jobtrack/pebble: list: %w", err)
	}
	return keys, it.Close()
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("jobtrack/pebble: close: %w", err)
	}
	return nil
}

// upperBound returns the smallest key greater than every key with prefix,
// or nil when prefix is all 0xff.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
