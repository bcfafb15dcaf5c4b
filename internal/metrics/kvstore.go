package metrics

import (
	"context"
	"errors"
	"time"

	"jobtrack/internal/core/ports"
)

type instrumentedKV struct {
	next    ports.KVStore
	backend string
	m       *Metrics
}

// InstrumentKV wraps kv so every call is timed. A missing key on Get is not
// counted as an error.
func InstrumentKV(kv ports.KVStore, backend string, m *Metrics) ports.KVStore {
	if m == nil {
		return kv
	}
	return &instrumentedKV{next: kv, backend: backend, m: m}
}

func (s *instrumentedKV) observe(op string, start time.Time, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		err = nil
	}
	s.m.ObserveStoreOp(s.backend, op, err, time.Since(start))
}

func (s *instrumentedKV) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	v, err := s.next.Get(ctx, key)
	s.observe("get", start, err)
	return v, err
}

func (s *instrumentedKV) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observe("set", start, err)
	return err
}

func (s *instrumentedKV) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.observe("delete", start, err)
	return err
}

func (s *instrumentedKV) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.next.List(ctx, prefix)
	s.observe("list", start, err)
	return keys, err
}

func (s *instrumentedKV) Close() error {
	return s.next.Close()
}
