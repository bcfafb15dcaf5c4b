package memdb_test

import (
	"context"
	"errors"
	"testing"

	"jobtrack/internal/core/ports"
	"jobtrack/internal/infrastructure/kvtest"
	"jobtrack/internal/infrastructure/memdb"
)

func TestStore(t *testing.T) {
	store, err := memdb.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	kvtest.Run(t, store)
}

func TestStore_Closed(t *testing.T) {
	store, err := memdb.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.Set(context.Background(), "workflow/a", nil); !errors.Is(err, ports.ErrStoreClosed) {
		t.Errorf("Set after Close: err = %v, want ErrStoreClosed", err)
	}
}
