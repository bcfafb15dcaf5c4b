// Package kvtest holds behaviour tests shared by every KVStore backend.
package kvtest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"jobtrack/internal/core/ports"
)

// Run exercises store. The store must start empty.
func Run(t *testing.T, store ports.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		if _, err := store.Get(ctx, "workflow/missing"); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("Get missing: err = %v, want ErrNotFound", err)
		}
		if err := store.Delete(ctx, "workflow/missing"); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("Delete missing: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("set get overwrite", func(t *testing.T) {
		if err := store.Set(ctx, "workflow/a", []byte("id: a\n")); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, err := store.Get(ctx, "workflow/a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != "id: a\n" {
			t.Errorf("Get = %q, want %q", got, "id: a\n")
		}

		if err := store.Set(ctx, "workflow/a", []byte("id: a\nname: x\n")); err != nil {
			t.Fatalf("Set overwrite: %v", err)
		}
		got, err = store.Get(ctx, "workflow/a")
		if err != nil {
			t.Fatalf("Get after overwrite: %v", err)
		}
		if string(got) != "id: a\nname: x\n" {
			t.Errorf("Get after overwrite = %q", got)
		}
	})

	t.Run("list by prefix", func(t *testing.T) {
		keys := []string{
			"workflow/b",
			"workflow/index",
			"job/workflow/a/index",
			"job/workflow/a/job/1",
			"job/workflow/a/job/2",
			"job/workflow/ab/job/3",
		}
		for _, k := range keys {
			if err := store.Set(ctx, k, []byte("x: 1\n")); err != nil {
				t.Fatalf("Set %s: %v", k, err)
			}
		}

		tests := []struct {
			prefix string
			want   []string
		}{
			{"workflow/", []string{"workflow/a", "workflow/b", "workflow/index"}},
			{"job/workflow/a/job/", []string{"job/workflow/a/job/1", "job/workflow/a/job/2"}},
			{"job/workflow/a/", []string{"job/workflow/a/index", "job/workflow/a/job/1", "job/workflow/a/job/2"}},
			{"job/workflow/zz/", []string{}},
		}
		for _, tt := range tests {
			got, err := store.List(ctx, tt.prefix)
			if err != nil {
				t.Fatalf("List(%q): %v", tt.prefix, err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				continue
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("List(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.Delete(ctx, "workflow/b"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := store.Get(ctx, "workflow/b"); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("Get after Delete: err = %v, want ErrNotFound", err)
		}
		got, err := store.List(ctx, "workflow/")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		for _, k := range got {
			if k == "workflow/b" {
				t.Errorf("List still returns deleted key %s", k)
			}
		}
	})

	t.Run("value isolation", func(t *testing.T) {
		value := []byte("id: c\n")
		if err := store.Set(ctx, "workflow/c", value); err != nil {
			t.Fatalf("Set: %v", err)
		}
		value[0] = 'X'
		got, err := store.Get(ctx, "workflow/c")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != "id: c\n" {
			t.Errorf("stored value changed with caller buffer: %q", got)
		}
		got[0] = 'Y'
		again, _ := store.Get(ctx, "workflow/c")
		if string(again) != "id: c\n" {
			t.Errorf("stored value changed with returned buffer: %q", again)
		}
	})
}
