package document

import (
	"errors"
	"testing"

	"jobtrack/internal/core/ports"
)

func TestCollection_Paths(t *testing.T) {
	t.Parallel()

	jobs := NewCollection("job").Collection("workflow").Collection("w1")
	if got := jobs.Path(); got != "job/workflow/w1" {
		t.Errorf("Path = %q", got)
	}
	if got := jobs.Prefix(); got != "job/workflow/w1/" {
		t.Errorf("Prefix = %q", got)
	}

	key := jobs.Collection("job").Key("j1")
	if got := key.Path(); got != "job/workflow/w1/job/j1" {
		t.Errorf("Key.Path = %q", got)
	}
	if key.Name() != "j1" {
		t.Errorf("Key.Name = %q", key.Name())
	}
	if got := key.Collection().Path(); got != "job/workflow/w1/job" {
		t.Errorf("Key.Collection = %q", got)
	}
}

func TestCollection_NestingDoesNotAlias(t *testing.T) {
	t.Parallel()

	base := NewCollection("job").Collection("workflow")
	a := base.Collection("a")
	b := base.Collection("b")
	if a.Path() != "job/workflow/a" || b.Path() != "job/workflow/b" {
		t.Errorf("siblings share storage: %q %q", a.Path(), b.Path())
	}
}

func TestKey_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  Key
		ok   bool
	}{
		{"plain", NewCollection("workflow").Key("0190a1b2-c3d4"), true},
		{"nested", NewCollection("job").Collection("workflow").Collection("w1").Key("index"), true},
		{"empty name", NewCollection("workflow").Key(""), false},
		{"dot dot", NewCollection("workflow").Key(".."), false},
		{"dot", NewCollection("workflow").Key("."), false},
		{"slash", NewCollection("workflow").Key("a/b"), false},
		{"backslash", NewCollection("workflow").Key(`a\b`), false},
		{"nul", NewCollection("workflow").Key("a\x00"), false},
		{"bad collection", NewCollection("job").Collection("..").Key("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.key.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.ok && !errors.Is(err, ports.ErrInvalidKey) {
				t.Errorf("Validate: err = %v, want ErrInvalidKey", err)
			}
		})
	}
}
