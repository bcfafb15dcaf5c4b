package document

import (
	"fmt"
)

// Document is a semi-structured tree of maps, sequences and scalars. It
// accepts partially populated content; validation happens in Materialize.
type Document struct {
	root map[string]any
}

func New() *Document {
	return &Document{root: map[string]any{}}
}

// FromMap wraps m without copying it.
func FromMap(m map[string]any) *Document {
	if m == nil {
		m = map[string]any{}
	}
	return &Document{root: m}
}

// Map exposes the underlying tree.
func (d *Document) Map() map[string]any {
	return d.root
}

// GetIn returns the value stored at path.
func (d *Document) GetIn(path []string) (any, bool) {
	if len(path) == 0 {
		return d.root, true
	}
	var current any = d.root
	for _, segment := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SetIn writes value at path, replacing anything in the way with maps.
func (d *Document) SetIn(path []string, value any) {
	if len(path) == 0 {
		return
	}
	m := d.root
	for _, segment := range path[:len(path)-1] {
		next, ok := m[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[segment] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

// DeleteIn removes the value at path and reports whether it existed.
func (d *Document) DeleteIn(path []string) bool {
	if len(path) == 0 {
		return false
	}
	parent, ok := d.GetIn(path[:len(path)-1])
	if !ok {
		return false
	}
	m, ok := parent.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := m[path[len(path)-1]]; !ok {
		return false
	}
	delete(m, path[len(path)-1])
	return true
}

// AddIn appends value to the sequence at path, creating it when absent.
func (d *Document) AddIn(path []string, value any) error {
	current, ok := d.GetIn(path)
	if !ok || current == nil {
		d.SetIn(path, []any{value})
		return nil
	}
	seq, ok := current.([]any)
	if !ok {
		return fmt.Errorf("document: %v is a %T, not a sequence", path, current)
	}
	d.SetIn(path, append(seq, value))
	return nil
}

// Seq returns the sequence at path.
func (d *Document) Seq(path []string) ([]any, bool) {
	current, ok := d.GetIn(path)
	if !ok {
		return nil, false
	}
	seq, ok := current.([]any)
	return seq, ok
}

// GetString returns the scalar at path when it is a non-empty string.
func (d *Document) GetString(path []string) (string, bool) {
	current, ok := d.GetIn(path)
	if !ok {
		return "", false
	}
	s, ok := current.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func (d *Document) SetString(path []string, value string) {
	d.SetIn(path, value)
}

// SetOptionalString removes the field when value is nil.
func (d *Document) SetOptionalString(path []string, value *string) {
	if value == nil {
		d.DeleteIn(path)
		return
	}
	d.SetIn(path, *value)
}
