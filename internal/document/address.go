package document

import (
	"fmt"
	"strings"

	"jobtrack/internal/core/ports"
)

const separator = "/"

// Collection is an ordered list of path segments, e.g. job/workflow/<id>.
type Collection struct {
	path []string
}

// Key addresses one document inside a collection.
type Key struct {
	collection Collection
	value      string
}

func NewCollection(name string) Collection {
	return Collection{path: []string{name}}
}

// Collection returns a nested collection. The receiver is not modified.
func (c Collection) Collection(name string) Collection {
	path := make([]string, 0, len(c.path)+1)
	path = append(path, c.path...)
	return Collection{path: append(path, name)}
}

func (c Collection) Key(value string) Key {
	return Key{collection: c, value: value}
}

func (c Collection) Path() string {
	return strings.Join(c.path, separator)
}

// Prefix is the path every key of the collection starts with.
func (c Collection) Prefix() string {
	return c.Path() + separator
}

func (c Collection) String() string { return c.Path() }

func (k Key) Path() string {
	return k.collection.Path() + separator + k.value
}

// Name is the terminal segment of the key.
func (k Key) Name() string { return k.value }

func (k Key) Collection() Collection { return k.collection }

func (k Key) String() string { return k.Path() }

// Validate rejects segments that would collide with another address or
// escape the store root once mapped onto a filesystem.
func (k Key) Validate() error {
	segments := append(append([]string{}, k.collection.path...), k.value)
	for _, s := range segments {
		switch {
		case s == "", s == ".", s == "..":
			return fmt.Errorf("%w: segment %q in %q", ports.ErrInvalidKey, s, k.Path())
		case strings.ContainsAny(s, "/\\\x00"):
			return fmt.Errorf("%w: segment %q in %q", ports.ErrInvalidKey, s, k.Path())
		}
	}
	return nil
}
