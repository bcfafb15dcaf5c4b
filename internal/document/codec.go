package document

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// Marshal renders the document as YAML.
func Marshal(d *Document) ([]byte, error) {
	data, err := yaml.MarshalWithOptions(d.root, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("document: encode: %w", err)
	}
	return data, nil
}

// Unmarshal parses YAML. An empty or null document yields an empty tree;
// anything other than a mapping at the top level is an error.
func Unmarshal(data []byte) (*Document, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("document: decode: %w", err)
	}
	switch t := root.(type) {
	case nil:
		return New(), nil
	case map[string]any:
		return FromMap(t), nil
	default:
		return nil, fmt.Errorf("document: decode: top level is a %T, not a mapping", root)
	}
}
