package versions

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// List is the ordered sequence of version labels taken from site data.
// Order is significant and duplicates are kept.
type List []string

// ErrNotSequence is returned when the data file does not hold a list of labels.
var ErrNotSequence = errors.New("versions data is not a sequence")

// Clone returns an independent copy of the list.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Load reads a versions data file. The document is either a sequence of
// scalars or a mapping whose "versions" key holds one.
func Load(path string) (List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read versions file %s: %w", path, err)
	}
	list, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse versions file %s: %w", path, err)
	}
	return list, nil
}

// Parse decodes YAML (or JSON) version data. Labels keep their literal text,
// so 1.10 stays "1.10" instead of becoming a float.
func Parse(data []byte) (List, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return List{}, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		root = lookupKey(root, "versions")
		if root == nil {
			return nil, fmt.Errorf("%w: mapping has no versions key", ErrNotSequence)
		}
	}
	if isNull(root) {
		return List{}, nil
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: line %d", ErrNotSequence, root.Line)
	}

	list := make(List, 0, len(root.Content))
	for _, item := range root.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("version entry at line %d is not a scalar", item.Line)
		}
		if !utf8.ValidString(item.Value) {
			return nil, fmt.Errorf("version entry at line %d is not valid UTF-8", item.Line)
		}
		list = append(list, item.Value)
	}
	return list, nil
}

func lookupKey(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
