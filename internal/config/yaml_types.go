package config

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML implements lenient YAML unmarshaling for Bool. It never
// fails: unparseable scalars and non-scalar nodes mark the value invalid.
func (b *Bool) UnmarshalYAML(node *yaml.Node) error {
	*b = Bool{Set: true, Raw: node.Value, Line: node.Line}

	if node.Kind != yaml.ScalarNode {
		b.Invalid = true
		return nil
	}

	v, err := strconv.ParseBool(strings.TrimSpace(node.Value))
	if err != nil {
		// YAML 1.1 spellings still found in hand-written files.
		switch strings.ToLower(strings.TrimSpace(node.Value)) {
		case "yes", "on":
			v = true
		case "no", "off":
			v = false
		default:
			b.Invalid = true
			return nil
		}
	}

	b.Value = v

	return nil
}

// MarshalYAML implements YAML marshaling for Bool.
func (b Bool) MarshalYAML() (any, error) {
	return b.Value, nil
}

// IsZero lets omitempty skip unset values.
func (b Bool) IsZero() bool {
	return !b.Set
}

// UnmarshalYAML implements lenient YAML unmarshaling for Int.
func (i *Int) UnmarshalYAML(node *yaml.Node) error {
	*i = Int{Set: true, Raw: node.Value, Line: node.Line}

	if node.Kind != yaml.ScalarNode {
		i.Invalid = true
		return nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(node.Value))
	if err != nil {
		i.Invalid = true
		return nil
	}

	i.Value = v

	return nil
}

// MarshalYAML implements YAML marshaling for Int.
func (i Int) MarshalYAML() (any, error) {
	return i.Value, nil
}

// IsZero lets omitempty skip unset values.
func (i Int) IsZero() bool {
	return !i.Set
}
