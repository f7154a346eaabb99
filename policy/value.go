package policy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindUnset Kind = iota
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "unset"
	}
}

// Value is either a source list string or a boolean toggle.
// The zero value is unset and is skipped when merging.
type Value struct {
	kind Kind
	text string
	flag bool
}

// String returns a string Value.
func String(text string) Value {
	return Value{kind: KindString, text: text}
}

// Bool returns a boolean Value.
func Bool(flag bool) Value {
	return Value{kind: KindBool, flag: flag}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsSet reports whether v holds either variant.
func (v Value) IsSet() bool {
	return v.kind != KindUnset
}

// Text returns the string variant and whether v holds one.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindString
}

// Flag returns the boolean variant and whether v holds one.
func (v Value) Flag() (bool, bool) {
	return v.flag, v.kind == KindBool
}

// Equal reports whether both values hold the same variant and content.
func (v Value) Equal(other Value) bool {
	return v == other
}

// GoString renders the value for test failure output.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.text)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return "<unset>"
	}
}

// MarshalJSON encodes strings and booleans as their JSON counterparts.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.text)
	case KindBool:
		return json.Marshal(v.flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON string, boolean or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Value{}
		return nil
	case bytes.Equal(data, []byte("true")):
		*v = Bool(true)
		return nil
	case bytes.Equal(data, []byte("false")):
		*v = Bool(false)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("value must be a string or boolean: %s", data)
	}
	*v = String(text)
	return nil
}

// MarshalYAML encodes strings and booleans as YAML scalars.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindString:
		return v.text, nil
	case KindBool:
		return v.flag, nil
	default:
		return nil, nil
	}
}

// UnmarshalYAML accepts a scalar node. Nodes tagged !!bool decode to booleans,
// every other scalar is kept as its literal text.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value must be a string or boolean", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		*v = Value{}
	case "!!bool":
		var flag bool
		if err := node.Decode(&flag); err != nil {
			return err
		}
		*v = Bool(flag)
	default:
		*v = String(node.Value)
	}
	return nil
}
