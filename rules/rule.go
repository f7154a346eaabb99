package rules

import (
	"encoding/json"
	"fmt"

	"github.com/devmarvs/secureheaders/policy"
	"gopkg.in/yaml.v3"
)

// DefaultSource is the route pattern used for rules without a source.
const DefaultSource = "/"

const (
	keyDescription = "description"
	keySource      = "source"
)

// Rule overrides directives for the routes matching Source. In JSON and YAML
// a rule is one flat object: description and source next to directive keys.
type Rule struct {
	Description string
	Source      string
	Directives  policy.Directives
}

// RouteSource returns the rule source, or DefaultSource when empty.
func (r Rule) RouteSource() string {
	if r.Source == "" {
		return DefaultSource
	}
	return r.Source
}

// MarshalJSON writes the flat object form.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.flat())
}

// UnmarshalJSON reads the flat object form.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("rule: %w", err)
	}

	*r = Rule{}
	for key, value := range raw {
		switch key {
		case keyDescription:
			if err := json.Unmarshal(value, &r.Description); err != nil {
				return fmt.Errorf("rule: description: %w", err)
			}
		case keySource:
			if err := json.Unmarshal(value, &r.Source); err != nil {
				return fmt.Errorf("rule: source: %w", err)
			}
		default:
			var directive policy.Value
			if err := json.Unmarshal(value, &directive); err != nil {
				return fmt.Errorf("rule: %s: %w", key, err)
			}
			r.set(policy.Directive(key), directive)
		}
	}
	return nil
}

// MarshalYAML writes the flat mapping form.
func (r Rule) MarshalYAML() (any, error) {
	return r.flat(), nil
}

// UnmarshalYAML reads the flat mapping form.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: rule must be a mapping", node.Line)
	}

	*r = Rule{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		switch key {
		case keyDescription:
			if err := value.Decode(&r.Description); err != nil {
				return fmt.Errorf("rule: description: %w", err)
			}
		case keySource:
			if err := value.Decode(&r.Source); err != nil {
				return fmt.Errorf("rule: source: %w", err)
			}
		default:
			var directive policy.Value
			if err := value.Decode(&directive); err != nil {
				return fmt.Errorf("rule: %s: %w", key, err)
			}
			r.set(policy.Directive(key), directive)
		}
	}
	return nil
}

func (r *Rule) set(key policy.Directive, value policy.Value) {
	if !value.IsSet() {
		return
	}
	if r.Directives == nil {
		r.Directives = make(policy.Directives)
	}
	r.Directives[key] = value
}

func (r Rule) flat() map[string]any {
	out := make(map[string]any, len(r.Directives)+2)
	if r.Description != "" {
		out[keyDescription] = r.Description
	}
	if r.Source != "" {
		out[keySource] = r.Source
	}
	for key, value := range r.Directives {
		if value.IsSet() {
			out[string(key)] = value
		}
	}
	return out
}
