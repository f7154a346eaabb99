package policy

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	keyMergeDefaultDirectives = "mergeDefaultDirectives"
	keyReportOnly             = "reportOnly"
)

// ContentSecurityPolicy holds the CSP section of a Template. In JSON and YAML
// it is one flat object: the two flags next to the directive keys.
type ContentSecurityPolicy struct {
	MergeDefaultDirectives *bool
	ReportOnly             *bool
	Directives             Directives
}

// Template is a full or partial security header policy. Unset fields are
// absent, so the same type serves as defaults, caller overrides and the
// resolved result.
type Template struct {
	Source                            string                `json:"source,omitempty" yaml:"source,omitempty"`
	ContentSecurityPolicy             ContentSecurityPolicy `json:"contentSecurityPolicy" yaml:"contentSecurityPolicy"`
	ReferrerPolicy                    Value                 `json:"referrerPolicy" yaml:"referrerPolicy"`
	PermissionsPolicy                 map[string]Value      `json:"permissionsPolicy,omitempty" yaml:"permissionsPolicy,omitempty"`
	PermissionsPolicyDirectiveSupport []string              `json:"permissionsPolicyDirectiveSupport,omitempty" yaml:"permissionsPolicyDirectiveSupport,omitempty"`
	IsDev                             *bool                 `json:"isDev,omitempty" yaml:"isDev,omitempty"`
	FrameOptions                      Value                 `json:"frameOptions" yaml:"frameOptions"`
	XSSProtection                     Value                 `json:"xssProtection" yaml:"xssProtection"`
	ContentTypeOptions                Value                 `json:"contentTypeOptions" yaml:"contentTypeOptions"`
}

// Flag returns a pointer to v for the optional boolean fields.
func Flag(v bool) *bool {
	return &v
}

// Enabled reports whether an optional flag is set and true.
func Enabled(flag *bool) bool {
	return flag != nil && *flag
}

// Dev reports whether the template targets a development environment.
func (t Template) Dev() bool {
	return Enabled(t.IsDev)
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	out := t
	out.ContentSecurityPolicy = t.ContentSecurityPolicy.Clone()
	out.PermissionsPolicy = cloneValues(t.PermissionsPolicy)
	out.PermissionsPolicyDirectiveSupport = cloneStrings(t.PermissionsPolicyDirectiveSupport)
	out.IsDev = cloneFlag(t.IsDev)
	return out
}

// Clone returns a deep copy of c.
func (c ContentSecurityPolicy) Clone() ContentSecurityPolicy {
	return ContentSecurityPolicy{
		MergeDefaultDirectives: cloneFlag(c.MergeDefaultDirectives),
		ReportOnly:             cloneFlag(c.ReportOnly),
		Directives:             c.Directives.Clone(),
	}
}

// MarshalJSON writes the flat object form.
func (c ContentSecurityPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.flat())
}

// UnmarshalJSON reads the flat object form.
func (c *ContentSecurityPolicy) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("contentSecurityPolicy: %w", err)
	}
	return c.fromFlat(raw)
}

// MarshalYAML writes the flat mapping form.
func (c ContentSecurityPolicy) MarshalYAML() (any, error) {
	return c.flat(), nil
}

// UnmarshalYAML reads the flat mapping form.
func (c *ContentSecurityPolicy) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]Value
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("contentSecurityPolicy: %w", err)
	}
	return c.fromFlat(raw)
}

func (c ContentSecurityPolicy) flat() map[string]Value {
	out := make(map[string]Value, len(c.Directives)+2)
	if c.MergeDefaultDirectives != nil {
		out[keyMergeDefaultDirectives] = Bool(*c.MergeDefaultDirectives)
	}
	if c.ReportOnly != nil {
		out[keyReportOnly] = Bool(*c.ReportOnly)
	}
	for key, value := range c.Directives {
		if value.IsSet() {
			out[string(key)] = value
		}
	}
	return out
}

func (c *ContentSecurityPolicy) fromFlat(raw map[string]Value) error {
	*c = ContentSecurityPolicy{}
	for key, value := range raw {
		switch key {
		case keyMergeDefaultDirectives, keyReportOnly:
			if !value.IsSet() {
				continue
			}
			flag, ok := value.Flag()
			if !ok {
				return fmt.Errorf("contentSecurityPolicy: %s must be a boolean", key)
			}
			if key == keyMergeDefaultDirectives {
				c.MergeDefaultDirectives = Flag(flag)
			} else {
				c.ReportOnly = Flag(flag)
			}
		default:
			if c.Directives == nil {
				c.Directives = make(Directives, len(raw))
			}
			c.Directives[Directive(key)] = value
		}
	}
	return nil
}

func cloneFlag(flag *bool) *bool {
	if flag == nil {
		return nil
	}
	return Flag(*flag)
}

func cloneValues(values map[string]Value) map[string]Value {
	if values == nil {
		return nil
	}
	out := make(map[string]Value, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
