package security

import "strings"

// CSP builds a Content-Security-Policy header value in the
// `name value;name value;` form.
type CSP struct {
	directives map[string][]string
	order      []string
}

// NewCSP creates a CSP builder.
func NewCSP() *CSP {
	return &CSP{directives: make(map[string][]string)}
}

// Set replaces a directive with the provided values. A directive without
// values is emitted bare, which is how boolean directives are switched on.
func (c *CSP) Set(directive string, values ...string) *CSP {
	if c == nil {
		return nil
	}
	directive = normalizeDirective(directive)
	if directive == "" {
		return c
	}
	if c.directives == nil {
		c.directives = make(map[string][]string)
	}
	if _, ok := c.directives[directive]; !ok {
		c.order = append(c.order, directive)
	}
	c.directives[directive] = filterValues(values)
	return c
}

// Add appends values to an existing directive.
func (c *CSP) Add(directive string, values ...string) *CSP {
	if c == nil {
		return nil
	}
	directive = normalizeDirective(directive)
	if directive == "" {
		return c
	}
	if c.directives == nil {
		c.directives = make(map[string][]string)
	}
	if _, ok := c.directives[directive]; !ok {
		c.order = append(c.order, directive)
	}
	c.directives[directive] = append(c.directives[directive], filterValues(values)...)
	return c
}

// Has reports whether the directive was set.
func (c *CSP) Has(directive string) bool {
	if c == nil {
		return false
	}
	_, ok := c.directives[normalizeDirective(directive)]
	return ok
}

// Len returns the number of directives.
func (c *CSP) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// String returns the policy string. Every directive is terminated by ';'.
func (c *CSP) String() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	for _, directive := range c.order {
		b.WriteString(directive)
		if values := c.directives[directive]; len(values) > 0 {
			b.WriteByte(' ')
			b.WriteString(strings.Join(values, " "))
		}
		b.WriteByte(';')
	}
	return b.String()
}

func normalizeDirective(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return strings.ToLower(value)
}

func filterValues(values []string) []string {
	filtered := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		filtered = append(filtered, trimmed)
	}
	return filtered
}
