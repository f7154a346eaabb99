package rules

import (
	"strings"

	"github.com/devmarvs/secureheaders/policy"
)

// Aggregate resolves one group of rules against the base template.
//
// The base is merged over the computed defaults, then every rule directive is
// folded in rule order. A boolean replaces the current value. A string
// replaces an exact 'none', an unset value or a boolean, and is otherwise
// appended after a single space. String values are trimmed once at the end.
func Aggregate(base policy.Template, group []Rule, nonce *policy.NonceConfig) policy.Template {
	final := policy.Merge(policy.Defaults(base.Dev(), nonce), base)
	csp := final.ContentSecurityPolicy.Directives.Clone()
	if csp == nil {
		csp = make(policy.Directives)
	}

	for _, rule := range group {
		for _, key := range rule.Directives.Names() {
			csp[key] = fold(csp[key], rule.Directives[key])
		}
	}

	for key, value := range csp {
		if text, ok := value.Text(); ok {
			csp[key] = policy.String(strings.TrimSpace(text))
		}
	}

	final.ContentSecurityPolicy.Directives = final.ContentSecurityPolicy.Directives.Merge(csp)
	return final
}

func fold(current, next policy.Value) policy.Value {
	switch next.Kind() {
	case policy.KindBool:
		return next
	case policy.KindString:
		text, _ := next.Text()
		existing, ok := current.Text()
		if !ok || existing == policy.None {
			return next
		}
		return policy.String(existing + " " + text)
	default:
		return current
	}
}
