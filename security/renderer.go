package security

import (
	"strings"

	"github.com/devmarvs/secureheaders/policy"
)

const reportOnlySuffix = "-Report-Only"

// Renderer turns a resolved template into literal response headers.
type Renderer interface {
	Render(tpl policy.Template) ([]Header, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(tpl policy.Template) ([]Header, error)

// Render calls f.
func (f RendererFunc) Render(tpl policy.Template) ([]Header, error) {
	return f(tpl)
}

// DefaultRenderer maps templates to the standard header names.
//
// CSP directives are emitted in name order; false and empty directives are
// dropped and true emits a bare directive. With mergeDefaultDirectives the
// renderer fills directives missing from the template from the baseline
// policy first. A policy with no remaining directives omits the CSP headers
// and still renders the rest of the template. isDev has no effect.
type DefaultRenderer struct{}

// NewRenderer returns the default renderer.
func NewRenderer() DefaultRenderer {
	return DefaultRenderer{}
}

// Render implements Renderer.
func (DefaultRenderer) Render(tpl policy.Template) ([]Header, error) {
	headers := make([]Header, 0, 9)
	if csp := ContentSecurityPolicy(tpl.ContentSecurityPolicy); csp != "" {
		suffix := ""
		if policy.Enabled(tpl.ContentSecurityPolicy.ReportOnly) {
			suffix = reportOnlySuffix
		}
		headers = append(headers,
			Header{Key: HeaderContentSecurityPolicy + suffix, Value: csp},
			Header{Key: HeaderXContentSecurityPolicy + suffix, Value: csp},
			Header{Key: HeaderXWebKitCSP + suffix, Value: csp},
		)
	}

	if features := Features(tpl.PermissionsPolicyDirectiveSupport); len(features) > 0 {
		headers = append(headers,
			Header{Key: HeaderFeaturePolicy, Value: FeaturePolicy(tpl.PermissionsPolicyDirectiveSupport, tpl.PermissionsPolicy)},
			Header{Key: HeaderPermissionsPolicy, Value: PermissionsPolicy(tpl.PermissionsPolicyDirectiveSupport, tpl.PermissionsPolicy)},
		)
	}

	headers = appendValue(headers, HeaderReferrerPolicy, tpl.ReferrerPolicy)
	headers = appendValue(headers, HeaderXContentTypeOptions, tpl.ContentTypeOptions)
	headers = appendValue(headers, HeaderXFrameOptions, tpl.FrameOptions)
	headers = appendValue(headers, HeaderXXSSProtection, tpl.XSSProtection)
	return headers, nil
}

// ContentSecurityPolicy renders the directive list of a CSP section.
func ContentSecurityPolicy(section policy.ContentSecurityPolicy) string {
	directives := section.Directives
	if policy.Enabled(section.MergeDefaultDirectives) {
		directives = policy.Defaults(false, nil).ContentSecurityPolicy.Directives.Merge(directives)
	}

	builder := NewCSP()
	for _, name := range directives.Names() {
		value := directives[name]
		if flag, ok := value.Flag(); ok {
			if flag {
				builder.Set(string(name))
			}
			continue
		}
		text, ok := value.Text()
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		builder.Set(string(name), text)
	}
	return builder.String()
}

func appendValue(headers []Header, key string, value policy.Value) []Header {
	text, ok := value.Text()
	if !ok {
		return headers
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return headers
	}
	return append(headers, Header{Key: key, Value: text})
}
