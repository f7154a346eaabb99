package security

// Header names produced by the renderer.
const (
	HeaderContentSecurityPolicy           = "Content-Security-Policy"
	HeaderContentSecurityPolicyReportOnly = "Content-Security-Policy-Report-Only"
	HeaderXContentSecurityPolicy          = "X-Content-Security-Policy"
	HeaderXWebKitCSP                      = "X-WebKit-CSP"
	HeaderFeaturePolicy                   = "Feature-Policy"
	HeaderPermissionsPolicy               = "Permissions-Policy"
	HeaderReferrerPolicy                  = "Referrer-Policy"
	HeaderXContentTypeOptions             = "X-Content-Type-Options"
	HeaderXFrameOptions                   = "X-Frame-Options"
	HeaderXXSSProtection                  = "X-XSS-Protection"
	HeaderNonce                           = "x-nonce"
)

// LegacyHeaders lists the superseded header names the renderer still emits.
// Browsers that understand the modern headers log noise for these.
func LegacyHeaders() []string {
	return []string{
		HeaderFeaturePolicy,
		HeaderXContentSecurityPolicy,
		HeaderXWebKitCSP,
		HeaderXContentSecurityPolicy + reportOnlySuffix,
		HeaderXWebKitCSP + reportOnlySuffix,
	}
}

// Header is one resolved response header.
type Header struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Setter is anything that can set a header, such as http.Header.
type Setter interface {
	Set(key, value string)
}

// Apply sets every header on dst in order and returns dst.
func Apply[S Setter](dst S, headers []Header) S {
	for _, header := range headers {
		dst.Set(header.Key, header.Value)
	}
	return dst
}

// Filter returns the headers whose key is not listed in remove. Keys are
// compared exactly.
func Filter(headers []Header, remove []string) []Header {
	if len(remove) == 0 {
		return append([]Header(nil), headers...)
	}
	drop := make(map[string]struct{}, len(remove))
	for _, key := range remove {
		drop[key] = struct{}{}
	}

	out := make([]Header, 0, len(headers))
	for _, header := range headers {
		if _, ok := drop[header.Key]; ok {
			continue
		}
		out = append(out, header)
	}
	return out
}
