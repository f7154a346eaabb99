package security

import (
	"strings"

	"github.com/devmarvs/secureheaders/policy"
)

var featureTiers = map[string][]string{
	policy.SupportProposed: {
		"clipboard-read",
		"clipboard-write",
		"gamepad",
	},
	policy.SupportStandard: {
		"accelerometer",
		"autoplay",
		"camera",
		"cross-origin-isolated",
		"display-capture",
		"encrypted-media",
		"fullscreen",
		"geolocation",
		"gyroscope",
		"magnetometer",
		"microphone",
		"midi",
		"payment",
		"picture-in-picture",
		"publickey-credentials-get",
		"screen-wake-lock",
		"sync-xhr",
		"usb",
		"web-share",
		"xr-spatial-tracking",
	},
	policy.SupportExperimental: {
		"ambient-light-sensor",
		"battery",
		"document-domain",
		"execution-while-not-rendered",
		"execution-while-out-of-viewport",
		"navigation-override",
		"speaker-selection",
	},
}

// Features returns the browser features of the supported tiers, in tier
// order. Unknown tiers and repeated features are skipped.
func Features(support []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tier := range support {
		for _, feature := range featureTiers[tier] {
			if _, ok := seen[feature]; ok {
				continue
			}
			seen[feature] = struct{}{}
			out = append(out, feature)
		}
	}
	return out
}

// PermissionsPolicy builds the Permissions-Policy value for the supported
// features. Features without an entry in overrides are disabled.
func PermissionsPolicy(support []string, overrides map[string]policy.Value) string {
	features := Features(support)
	parts := make([]string, 0, len(features))
	for _, feature := range features {
		parts = append(parts, feature+"="+permissionsAllowlist(overrides[feature]))
	}
	return strings.Join(parts, ",")
}

// FeaturePolicy builds the legacy Feature-Policy value for the same features.
func FeaturePolicy(support []string, overrides map[string]policy.Value) string {
	features := Features(support)
	parts := make([]string, 0, len(features))
	for _, feature := range features {
		parts = append(parts, feature+" "+featureAllowlist(overrides[feature]))
	}
	return strings.Join(parts, ";")
}

func allowlistTokens(value policy.Value) (all bool, tokens []string) {
	if flag, ok := value.Flag(); ok {
		return flag, nil
	}
	text, _ := value.Text()
	for _, token := range strings.Fields(text) {
		token = strings.Trim(token, "'\"")
		switch token {
		case "*":
			return true, nil
		case "none", "":
			continue
		default:
			tokens = append(tokens, token)
		}
	}
	return false, tokens
}

func permissionsAllowlist(value policy.Value) string {
	all, tokens := allowlistTokens(value)
	if all {
		return "*"
	}
	quoted := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token == "self" || token == "src" {
			quoted = append(quoted, token)
			continue
		}
		quoted = append(quoted, `"`+token+`"`)
	}
	return "(" + strings.Join(quoted, " ") + ")"
}

func featureAllowlist(value policy.Value) string {
	all, tokens := allowlistTokens(value)
	if all {
		return "*"
	}
	if len(tokens) == 0 {
		return policy.None
	}
	quoted := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token == "self" || token == "src" {
			quoted = append(quoted, "'"+token+"'")
			continue
		}
		quoted = append(quoted, token)
	}
	return strings.Join(quoted, " ")
}
