package config

import (
	"time"

	"github.com/devmarvs/secureheaders/policy"
	"github.com/devmarvs/secureheaders/rules"
)

// Config holds the header policy and the settings of the serving middleware.
type Config struct {
	Address string `json:"address" yaml:"address"`

	Policy policy.Template `json:"policy" yaml:"policy"`
	Rules  []rules.Rule    `json:"rules" yaml:"rules"`
	// KeysToRemove lists header keys to drop. Null keeps the default legacy
	// set; an empty list keeps every header.
	KeysToRemove []string `json:"keys_to_remove" yaml:"keys_to_remove"`

	Nonce    NonceSettings `json:"nonce" yaml:"nonce"`
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	DatabaseURL string `json:"database_url" yaml:"database_url"`
	RulesTable  string `json:"rules_table" yaml:"rules_table"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// NonceSettings toggles per-request nonce generation.
type NonceSettings struct {
	Disabled bool  `json:"disabled" yaml:"disabled"`
	Script   *bool `json:"script,omitempty" yaml:"script,omitempty"`
	Style    *bool `json:"style,omitempty" yaml:"style,omitempty"`
}

// NonceConfig converts the settings for the header generator. The token is
// left empty so one is generated per request.
func (n NonceSettings) NonceConfig() policy.NonceConfig {
	return policy.NonceConfig{
		ScriptNonce: n.Script,
		StyleNonce:  n.Style,
	}
}

// Default returns safe defaults.
func Default() Config {
	return Config{
		Address: ":8080",
		Policy: policy.Template{
			ContentSecurityPolicy: policy.ContentSecurityPolicy{
				MergeDefaultDirectives: policy.Flag(true),
			},
			PermissionsPolicyDirectiveSupport: []string{policy.SupportProposed, policy.SupportStandard},
		},
		CacheTTL:   5 * time.Minute,
		RulesTable: "secure_header_rules",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}
