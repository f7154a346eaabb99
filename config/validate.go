package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devmarvs/secureheaders/apperr"
	"github.com/devmarvs/secureheaders/policy"
	"github.com/devmarvs/secureheaders/router"
)

// Validate validates config values.
func Validate(cfg Config) error {
	var issues []string

	if cfg.CacheTTL < 0 {
		issues = append(issues, "cache_ttl must be >= 0")
	}

	for _, tier := range cfg.Policy.PermissionsPolicyDirectiveSupport {
		if !validSupportTier(tier) {
			issues = append(issues, fmt.Sprintf("policy.permissionsPolicyDirectiveSupport: unknown tier %q", tier))
		}
	}

	routes := router.New()
	for i, rule := range cfg.Rules {
		if _, err := routes.Add(rule.RouteSource()); err != nil {
			issues = append(issues, fmt.Sprintf("rules[%d].source %q: %v", i, rule.Source, err))
		}
		for name := range rule.Directives {
			if name == "" {
				issues = append(issues, fmt.Sprintf("rules[%d]: empty directive name", i))
			}
		}
	}

	if cfg.LogLevel != "" && !validLogLevel(cfg.LogLevel) {
		issues = append(issues, "log_level must be one of debug|info|warn|error")
	}
	if cfg.LogFormat != "" && !validLogFormat(cfg.LogFormat) {
		issues = append(issues, "log_format must be one of text|json")
	}

	if len(issues) > 0 {
		return apperr.Config("invalid configuration", errors.New(strings.Join(issues, "; ")))
	}
	return nil
}

func validSupportTier(tier string) bool {
	switch tier {
	case policy.SupportProposed, policy.SupportStandard, policy.SupportExperimental:
		return true
	default:
		return false
	}
}

func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validLogFormat(format string) bool {
	switch strings.ToLower(format) {
	case "text", "json":
		return true
	default:
		return false
	}
}
