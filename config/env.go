package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/devmarvs/secureheaders/policy"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "SECUREHEADERS_"

// LoadFromEnv applies environment overrides with a prefix (e.g. SECUREHEADERS_).
func LoadFromEnv(prefix string, base Config) Config {
	get := func(key string) string { return os.Getenv(prefix + key) }

	if value := get("ADDRESS"); value != "" {
		base.Address = value
	}
	if value, ok := os.LookupEnv(prefix + "KEYS_TO_REMOVE"); ok {
		base.KeysToRemove = splitList(value)
	}
	if value := get("NONCE_DISABLED"); value != "" {
		if disabled, err := strconv.ParseBool(value); err == nil {
			base.Nonce.Disabled = disabled
		}
	}
	if value := get("NONCE_SCRIPT"); value != "" {
		if enabled, err := strconv.ParseBool(value); err == nil {
			base.Nonce.Script = policy.Flag(enabled)
		}
	}
	if value := get("NONCE_STYLE"); value != "" {
		if enabled, err := strconv.ParseBool(value); err == nil {
			base.Nonce.Style = policy.Flag(enabled)
		}
	}
	if value := get("CACHE_TTL"); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			base.CacheTTL = d
		}
	}
	if value := get("IS_DEV"); value != "" {
		if dev, err := strconv.ParseBool(value); err == nil {
			base.Policy.IsDev = policy.Flag(dev)
		}
	}
	if value := get("REFERRER_POLICY"); value != "" {
		base.Policy.ReferrerPolicy = policy.String(value)
	}
	if value := get("DATABASE_URL"); value != "" {
		base.DatabaseURL = value
	}
	if value := get("RULES_TABLE"); value != "" {
		base.RulesTable = value
	}
	if value := get("LOG_LEVEL"); value != "" {
		base.LogLevel = value
	}
	if value := get("LOG_FORMAT"); value != "" {
		base.LogFormat = value
	}

	return base
}

func splitList(value string) []string {
	out := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
