package policy

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// NonceBytes is the amount of entropy in a generated nonce (144 bits).
const NonceBytes = 18

// NonceConfig controls per-request nonce injection. Nil toggles are enabled.
type NonceConfig struct {
	Nonce       string `json:"nonce,omitempty" yaml:"nonce,omitempty"`
	ScriptNonce *bool  `json:"scriptNonce,omitempty" yaml:"scriptNonce,omitempty"`
	StyleNonce  *bool  `json:"styleNonce,omitempty" yaml:"styleNonce,omitempty"`
}

// DefaultNonceConfig enables both nonces and leaves the token to be generated.
func DefaultNonceConfig() NonceConfig {
	return NonceConfig{ScriptNonce: Flag(true), StyleNonce: Flag(true)}
}

// WithDefaults overlays c onto DefaultNonceConfig.
func (c NonceConfig) WithDefaults() NonceConfig {
	out := DefaultNonceConfig()
	if c.Nonce != "" {
		out.Nonce = c.Nonce
	}
	if c.ScriptNonce != nil {
		out.ScriptNonce = Flag(*c.ScriptNonce)
	}
	if c.StyleNonce != nil {
		out.StyleNonce = Flag(*c.StyleNonce)
	}
	return out
}

// Active reports whether a nonce token is present. A nil config is inactive.
func (c *NonceConfig) Active() bool {
	return c != nil && c.Nonce != ""
}

// ScriptEnabled reports whether script-src receives the nonce.
func (c *NonceConfig) ScriptEnabled() bool {
	return c != nil && (c.ScriptNonce == nil || *c.ScriptNonce)
}

// StyleEnabled reports whether style-src receives the nonce.
func (c *NonceConfig) StyleEnabled() bool {
	return c != nil && (c.StyleNonce == nil || *c.StyleNonce)
}

// NewNonce returns a base64 token read from crypto/rand.
func NewNonce() (string, error) {
	return NewNonceFrom(rand.Reader)
}

// NewNonceFrom returns a base64 token of NonceBytes read from r.
func NewNonceFrom(r io.Reader) (string, error) {
	buf := make([]byte, NonceBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
