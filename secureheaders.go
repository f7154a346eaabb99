// Package secureheaders resolves security response headers from a base policy
// template and a list of route-scoped rules.
//
// Templates yields one header set per route source. SecurityHeaders collapses
// every rule into one policy carrying a fresh nonce, for per-request use.
package secureheaders

import (
	"fmt"
	"io"

	"github.com/devmarvs/secureheaders/apperr"
	"github.com/devmarvs/secureheaders/policy"
	"github.com/devmarvs/secureheaders/rules"
	"github.com/devmarvs/secureheaders/security"
)

// SourceHeaders is the header set resolved for one route source.
type SourceHeaders struct {
	Source  string            `json:"source"`
	Headers []security.Header `json:"headers"`
}

// Options configures a Generator.
type Options struct {
	// Renderer maps resolved templates to headers. Nil uses the default renderer.
	Renderer security.Renderer
	// KeysToRemove lists header keys dropped from rendered output. Nil uses
	// DefaultKeysToRemove; an empty slice keeps everything.
	KeysToRemove []string
	// Random supplies nonce entropy. Nil uses crypto/rand.
	Random io.Reader
}

// DefaultKeysToRemove returns the legacy header names dropped by default.
func DefaultKeysToRemove() []string {
	return security.LegacyHeaders()
}

// Generator resolves templates and renders them. It is safe for concurrent use.
type Generator struct {
	renderer     security.Renderer
	keysToRemove []string
	random       io.Reader
}

// New creates a Generator.
func New(options Options) *Generator {
	renderer := options.Renderer
	if renderer == nil {
		renderer = security.NewRenderer()
	}
	keys := options.KeysToRemove
	if keys == nil {
		keys = DefaultKeysToRemove()
	}
	return &Generator{
		renderer:     renderer,
		keysToRemove: append([]string(nil), keys...),
		random:       options.Random,
	}
}

// Resolve aggregates every rule group into a resolved template. An active
// nonce forces a single group; no rules yield no templates. A source set on
// cfg labels every template, otherwise the group source does.
func Resolve(cfg policy.Template, list []rules.Rule, nonce *policy.NonceConfig) []policy.Template {
	groups := rules.GroupBySource(list, nonce.Active())

	templates := make([]policy.Template, 0, len(groups))
	for _, group := range groups {
		tpl := rules.Aggregate(cfg, group.Rules, nonce)
		if tpl.Source == "" {
			tpl.Source = group.Source
		}
		templates = append(templates, tpl)
	}
	return templates
}

// Templates resolves and renders one header set per route source, in the
// order sources first appear in list.
func (g *Generator) Templates(cfg policy.Template, list []rules.Rule, nonce *policy.NonceConfig) ([]SourceHeaders, error) {
	if g == nil || g.renderer == nil {
		return nil, apperr.Config("header renderer is not configured", nil)
	}

	resolved := Resolve(cfg, list, nonce)
	out := make([]SourceHeaders, 0, len(resolved))
	for _, tpl := range resolved {
		headers, err := g.render(tpl)
		if err != nil {
			return nil, err
		}
		out = append(out, SourceHeaders{
			Source:  tpl.Source,
			Headers: security.Filter(headers, g.keysToRemove),
		})
	}
	return out, nil
}

// SecurityHeaders resolves a single nonce-bearing header set. The nonce
// config is overlaid on policy.DefaultNonceConfig and a token is generated
// when none is given. The token is appended as a trailing x-nonce header,
// which is the only header returned when list is empty.
func (g *Generator) SecurityHeaders(cfg policy.Template, list []rules.Rule, nonce policy.NonceConfig) ([]security.Header, error) {
	if g == nil {
		return nil, apperr.Config("generator is not configured", nil)
	}

	config := nonce.WithDefaults()
	if config.Nonce == "" {
		token, err := g.newNonce()
		if err != nil {
			return nil, apperr.Internal("generate nonce", err)
		}
		config.Nonce = token
	}

	templates, err := g.Templates(cfg, list, &config)
	if err != nil {
		return nil, err
	}

	var headers []security.Header
	if len(templates) > 0 {
		headers = templates[0].Headers
	}
	headers = append(headers, security.Header{Key: security.HeaderNonce, Value: config.Nonce})
	return headers, nil
}

func (g *Generator) newNonce() (string, error) {
	if g.random == nil {
		return policy.NewNonce()
	}
	return policy.NewNonceFrom(g.random)
}

func (g *Generator) render(tpl policy.Template) (headers []security.Header, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			headers = nil
			err = apperr.Integration(fmt.Sprintf("header renderer panicked for %s", tpl.Source), fmt.Errorf("%v", rec))
		}
	}()

	headers, err = g.renderer.Render(tpl)
	if err != nil {
		return nil, apperr.Integration(fmt.Sprintf("render headers for %s", tpl.Source), err)
	}
	return headers, nil
}

// NonceOf returns the value of the x-nonce header, if present.
func NonceOf(headers []security.Header) string {
	for i := len(headers) - 1; i >= 0; i-- {
		if headers[i].Key == security.HeaderNonce {
			return headers[i].Value
		}
	}
	return ""
}

// Templates renders per-source header sets with the default renderer.
// keysToRemove follows Options.KeysToRemove.
func Templates(cfg policy.Template, list []rules.Rule, keysToRemove []string, nonce *policy.NonceConfig) ([]SourceHeaders, error) {
	return New(Options{KeysToRemove: keysToRemove}).Templates(cfg, list, nonce)
}

// SecurityHeaders renders the nonce-bearing header set with the default
// renderer. keysToRemove follows Options.KeysToRemove.
func SecurityHeaders(cfg policy.Template, list []rules.Rule, keysToRemove []string, nonce policy.NonceConfig) ([]security.Header, error) {
	return New(Options{KeysToRemove: keysToRemove}).SecurityHeaders(cfg, list, nonce)
}
