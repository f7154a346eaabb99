package policy

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleTemplate() Template {
	return Template{
		ContentSecurityPolicy: ContentSecurityPolicy{
			MergeDefaultDirectives: Flag(true),
			Directives: Directives{
				PrefetchSrc: Bool(false),
				ScriptSrc:   String("'self' https://cdn.example"),
			},
		},
		ReferrerPolicy: String("strict-origin-when-cross-origin"),
		PermissionsPolicy: map[string]Value{
			"battery": Bool(false),
			"camera":  String("self"),
		},
		PermissionsPolicyDirectiveSupport: []string{SupportProposed, SupportStandard},
		IsDev:                             Flag(false),
	}
}

func TestMergeIdempotent(t *testing.T) {
	cases := []Template{
		{},
		sampleTemplate(),
		Defaults(false, nil),
		Defaults(true, &NonceConfig{Nonce: "abc"}),
		{PermissionsPolicyDirectiveSupport: []string{}},
	}
	for i, tpl := range cases {
		if got := Merge(tpl, tpl); !reflect.DeepEqual(got, tpl) {
			t.Fatalf("case %d: merge(x, x) changed x:\n got  %#v\n want %#v", i, got, tpl)
		}
	}
}

func TestMergeSourceWins(t *testing.T) {
	merged := Merge(Defaults(false, nil), sampleTemplate())

	if got := merged.ContentSecurityPolicy.Directives[ScriptSrc]; got != String("'self' https://cdn.example") {
		t.Fatalf("expected script-src override, got %#v", got)
	}
	if got := merged.ContentSecurityPolicy.Directives[PrefetchSrc]; got != Bool(false) {
		t.Fatalf("expected prefetch-src false, got %#v", got)
	}
	if got := merged.ContentSecurityPolicy.Directives[ObjectSrc]; got != String(None) {
		t.Fatalf("expected object-src kept from defaults, got %#v", got)
	}
	if !Enabled(merged.ContentSecurityPolicy.MergeDefaultDirectives) {
		t.Fatalf("expected mergeDefaultDirectives true")
	}
	if Enabled(merged.ContentSecurityPolicy.ReportOnly) {
		t.Fatalf("expected reportOnly kept false")
	}
	if got := merged.ReferrerPolicy; got != String("strict-origin-when-cross-origin") {
		t.Fatalf("expected referrer override, got %#v", got)
	}
	if got := merged.FrameOptions; got != String(FrameOptionsDeny) {
		t.Fatalf("expected frame options from defaults, got %#v", got)
	}
	if len(merged.PermissionsPolicy) != 2 {
		t.Fatalf("expected permissions policy from source, got %v", merged.PermissionsPolicy)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	target := Defaults(false, nil)
	source := sampleTemplate()
	targetCopy := target.Clone()
	sourceCopy := source.Clone()

	merged := Merge(target, source)
	merged.ContentSecurityPolicy.Directives[ImgSrc] = String("https://img.example")
	merged.PermissionsPolicy["camera"] = Bool(true)
	merged.PermissionsPolicyDirectiveSupport[0] = SupportExperimental
	*merged.IsDev = true

	if !reflect.DeepEqual(target, targetCopy) {
		t.Fatalf("target mutated")
	}
	if !reflect.DeepEqual(source, sourceCopy) {
		t.Fatalf("source mutated")
	}
}

func TestMergeSliceReplaced(t *testing.T) {
	target := Template{PermissionsPolicyDirectiveSupport: []string{SupportProposed, SupportStandard}}
	source := Template{PermissionsPolicyDirectiveSupport: []string{SupportExperimental}}

	merged := Merge(target, source)
	if !reflect.DeepEqual(merged.PermissionsPolicyDirectiveSupport, []string{SupportExperimental}) {
		t.Fatalf("expected slice replaced, got %v", merged.PermissionsPolicyDirectiveSupport)
	}

	merged = Merge(target, Template{})
	if !reflect.DeepEqual(merged.PermissionsPolicyDirectiveSupport, target.PermissionsPolicyDirectiveSupport) {
		t.Fatalf("expected slice kept, got %v", merged.PermissionsPolicyDirectiveSupport)
	}
}

func TestDefaultsWithoutNonce(t *testing.T) {
	tpl := Defaults(false, nil)
	directives := tpl.ContentSecurityPolicy.Directives

	if got := directives[ScriptSrc]; got != String(Self) {
		t.Fatalf("expected script-src 'self', got %#v", got)
	}
	if got := directives[StyleSrc]; got != String(Self) {
		t.Fatalf("expected style-src 'self', got %#v", got)
	}
	for _, d := range []Directive{BaseURI, ChildSrc, FrameAncestors, FrameSrc, ObjectSrc} {
		if got := directives[d]; got != String(None) {
			t.Fatalf("expected %s 'none', got %#v", d, got)
		}
	}
	if len(directives) != 16 {
		t.Fatalf("expected 16 default directives, got %d", len(directives))
	}

	inactive := &NonceConfig{ScriptNonce: Flag(true)}
	if got := Defaults(false, inactive).ContentSecurityPolicy.Directives[ScriptSrc]; got != String(Self) {
		t.Fatalf("expected empty nonce to be ignored, got %#v", got)
	}
}

func TestDefaultsWithNonce(t *testing.T) {
	tpl := Defaults(false, &NonceConfig{Nonce: "abc"})
	directives := tpl.ContentSecurityPolicy.Directives

	if got := directives[ScriptSrc]; got != String("'self' 'nonce-abc' 'strict-dynamic'") {
		t.Fatalf("unexpected script-src %#v", got)
	}
	if got := directives[StyleSrc]; got != String("'self' 'nonce-abc'") {
		t.Fatalf("unexpected style-src %#v", got)
	}

	tpl = Defaults(false, &NonceConfig{Nonce: "abc", ScriptNonce: Flag(false)})
	if got := tpl.ContentSecurityPolicy.Directives[ScriptSrc]; got != String(Self) {
		t.Fatalf("expected script nonce disabled, got %#v", got)
	}
	if got := tpl.ContentSecurityPolicy.Directives[StyleSrc]; got != String("'self' 'nonce-abc'") {
		t.Fatalf("expected style nonce kept, got %#v", got)
	}
}

func TestDefaultsFresh(t *testing.T) {
	first := Defaults(false, nil)
	first.ContentSecurityPolicy.Directives[ScriptSrc] = String("mutated")
	if got := Defaults(false, nil).ContentSecurityPolicy.Directives[ScriptSrc]; got != String(Self) {
		t.Fatalf("defaults shared state between calls: %#v", got)
	}
}

func TestDefaultsHeaders(t *testing.T) {
	tpl := Defaults(true, nil)
	if !tpl.Dev() {
		t.Fatalf("expected isDev recorded")
	}
	if tpl.ReferrerPolicy != String(ReferrerNoReferrer) {
		t.Fatalf("unexpected referrer policy %#v", tpl.ReferrerPolicy)
	}
	if tpl.XSSProtection != String(XSSProtectionBlock) {
		t.Fatalf("unexpected xss protection %#v", tpl.XSSProtection)
	}
	if tpl.ContentTypeOptions != String(ContentTypeNosniff) {
		t.Fatalf("unexpected content type options %#v", tpl.ContentTypeOptions)
	}
	if Enabled(tpl.ContentSecurityPolicy.MergeDefaultDirectives) || Enabled(tpl.ContentSecurityPolicy.ReportOnly) {
		t.Fatalf("expected csp flags false")
	}
}

func TestNonceConfigDefaults(t *testing.T) {
	cfg := NonceConfig{StyleNonce: Flag(false)}.WithDefaults()
	if !cfg.ScriptEnabled() {
		t.Fatalf("expected script nonce enabled")
	}
	if cfg.StyleEnabled() {
		t.Fatalf("expected style nonce disabled")
	}
	if cfg.Active() {
		t.Fatalf("expected no token yet")
	}

	var missing *NonceConfig
	if missing.Active() || missing.ScriptEnabled() {
		t.Fatalf("expected nil config inactive")
	}
}

func TestNewNonce(t *testing.T) {
	token, err := NewNonce()
	if err != nil {
		t.Fatalf("new nonce: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("nonce not base64: %v", err)
	}
	if len(raw) != NonceBytes {
		t.Fatalf("expected %d bytes, got %d", NonceBytes, len(raw))
	}

	other, err := NewNonce()
	if err != nil {
		t.Fatalf("new nonce: %v", err)
	}
	if other == token {
		t.Fatalf("expected distinct nonces")
	}
}

func TestNewNonceFrom(t *testing.T) {
	token, err := NewNonceFrom(bytes.NewReader(make([]byte, NonceBytes)))
	if err != nil {
		t.Fatalf("new nonce: %v", err)
	}
	if token != "AAAAAAAAAAAAAAAAAAAAAAAA" {
		t.Fatalf("unexpected token %q", token)
	}

	if _, err := NewNonceFrom(bytes.NewReader([]byte{1, 2})); err == nil {
		t.Fatalf("expected short read error")
	}
	if _, err := NewNonceFrom(failingReader{}); err == nil {
		t.Fatalf("expected reader error")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

func TestValueJSON(t *testing.T) {
	var csp ContentSecurityPolicy
	input := `{"mergeDefaultDirectives":true,"prefetch-src":false,"script-src":"'self' https://x"}`
	if err := json.Unmarshal([]byte(input), &csp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !Enabled(csp.MergeDefaultDirectives) {
		t.Fatalf("expected mergeDefaultDirectives")
	}
	if csp.ReportOnly != nil {
		t.Fatalf("expected reportOnly unset")
	}
	if got := csp.Directives[PrefetchSrc]; got != Bool(false) {
		t.Fatalf("unexpected prefetch-src %#v", got)
	}
	if got := csp.Directives[ScriptSrc]; got != String("'self' https://x") {
		t.Fatalf("unexpected script-src %#v", got)
	}

	if err := json.Unmarshal([]byte(`{"reportOnly":"yes"}`), &csp); err == nil {
		t.Fatalf("expected flag type error")
	}
	if err := json.Unmarshal([]byte(`{"script-src":42}`), &csp); err == nil {
		t.Fatalf("expected value type error")
	}

	out, err := json.Marshal(ContentSecurityPolicy{ReportOnly: Flag(true), Directives: Directives{ImgSrc: String("data:")}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"img-src":"data:","reportOnly":true}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestTemplateYAML(t *testing.T) {
	input := strings.Join([]string{
		"isDev: true",
		"referrerPolicy: same-origin",
		"frameOptions: false",
		"contentSecurityPolicy:",
		"  mergeDefaultDirectives: true",
		"  upgrade-insecure-requests: true",
		"  img-src: \"'self' data:\"",
		"permissionsPolicy:",
		"  camera: self",
		"  battery: false",
		"permissionsPolicyDirectiveSupport: [standard]",
	}, "\n")

	var tpl Template
	if err := yaml.Unmarshal([]byte(input), &tpl); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !tpl.Dev() {
		t.Fatalf("expected isDev")
	}
	if tpl.ReferrerPolicy != String("same-origin") {
		t.Fatalf("unexpected referrer %#v", tpl.ReferrerPolicy)
	}
	if tpl.FrameOptions != Bool(false) {
		t.Fatalf("unexpected frame options %#v", tpl.FrameOptions)
	}
	if tpl.XSSProtection.IsSet() {
		t.Fatalf("expected xss protection unset")
	}
	if got := tpl.ContentSecurityPolicy.Directives[UpgradeInsecureRequests]; got != Bool(true) {
		t.Fatalf("unexpected upgrade-insecure-requests %#v", got)
	}
	if got := tpl.ContentSecurityPolicy.Directives[ImgSrc]; got != String("'self' data:") {
		t.Fatalf("unexpected img-src %#v", got)
	}
	if got := tpl.PermissionsPolicy["camera"]; got != String("self") {
		t.Fatalf("unexpected camera %#v", got)
	}
	if !reflect.DeepEqual(tpl.PermissionsPolicyDirectiveSupport, []string{SupportStandard}) {
		t.Fatalf("unexpected support %v", tpl.PermissionsPolicyDirectiveSupport)
	}
}

func TestDirectiveClassification(t *testing.T) {
	if !ScriptSrc.Known() || Directive("script-src-elem").Known() {
		t.Fatalf("unexpected known directive classification")
	}
	if !UpgradeInsecureRequests.BooleanOnly() || ScriptSrc.BooleanOnly() {
		t.Fatalf("unexpected boolean-only classification")
	}
	names := Directives{StyleSrc: String(Self), BaseURI: String(None), ImgSrc: String(Self)}.Names()
	if !reflect.DeepEqual(names, []Directive{BaseURI, ImgSrc, StyleSrc}) {
		t.Fatalf("unexpected order %v", names)
	}
}
