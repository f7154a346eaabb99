package policy

// Header values used by the default policy.
const (
	FrameOptionsDeny      = "DENY"
	ReferrerNoReferrer    = "no-referrer"
	XSSProtectionBlock    = "1; mode=block"
	ContentTypeNosniff    = "nosniff"
	SupportProposed       = "proposed"
	SupportStandard       = "standard"
	SupportExperimental   = "experimental"
	strictDynamic         = "'strict-dynamic'"
	nonceSourcePrefix     = "'nonce-"
	nonceSourceTerminator = "'"
)

// Defaults returns the locked-down baseline policy. A fresh value is built on
// every call.
//
// With an active nonce, script-src gains the nonce and 'strict-dynamic' and
// style-src gains the nonce, each subject to its toggle. isDev is recorded on
// the template only; it never relaxes a directive.
func Defaults(isDev bool, nonce *NonceConfig) Template {
	scriptSrc := Self
	styleSrc := Self

	if nonce.Active() {
		source := NonceSource(nonce.Nonce)
		if nonce.ScriptEnabled() {
			scriptSrc += " " + source + " " + strictDynamic
		}
		if nonce.StyleEnabled() {
			styleSrc += " " + source
		}
	}

	return Template{
		ContentSecurityPolicy: ContentSecurityPolicy{
			MergeDefaultDirectives: Flag(false),
			ReportOnly:             Flag(false),
			Directives: Directives{
				BaseURI:        String(None),
				ChildSrc:       String(None),
				ConnectSrc:     String(Self),
				DefaultSrc:     String(Self),
				FontSrc:        String(Self),
				FormAction:     String(Self),
				FrameAncestors: String(None),
				FrameSrc:       String(None),
				ImgSrc:         String(Self),
				ManifestSrc:    String(Self),
				MediaSrc:       String(Self),
				ObjectSrc:      String(None),
				PrefetchSrc:    String(Self),
				ScriptSrc:      String(scriptSrc),
				StyleSrc:       String(styleSrc),
				WorkerSrc:      String(Self),
			},
		},
		ContentTypeOptions:                String(ContentTypeNosniff),
		FrameOptions:                      String(FrameOptionsDeny),
		PermissionsPolicyDirectiveSupport: []string{SupportProposed, SupportStandard},
		IsDev:                             Flag(isDev),
		ReferrerPolicy:                    String(ReferrerNoReferrer),
		XSSProtection:                     String(XSSProtectionBlock),
	}
}

// NonceSource formats a token as a CSP nonce source expression.
func NonceSource(token string) string {
	return nonceSourcePrefix + token + nonceSourceTerminator
}
