package policy

import "sort"

// Directive names a Content-Security-Policy directive.
type Directive string

const (
	BaseURI                 Directive = "base-uri"
	ChildSrc                Directive = "child-src"
	ConnectSrc              Directive = "connect-src"
	DefaultSrc              Directive = "default-src"
	FontSrc                 Directive = "font-src"
	FormAction              Directive = "form-action"
	FrameAncestors          Directive = "frame-ancestors"
	FrameSrc                Directive = "frame-src"
	ImgSrc                  Directive = "img-src"
	ManifestSrc             Directive = "manifest-src"
	MediaSrc                Directive = "media-src"
	ObjectSrc               Directive = "object-src"
	PrefetchSrc             Directive = "prefetch-src"
	ScriptSrc               Directive = "script-src"
	StyleSrc                Directive = "style-src"
	WorkerSrc               Directive = "worker-src"
	BlockAllMixedContent    Directive = "block-all-mixed-content"
	UpgradeInsecureRequests Directive = "upgrade-insecure-requests"
)

// None is the source keyword that blocks a directive entirely.
const None = "'none'"

// Self is the source keyword for the document origin.
const Self = "'self'"

var knownDirectives = map[Directive]struct{}{
	BaseURI: {}, ChildSrc: {}, ConnectSrc: {}, DefaultSrc: {}, FontSrc: {}, FormAction: {},
	FrameAncestors: {}, FrameSrc: {}, ImgSrc: {}, ManifestSrc: {}, MediaSrc: {}, ObjectSrc: {},
	PrefetchSrc: {}, ScriptSrc: {}, StyleSrc: {}, WorkerSrc: {},
	BlockAllMixedContent: {}, UpgradeInsecureRequests: {},
}

// Known reports whether d is one of the enumerated directive names.
func (d Directive) Known() bool {
	_, ok := knownDirectives[d]
	return ok
}

// BooleanOnly reports whether d only accepts a presence toggle.
func (d Directive) BooleanOnly() bool {
	return d == BlockAllMixedContent || d == UpgradeInsecureRequests
}

// Directives maps directive names to their values.
type Directives map[Directive]Value

// Clone returns a copy of d. A nil map clones to nil.
func (d Directives) Clone() Directives {
	if d == nil {
		return nil
	}
	out := make(Directives, len(d))
	for key, value := range d {
		out[key] = value
	}
	return out
}

// Merge returns a new map holding d overlaid with every set value in source.
func (d Directives) Merge(source Directives) Directives {
	if d == nil && source == nil {
		return nil
	}
	out := make(Directives, len(d)+len(source))
	for key, value := range d {
		out[key] = value
	}
	for key, value := range source {
		if !value.IsSet() {
			continue
		}
		out[key] = value
	}
	return out
}

// Names returns the directive names in lexical order.
func (d Directives) Names() []Directive {
	names := make([]Directive, 0, len(d))
	for key := range d {
		names = append(names, key)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
