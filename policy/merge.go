package policy

// Merge overlays source onto target and returns a new Template. Neither
// input is modified.
//
// Set scalars in source overwrite target. The CSP section, its directives
// and the permissions map merge recursively with source winning. Slices are
// opaque: a non-nil source slice replaces the target slice.
func Merge(target, source Template) Template {
	out := target.Clone()

	if source.Source != "" {
		out.Source = source.Source
	}
	out.ContentSecurityPolicy = mergeCSP(out.ContentSecurityPolicy, source.ContentSecurityPolicy)
	out.ReferrerPolicy = pick(out.ReferrerPolicy, source.ReferrerPolicy)
	out.PermissionsPolicy = mergeValues(out.PermissionsPolicy, source.PermissionsPolicy)
	if source.PermissionsPolicyDirectiveSupport != nil {
		out.PermissionsPolicyDirectiveSupport = cloneStrings(source.PermissionsPolicyDirectiveSupport)
	}
	if source.IsDev != nil {
		out.IsDev = Flag(*source.IsDev)
	}
	out.FrameOptions = pick(out.FrameOptions, source.FrameOptions)
	out.XSSProtection = pick(out.XSSProtection, source.XSSProtection)
	out.ContentTypeOptions = pick(out.ContentTypeOptions, source.ContentTypeOptions)
	return out
}

func mergeCSP(target, source ContentSecurityPolicy) ContentSecurityPolicy {
	out := target.Clone()
	if source.MergeDefaultDirectives != nil {
		out.MergeDefaultDirectives = Flag(*source.MergeDefaultDirectives)
	}
	if source.ReportOnly != nil {
		out.ReportOnly = Flag(*source.ReportOnly)
	}
	out.Directives = out.Directives.Merge(source.Directives)
	return out
}

func mergeValues(target, source map[string]Value) map[string]Value {
	if source == nil {
		return cloneValues(target)
	}
	out := cloneValues(target)
	if out == nil {
		out = make(map[string]Value, len(source))
	}
	for key, value := range source {
		if value.IsSet() {
			out[key] = value
		}
	}
	return out
}

func pick(target, source Value) Value {
	if source.IsSet() {
		return source
	}
	return target
}
