package rules

// Group is the ordered list of rules sharing one route source.
type Group struct {
	Source string
	Rules  []Rule
}

// GroupBySource partitions rules by route source. Groups appear in the order
// their source is first seen and keep input order within each group.
//
// With ignorePath every rule lands in the DefaultSource group, which keeps a
// nonce-bearing policy in one piece instead of one per route.
func GroupBySource(list []Rule, ignorePath bool) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)

	for _, rule := range list {
		source := DefaultSource
		if !ignorePath {
			source = rule.RouteSource()
		}
		i, ok := index[source]
		if !ok {
			i = len(groups)
			index[source] = i
			groups = append(groups, Group{Source: source})
		}
		groups[i].Rules = append(groups[i].Rules, rule)
	}
	return groups
}
