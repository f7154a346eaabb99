package router

import (
	"errors"
	"strings"
)

// RouteID identifies a registered source.
type RouteID int

// Params holds captured path parameters.
type Params map[string]string

type segmentType int

const (
	segmentStatic segmentType = iota
	segmentParam
	segmentOptional
	segmentZeroOrMore
	segmentOneOrMore
)

type segment struct {
	kind  segmentType
	value string
}

type route struct {
	id       RouteID
	source   string
	segments []segment
}

// Match is one registered source matching a path.
type Match struct {
	ID     RouteID
	Source string
	Params Params
}

// Router matches request paths against route sources written as
// "/static/:param", "/:param?", "/:rest*", "/:rest+" or "/*rest" (an alias of
// ":rest*").
type Router struct {
	routes []route
	nextID RouteID
}

// New creates a Router.
func New() *Router {
	return &Router{}
}

// Add registers a source and returns its id.
func (r *Router) Add(source string) (RouteID, error) {
	if source == "" || source[0] != '/' {
		return 0, errors.New("source must start with '/'")
	}

	segments, err := parseSource(source)
	if err != nil {
		return 0, err
	}

	id := r.nextID
	r.nextID++
	r.routes = append(r.routes, route{id: id, source: source, segments: segments})
	return id, nil
}

// Len returns the number of registered sources.
func (r *Router) Len() int {
	return len(r.routes)
}

// Match returns the first registered source matching path.
func (r *Router) Match(path string) (Match, bool) {
	parts := splitPath(path)
	for _, rt := range r.routes {
		params := make(Params)
		if matchSegments(rt.segments, parts, params) {
			return Match{ID: rt.id, Source: rt.source, Params: params}, true
		}
	}
	return Match{}, false
}

// MatchAll returns every registered source matching path, in registration
// order.
func (r *Router) MatchAll(path string) []Match {
	parts := splitPath(path)
	var matches []Match
	for _, rt := range r.routes {
		params := make(Params)
		if matchSegments(rt.segments, parts, params) {
			matches = append(matches, Match{ID: rt.id, Source: rt.source, Params: params})
		}
	}
	return matches
}

func parseSource(source string) ([]segment, error) {
	if source == "/" {
		return []segment{}, nil
	}

	parts := splitPath(source)
	segments := make([]segment, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, errors.New("empty path segment")
		}
		last := i == len(parts)-1

		if strings.HasPrefix(part, "*") {
			name := strings.TrimPrefix(part, "*")
			if name == "" {
				return nil, errors.New("wildcard name required")
			}
			if !last {
				return nil, errors.New("wildcard must be last segment")
			}
			segments = append(segments, segment{kind: segmentZeroOrMore, value: name})
			continue
		}

		if strings.HasPrefix(part, ":") {
			name := strings.TrimPrefix(part, ":")
			kind := segmentParam
			switch {
			case strings.HasSuffix(name, "*"):
				kind = segmentZeroOrMore
			case strings.HasSuffix(name, "+"):
				kind = segmentOneOrMore
			case strings.HasSuffix(name, "?"):
				kind = segmentOptional
			}
			if kind != segmentParam {
				name = name[:len(name)-1]
				if !last {
					return nil, errors.New("modified param must be last segment")
				}
			}
			if name == "" {
				return nil, errors.New("param name required")
			}
			segments = append(segments, segment{kind: kind, value: name})
			continue
		}

		segments = append(segments, segment{kind: segmentStatic, value: part})
	}

	return segments, nil
}

func splitPath(path string) []string {
	clean := strings.Trim(path, "/")
	if clean == "" {
		return []string{}
	}
	return strings.Split(clean, "/")
}

func matchSegments(pattern []segment, parts []string, params Params) bool {
	for pi, seg := range pattern {
		switch seg.kind {
		case segmentStatic:
			if pi >= len(parts) || parts[pi] != seg.value {
				return false
			}
		case segmentParam:
			if pi >= len(parts) {
				return false
			}
			params[seg.value] = parts[pi]
		case segmentOptional:
			if pi < len(parts) {
				params[seg.value] = parts[pi]
			}
			return len(parts) <= pi+1
		case segmentZeroOrMore:
			if pi < len(parts) {
				params[seg.value] = strings.Join(parts[pi:], "/")
			}
			return true
		case segmentOneOrMore:
			if pi >= len(parts) {
				return false
			}
			params[seg.value] = strings.Join(parts[pi:], "/")
			return true
		}
	}

	return len(pattern) == len(parts)
}
