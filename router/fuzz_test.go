package router

import (
	"strings"
	"testing"
)

func FuzzRouterMatch(f *testing.F) {
	f.Add("/users/:id", "/users/123")
	f.Add("/files/*path", "/files/a/b")
	f.Add("/:path*", "/")
	f.Add("/docs/:path+", "/docs")

	f.Fuzz(func(t *testing.T, source, path string) {
		if source == "" {
			source = "/"
		}
		if !strings.HasPrefix(source, "/") {
			source = "/" + source
		}

		r := New()
		if _, err := r.Add(source); err != nil {
			return
		}
		if _, ok := r.Match(path); ok != (len(r.MatchAll(path)) == 1) {
			t.Fatalf("Match and MatchAll disagree for %q on %q", source, path)
		}
	})
}
