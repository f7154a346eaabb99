package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// UpdateGolden reports whether golden files should be rewritten instead of
// compared.
func UpdateGolden() bool {
	return os.Getenv("SECUREHEADERS_UPDATE_GOLDEN") != ""
}

// AssertGolden compares got with the golden file at path and reports the
// first differing line.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if UpdateGolden() {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("golden mkdir: %v", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("golden write: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("golden read: %v", err)
	}
	if bytes.Equal(want, got) {
		return
	}

	wantLines := bytes.Split(want, []byte("\n"))
	gotLines := bytes.Split(got, []byte("\n"))
	for i := 0; i < len(wantLines) || i < len(gotLines); i++ {
		var w, g []byte
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if !bytes.Equal(w, g) {
			t.Fatalf("golden mismatch: %s line %d\n want %q\n got  %q", path, i+1, w, g)
		}
	}
	t.Fatalf("golden mismatch: %s", path)
}
