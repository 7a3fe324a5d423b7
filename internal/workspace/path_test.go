package workspace

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolve_Descendant(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/work/space")

	cases := []struct {
		rel  string
		want string
	}{
		{"main.go", "/work/space/main.go"},
		{"src/app/main.go", "/work/space/src/app/main.go"},
		{"./src/../main.go", "/work/space/main.go"},
		{"/etc/config.yaml", "/work/space/etc/config.yaml"}, // absolute-looking stays relative
		{"a/b/../../c.txt", "/work/space/c.txt"},
		{".", "/work/space"},
		{"", "/work/space"},
	}

	for _, tc := range cases {
		got, err := Resolve(root, tc.rel)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tc.rel, err)
			continue
		}
		want := filepath.FromSlash(tc.want)
		if got != want {
			t.Errorf("Resolve(%q) = %q, want %q", tc.rel, got, want)
		}
		if !strings.HasPrefix(got, root) {
			t.Errorf("Resolve(%q) = %q escapes root", tc.rel, got)
		}
	}
}

func TestResolve_Escape(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/work/space")

	for _, rel := range []string{
		"..",
		"../outside.txt",
		"a/../../outside.txt",
		"a/b/../../../outside.txt",
		"/../outside.txt",
	} {
		_, err := Resolve(root, rel)
		if !errors.Is(err, ErrPathEscape) {
			t.Errorf("Resolve(%q) = %v, want ErrPathEscape", rel, err)
		}
	}
}

func TestInside(t *testing.T) {
	t.Parallel()

	if !Inside("src/main.go") {
		t.Error("src/main.go should be inside the workspace")
	}
	if Inside("../main.go") {
		t.Error("../main.go should not be inside the workspace")
	}
}
