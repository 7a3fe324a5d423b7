package workspace

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Resolve maps a workspace-relative path to an absolute path under root.
// Leading separators are stripped so an absolute-looking input is still
// treated as workspace-relative. After normalization, any path that would
// land outside root fails with ErrPathEscape. Pure function, no I/O.
func Resolve(root, rel string) (string, error) {
	cleaned := strings.TrimLeft(filepath.ToSlash(rel), "/")
	cleaned = path.Clean(cleaned)

	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	if cleaned == "." {
		return root, nil
	}

	return filepath.Join(root, filepath.FromSlash(cleaned)), nil
}

// Inside reports whether rel stays under the workspace root after
// normalization. Used for fail-closed validation before any I/O happens.
func Inside(rel string) bool {
	_, err := Resolve("/", rel)
	return err == nil
}
