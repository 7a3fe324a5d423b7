package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codesmith/internal/logging"
)

// LineEdit replaces a line range of an existing file.
// StartLine is 1-based inclusive, EndLine is exclusive.
type LineEdit struct {
	StartLine  int
	EndLine    int
	NewContent string
}

// Store is the exclusive authority over all mutations under a workspace root.
// One Store per root; concurrent stores over overlapping roots are not supported.
type Store struct {
	root string
}

// NewStore opens a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("%w: create workspace %s: %w", ErrIO, abs, err)
	}
	logging.WorkspaceDebug("Store opened at %s", abs)
	return &Store{root: abs}, nil
}

// Root returns the absolute workspace root.
func (s *Store) Root() string {
	return s.root
}

// Sub returns a store scoped to a subdirectory of this workspace,
// creating the directory if needed. The subdirectory path is validated
// like any other workspace-relative path.
func (s *Store) Sub(rel string) (*Store, error) {
	abs, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("%w: create scope %s: %w", ErrIO, rel, err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) resolve(rel string) (string, error) {
	return Resolve(s.root, rel)
}

// CreateFile writes content to a workspace-relative path, creating parent
// directories as needed and overwriting silently if the file exists.
// The content is staged in a temp file and renamed into place so a crash
// mid-write leaves either the prior file or nothing, never a truncated file.
func (s *Store) CreateFile(path, content string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.WorkspaceError("Failed to create directory %s: %v", dir, err)
		return fmt.Errorf("%w: mkdir %s: %w", ErrIO, path, err)
	}

	tmp, err := os.CreateTemp(dir, ".smith-write-*")
	if err != nil {
		logging.WorkspaceError("Failed to stage write for %s: %v", path, err)
		return fmt.Errorf("%w: stage %s: %w", ErrIO, path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		logging.WorkspaceError("Failed to write %s: %v", path, err)
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		logging.WorkspaceError("Failed to place %s: %v", path, err)
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}

	logging.Workspace("Created file: %s (%d bytes)", path, len(content))
	return nil
}

// ReadFile returns the content of a workspace-relative path.
// A missing file is reported as ok=false with a nil error; only a read
// failure distinct from absence produces an error.
func (s *Store) ReadFile(path string) (string, bool, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		logging.WorkspaceError("Failed to read %s: %v", path, err)
		return "", false, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}
	return string(data), true, nil
}

// ModifyFile applies line edits to an existing file. Edits are applied in
// descending order of StartLine so earlier edits' line numbers are unaffected
// by later insertions or deletions; the order they are supplied in does not
// matter. An edit with an invalid range is logged and skipped, and the file
// is still rewritten with the edits that were valid.
func (s *Store) ModifyFile(path string, edits []LineEdit) error {
	content, ok, err := s.ReadFile(path)
	if err != nil {
		return err
	}
	if !ok {
		logging.WorkspaceError("Cannot modify missing file: %s", path)
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	lines := splitLines(content)

	sorted := make([]LineEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartLine > sorted[j].StartLine
	})

	applied := 0
	for _, edit := range sorted {
		start := edit.StartLine - 1 // to 0-based
		end := edit.EndLine - 1     // exclusive in 1-based terms
		if start < 0 || end > len(lines) || start >= end {
			logging.WorkspaceWarn("%v: %s lines %d-%d", ErrInvalidRange, path, edit.StartLine, edit.EndLine)
			continue
		}

		replacement := splitLines(edit.NewContent)
		next := make([]string, 0, len(lines)-(end-start)+len(replacement))
		next = append(next, lines[:start]...)
		next = append(next, replacement...)
		next = append(next, lines[end:]...)
		lines = next
		applied++
	}

	if err := s.CreateFile(path, joinLines(lines)); err != nil {
		return err
	}

	logging.Workspace("Modified file: %s (%d/%d edits applied)", path, applied, len(edits))
	return nil
}

// DeleteFile removes a workspace-relative path.
func (s *Store) DeleteFile(path string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			logging.WorkspaceError("Cannot delete missing file: %s", path)
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}

	if err := os.Remove(abs); err != nil {
		logging.WorkspaceError("Failed to delete %s: %v", path, err)
		return fmt.Errorf("%w: delete %s: %w", ErrIO, path, err)
	}

	logging.Workspace("Deleted file: %s", path)
	return nil
}

// CopyFile copies src to dst, creating destination parent directories and
// preserving file mode and modification time.
func (s *Store) CopyFile(src, dst string) error {
	absSrc, err := s.resolve(src)
	if err != nil {
		return err
	}
	absDst, err := s.resolve(dst)
	if err != nil {
		return err
	}

	info, err := os.Stat(absSrc)
	if err != nil {
		if os.IsNotExist(err) {
			logging.WorkspaceError("Cannot copy missing file: %s", src)
			return fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return fmt.Errorf("%w: stat %s: %w", ErrIO, src, err)
	}

	if err := os.MkdirAll(filepath.Dir(absDst), 0755); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %w", ErrIO, dst, err)
	}

	if err := copyContents(absSrc, absDst, info.Mode()); err != nil {
		logging.WorkspaceError("Failed to copy %s -> %s: %v", src, dst, err)
		return fmt.Errorf("%w: copy %s -> %s: %w", ErrIO, src, dst, err)
	}
	// Best effort metadata preservation.
	_ = os.Chtimes(absDst, info.ModTime(), info.ModTime())

	logging.Workspace("Copied file: %s -> %s", src, dst)
	return nil
}

// MoveFile moves src to dst, creating destination parent directories.
func (s *Store) MoveFile(src, dst string) error {
	absSrc, err := s.resolve(src)
	if err != nil {
		return err
	}
	absDst, err := s.resolve(dst)
	if err != nil {
		return err
	}

	if _, err := os.Stat(absSrc); err != nil {
		if os.IsNotExist(err) {
			logging.WorkspaceError("Cannot move missing file: %s", src)
			return fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return fmt.Errorf("%w: stat %s: %w", ErrIO, src, err)
	}

	if err := os.MkdirAll(filepath.Dir(absDst), 0755); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %w", ErrIO, dst, err)
	}

	if err := os.Rename(absSrc, absDst); err != nil {
		logging.WorkspaceError("Failed to move %s -> %s: %v", src, dst, err)
		return fmt.Errorf("%w: move %s -> %s: %w", ErrIO, src, dst, err)
	}

	logging.Workspace("Moved file: %s -> %s", src, dst)
	return nil
}

// BackupFile copies path to path+suffix (default ".bak") and returns the
// backup's workspace-relative path. An existing backup is overwritten with
// a warning, not an error.
func (s *Store) BackupFile(path, suffix string) (string, error) {
	if suffix == "" {
		suffix = ".bak"
	}
	backup := path + suffix

	if _, ok, _ := s.ReadFile(backup); ok {
		logging.WorkspaceWarn("Backup already exists, overwriting: %s", backup)
	}

	if err := s.CopyFile(path, backup); err != nil {
		return "", err
	}

	logging.Workspace("Backed up file: %s -> %s", path, backup)
	return backup, nil
}

// FileExists reports whether a workspace-relative path is an existing file.
func (s *Store) FileExists(path string) bool {
	abs, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// CreateDirectory creates a workspace-relative directory and its parents.
func (s *Store) CreateDirectory(path string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", ErrIO, path, err)
	}
	logging.WorkspaceDebug("Created directory: %s", path)
	return nil
}

// ListFiles lists files under a workspace-relative directory, recursively.
// When pattern is set, only base names matching the glob are returned.
// Paths come back relative to the workspace root; a missing directory
// yields an empty list, not an error.
func (s *Store) ListFiles(dir, pattern string) ([]string, error) {
	abs, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		logging.WorkspaceDebug("ListFiles on absent directory: %s", dir)
		return nil, nil
	}

	var files []string
	walkErr := filepath.Walk(abs, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		if pattern != "" {
			matched, matchErr := filepath.Match(pattern, info.Name())
			if matchErr != nil || !matched {
				return nil
			}
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrIO, dir, walkErr)
	}

	sort.Strings(files)
	return files, nil
}

func copyContents(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// splitLines splits content into lines without the trailing newline entry,
// so a file ending in "\n" round-trips through joinLines unchanged.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
