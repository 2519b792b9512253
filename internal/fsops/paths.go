package fsops

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/fancybread-com/cursor-plans/internal/types"
)

// ValidateRelPath validates a plan-declared file path for safety.
// Paths must be relative and must not escape the project root.
// Returns a PATH_INVALID coded error if the path is unsafe.
func ValidateRelPath(relPath string) error {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))

	if cleaned == "" || cleaned == "." {
		return types.NewError(types.PATH_INVALID, "path is empty or the current directory")
	}

	if filepath.IsAbs(cleaned) {
		return types.NewError(types.PATH_INVALID, "path must be relative, got absolute path "+relPath)
	}

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return types.NewError(types.PATH_INVALID, "path escapes the project root: "+relPath)
	}

	return nil
}

// WithinRoot joins a validated relative path onto the project root.
// It validates relPath first so callers cannot accidentally resolve a
// path outside root.
func WithinRoot(root, relPath string) (string, error) {
	if err := ValidateRelPath(relPath); err != nil {
		return "", err
	}
	return filepath.Join(root, filepath.FromSlash(relPath)), nil
}

// MatchGlob reports whether relPath matches pattern. A pattern containing
// a separator matches against the whole slash-separated path; a bare
// pattern matches any single path element, so "node_modules" or "*.pyc"
// hit at any depth. Malformed patterns match nothing.
func MatchGlob(pattern, relPath string) bool {
	relPath = filepath.ToSlash(relPath)

	if strings.Contains(pattern, "/") {
		ok, err := path.Match(pattern, relPath)
		return err == nil && ok
	}

	for _, elem := range strings.Split(relPath, "/") {
		if ok, err := path.Match(pattern, elem); err == nil && ok {
			return true
		}
	}
	return false
}
