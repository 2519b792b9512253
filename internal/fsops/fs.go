// Package fsops provides the filesystem primitives consumed by snapshot
// capture, the execution engine, and rollback.
//
// All filesystem access in devplan goes through the FS interface so that
// capture walks, atomic writes, and restores can be tested against an
// in-memory implementation. Failures are classified distinctly: callers can
// branch on FILE_NOT_FOUND, FILE_PERMISSION_DENIED, and FILE_IO_ERROR codes
// rather than parsing error strings.
//
// Writes are atomic at single-file granularity: data lands in a temp file in
// the target directory, is synced and closed, then renamed over the final
// path, so partial content is never observable at the destination.
package fsops

import (
	"os"
	"path/filepath"

	"github.com/fancybread-com/cursor-plans/internal/types"
)

// FS provides an abstraction for filesystem operations.
type FS interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// Stat returns file info for the given path.
	Stat(path string) (os.FileInfo, error)

	// ReadDir lists a directory's entries in name order.
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// WriteFileAtomic writes data to path atomically using temp file + rename,
	// creating parent directories as needed.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// Exists checks if a path exists.
	Exists(path string) (bool, error)
}

// OSFS implements FS using actual OS operations.
type OSFS struct{}

// NewOSFS creates a new OSFS.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// ReadFile reads the entire contents of a file.
func (o *OSFS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classify("read", path, err)
	}
	return data, nil
}

// Stat returns file info for the given path.
func (o *OSFS) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, classify("stat", path, err)
	}
	return info, nil
}

// ReadDir lists a directory's entries in name order.
func (o *OSFS) ReadDir(path string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, classify("list", path, err)
	}
	return entries, nil
}

// MkdirAll creates a directory and all parent directories.
func (o *OSFS) MkdirAll(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return classify("mkdir", path, err)
	}
	return nil
}

// WriteFileAtomic writes data to path atomically using temp file + rename.
// The temp file is created in the target directory so the final rename stays
// on one filesystem. On any failure the temp file is removed and the final
// path is untouched.
func (o *OSFS) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.WrapError(types.FILE_WRITE_FAILED, "failed to create parent directory for "+path, classify("mkdir", dir, err))
	}

	tmpFile, err := os.CreateTemp(dir, ".devplan-tmp-*")
	if err != nil {
		return types.WrapError(types.FILE_WRITE_FAILED, "failed to create temp file for "+path, classify("create", dir, err))
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return types.WrapError(types.FILE_WRITE_FAILED, "failed to write temp file for "+path, err)
	}

	if err := tmpFile.Sync(); err != nil {
		return types.WrapError(types.FILE_WRITE_FAILED, "failed to sync temp file for "+path, err)
	}

	if err := tmpFile.Close(); err != nil {
		return types.WrapError(types.FILE_WRITE_FAILED, "failed to close temp file for "+path, err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return types.WrapError(types.FILE_WRITE_FAILED, "failed to set permissions on "+path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return types.WrapError(types.FILE_WRITE_FAILED, "failed to rename temp file to "+path, err)
	}

	// Success - don't clean up temp file
	tmpFile = nil
	return nil
}

// Remove removes a file or empty directory.
func (o *OSFS) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return classify("remove", path, err)
	}
	return nil
}

// Exists checks if a path exists.
func (o *OSFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, classify("stat", path, err)
}

// classify maps an OS error to the coded taxonomy: not-found,
// permission-denied, and generic I/O failures are distinct conditions.
func classify(op, path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return types.WrapError(types.FILE_NOT_FOUND, op+" "+path, err)
	case os.IsPermission(err):
		return types.WrapError(types.FILE_PERMISSION_DENIED, op+" "+path, err)
	default:
		return types.WrapError(types.FILE_IO_ERROR, op+" "+path, err)
	}
}

// IsNotFound reports whether err carries the FILE_NOT_FOUND code.
func IsNotFound(err error) bool {
	return types.HasCode(err, types.FILE_NOT_FOUND)
}

// IsPermission reports whether err carries the FILE_PERMISSION_DENIED code.
func IsPermission(err error) bool {
	return types.HasCode(err, types.FILE_PERMISSION_DENIED)
}
