package fsops

import (
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/fancybread-com/cursor-plans/internal/types"
)

// MemFS implements FS in memory for tests. Paths are normalized to slash
// form internally, so tests can mix separators freely. Per-path error
// injection simulates unreadable files and failed writes without touching
// the real filesystem.
type MemFS struct {
	files map[string]*memFile
	dirs  map[string]bool

	// FailReads maps a path to the error its ReadFile returns.
	FailReads map[string]error
	// FailWrites maps a path to the error its WriteFileAtomic returns.
	FailWrites map[string]error
}

type memFile struct {
	data    []byte
	mode    os.FileMode
	modTime time.Time
}

// NewMemFS creates an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{
		files:      make(map[string]*memFile),
		dirs:       map[string]bool{".": true},
		FailReads:  make(map[string]error),
		FailWrites: make(map[string]error),
	}
}

func norm(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	return p
}

// Seed writes a file directly, creating parents, bypassing error injection.
func (m *MemFS) Seed(p string, data []byte) {
	p = norm(p)
	m.files[p] = &memFile{data: append([]byte(nil), data...), mode: 0o644, modTime: time.Now()}
	m.addParents(p)
}

// SeedDir records an (possibly empty) directory.
func (m *MemFS) SeedDir(p string) {
	p = norm(p)
	m.dirs[p] = true
	m.addParents(p + "/x")
}

func (m *MemFS) addParents(p string) {
	for d := path.Dir(p); d != "." && d != "/"; d = path.Dir(d) {
		m.dirs[d] = true
	}
	m.dirs["."] = true
}

// Contents returns the current data of a file and whether it exists,
// bypassing error injection. Intended for test assertions.
func (m *MemFS) Contents(p string) ([]byte, bool) {
	f, ok := m.files[norm(p)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.data...), true
}

// Paths returns all file paths in sorted order. Intended for test assertions.
func (m *MemFS) Paths() []string {
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ReadFile reads the entire contents of a file.
func (m *MemFS) ReadFile(p string) ([]byte, error) {
	p = norm(p)
	if err, ok := m.FailReads[p]; ok {
		if _, coded := types.CodeOf(err); coded {
			return nil, err
		}
		return nil, types.WrapError(types.FILE_IO_ERROR, "read "+p, err)
	}
	f, ok := m.files[p]
	if !ok {
		return nil, types.NewError(types.FILE_NOT_FOUND, "read "+p)
	}
	return append([]byte(nil), f.data...), nil
}

// Stat returns file info for the given path.
func (m *MemFS) Stat(p string) (os.FileInfo, error) {
	p = norm(p)
	if f, ok := m.files[p]; ok {
		return &memFileInfo{name: path.Base(p), size: int64(len(f.data)), mode: f.mode, modTime: f.modTime}, nil
	}
	if m.dirs[p] {
		return &memFileInfo{name: path.Base(p), mode: os.ModeDir | 0o755, isDir: true}, nil
	}
	return nil, types.NewError(types.FILE_NOT_FOUND, "stat "+p)
}

// ReadDir lists a directory's entries in name order.
func (m *MemFS) ReadDir(p string) ([]os.DirEntry, error) {
	p = norm(p)
	if !m.dirs[p] {
		return nil, types.NewError(types.FILE_NOT_FOUND, "list "+p)
	}

	names := make(map[string]bool)
	var entries []os.DirEntry
	add := func(name string, isDir bool, size int64, mode os.FileMode) {
		if names[name] {
			return
		}
		names[name] = true
		entries = append(entries, &memDirEntry{
			info: &memFileInfo{name: name, size: size, mode: mode, isDir: isDir},
		})
	}

	for fp, f := range m.files {
		if path.Dir(fp) == p {
			add(path.Base(fp), false, int64(len(f.data)), f.mode)
		}
	}
	for dp := range m.dirs {
		if dp != "." && path.Dir(dp) == p {
			add(path.Base(dp), true, 0, os.ModeDir|0o755)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// MkdirAll creates a directory and all parent directories.
func (m *MemFS) MkdirAll(p string, perm os.FileMode) error {
	m.SeedDir(p)
	return nil
}

// WriteFileAtomic writes data to path, honoring injected write failures.
func (m *MemFS) WriteFileAtomic(p string, data []byte, perm os.FileMode) error {
	p = norm(p)
	if err, ok := m.FailWrites[p]; ok {
		if _, coded := types.CodeOf(err); coded {
			return err
		}
		return types.WrapError(types.FILE_WRITE_FAILED, "failed to write "+p, err)
	}
	m.files[p] = &memFile{data: append([]byte(nil), data...), mode: perm, modTime: time.Now()}
	m.addParents(p)
	return nil
}

// Remove removes a file or empty directory.
func (m *MemFS) Remove(p string) error {
	p = norm(p)
	if _, ok := m.files[p]; ok {
		delete(m.files, p)
		return nil
	}
	if m.dirs[p] {
		delete(m.dirs, p)
		return nil
	}
	return types.NewError(types.FILE_NOT_FOUND, "remove "+p)
}

// Exists checks if a path exists.
func (m *MemFS) Exists(p string) (bool, error) {
	p = norm(p)
	if _, ok := m.files[p]; ok {
		return true, nil
	}
	return m.dirs[p], nil
}

type memFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (i *memFileInfo) Name() string       { return i.name }
func (i *memFileInfo) Size() int64        { return i.size }
func (i *memFileInfo) Mode() os.FileMode  { return i.mode }
func (i *memFileInfo) ModTime() time.Time { return i.modTime }
func (i *memFileInfo) IsDir() bool        { return i.isDir }
func (i *memFileInfo) Sys() any           { return nil }

type memDirEntry struct {
	info *memFileInfo
}

func (e *memDirEntry) Name() string               { return e.info.name }
func (e *memDirEntry) IsDir() bool                { return e.info.isDir }
func (e *memDirEntry) Type() os.FileMode          { return e.info.mode.Type() }
func (e *memDirEntry) Info() (os.FileInfo, error) { return e.info, nil }
