// Package state captures project directory snapshots and diffs them
// against plan documents.
//
// A Snapshot is a point-in-time record of every non-ignored file under a
// project root: path, content, fingerprint, size, and mode. Capture is
// best-effort: unreadable paths become per-path errors instead of aborting
// the walk, and cooperative cancellation yields a partial snapshot rather
// than losing gathered data. Diffing renders each declared file through
// the template renderer and compares fingerprints to decide create,
// overwrite, or skip, in the plan's apply order.
package state

import (
	"context"
	"os"
	"time"

	"github.com/fancybread-com/cursor-plans/internal/types"
)

// FileState is one captured file.
type FileState struct {
	// Path is slash-separated and relative to the captured root.
	Path string `json:"path"`
	// Fingerprint is the sha256 hex digest of Content.
	Fingerprint string `json:"fingerprint"`
	// Size is the captured content length in bytes.
	Size int64 `json:"size"`
	// Mode holds the file's permission bits at capture time.
	Mode os.FileMode `json:"mode"`
	// Content is the full captured file content.
	Content []byte `json:"-"`
}

// CaptureError records a path that could not be captured. Capture keeps
// walking past these; they never abort a snapshot.
type CaptureError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// Snapshot is a point-in-time record of a project directory.
type Snapshot struct {
	ID        types.SnapshotID `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	// Label is a human description of why the snapshot exists, e.g.
	// "pre-apply anchor" or "pre-rollback backup".
	Label string `json:"label,omitempty"`

	Files  []FileState    `json:"files"`
	Errors []CaptureError `json:"errors,omitempty"`

	// Partial marks a snapshot cut short by cancellation. Partial
	// snapshots keep everything captured before the cut.
	Partial bool `json:"partial,omitempty"`
}

// File returns the captured state for a relative path.
func (s *Snapshot) File(path string) (*FileState, bool) {
	for i := range s.Files {
		if s.Files[i].Path == path {
			return &s.Files[i], true
		}
	}
	return nil, false
}

// FileCount returns the number of captured files.
func (s *Snapshot) FileCount() int {
	return len(s.Files)
}

// TotalSize returns the sum of all captured file sizes in bytes.
func (s *Snapshot) TotalSize() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}
	return total
}

// Summary condenses the snapshot for listings.
func (s *Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Label:     s.Label,
		FileCount: s.FileCount(),
		TotalSize: s.TotalSize(),
		Partial:   s.Partial,
	}
}

// SnapshotSummary is the listing view of a snapshot: metadata without
// content.
type SnapshotSummary struct {
	ID        types.SnapshotID `json:"id" yaml:"id"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	Label     string           `json:"label,omitempty" yaml:"label,omitempty"`
	FileCount int              `json:"file_count" yaml:"file_count"`
	TotalSize int64            `json:"total_size" yaml:"total_size"`
	Partial   bool             `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// Store is the append-only snapshot registry. Snapshots are immutable once
// put; there is no update.
type Store interface {
	// Put registers a snapshot under its id. Reusing an id is a
	// SNAPSHOT_CONFLICT error.
	Put(ctx context.Context, snap *Snapshot) error

	// Get returns the snapshot for id, or a SNAPSHOT_NOT_FOUND error.
	Get(ctx context.Context, id types.SnapshotID) (*Snapshot, error)

	// List returns summaries of all snapshots in chronological order,
	// oldest first.
	List(ctx context.Context) ([]SnapshotSummary, error)

	// Delete removes a snapshot, or returns SNAPSHOT_NOT_FOUND. Pruning
	// policy is the caller's concern; the store only deletes on request.
	Delete(ctx context.Context, id types.SnapshotID) error
}
