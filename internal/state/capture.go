package state

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/fancybread-com/cursor-plans/internal/fsops"
	"github.com/fancybread-com/cursor-plans/internal/hash"
	"github.com/fancybread-com/cursor-plans/internal/types"
)

// Capturer walks a project directory and records its state.
type Capturer struct {
	fs     fsops.FS
	ignore *IgnoreSet
	hasher hash.Hasher
	logger *slog.Logger
}

// CaptureOption configures a Capturer.
type CaptureOption func(*Capturer)

// WithFS sets the filesystem the capturer reads through.
func WithFS(fs fsops.FS) CaptureOption {
	return func(c *Capturer) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithIgnores replaces the capturer's ignore set.
func WithIgnores(s *IgnoreSet) CaptureOption {
	return func(c *Capturer) {
		if s != nil {
			c.ignore = s
		}
	}
}

// WithHasher sets the fingerprint implementation.
func WithHasher(h hash.Hasher) CaptureOption {
	return func(c *Capturer) {
		if h != nil {
			c.hasher = h
		}
	}
}

// WithLogger sets the capture logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) CaptureOption {
	return func(c *Capturer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCapturer builds a Capturer. Defaults: real filesystem, default
// ignore patterns, sha256 fingerprints.
func NewCapturer(opts ...CaptureOption) *Capturer {
	c := &Capturer{
		fs:     fsops.NewOSFS(),
		ignore: DefaultIgnores(),
		hasher: hash.NewSHA256Hasher(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture walks root and returns a snapshot of every non-ignored file, in
// deterministic (sorted directory) order.
//
// The walk is best-effort: a path that cannot be read is recorded in the
// snapshot's error list and does not abort the capture. Cancellation is
// cooperative, checked on directory entry and between files: on ctx
// cancellation Capture returns the partial snapshot (Partial=true) together
// with the context error, so gathered data is never lost.
func (c *Capturer) Capture(ctx context.Context, root, label string) (*Snapshot, error) {
	ts := time.Now().UTC()
	snap := &Snapshot{
		ID:        types.NewSnapshotID(ts),
		CreatedAt: ts,
		Label:     label,
	}

	if err := c.walk(ctx, root, ".", snap); err != nil {
		snap.Partial = true
		c.logger.Warn("state capture interrupted",
			"root", root,
			"snapshot", snap.ID,
			"files", len(snap.Files),
			"cause", err)
		return snap, err
	}

	c.logger.Debug("state captured",
		"root", root,
		"snapshot", snap.ID,
		"files", len(snap.Files),
		"errors", len(snap.Errors))
	return snap, nil
}

// walk recurses through dir (relative to root, "." at the top). The only
// error it returns is the context's; everything else is recorded on the
// snapshot.
func (c *Capturer) walk(ctx context.Context, root, dir string, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := root
	if dir != "." {
		full = filepath.Join(root, filepath.FromSlash(dir))
	}

	entries, err := c.fs.ReadDir(full)
	if err != nil {
		snap.Errors = append(snap.Errors, CaptureError{Path: dir, Err: err.Error()})
		return nil
	}

	for _, entry := range entries {
		rel := entry.Name()
		if dir != "." {
			rel = path.Join(dir, entry.Name())
		}
		if c.ignore.Match(rel) {
			continue
		}

		if entry.IsDir() {
			if err := c.walk(ctx, root, rel, snap); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.captureFile(root, rel, snap)
	}
	return nil
}

func (c *Capturer) captureFile(root, rel string, snap *Snapshot) {
	full := filepath.Join(root, filepath.FromSlash(rel))

	info, err := c.fs.Stat(full)
	if err != nil {
		snap.Errors = append(snap.Errors, CaptureError{Path: rel, Err: err.Error()})
		return
	}

	data, err := c.fs.ReadFile(full)
	if err != nil {
		snap.Errors = append(snap.Errors, CaptureError{Path: rel, Err: err.Error()})
		return
	}

	snap.Files = append(snap.Files, FileState{
		Path:        rel,
		Fingerprint: c.hasher.Fingerprint(data),
		Size:        int64(len(data)),
		Mode:        info.Mode().Perm(),
		Content:     data,
	})
}
