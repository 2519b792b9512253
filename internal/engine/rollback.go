package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fancybread-com/cursor-plans/internal/state"
	"github.com/fancybread-com/cursor-plans/internal/types"
)

// Rollback restores the project tree to the state a registered snapshot
// captured.
//
// Before the first restore the engine captures and registers a backup
// snapshot of the current tree, so a rollback can itself be undone. The
// default restore is additive: every captured path is rewritten to its
// captured content, and paths created since the snapshot stay in place.
// With Options.FullRestore those extra paths are deleted as well, ignore
// rules permitting. Like apply, the first failed entry halts the rest.
func (e *Engine) Rollback(ctx context.Context, id types.SnapshotID, opts Options) (*RollbackReport, error) {
	if err := e.begin("rollback"); err != nil {
		return nil, err
	}
	defer e.release()

	target, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	e.logger.Info("starting rollback",
		"snapshot", id,
		"full_restore", opts.FullRestore,
		"files", target.FileCount(),
	)

	started := time.Now().UTC()
	report := &RollbackReport{
		SnapshotID: id,
		StartedAt:  started,
	}
	finish := func(s Status) *RollbackReport {
		e.setStatus(s)
		report.Status = s
		report.Duration = time.Since(started)
		return report
	}

	backup, err := e.capture(ctx, labelPreRollback)
	if err != nil {
		return finish(StatusFailed), err
	}
	if err := e.store.Put(ctx, backup); err != nil {
		e.logger.Error("registering pre-rollback backup failed",
			"snapshot", backup.ID,
			"error", err,
		)
		return finish(StatusFailed), err
	}
	report.BackupSnapshotID = backup.ID

	// Restores run in the snapshot's capture order; full restores append
	// deletions in the backup's capture order. The backup doubles as the
	// index of the current tree, so ignored paths never become deletions.
	for _, f := range target.Files {
		report.Entries = append(report.Entries, RestoreResult{
			Path:    f.Path,
			Action:  RestoreWrite,
			Outcome: OutcomeNotAttempted,
		})
	}
	if opts.FullRestore {
		for _, cur := range backup.Files {
			if _, ok := target.File(cur.Path); !ok {
				report.Entries = append(report.Entries, RestoreResult{
					Path:    cur.Path,
					Action:  RestoreDelete,
					Outcome: OutcomeNotAttempted,
				})
			}
		}
	}

	e.setStatus(StatusApplying)

	for i := range report.Entries {
		entry := &report.Entries[i]

		select {
		case <-ctx.Done():
			return finish(StatusFailed), types.WrapError(types.ROLLBACK_HALTED,
				fmt.Sprintf("rollback halted before %q", entry.Path), ctx.Err())
		default:
		}

		if err := e.restoreEntry(target, backup, entry); err != nil {
			entry.Outcome = OutcomeFailed
			entry.Err = err.Error()
			e.logger.Error("restore failed, halting rollback",
				"path", entry.Path,
				"action", entry.Action,
				"error", err,
			)
			return finish(StatusFailed), err
		}
	}

	e.logger.Info("rollback complete",
		"snapshot", id,
		"backup_snapshot", backup.ID,
		"entries", len(report.Entries),
	)
	return finish(StatusApplied), nil
}

// restoreEntry performs one rollback entry and sets its outcome. Restores
// whose current content already matches the captured fingerprint are
// skipped without a write.
func (e *Engine) restoreEntry(target, backup *state.Snapshot, entry *RestoreResult) error {
	abs := filepath.Join(e.root, filepath.FromSlash(entry.Path))

	switch entry.Action {
	case RestoreWrite:
		captured, _ := target.File(entry.Path)
		if current, ok := backup.File(entry.Path); ok && current.Fingerprint == captured.Fingerprint {
			entry.Outcome = OutcomeSkipped
			return nil
		}
		perm := captured.Mode
		if perm == 0 {
			perm = 0o644
		}
		if err := e.fs.WriteFileAtomic(abs, captured.Content, perm); err != nil {
			return err
		}
	case RestoreDelete:
		if err := e.fs.Remove(abs); err != nil {
			return err
		}
	}
	entry.Outcome = OutcomeApplied
	return nil
}
