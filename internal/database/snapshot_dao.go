package database

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/fancybread-com/cursor-plans/internal/state"
	"github.com/fancybread-com/cursor-plans/internal/types"
)

// snapshotDAO implements state.Store on the snapshots tables.
type snapshotDAO struct {
	db *DB
}

// NewSnapshotDAO creates the SQLite-backed snapshot store.
func NewSnapshotDAO(db *DB) state.Store {
	return &snapshotDAO{db: db}
}

// Put registers a snapshot. Snapshots are immutable: inserting an id that
// is already registered is a SNAPSHOT_CONFLICT, never an overwrite.
func (d *snapshotDAO) Put(ctx context.Context, snap *state.Snapshot) error {
	if err := snap.ID.Validate(); err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "cannot store snapshot", err)
	}

	return d.db.WithTx(ctx, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM snapshots WHERE id = ?", snap.ID.String()).Scan(&count)
		if err != nil {
			return types.WrapError(types.DB_QUERY_FAILED, "failed to check for existing snapshot", err)
		}
		if count > 0 {
			return types.NewError(types.SNAPSHOT_CONFLICT, "snapshot already registered: "+snap.ID.String())
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshots (id, label, created_at, partial, file_count, total_size)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			snap.ID.String(),
			snap.Label,
			snap.CreatedAt,
			snap.Partial,
			snap.FileCount(),
			snap.TotalSize(),
		)
		if err != nil {
			return types.WrapError(types.DB_QUERY_FAILED, "failed to insert snapshot "+snap.ID.String(), err)
		}

		if len(snap.Files) > 0 {
			stmt, err := tx.PrepareContext(ctx, `
				INSERT INTO snapshot_files (snapshot_id, position, path, fingerprint, size, mode, content)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`)
			if err != nil {
				return types.WrapError(types.DB_QUERY_FAILED, "failed to prepare file insert", err)
			}
			defer stmt.Close()

			for i, f := range snap.Files {
				content := f.Content
				if content == nil {
					content = []byte{} // empty file, not NULL
				}
				_, err := stmt.ExecContext(ctx,
					snap.ID.String(), i, f.Path, f.Fingerprint, f.Size, uint32(f.Mode), content)
				if err != nil {
					return types.WrapError(types.DB_QUERY_FAILED, "failed to insert file state "+f.Path, err)
				}
			}
		}

		if len(snap.Errors) > 0 {
			stmt, err := tx.PrepareContext(ctx, `
				INSERT INTO capture_errors (snapshot_id, position, path, error)
				VALUES (?, ?, ?, ?)
			`)
			if err != nil {
				return types.WrapError(types.DB_QUERY_FAILED, "failed to prepare capture error insert", err)
			}
			defer stmt.Close()

			for i, ce := range snap.Errors {
				if _, err := stmt.ExecContext(ctx, snap.ID.String(), i, ce.Path, ce.Err); err != nil {
					return types.WrapError(types.DB_QUERY_FAILED, "failed to insert capture error for "+ce.Path, err)
				}
			}
		}

		return nil
	})
}

// Get retrieves a snapshot with its full file contents.
func (d *snapshotDAO) Get(ctx context.Context, id types.SnapshotID) (*state.Snapshot, error) {
	query := `
		SELECT id, label, created_at, partial
		FROM snapshots
		WHERE id = ?
	`

	var snap state.Snapshot
	var idStr string
	var createdAt time.Time

	err := d.db.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr,
		&snap.Label,
		&createdAt,
		&snap.Partial,
	)
	if err == sql.ErrNoRows {
		return nil, types.NewError(types.SNAPSHOT_NOT_FOUND, "snapshot not found: "+id.String())
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get snapshot "+id.String(), err)
	}

	snap.ID, err = types.ParseSnapshotID(idStr)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to parse stored snapshot id", err)
	}
	snap.CreatedAt = createdAt.UTC()

	if snap.Files, err = d.filesFor(ctx, id); err != nil {
		return nil, err
	}
	if snap.Errors, err = d.errorsFor(ctx, id); err != nil {
		return nil, err
	}

	return &snap, nil
}

// filesFor loads the captured files of a snapshot in capture order.
func (d *snapshotDAO) filesFor(ctx context.Context, id types.SnapshotID) ([]state.FileState, error) {
	query := `
		SELECT path, fingerprint, size, mode, content
		FROM snapshot_files
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`

	rows, err := d.db.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to query snapshot files", err)
	}
	defer rows.Close()

	var files []state.FileState
	for rows.Next() {
		var f state.FileState
		var mode uint32

		if err := rows.Scan(&f.Path, &f.Fingerprint, &f.Size, &mode, &f.Content); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan file state", err)
		}
		f.Mode = os.FileMode(mode)
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "error iterating snapshot files", err)
	}

	return files, nil
}

// errorsFor loads the capture errors of a snapshot in record order.
func (d *snapshotDAO) errorsFor(ctx context.Context, id types.SnapshotID) ([]state.CaptureError, error) {
	query := `
		SELECT path, error
		FROM capture_errors
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`

	rows, err := d.db.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to query capture errors", err)
	}
	defer rows.Close()

	var captureErrors []state.CaptureError
	for rows.Next() {
		var ce state.CaptureError
		if err := rows.Scan(&ce.Path, &ce.Err); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan capture error", err)
		}
		captureErrors = append(captureErrors, ce)
	}

	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "error iterating capture errors", err)
	}

	return captureErrors, nil
}

// List returns snapshot summaries in chronological order, oldest first.
// Ids embed their creation second, so the id tie-break keeps the order
// total even for snapshots created within the same second.
func (d *snapshotDAO) List(ctx context.Context) ([]state.SnapshotSummary, error) {
	query := `
		SELECT id, label, created_at, partial, file_count, total_size
		FROM snapshots
		ORDER BY created_at ASC, id ASC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to list snapshots", err)
	}
	defer rows.Close()

	var summaries []state.SnapshotSummary
	for rows.Next() {
		var s state.SnapshotSummary
		var idStr string
		var createdAt time.Time

		if err := rows.Scan(&idStr, &s.Label, &createdAt, &s.Partial, &s.FileCount, &s.TotalSize); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan snapshot summary", err)
		}

		s.ID, err = types.ParseSnapshotID(idStr)
		if err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to parse stored snapshot id", err)
		}
		s.CreatedAt = createdAt.UTC()

		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "error iterating snapshots", err)
	}

	return summaries, nil
}

// Delete removes a snapshot and, through foreign keys, its files and
// capture errors.
func (d *snapshotDAO) Delete(ctx context.Context, id types.SnapshotID) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id.String())
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to delete snapshot "+id.String(), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return types.NewError(types.SNAPSHOT_NOT_FOUND, "snapshot not found: "+id.String())
	}

	return nil
}
