package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fancybread-com/cursor-plans/internal/fsops"
	"github.com/fancybread-com/cursor-plans/internal/types"
)

// appliedProject seeds a two-file tree, applies the base plan over it, and
// returns the engine parts plus the anchor snapshot id for rolling back.
func appliedProject(t *testing.T) (*fsops.MemFS, *memStore, *Engine, types.SnapshotID) {
	t.Helper()
	mfs := fsops.NewMemFS()
	mfs.Seed("requirements.txt", []byte("old-reqs\n"))
	mfs.Seed("src/main.py", []byte("# v1\n"))
	store := newMemStore()
	eng := testEngine(mfs, store)

	report, err := eng.Apply(context.Background(), parsePlan(t, basePlanYAML), Options{})
	require.NoError(t, err)
	require.Equal(t, StatusApplied, report.Status)
	return mfs, store, eng, report.AnchorSnapshotID
}

func TestRollback_AdditiveRestore(t *testing.T) {
	mfs, store, eng, anchor := appliedProject(t)
	mfs.Seed("extra.txt", []byte("scratch\n"))

	report, err := eng.Rollback(context.Background(), anchor, Options{})

	require.NoError(t, err)
	assert.Equal(t, StatusApplied, report.Status)
	assert.Equal(t, anchor, report.SnapshotID)
	require.False(t, report.BackupSnapshotID.IsZero())
	assert.NotEqual(t, anchor, report.BackupSnapshotID)

	// Both captured paths were rewritten; nothing else was touched.
	require.Len(t, report.Entries, 2)
	assert.Equal(t, "requirements.txt", report.Entries[0].Path)
	assert.Equal(t, RestoreWrite, report.Entries[0].Action)
	assert.Equal(t, OutcomeApplied, report.Entries[0].Outcome)
	assert.Equal(t, "src/main.py", report.Entries[1].Path)
	assert.Equal(t, OutcomeApplied, report.Entries[1].Outcome)

	got, _ := mfs.Contents("requirements.txt")
	assert.Equal(t, "old-reqs\n", string(got))
	got, _ = mfs.Contents("src/main.py")
	assert.Equal(t, "# v1\n", string(got))

	_, stillThere := mfs.Contents("app/models/base.py")
	assert.True(t, stillThere, "additive restore leaves files created since the snapshot")
	_, stillThere = mfs.Contents("extra.txt")
	assert.True(t, stillThere, "additive restore leaves unmanaged files")

	// Anchor plus the pre-rollback backup.
	require.Equal(t, 2, store.len())
	backup, err := store.Get(context.Background(), report.BackupSnapshotID)
	require.NoError(t, err)
	assert.Equal(t, "pre-rollback backup", backup.Label)
	assert.Equal(t, 4, backup.FileCount(), "backup captured the tree as it was before restoring")
}

func TestRollback_FullRestoreDeletesExtras(t *testing.T) {
	mfs, _, eng, anchor := appliedProject(t)
	mfs.Seed("extra.txt", []byte("scratch\n"))
	mfs.Seed(".git/config", []byte("[core]\n"))

	report, err := eng.Rollback(context.Background(), anchor, Options{FullRestore: true})

	require.NoError(t, err)
	assert.Equal(t, StatusApplied, report.Status)

	var deleted []string
	for _, entry := range report.Entries {
		if entry.Action == RestoreDelete {
			assert.Equal(t, OutcomeApplied, entry.Outcome)
			deleted = append(deleted, entry.Path)
		}
	}
	assert.Equal(t, []string{"app/models/base.py", "extra.txt"}, deleted)

	// Ignored paths are never deletion candidates.
	assert.Equal(t, []string{".git/config", "requirements.txt", "src/main.py"}, mfs.Paths())
	got, _ := mfs.Contents("requirements.txt")
	assert.Equal(t, "old-reqs\n", string(got))
}

func TestRollback_SecondRollbackSkipsEverything(t *testing.T) {
	_, store, eng, anchor := appliedProject(t)

	first, err := eng.Rollback(context.Background(), anchor, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusApplied, first.Status)

	second, err := eng.Rollback(context.Background(), anchor, Options{})
	require.NoError(t, err)

	counts := second.OutcomeCounts()
	assert.Equal(t, 2, counts[OutcomeSkipped])
	assert.Equal(t, 0, counts[OutcomeApplied])

	// Every rollback registers its own backup.
	assert.Equal(t, 3, store.len())
}

func TestRollback_UnknownSnapshot(t *testing.T) {
	mfs := fsops.NewMemFS()
	mfs.Seed("requirements.txt", []byte("untouched\n"))
	store := newMemStore()
	eng := testEngine(mfs, store)

	report, err := eng.Rollback(context.Background(),
		types.SnapshotID("snapshot-20260101-000000-deadbeef"), Options{})

	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.SNAPSHOT_NOT_FOUND))
	assert.Nil(t, report)
	assert.Equal(t, 0, store.len(), "no backup for a rollback that never started")
	got, _ := mfs.Contents("requirements.txt")
	assert.Equal(t, "untouched\n", string(got))
	assert.Equal(t, StatusIdle, eng.Status())
}

func TestRollback_WriteFailureHalts(t *testing.T) {
	mfs, store, eng, anchor := appliedProject(t)
	mfs.FailWrites["requirements.txt"] = errors.New("device wedged")

	report, err := eng.Rollback(context.Background(), anchor, Options{})

	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.FILE_WRITE_FAILED))
	require.NotNil(t, report)
	assert.Equal(t, StatusFailed, report.Status)

	require.Len(t, report.Entries, 2)
	assert.Equal(t, OutcomeFailed, report.Entries[0].Outcome)
	assert.Contains(t, report.Entries[0].Err, "device wedged")
	assert.Equal(t, OutcomeNotAttempted, report.Entries[1].Outcome)

	// The backup was registered before the halt, so recovery stays possible.
	assert.Equal(t, 2, store.len())
	require.False(t, report.BackupSnapshotID.IsZero())
	assert.Equal(t, StatusIdle, eng.Status(), "engine stays usable after a halt")
}

func TestRollback_CancelledContextHalts(t *testing.T) {
	_, _, eng, anchor := appliedProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := eng.Rollback(ctx, anchor, Options{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	// The cancelled context stops the backup capture before any restore.
	assert.True(t, types.HasCode(err, types.SNAPSHOT_CAPTURE_FAILED))
	require.NotNil(t, report)
	assert.Equal(t, StatusFailed, report.Status)
	assert.Empty(t, report.Entries)
}
