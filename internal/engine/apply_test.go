package engine

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fancybread-com/cursor-plans/internal/fsops"
	"github.com/fancybread-com/cursor-plans/internal/state"
	"github.com/fancybread-com/cursor-plans/internal/types"
	"github.com/fancybread-com/cursor-plans/internal/validation"
)

func warningsMentioning(diags []validation.Diagnostic, substr string) []validation.Diagnostic {
	var out []validation.Diagnostic
	for _, d := range diags {
		if d.Severity == validation.SeverityWarning && strings.Contains(d.Message, substr) {
			out = append(out, d)
		}
	}
	return out
}

func TestApply_CreatesEverythingOnEmptyProject(t *testing.T) {
	mfs := fsops.NewMemFS()
	store := newMemStore()
	eng := testEngine(mfs, store)

	report, err := eng.Apply(context.Background(), parsePlan(t, basePlanYAML), Options{})

	require.NoError(t, err)
	assert.Equal(t, StatusApplied, report.Status)
	assert.False(t, report.DryRun)
	assert.Equal(t, "taskflow", report.PlanName)

	require.Len(t, report.Changes, 3)
	for _, cr := range report.Changes {
		assert.Equal(t, state.ActionCreate, cr.Change.Action)
		assert.Equal(t, OutcomeApplied, cr.Outcome)
	}
	// Ascending phase priority, then declaration order.
	assert.Equal(t, "requirements.txt", report.Changes[0].Change.Path)
	assert.Equal(t, "src/main.py", report.Changes[1].Change.Path)
	assert.Equal(t, "app/models/base.py", report.Changes[2].Change.Path)

	got, ok := mfs.Contents("requirements.txt")
	require.True(t, ok)
	assert.Equal(t, "fastapi\nuvicorn\n", string(got))
	assert.Equal(t, []string{"app/models/base.py", "requirements.txt", "src/main.py"}, mfs.Paths())

	// Exactly one snapshot: the pre-apply anchor of the empty tree.
	require.Equal(t, 1, store.len())
	require.False(t, report.AnchorSnapshotID.IsZero())
	anchor, err := store.Get(context.Background(), report.AnchorSnapshotID)
	require.NoError(t, err)
	assert.Equal(t, "pre-apply anchor", anchor.Label)
	assert.Equal(t, 0, anchor.FileCount())
}

func TestApply_DryRunMutatesNothing(t *testing.T) {
	mfs := fsops.NewMemFS()
	mfs.Seed("requirements.txt", []byte("fastapi\nuvicorn\n"))
	store := newMemStore()
	eng := testEngine(mfs, store)

	report, err := eng.Apply(context.Background(), parsePlan(t, basePlanYAML), Options{DryRun: true})

	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, StatusDryRun, report.Status)
	assert.True(t, report.AnchorSnapshotID.IsZero())

	counts := report.OutcomeCounts()
	assert.Equal(t, 2, counts[OutcomePlanned])
	assert.Equal(t, 1, counts[OutcomeSkipped])
	for _, cr := range report.Changes {
		assert.Greater(t, cr.Change.RenderedSize, int64(0))
	}

	assert.Equal(t, []string{"requirements.txt"}, mfs.Paths(), "dry run must not write")
	assert.Equal(t, 0, store.len(), "dry run must not register snapshots")
}

func TestApply_ManualEditMatchingRenderSkips(t *testing.T) {
	mfs := fsops.NewMemFS()
	mfs.Seed("requirements.txt", []byte("fastapi\nuvicorn\n"))
	eng := testEngine(mfs, newMemStore())

	report, err := eng.Apply(context.Background(), parsePlan(t, basePlanYAML), Options{})

	require.NoError(t, err)
	assert.Equal(t, StatusApplied, report.Status)

	byPath := make(map[string]ChangeResult, len(report.Changes))
	for _, cr := range report.Changes {
		byPath[cr.Change.Path] = cr
	}
	skip := byPath["requirements.txt"]
	assert.Equal(t, state.ActionSkip, skip.Change.Action)
	assert.Equal(t, OutcomeSkipped, skip.Outcome)
	assert.Equal(t, OutcomeApplied, byPath["src/main.py"].Outcome)
	assert.Equal(t, OutcomeApplied, byPath["app/models/base.py"].Outcome)

	got, _ := mfs.Contents("requirements.txt")
	assert.Equal(t, "fastapi\nuvicorn\n", string(got), "skipped file left as found")
}

func TestApply_SecondApplySkipsAll(t *testing.T) {
	mfs := fsops.NewMemFS()
	store := newMemStore()
	eng := testEngine(mfs, store)
	doc := parsePlan(t, basePlanYAML)

	_, err := eng.Apply(context.Background(), doc, Options{})
	require.NoError(t, err)
	report, err := eng.Apply(context.Background(), doc, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusApplied, report.Status)
	counts := report.OutcomeCounts()
	assert.Equal(t, 3, counts[OutcomeSkipped])
	assert.Equal(t, 0, counts[OutcomeApplied])

	// Each real apply registers its anchor, mutations or not.
	assert.Equal(t, 2, store.len())
}

func TestApply_ValidationGateBlocks(t *testing.T) {
	mfs := fsops.NewMemFS()
	store := newMemStore()
	eng := testEngine(mfs, store)

	report, err := eng.Apply(context.Background(), parsePlan(t, noTestingPlanYAML), Options{})

	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.VALIDATION_FAILED))
	require.NotNil(t, report)
	assert.Equal(t, StatusFailed, report.Status)
	assert.Empty(t, report.Changes)
	assert.True(t, report.AnchorSnapshotID.IsZero())

	require.NotEmpty(t, report.Diagnostics)
	var sawTestingError bool
	for _, d := range report.Diagnostics {
		if d.Severity == validation.SeverityError && strings.Contains(d.Message, "testing") {
			sawTestingError = true
		}
	}
	assert.True(t, sawTestingError, "report must carry the blocking diagnostic")

	assert.Empty(t, mfs.Paths(), "gate failure must not write")
	assert.Equal(t, 0, store.len(), "gate failure must not register snapshots")
}

func TestApply_FallbackTemplateWarnsButApplies(t *testing.T) {
	mfs := fsops.NewMemFS()
	store := newMemStore()
	eng := testEngine(mfs, store)

	report, err := eng.Apply(context.Background(), parsePlan(t, fallbackPlanYAML), Options{})

	require.NoError(t, err, "an unimplemented template must not fail the apply")
	assert.Equal(t, StatusApplied, report.Status)

	warns := warningsMentioning(report.Diagnostics, `"vue_router"`)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].Message, "not implemented")

	var router ChangeResult
	for _, cr := range report.Changes {
		if cr.Change.Path == "src/router/index.js" {
			router = cr
		}
	}
	assert.Equal(t, state.ActionCreate, router.Change.Action)
	assert.Equal(t, OutcomeApplied, router.Outcome)
	assert.True(t, router.Change.FellBack)

	got, ok := mfs.Contents("src/router/index.js")
	require.True(t, ok)
	assert.Contains(t, string(got), "Generated by devplan")
	assert.Contains(t, string(got), "vue_router")
	assert.Equal(t, 1, store.len())
}

func TestApply_WriteFailureHaltsFailFast(t *testing.T) {
	mfs := fsops.NewMemFS()
	mfs.FailWrites["src/main.py"] = errors.New("device wedged")
	store := newMemStore()
	eng := testEngine(mfs, store)

	report, err := eng.Apply(context.Background(), parsePlan(t, basePlanYAML), Options{})

	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.FILE_WRITE_FAILED))
	assert.Contains(t, err.Error(), "device wedged")
	require.NotNil(t, report)
	assert.Equal(t, StatusFailed, report.Status)

	require.Len(t, report.Changes, 3)
	assert.Equal(t, OutcomeApplied, report.Changes[0].Outcome)
	assert.Equal(t, OutcomeFailed, report.Changes[1].Outcome)
	assert.Contains(t, report.Changes[1].Err, "device wedged")
	assert.Equal(t, OutcomeNotAttempted, report.Changes[2].Outcome)

	// The first write landed, the halted one never happened.
	assert.Equal(t, []string{"requirements.txt"}, mfs.Paths())
	assert.Equal(t, 1, store.len(), "anchor stays registered after a halt")
	assert.Equal(t, StatusIdle, eng.Status(), "engine stays usable after a halt")
}

func TestApply_StorePutFailureBlocksWrites(t *testing.T) {
	mfs := fsops.NewMemFS()
	store := newMemStore()
	store.failPut = types.NewError(types.DB_QUERY_FAILED, "database is locked")
	eng := testEngine(mfs, store)

	report, err := eng.Apply(context.Background(), parsePlan(t, basePlanYAML), Options{})

	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.DB_QUERY_FAILED))
	require.NotNil(t, report)
	assert.Equal(t, StatusFailed, report.Status)
	assert.True(t, report.AnchorSnapshotID.IsZero())
	for _, cr := range report.Changes {
		assert.Equal(t, OutcomeNotAttempted, cr.Outcome)
	}
	assert.Empty(t, mfs.Paths(), "no anchor, no writes")
}

func TestApply_CancelledContextAbortsBeforeWrites(t *testing.T) {
	mfs := fsops.NewMemFS()
	store := newMemStore()
	eng := testEngine(mfs, store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := eng.Apply(ctx, parsePlan(t, basePlanYAML), Options{})

	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.SNAPSHOT_CAPTURE_FAILED))
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, report)
	assert.Equal(t, StatusFailed, report.Status)
	assert.Empty(t, mfs.Paths())
	assert.Equal(t, 0, store.len())
}

func TestApply_OverwritePreservesFileMode(t *testing.T) {
	mfs := fsops.NewMemFS()
	require.NoError(t, mfs.WriteFileAtomic("src/main.py", []byte("# locked down\n"), 0o600))
	eng := testEngine(mfs, newMemStore())

	report, err := eng.Apply(context.Background(), parsePlan(t, basePlanYAML), Options{})

	require.NoError(t, err)
	assert.Equal(t, StatusApplied, report.Status)

	info, err := mfs.Stat("src/main.py")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "existing mode preserved on overwrite")
}
