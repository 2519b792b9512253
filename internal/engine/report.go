package engine

import (
	"time"

	"github.com/fancybread-com/cursor-plans/internal/state"
	"github.com/fancybread-com/cursor-plans/internal/types"
	"github.com/fancybread-com/cursor-plans/internal/validation"
)

// Outcome records what happened to a single change or restore entry.
type Outcome string

const (
	// OutcomeApplied means the entry was written (or deleted) on disk.
	OutcomeApplied Outcome = "applied"

	// OutcomeSkipped means no write was needed: the content on disk
	// already matched.
	OutcomeSkipped Outcome = "skipped"

	// OutcomePlanned is the dry-run stand-in for a write that would
	// happen on a real apply.
	OutcomePlanned Outcome = "planned"

	// OutcomeFailed means the entry was attempted and its write failed.
	OutcomeFailed Outcome = "failed"

	// OutcomeNotAttempted means an earlier failure halted the operation
	// before this entry was reached.
	OutcomeNotAttempted Outcome = "not-attempted"
)

// ChangeResult pairs a planned change with its per-entry outcome.
type ChangeResult struct {
	Change  state.Change `json:"change" yaml:"change"`
	Outcome Outcome      `json:"outcome" yaml:"outcome"`

	// Err holds the write failure for failed entries.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ApplyReport is the full record of one Apply call, dry-run or real.
type ApplyReport struct {
	PlanName string `json:"plan_name" yaml:"plan_name"`
	DryRun   bool   `json:"dry_run" yaml:"dry_run"`
	Status   Status `json:"status" yaml:"status"`

	// AnchorSnapshotID names the pre-apply snapshot registered before the
	// first write. It stays empty for dry runs and for applies stopped at
	// the validation gate.
	AnchorSnapshotID types.SnapshotID `json:"anchor_snapshot_id,omitempty" yaml:"anchor_snapshot_id,omitempty"`

	Changes []ChangeResult `json:"changes" yaml:"changes"`

	// Diagnostics carries the validation findings plus any template
	// fallback warnings raised while rendering.
	Diagnostics []validation.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// OutcomeCounts tallies the report's entries per outcome.
func (r *ApplyReport) OutcomeCounts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, cr := range r.Changes {
		counts[cr.Outcome]++
	}
	return counts
}

// Warnings returns the warning-severity diagnostics attached to the report.
func (r *ApplyReport) Warnings() []validation.Diagnostic {
	var out []validation.Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == validation.SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// RestoreAction classifies a rollback entry.
type RestoreAction string

const (
	// RestoreWrite rewrites a path to its captured content.
	RestoreWrite RestoreAction = "restore"

	// RestoreDelete removes a path absent from the snapshot. Only
	// full-restore rollbacks produce delete entries.
	RestoreDelete RestoreAction = "delete"
)

// RestoreResult records one rollback entry and its outcome.
type RestoreResult struct {
	Path    string        `json:"path" yaml:"path"`
	Action  RestoreAction `json:"action" yaml:"action"`
	Outcome Outcome       `json:"outcome" yaml:"outcome"`
	Err     string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// RollbackReport is the full record of one Rollback call.
type RollbackReport struct {
	// SnapshotID is the snapshot the tree was restored to.
	SnapshotID types.SnapshotID `json:"snapshot_id" yaml:"snapshot_id"`

	// BackupSnapshotID names the pre-rollback backup registered before
	// the first restore, so the rollback itself can be undone.
	BackupSnapshotID types.SnapshotID `json:"backup_snapshot_id,omitempty" yaml:"backup_snapshot_id,omitempty"`

	Status    Status          `json:"status" yaml:"status"`
	Entries   []RestoreResult `json:"entries" yaml:"entries"`
	StartedAt time.Time       `json:"started_at" yaml:"started_at"`
	Duration  time.Duration   `json:"duration" yaml:"duration"`
}

// OutcomeCounts tallies the report's entries per outcome.
func (r *RollbackReport) OutcomeCounts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, e := range r.Entries {
		counts[e.Outcome]++
	}
	return counts
}
