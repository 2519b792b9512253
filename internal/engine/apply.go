package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fancybread-com/cursor-plans/internal/plan"
	"github.com/fancybread-com/cursor-plans/internal/state"
	"github.com/fancybread-com/cursor-plans/internal/types"
)

// Apply executes the plan against the project tree.
//
// Every apply starts with the validation gate: remaining error-severity
// diagnostics abort with a VALIDATION_FAILED error before anything is
// captured or written, and the report carries the findings. A dry run then
// stops after planning, with nothing written and nothing registered. A
// real apply registers the pre-apply anchor snapshot before the first
// write, then applies the change set in order, halting at the first write
// failure. There is no automatic rollback; the anchor snapshot is the
// recovery point.
func (e *Engine) Apply(ctx context.Context, doc *plan.Document, opts Options) (*ApplyReport, error) {
	if err := e.begin("apply"); err != nil {
		return nil, err
	}
	defer e.release()

	started := time.Now().UTC()
	report := &ApplyReport{
		PlanName:  doc.Project.Name,
		DryRun:    opts.DryRun,
		StartedAt: started,
	}
	finish := func(s Status) *ApplyReport {
		e.setStatus(s)
		report.Status = s
		report.Duration = time.Since(started)
		return report
	}

	e.logger.Info("starting apply",
		"plan", doc.Project.Name,
		"dry_run", opts.DryRun,
		"strict", e.strict,
	)

	res := e.pipeline.Run(doc, e.root)
	report.Diagnostics = res.Diagnostics
	if !res.Passed() {
		errs, _, _ := res.Counts()
		e.logger.Error("validation gate failed",
			"plan", doc.Project.Name,
			"errors", errs,
		)
		return finish(StatusFailed), types.NewError(types.VALIDATION_FAILED,
			fmt.Sprintf("plan %q failed validation with %d error(s)", doc.Project.Name, errs))
	}

	label := labelPreApply
	if opts.DryRun {
		label = "dry-run"
	}
	snap, err := e.capture(ctx, label)
	if err != nil {
		return finish(StatusFailed), err
	}

	cs, err := e.diff(doc, snap)
	if err != nil {
		return finish(StatusFailed), err
	}
	report.Diagnostics = append(report.Diagnostics, e.fallbackDiagnostics(cs)...)
	report.Changes = make([]ChangeResult, len(cs.Changes))
	for i, ch := range cs.Changes {
		report.Changes[i] = ChangeResult{Change: ch, Outcome: OutcomeNotAttempted}
	}

	if opts.DryRun {
		for i := range report.Changes {
			if report.Changes[i].Change.Action == state.ActionSkip {
				report.Changes[i].Outcome = OutcomeSkipped
			} else {
				report.Changes[i].Outcome = OutcomePlanned
			}
		}
		e.logger.Info("dry run complete",
			"plan", doc.Project.Name,
			"changes", len(cs.Changes),
			"mutations", cs.MutationCount(),
		)
		return finish(StatusDryRun), nil
	}

	// The anchor must be safely registered before the first write; an
	// apply that cannot leave a recovery point does not start.
	if err := e.store.Put(ctx, snap); err != nil {
		e.logger.Error("registering pre-apply snapshot failed",
			"snapshot", snap.ID,
			"error", err,
		)
		return finish(StatusFailed), err
	}
	report.AnchorSnapshotID = snap.ID
	e.setStatus(StatusApplying)

	order, err := doc.FileOrder()
	if err != nil {
		return finish(StatusFailed), err
	}

	for i, rf := range order {
		cr := &report.Changes[i]

		select {
		case <-ctx.Done():
			e.logger.Warn("apply cancelled",
				"plan", doc.Project.Name,
				"completed", i,
				"remaining", len(order)-i,
			)
			return finish(StatusFailed), types.WrapError(types.APPLY_HALTED,
				fmt.Sprintf("apply halted before %q", rf.Path), ctx.Err())
		default:
		}

		if cr.Change.Action == state.ActionSkip {
			cr.Outcome = OutcomeSkipped
			continue
		}

		text, _ := e.renderer.Render(rf.Template, state.RenderContext(doc, rf))
		perm := os.FileMode(0o644)
		if existing, ok := snap.File(rf.Path); ok && existing.Mode != 0 {
			perm = existing.Mode
		}
		target := filepath.Join(e.root, filepath.FromSlash(rf.Path))
		if err := e.fs.WriteFileAtomic(target, []byte(text), perm); err != nil {
			cr.Outcome = OutcomeFailed
			cr.Err = err.Error()
			e.logger.Error("write failed, halting apply",
				"path", rf.Path,
				"position", i,
				"remaining", len(order)-i-1,
				"error", err,
			)
			return finish(StatusFailed), err
		}
		cr.Outcome = OutcomeApplied
	}

	e.logger.Info("apply complete",
		"plan", doc.Project.Name,
		"anchor_snapshot", snap.ID,
		"changes", len(order),
		"mutations", cs.MutationCount(),
	)
	return finish(StatusApplied), nil
}
