package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fancybread-com/cursor-plans/internal/engine"
	"github.com/fancybread-com/cursor-plans/internal/state"
	"github.com/fancybread-com/cursor-plans/internal/validation"
)

func severityMark(sev validation.Severity) string {
	switch sev {
	case validation.SeverityError:
		return "✗"
	case validation.SeverityWarning:
		return "!"
	default:
		return "·"
	}
}

func actionMark(a state.Action) string {
	switch a {
	case state.ActionCreate:
		return "+"
	case state.ActionOverwrite:
		return "~"
	default:
		return "="
	}
}

// renderDiagnostics writes findings one per line in pipeline order.
func renderDiagnostics(w io.Writer, diags []validation.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "  %s %-7s [%s] %s", severityMark(d.Severity), d.Severity, d.Layer, d.Message)
		if d.Location != "" {
			fmt.Fprintf(w, " (%s)", d.Location)
		}
		fmt.Fprintln(w)
		if d.Suggestion != "" {
			fmt.Fprintf(w, "      hint: %s\n", d.Suggestion)
		}
	}
}

// renderChangeSet writes the planned changes in apply order.
func renderChangeSet(w io.Writer, cs *state.ChangeSet) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ch := range cs.Changes {
		fmt.Fprintf(tw, "  %s %s\t%s\t%s\t%s\n",
			actionMark(ch.Action), ch.Action, ch.Path, ch.Phase, ch.Rationale)
	}
	tw.Flush()

	creates, overwrites, skips := cs.Counts()
	fmt.Fprintf(w, "\n%d change(s): %d create, %d overwrite, %d skip\n",
		len(cs.Changes), creates, overwrites, skips)
}

// renderApplyReport writes the per-change outcomes and summary.
func renderApplyReport(w io.Writer, report *engine.ApplyReport) {
	if warnings := report.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		renderDiagnostics(w, warnings)
		fmt.Fprintln(w)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, cr := range report.Changes {
		line := fmt.Sprintf("  %s %s\t%s\t%s",
			actionMark(cr.Change.Action), cr.Change.Action, cr.Change.Path, cr.Outcome)
		if cr.Err != "" {
			line += "\t" + cr.Err
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()

	counts := report.OutcomeCounts()
	fmt.Fprintf(w, "\nStatus: %s", report.Status)
	if report.DryRun {
		fmt.Fprint(w, " (dry run, nothing written)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Outcomes: %d applied, %d skipped, %d planned, %d failed, %d not attempted\n",
		counts[engine.OutcomeApplied], counts[engine.OutcomeSkipped], counts[engine.OutcomePlanned],
		counts[engine.OutcomeFailed], counts[engine.OutcomeNotAttempted])
	if !report.AnchorSnapshotID.IsZero() {
		fmt.Fprintf(w, "Anchor snapshot: %s\n", report.AnchorSnapshotID)
	}
	fmt.Fprintf(w, "Duration: %s\n", report.Duration.Round(time.Millisecond))
}

// renderRollbackReport writes the per-entry outcomes and summary.
func renderRollbackReport(w io.Writer, report *engine.RollbackReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, entry := range report.Entries {
		line := fmt.Sprintf("  %s\t%s\t%s", entry.Action, entry.Path, entry.Outcome)
		if entry.Err != "" {
			line += "\t" + entry.Err
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()

	counts := report.OutcomeCounts()
	fmt.Fprintf(w, "\nStatus: %s\n", report.Status)
	fmt.Fprintf(w, "Outcomes: %d restored, %d skipped, %d failed, %d not attempted\n",
		counts[engine.OutcomeApplied], counts[engine.OutcomeSkipped],
		counts[engine.OutcomeFailed], counts[engine.OutcomeNotAttempted])
	if !report.BackupSnapshotID.IsZero() {
		fmt.Fprintf(w, "Backup snapshot: %s\n", report.BackupSnapshotID)
	}
	fmt.Fprintf(w, "Duration: %s\n", report.Duration.Round(time.Millisecond))
}
