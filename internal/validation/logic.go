package validation

import (
	"fmt"
	"strings"

	"github.com/fancybread-com/cursor-plans/internal/plan"
)

// runLogic checks cross-references and the built-in plan constraints:
// phase references resolve, file paths do not collide, phases carry
// sensible priorities and tasks.
func (p *Pipeline) runLogic(doc *plan.Document) []Diagnostic {
	var out []Diagnostic

	out = append(out, checkPhaseReferences(doc)...)
	out = append(out, checkFilePhases(doc)...)
	out = append(out, checkPathConflicts(doc)...)
	out = append(out, checkPhaseConstraints(doc)...)

	return out
}

// checkPhaseReferences verifies every phase dependency names a declared
// phase. Cycles are the syntax layer's concern; this is pure reference
// resolution.
func checkPhaseReferences(doc *plan.Document) []Diagnostic {
	var out []Diagnostic
	for _, ph := range doc.Phases.All() {
		for _, dep := range ph.Dependencies {
			if !doc.Phases.Has(dep) {
				out = append(out, newDiag(LayerLogic, SeverityError,
					fmt.Sprintf("phases.%s.dependencies", ph.Name),
					fmt.Sprintf("phase %q depends on unknown phase %q", ph.Name, dep),
					fmt.Sprintf("remove %q or declare it as a phase", dep)))
			}
		}
	}
	return out
}

// checkFilePhases verifies every file's phase attribute names a declared
// phase.
func checkFilePhases(doc *plan.Document) []Diagnostic {
	var out []Diagnostic
	for i, f := range doc.Resources.Files {
		if f.Phase == "" {
			continue
		}
		if !doc.Phases.Has(f.Phase) {
			out = append(out, newDiag(LayerLogic, SeverityError,
				fmt.Sprintf("resources.files[%d].phase", i),
				fmt.Sprintf("file %q is attributed to unknown phase %q", f.Path, f.Phase),
				"attribute the file to a declared phase or drop the attribute"))
		}
	}
	return out
}

// checkPathConflicts flags duplicate file paths. Two declarations of the
// same path with different templates contradict each other and are an
// error; with the same template the second is merely redundant. Paths
// nested under another declared path are flagged as potential conflicts.
func checkPathConflicts(doc *plan.Document) []Diagnostic {
	var out []Diagnostic
	seen := make(map[string]int)

	for i, f := range doc.Resources.Files {
		if first, ok := seen[f.Path]; ok {
			if doc.Resources.Files[first].Template != f.Template {
				out = append(out, newDiag(LayerLogic, SeverityError,
					fmt.Sprintf("resources.files[%d]", i),
					fmt.Sprintf("path %q is declared again with template %q; resources.files[%d] uses %q",
						f.Path, f.Template, first, doc.Resources.Files[first].Template),
					"each path must resolve to a single template"))
			} else {
				out = append(out, newDiag(LayerLogic, SeverityWarning,
					fmt.Sprintf("resources.files[%d]", i),
					fmt.Sprintf("path %q is declared more than once with the same template", f.Path),
					"remove the redundant declaration"))
			}
			continue
		}
		seen[f.Path] = i

		for other := range seen {
			if other == f.Path {
				continue
			}
			if strings.HasPrefix(f.Path, other+"/") || strings.HasPrefix(other, f.Path+"/") {
				out = append(out, newDiag(LayerLogic, SeverityWarning,
					fmt.Sprintf("resources.files[%d].path", i),
					fmt.Sprintf("paths %q and %q nest inside each other", f.Path, other),
					"a declared file cannot also be a directory"))
			}
		}
	}
	return out
}

// checkPhaseConstraints applies the built-in constraints: positive
// priorities, non-empty task lists, and unique task ids across phases.
func checkPhaseConstraints(doc *plan.Document) []Diagnostic {
	var out []Diagnostic
	taskOwner := make(map[string]string)

	for _, ph := range doc.Phases.All() {
		if ph.Priority <= 0 {
			out = append(out, newDiag(LayerLogic, SeverityError,
				fmt.Sprintf("phases.%s.priority", ph.Name),
				fmt.Sprintf("phase %q has invalid priority %d", ph.Name, ph.Priority),
				"priority must be a positive integer"))
		}
		if len(ph.Tasks) == 0 {
			out = append(out, newDiag(LayerLogic, SeverityWarning,
				fmt.Sprintf("phases.%s", ph.Name),
				fmt.Sprintf("phase %q has no tasks defined", ph.Name),
				"add tasks or remove the empty phase"))
		}
		for _, task := range ph.Tasks {
			if owner, ok := taskOwner[task]; ok {
				out = append(out, newDiag(LayerLogic, SeverityWarning,
					fmt.Sprintf("phases.%s.tasks", ph.Name),
					fmt.Sprintf("task %q already appears in phase %q", task, owner),
					"task ids should be unique across phases"))
				continue
			}
			taskOwner[task] = ph.Name
		}
	}
	return out
}
