package validation

import (
	"fmt"
	"strings"

	"github.com/fancybread-com/cursor-plans/internal/plan"
	"github.com/fancybread-com/cursor-plans/internal/template"
)

// runSyntax re-checks schema invariants the parser accepts but the
// pipeline owns: the mandatory testing phase, an acyclic phase dependency
// graph, and well-formed template names.
func (p *Pipeline) runSyntax(doc *plan.Document) []Diagnostic {
	var out []Diagnostic

	// The testing phase is required regardless of strict mode.
	if !doc.Phases.Has(plan.TestingPhase) {
		out = append(out, newDiag(LayerSyntax, SeverityError, "phases",
			fmt.Sprintf("required phase %q is missing", plan.TestingPhase),
			"add a testing phase with at least one task"))
	}

	if cycle := doc.PhaseCycle(); len(cycle) > 0 {
		out = append(out, newDiag(LayerSyntax, SeverityError, "phases",
			fmt.Sprintf("phase dependencies form a cycle: %s", strings.Join(cycle, " -> ")),
			"remove one dependency to break the cycle"))
	}

	for i, f := range doc.Resources.Files {
		name := f.Template
		if strings.HasPrefix(name, template.CustomPrefix) {
			// The custom_ prefix is the escape hatch for templates
			// registered by the host; registration happens at render
			// time, so the name passes here.
			continue
		}
		if !p.catalog.Known(name) {
			out = append(out, newDiag(LayerSyntax, SeverityError,
				fmt.Sprintf("resources.files[%d].template", i),
				fmt.Sprintf("unknown template %q", name),
				fmt.Sprintf("use a registered template or %q for a custom registration", template.CustomPrefix+name)))
		}
	}

	return out
}
