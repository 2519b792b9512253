package validation

import (
	"fmt"

	"github.com/fancybread-com/cursor-plans/internal/plan"
)

// runStandards invokes the registered team-standards hook. An unregistered
// hook degrades to a single warning. A hook that panics is recovered and
// reported as a warning; its partial findings are discarded because a
// half-run check cannot be trusted.
func (p *Pipeline) runStandards(doc *plan.Document) (out []Diagnostic) {
	if !p.hookSet {
		return []Diagnostic{newDiag(LayerStandards, SeverityWarning, "standards",
			"no standards hook registered; team checks skipped",
			"register a standards hook or run without strict mode")}
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("standards hook panicked", "panic", r)
			out = []Diagnostic{newDiag(LayerStandards, SeverityWarning, "standards",
				fmt.Sprintf("standards hook panicked: %v; its findings were discarded", r),
				"fix the registered hook")}
		}
	}()

	found := p.hook.Check(doc)
	out = make([]Diagnostic, 0, len(found))
	for _, d := range found {
		d.Layer = LayerStandards
		if !d.Severity.Valid() {
			d.Severity = SeverityWarning
		}
		out = append(out, d)
	}
	return out
}
