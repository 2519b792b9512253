// Package validation runs plan documents through four independent
// validation layers and aggregates their findings.
//
// Layers are total: every layer returns a diagnostic list and never aborts
// the pipeline, so a single run reports everything wrong with a plan at
// once. Findings accumulate as Diagnostics; the caller decides pass/fail
// from the aggregate Result, with strict mode promoting warnings to
// errors first.
package validation

// Severity classifies how a diagnostic affects the validation verdict.
type Severity string

const (
	// SeverityError marks blocking findings. Any remaining error fails
	// validation and prevents apply.
	SeverityError Severity = "error"
	// SeverityWarning marks best-practice findings. Warnings only block
	// in strict mode, where they are promoted to errors.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks advisory findings that never block.
	SeverityInfo Severity = "info"
)

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Layer identifies which validation layer produced a diagnostic.
type Layer string

const (
	LayerSyntax    Layer = "syntax"
	LayerLogic     Layer = "logic"
	LayerContext   Layer = "context"
	LayerStandards Layer = "standards"
)

// Layers lists the pipeline's layers in execution order.
var Layers = []Layer{LayerSyntax, LayerLogic, LayerContext, LayerStandards}

// Diagnostic is a single validation finding. Diagnostics are values; the
// pipeline produces them and never mutates plan or project state.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Layer    Layer    `json:"layer" yaml:"layer"`
	Message  string   `json:"message" yaml:"message"`
	// Location names the plan region the finding applies to, e.g.
	// "phases.testing" or "resources.files[2].template".
	Location string `json:"location" yaml:"location"`
	// Suggestion optionally tells the plan author how to fix the finding.
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

func newDiag(layer Layer, sev Severity, location, message, suggestion string) Diagnostic {
	return Diagnostic{
		Severity:   sev,
		Layer:      layer,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	}
}
