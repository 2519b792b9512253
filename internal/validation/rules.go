package validation

import "github.com/fancybread-com/cursor-plans/internal/plan"

// RuleSet is an externally supplied project rule set consumed by the
// context layer. All rule findings are warnings; a rule set can make a
// plan fail only through strict mode.
type RuleSet struct {
	// RequiredPhases names phases the project expects every plan to
	// declare, beyond the always-required testing phase.
	RequiredPhases []string `yaml:"required_phases,omitempty" json:"required_phases,omitempty"`

	// RequiredFeatures names features the target state must declare.
	RequiredFeatures []string `yaml:"required_features,omitempty" json:"required_features,omitempty"`

	// ForbiddenPaths are globs (fsops.MatchGlob semantics) no declared
	// file path may match.
	ForbiddenPaths []string `yaml:"forbidden_paths,omitempty" json:"forbidden_paths,omitempty"`

	// NamingConventions constrain file names for matching paths.
	NamingConventions []NamingConvention `yaml:"naming_conventions,omitempty" json:"naming_conventions,omitempty"`
}

// NamingConvention requires the base name of every file whose path matches
// Match to satisfy Pattern.
type NamingConvention struct {
	// Match is a glob selecting the paths the convention applies to.
	Match string `yaml:"match" json:"match"`
	// Pattern is a regular expression the base file name must match.
	Pattern string `yaml:"pattern" json:"pattern"`
	// Description explains the convention in rule-file terms; it is echoed
	// in diagnostics.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// RuleProvider supplies the project rule set, if any. Returning (nil, nil)
// means no rule set exists for the root; the context layer treats that as
// absence, never as an error. A non-nil error means a rule set exists but
// could not be used, which the context layer reports as a warning.
type RuleProvider interface {
	RulesFor(projectRoot string) (*RuleSet, error)
}

// StandardsHook is the pluggable team-standards check invoked by the
// standards layer. Implementations inspect the plan and return findings;
// the pipeline stamps the standards layer on each and defaults missing
// severities to warning. A panicking hook is recovered and reported as a
// warning, never as an error.
type StandardsHook interface {
	Check(doc *plan.Document) []Diagnostic
}

// HookFunc adapts a function to the StandardsHook interface.
type HookFunc func(doc *plan.Document) []Diagnostic

// Check implements StandardsHook.
func (f HookFunc) Check(doc *plan.Document) []Diagnostic {
	return f(doc)
}
