package validation

import (
	"fmt"
	"path"
	"regexp"

	"github.com/fancybread-com/cursor-plans/internal/fsops"
	"github.com/fancybread-com/cursor-plans/internal/plan"
)

// runContext cross-checks the plan against the project rule set, when one
// exists. Absence of a rule set is normal: the layer emits a single info
// diagnostic and nothing else. An unusable rule set is a warning. Every
// rule finding is a warning; rules only block under strict mode.
func (p *Pipeline) runContext(doc *plan.Document, projectRoot string) []Diagnostic {
	if p.provider == nil {
		return []Diagnostic{newDiag(LayerContext, SeverityInfo, "rules",
			"no rule provider configured; context checks skipped", "")}
	}

	rs, err := p.provider.RulesFor(projectRoot)
	if err != nil {
		return []Diagnostic{newDiag(LayerContext, SeverityWarning, "rules",
			fmt.Sprintf("project rule set could not be loaded: %v", err),
			"fix or remove the rules file")}
	}
	if rs == nil {
		return []Diagnostic{newDiag(LayerContext, SeverityInfo, "rules",
			"no project rule set present; context checks skipped", "")}
	}

	var out []Diagnostic
	out = append(out, checkRequiredPhases(doc, rs)...)
	out = append(out, checkRequiredFeatures(doc, rs)...)
	out = append(out, checkForbiddenPaths(doc, rs)...)
	out = append(out, checkNamingConventions(doc, rs)...)
	return out
}

func checkRequiredPhases(doc *plan.Document, rs *RuleSet) []Diagnostic {
	var out []Diagnostic
	for _, name := range rs.RequiredPhases {
		if !doc.Phases.Has(name) {
			out = append(out, newDiag(LayerContext, SeverityWarning, "phases",
				fmt.Sprintf("project rules require phase %q", name),
				fmt.Sprintf("declare a %q phase", name)))
		}
	}
	return out
}

func checkRequiredFeatures(doc *plan.Document, rs *RuleSet) []Diagnostic {
	var out []Diagnostic
	for _, feat := range rs.RequiredFeatures {
		if !doc.TargetState.HasFeature(feat) {
			out = append(out, newDiag(LayerContext, SeverityWarning, "target_state.features",
				fmt.Sprintf("project rules require feature %q", feat),
				fmt.Sprintf("add %q to the target state features", feat)))
		}
	}
	return out
}

func checkForbiddenPaths(doc *plan.Document, rs *RuleSet) []Diagnostic {
	var out []Diagnostic
	for i, f := range doc.Resources.Files {
		for _, glob := range rs.ForbiddenPaths {
			if fsops.MatchGlob(glob, f.Path) {
				out = append(out, newDiag(LayerContext, SeverityWarning,
					fmt.Sprintf("resources.files[%d].path", i),
					fmt.Sprintf("path %q matches forbidden pattern %q", f.Path, glob),
					"move the file outside the forbidden location"))
			}
		}
	}
	return out
}

func checkNamingConventions(doc *plan.Document, rs *RuleSet) []Diagnostic {
	var out []Diagnostic
	for _, nc := range rs.NamingConventions {
		re, err := regexp.Compile(nc.Pattern)
		if err != nil {
			out = append(out, newDiag(LayerContext, SeverityWarning, "rules",
				fmt.Sprintf("naming convention pattern %q does not compile: %v", nc.Pattern, err),
				"fix the pattern in the rules file"))
			continue
		}
		for i, f := range doc.Resources.Files {
			if !fsops.MatchGlob(nc.Match, f.Path) {
				continue
			}
			if !re.MatchString(path.Base(f.Path)) {
				msg := fmt.Sprintf("file name %q does not match convention %q", path.Base(f.Path), nc.Pattern)
				if nc.Description != "" {
					msg = fmt.Sprintf("file name %q violates convention: %s", path.Base(f.Path), nc.Description)
				}
				out = append(out, newDiag(LayerContext, SeverityWarning,
					fmt.Sprintf("resources.files[%d].path", i),
					msg,
					"rename the file to satisfy the project convention"))
			}
		}
	}
	return out
}
