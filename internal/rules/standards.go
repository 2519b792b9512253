package rules

import (
	"fmt"
	"strings"

	"github.com/fancybread-com/cursor-plans/internal/plan"
	"github.com/fancybread-com/cursor-plans/internal/validation"
)

// TeamStandards is the built-in standards hook. It encodes two
// cross-cutting team checks that do not belong to any plan section:
// auth-declaring plans should ship a security-related file, and the
// testing phase should actually test something. All findings are
// warnings.
type TeamStandards struct{}

// Check implements validation.StandardsHook.
func (TeamStandards) Check(doc *plan.Document) []validation.Diagnostic {
	var out []validation.Diagnostic

	if declaresAuth(doc) && !hasSecurityFile(doc) {
		out = append(out, validation.Diagnostic{
			Severity:   validation.SeverityWarning,
			Message:    "plan declares an auth feature but no security-related file",
			Location:   "resources.files",
			Suggestion: "add an auth or security file resource to the plan",
		})
	}

	if ph, ok := doc.Phases.Get(plan.TestingPhase); ok && len(ph.Tasks) == 0 {
		out = append(out, validation.Diagnostic{
			Severity:   validation.SeverityWarning,
			Message:    fmt.Sprintf("phase %q declares no tasks", plan.TestingPhase),
			Location:   "phases." + plan.TestingPhase,
			Suggestion: "add at least one test task",
		})
	}

	return out
}

// declaresAuth reports whether any target-state feature or architecture
// value mentions auth.
func declaresAuth(doc *plan.Document) bool {
	for _, f := range doc.TargetState.Features {
		if strings.Contains(strings.ToLower(f), "auth") {
			return true
		}
	}
	for _, m := range doc.TargetState.Architecture {
		for _, v := range m {
			if strings.Contains(strings.ToLower(v), "auth") {
				return true
			}
		}
	}
	return false
}

// hasSecurityFile reports whether any declared file looks security
// related, judged by its path or type.
func hasSecurityFile(doc *plan.Document) bool {
	for _, f := range doc.Resources.Files {
		haystack := strings.ToLower(f.Path + " " + f.Type)
		if strings.Contains(haystack, "auth") || strings.Contains(haystack, "security") {
			return true
		}
	}
	return false
}
