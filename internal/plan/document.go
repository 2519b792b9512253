// Package plan implements the versioned plan document model: parsing,
// serialization, schema invariants, and deterministic phase/file ordering.
//
// A plan is a declarative description of the desired state of a project
// directory: the files that should exist (each realized from a named
// template), the package dependencies, and the development phases that
// order execution. Plans are persisted as tagged key-value text (YAML) in
// .devplan files.
//
// Parsing enforces document shape (required sections, plain-string
// dependencies, relative file paths, supported schema version). Semantic
// invariants such as the mandatory testing phase, acyclic phase
// dependencies, and known template names are the validator pipeline's job,
// so a shape-valid document always parses even when it would fail
// validation.
package plan

import (
	"sort"

	"github.com/fancybread-com/cursor-plans/internal/types"
)

// SchemaVersion1 is the current plan document schema version.
const SchemaVersion1 = "1.0"

// SupportedSchemaVersions lists every schema version this build can parse.
var SupportedSchemaVersions = []string{SchemaVersion1}

// Document is a parsed plan document.
type Document struct {
	SchemaVersion string         `yaml:"schema_version" json:"schema_version"`
	Project       Project        `yaml:"project" json:"project"`
	TargetState   TargetState    `yaml:"target_state" json:"target_state"`
	Resources     Resources      `yaml:"resources" json:"resources"`
	Phases        PhaseMap       `yaml:"phases" json:"phases"`
	Validation    ValidationSpec `yaml:"validation" json:"validation"`
	Constraints   []Constraint   `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

// Project holds plan-level project metadata.
type Project struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// TargetState declares the desired end state: advisory architecture
// key/value maps (language, framework, database, ...) and a feature list.
type TargetState struct {
	Architecture []map[string]string `yaml:"architecture" json:"architecture"`
	Features     []string            `yaml:"features" json:"features"`
}

// ArchitectureValue scans the architecture maps for key and returns the
// first value found. Architecture entries are advisory, so lookups are
// best-effort.
func (t TargetState) ArchitectureValue(key string) (string, bool) {
	for _, m := range t.Architecture {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	return "", false
}

// HasFeature reports whether the target state declares the named feature.
func (t TargetState) HasFeature(name string) bool {
	for _, f := range t.Features {
		if f == name {
			return true
		}
	}
	return false
}

// Resources declares the files to realize and the package dependencies.
// Dependencies are plain strings, never structured objects.
type Resources struct {
	Files        []FileResource `yaml:"files" json:"files"`
	Dependencies []string       `yaml:"dependencies" json:"dependencies"`
}

// FileResource declares one file the plan wants to exist.
type FileResource struct {
	// Path is relative to the project root and must not escape it.
	Path string `yaml:"path" json:"path"`
	// Type is an advisory semantic tag (model, service, documentation, ...).
	Type string `yaml:"type" json:"type"`
	// Template names the renderer template that produces the file's content.
	Template string `yaml:"template" json:"template"`
	// Phase optionally attributes the file to a phase for apply ordering.
	// Files without a phase attach to the first phase in execution order.
	Phase string `yaml:"phase,omitempty" json:"phase,omitempty"`
}

// ValidationSpec lists opaque check names run around an apply. The core
// treats them as metadata; hosts may interpret them.
type ValidationSpec struct {
	PreApply  []string `yaml:"pre_apply" json:"pre_apply"`
	PostApply []string `yaml:"post_apply,omitempty" json:"post_apply,omitempty"`
}

// Constraint is an advisory named constraint carried by the plan.
type Constraint struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// ResolvedFile is a FileResource bound to its execution position.
type ResolvedFile struct {
	FileResource

	// PhaseName is the phase the file is attributed to.
	PhaseName string
	// PhaseIndex is the phase's position in execution order.
	PhaseIndex int
	// DeclIndex is the file's position in the resources.files list.
	DeclIndex int
}

// FileOrder returns the plan's files in apply order: ascending phase
// execution position, then declaration order within a phase. The order is
// deterministic and never path-lexical. Files without a phase attribute
// attach to the first phase in execution order; a file naming an unknown
// phase is an error.
func (d *Document) FileOrder() ([]ResolvedFile, error) {
	order, err := d.ExecutionOrder()
	if err != nil {
		return nil, err
	}

	phaseIndex := make(map[string]int, len(order))
	for i, ph := range order {
		phaseIndex[ph.Name] = i
	}

	resolved := make([]ResolvedFile, 0, len(d.Resources.Files))
	for i, f := range d.Resources.Files {
		rf := ResolvedFile{FileResource: f, DeclIndex: i}
		if f.Phase == "" {
			if len(order) > 0 {
				rf.PhaseName = order[0].Name
			}
			rf.PhaseIndex = 0
		} else {
			idx, ok := phaseIndex[f.Phase]
			if !ok {
				return nil, types.WrapError(types.PLAN_SCHEMA_INVALID,
					"cannot order files",
					&SchemaError{
						Field:  fieldFileResource(i, "phase"),
						Reason: "references unknown phase " + f.Phase,
					})
			}
			rf.PhaseName = f.Phase
			rf.PhaseIndex = idx
		}
		resolved = append(resolved, rf)
	}

	sort.SliceStable(resolved, func(a, b int) bool {
		if resolved[a].PhaseIndex != resolved[b].PhaseIndex {
			return resolved[a].PhaseIndex < resolved[b].PhaseIndex
		}
		return resolved[a].DeclIndex < resolved[b].DeclIndex
	})
	return resolved, nil
}
