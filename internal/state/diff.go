package state

import (
	"fmt"
	"path"

	"github.com/fancybread-com/cursor-plans/internal/hash"
	"github.com/fancybread-com/cursor-plans/internal/plan"
	"github.com/fancybread-com/cursor-plans/internal/template"
)

// Action is what an apply would do to one path.
type Action string

const (
	ActionCreate    Action = "create"
	ActionOverwrite Action = "overwrite"
	ActionSkip      Action = "skip"
)

// Change is one planned mutation. Changes are immutable once produced.
type Change struct {
	Path     string `json:"path" yaml:"path"`
	Action   Action `json:"action" yaml:"action"`
	Template string `json:"template" yaml:"template"`
	// Phase is the phase the file is attributed to; changes execute in
	// ascending phase order, then declaration order within a phase.
	Phase string `json:"phase" yaml:"phase"`
	// Rationale explains why the action was chosen.
	Rationale string `json:"rationale" yaml:"rationale"`
	// RenderedSize is the byte length the template rendered to; it feeds
	// the dry-run size estimate.
	RenderedSize int64 `json:"rendered_size" yaml:"rendered_size"`
	// FellBack marks a change whose template has no implementation, so
	// fallback content was rendered. Apply reports it as a warning.
	FellBack bool `json:"fell_back,omitempty" yaml:"fell_back,omitempty"`
}

// ChangeSet is the ordered list of changes reconciling a snapshot toward a
// plan. The order is apply order: ascending phase priority, then
// declaration order, never path-lexical.
type ChangeSet struct {
	PlanName string   `json:"plan_name" yaml:"plan_name"`
	Changes  []Change `json:"changes" yaml:"changes"`
}

// Counts returns the number of changes per action.
func (cs *ChangeSet) Counts() (creates, overwrites, skips int) {
	for _, ch := range cs.Changes {
		switch ch.Action {
		case ActionCreate:
			creates++
		case ActionOverwrite:
			overwrites++
		case ActionSkip:
			skips++
		}
	}
	return creates, overwrites, skips
}

// MutationCount returns the number of changes that would write.
func (cs *ChangeSet) MutationCount() int {
	creates, overwrites, _ := cs.Counts()
	return creates + overwrites
}

// Differ computes change sets. The renderer must be deterministic: diff
// and apply render the same template twice and depend on byte-identical
// output.
type Differ struct {
	renderer template.Renderer
	hasher   hash.Hasher
}

// NewDiffer builds a Differ. A nil renderer gets the default template
// registry; a nil hasher gets sha256.
func NewDiffer(renderer template.Renderer, hasher hash.Hasher) *Differ {
	if renderer == nil {
		renderer = template.NewRegistry()
	}
	if hasher == nil {
		hasher = hash.NewSHA256Hasher()
	}
	return &Differ{renderer: renderer, hasher: hasher}
}

// Diff compares the plan's declared files against the snapshot. Per file:
// absent from the snapshot is a create, present with a differing
// fingerprint is an overwrite, present and matching is a skip. The result
// order is the plan's apply order and is deterministic across repeated
// runs against an unchanged snapshot.
func (d *Differ) Diff(doc *plan.Document, snap *Snapshot) (*ChangeSet, error) {
	order, err := doc.FileOrder()
	if err != nil {
		return nil, err
	}

	cs := &ChangeSet{PlanName: doc.Project.Name}
	for _, rf := range order {
		text, fellBack := d.renderer.Render(rf.Template, RenderContext(doc, rf))

		ch := Change{
			Path:         rf.Path,
			Template:     rf.Template,
			Phase:        rf.PhaseName,
			RenderedSize: int64(len(text)),
			FellBack:     fellBack,
		}

		existing, present := snap.File(rf.Path)
		switch {
		case !present:
			ch.Action = ActionCreate
			ch.Rationale = "file does not exist"
		case existing.Fingerprint == d.hasher.Fingerprint([]byte(text)):
			ch.Action = ActionSkip
			ch.Rationale = "existing content matches the rendered template"
		default:
			ch.Action = ActionOverwrite
			ch.Rationale = "existing content differs from the rendered template"
		}
		if fellBack {
			ch.Rationale += fmt.Sprintf("; template %q is not implemented, fallback content used", rf.Template)
		}

		cs.Changes = append(cs.Changes, ch)
	}
	return cs, nil
}

// RenderContext builds the template context for one resolved file. Diff
// and apply both render through it, which keeps their outputs identical.
func RenderContext(doc *plan.Document, rf plan.ResolvedFile) template.Context {
	arch := make(map[string]string)
	for _, m := range doc.TargetState.Architecture {
		for k, v := range m {
			if _, ok := arch[k]; !ok {
				arch[k] = v
			}
		}
	}

	return template.Context{
		ProjectName:    doc.Project.Name,
		ProjectVersion: doc.Project.Version,
		Description:    doc.Project.Description,
		Path:           rf.Path,
		FileName:       path.Base(rf.Path),
		FileType:       rf.Type,
		TemplateName:   rf.Template,
		Features:       doc.TargetState.Features,
		Dependencies:   doc.Resources.Dependencies,
		Architecture:   arch,
	}
}
