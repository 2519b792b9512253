// Package engine coordinates plan validation, state capture, diff
// computation, and change application into whole-plan operations.
//
// One Engine serves one project root against one snapshot store, and runs
// one logical operation at a time: a concurrent Diff, Apply, or Rollback
// fails fast with an ENGINE_BUSY error instead of queueing. Serializing
// operations across processes is the caller's responsibility.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fancybread-com/cursor-plans/internal/fsops"
	"github.com/fancybread-com/cursor-plans/internal/hash"
	"github.com/fancybread-com/cursor-plans/internal/plan"
	"github.com/fancybread-com/cursor-plans/internal/state"
	"github.com/fancybread-com/cursor-plans/internal/template"
	"github.com/fancybread-com/cursor-plans/internal/types"
	"github.com/fancybread-com/cursor-plans/internal/validation"
)

// Labels stamped on the snapshots the engine registers on its own behalf.
const (
	labelPreApply    = "pre-apply anchor"
	labelPreRollback = "pre-rollback backup"
)

// Engine runs plans against a project tree: it validates them, diffs the
// declared target state against a capture of the tree, applies the
// resulting changes, and rolls the tree back to registered snapshots.
type Engine struct {
	root     string
	store    state.Store
	renderer template.Renderer
	provider validation.RuleProvider
	hook     validation.StandardsHook
	fs       fsops.FS
	ignores  *state.IgnoreSet
	hasher   hash.Hasher
	strict   bool
	logger   *slog.Logger

	pipeline *validation.Pipeline
	capturer *state.Capturer
	differ   *state.Differ

	mu     sync.Mutex
	status Status
}

// EngineOption is a functional option for configuring an Engine.
type EngineOption func(*Engine)

// WithRenderer sets the template renderer used for diffing and applying.
// The renderer doubles as the template catalog the validation pipeline
// resolves template names against.
func WithRenderer(r template.Renderer) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithRuleProvider sets the project rule provider consumed by the
// validation pipeline's context layer.
func WithRuleProvider(rp validation.RuleProvider) EngineOption {
	return func(e *Engine) {
		e.provider = rp
	}
}

// WithStandardsHook registers the team-standards hook run by the
// validation pipeline's standards layer.
func WithStandardsHook(h validation.StandardsHook) EngineOption {
	return func(e *Engine) {
		e.hook = h
	}
}

// WithFS sets the filesystem used for capture, writes, and restores.
func WithFS(fs fsops.FS) EngineOption {
	return func(e *Engine) {
		if fs != nil {
			e.fs = fs
		}
	}
}

// WithIgnores sets the ignore patterns applied when capturing state.
func WithIgnores(s *state.IgnoreSet) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.ignores = s
		}
	}
}

// WithHasher sets the fingerprint function shared by capture and diff.
func WithHasher(h hash.Hasher) EngineOption {
	return func(e *Engine) {
		if h != nil {
			e.hasher = h
		}
	}
}

// WithStrict enables strict mode: validation warnings are promoted to
// errors and block apply.
func WithStrict(strict bool) EngineOption {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Options carries the per-call switches for Apply and Rollback.
type Options struct {
	// DryRun makes Apply stop after planning: the report carries the
	// would-be outcomes and nothing is written or registered.
	DryRun bool

	// FullRestore makes Rollback delete paths that exist in the current
	// tree but were absent from the snapshot. By default they are left
	// in place.
	FullRestore bool
}

// New creates an Engine for the project root, backed by the given snapshot
// store.
// Default values:
//   - renderer: the builtin template registry
//   - fs: the real filesystem
//   - ignores: state.DefaultIgnores()
//   - hasher: SHA-256 fingerprints
//   - logger: slog.Default()
func New(root string, store state.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		root:     root,
		store:    store,
		renderer: template.NewRegistry(),
		fs:       fsops.NewOSFS(),
		ignores:  state.DefaultIgnores(),
		hasher:   hash.NewSHA256Hasher(),
		logger:   slog.Default(),
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.pipeline = validation.NewPipeline(
		validation.WithCatalog(e.renderer),
		validation.WithRuleProvider(e.provider),
		validation.WithHook(e.hook),
		validation.WithStrict(e.strict),
		validation.WithLogger(e.logger),
	)
	e.capturer = state.NewCapturer(
		state.WithFS(e.fs),
		state.WithIgnores(e.ignores),
		state.WithHasher(e.hasher),
		state.WithLogger(e.logger),
	)
	e.differ = state.NewDiffer(e.renderer, e.hasher)
	return e
}

// Status returns the engine's current lifecycle status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// begin claims the engine for one operation, moving it from idle to
// diffing. An operation started while another is in flight gets an
// ENGINE_BUSY error instead of blocking.
func (e *Engine) begin(op string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.status.CanTransitionTo(StatusDiffing) {
		return types.NewRetryableError(types.ENGINE_BUSY,
			fmt.Sprintf("cannot start %s: another operation is in flight (status %s)", op, e.status))
	}
	e.status = StatusDiffing
	return nil
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// release returns the engine to idle once an operation finishes.
func (e *Engine) release() {
	e.setStatus(StatusIdle)
}

// Validate runs the plan through the four-layer validation pipeline and
// returns the aggregated result. It never mutates anything and may run
// alongside another operation.
func (e *Engine) Validate(ctx context.Context, doc *plan.Document) *validation.Result {
	res := e.pipeline.Run(doc, e.root)
	errs, warns, _ := res.Counts()
	e.logger.Info("plan validated",
		"plan", doc.Project.Name,
		"errors", errs,
		"warnings", warns,
		"strict", e.strict,
	)
	return res
}

// Diff captures the current project state and computes the change set the
// plan implies. The captured snapshot stays in memory and the tree is
// never touched.
func (e *Engine) Diff(ctx context.Context, doc *plan.Document) (*state.ChangeSet, error) {
	if err := e.begin("diff"); err != nil {
		return nil, err
	}
	defer e.release()

	snap, err := e.capture(ctx, "diff")
	if err != nil {
		return nil, err
	}
	return e.diff(doc, snap)
}

// Snapshots lists the registered snapshots, oldest first.
func (e *Engine) Snapshots(ctx context.Context) ([]state.SnapshotSummary, error) {
	return e.store.List(ctx)
}

// capture walks the project root under the engine's ignore rules. The
// returned snapshot is in-memory only; callers decide whether to register
// it.
func (e *Engine) capture(ctx context.Context, label string) (*state.Snapshot, error) {
	snap, err := e.capturer.Capture(ctx, e.root, label)
	if err != nil {
		return nil, types.WrapError(types.SNAPSHOT_CAPTURE_FAILED, "state capture aborted", err)
	}
	if len(snap.Errors) > 0 {
		e.logger.Warn("state capture recorded errors",
			"snapshot", snap.ID,
			"errors", len(snap.Errors),
		)
	}
	return snap, nil
}

func (e *Engine) diff(doc *plan.Document, snap *state.Snapshot) (*state.ChangeSet, error) {
	cs, err := e.differ.Diff(doc, snap)
	if err != nil {
		return nil, err
	}
	creates, overwrites, skips := cs.Counts()
	e.logger.Info("change set computed",
		"plan", doc.Project.Name,
		"creates", creates,
		"overwrites", overwrites,
		"skips", skips,
	)
	return cs, nil
}

// fallbackDiagnostics turns fallback substitutions in the change set into
// warning diagnostics, one per missing template.
func (e *Engine) fallbackDiagnostics(cs *state.ChangeSet) []validation.Diagnostic {
	seen := make(map[string]bool)
	var out []validation.Diagnostic
	for _, ch := range cs.Changes {
		if !ch.FellBack || seen[ch.Template] {
			continue
		}
		seen[ch.Template] = true
		e.logger.Warn("template not implemented, fallback content used",
			"template", ch.Template,
			"path", ch.Path,
		)
		out = append(out, validation.Diagnostic{
			Severity:   validation.SeverityWarning,
			Layer:      validation.LayerSyntax,
			Location:   "resources.files",
			Message:    fmt.Sprintf("template %q is not implemented; fallback content used", ch.Template),
			Suggestion: "pick an implemented template or register a custom_ template",
		})
	}
	return out
}
