package validation

import (
	"log/slog"

	"github.com/fancybread-com/cursor-plans/internal/plan"
	"github.com/fancybread-com/cursor-plans/internal/template"
)

// TemplateCatalog answers whether a template name resolves to content.
// template.Registry satisfies it.
type TemplateCatalog interface {
	Known(name string) bool
}

// Pipeline runs the four validation layers in fixed order: syntax, logic,
// context, standards. Construct once and reuse; Run is safe for concurrent
// use as long as the configured collaborators are.
type Pipeline struct {
	catalog  TemplateCatalog
	provider RuleProvider
	hook     StandardsHook
	hookSet  bool
	strict   bool
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCatalog sets the template catalog the syntax layer resolves template
// names against. Defaults to a fresh template registry.
func WithCatalog(c TemplateCatalog) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.catalog = c
		}
	}
}

// WithRuleProvider sets the project rule provider consumed by the context
// layer. Without one the layer reports rule absence.
func WithRuleProvider(rp RuleProvider) Option {
	return func(p *Pipeline) { p.provider = rp }
}

// WithHook registers the team-standards hook. Passing nil leaves the hook
// unregistered, which the standards layer reports as a warning.
func WithHook(h StandardsHook) Option {
	return func(p *Pipeline) {
		p.hook = h
		p.hookSet = h != nil
	}
}

// WithStrict enables strict mode: warnings are promoted to errors in the
// aggregated result.
func WithStrict(strict bool) Option {
	return func(p *Pipeline) { p.strict = strict }
}

// WithLogger sets the pipeline logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline builds a Pipeline with the given options.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog: template.NewRegistry(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run validates doc and returns the aggregated result. Every layer always
// runs; no finding short-circuits the pipeline. projectRoot is handed to
// the rule provider so context checks see the right project.
func (p *Pipeline) Run(doc *plan.Document, projectRoot string) *Result {
	type layerRun struct {
		layer Layer
		run   func(*plan.Document) []Diagnostic
	}
	runs := []layerRun{
		{LayerSyntax, p.runSyntax},
		{LayerLogic, p.runLogic},
		{LayerContext, func(d *plan.Document) []Diagnostic { return p.runContext(d, projectRoot) }},
		{LayerStandards, p.runStandards},
	}

	res := &Result{Strict: p.strict}
	for _, lr := range runs {
		res.Diagnostics = append(res.Diagnostics, lr.run(doc)...)
	}

	if p.strict {
		promoteWarnings(res.Diagnostics)
	}

	failed := make(map[Layer]bool, len(Layers))
	for _, d := range res.Diagnostics {
		if d.Severity == SeverityError {
			failed[d.Layer] = true
		}
	}
	for _, layer := range Layers {
		if failed[layer] {
			res.LayersFailed = append(res.LayersFailed, layer)
		} else {
			res.LayersPassed = append(res.LayersPassed, layer)
		}
	}

	errs, warns, _ := res.Counts()
	p.logger.Debug("plan validated",
		"plan", doc.Project.Name,
		"errors", errs,
		"warnings", warns,
		"strict", p.strict,
		"passed", res.Passed())
	return res
}

// promoteWarnings rewrites warning severities to error in place. Strict
// mode applies it to every diagnostic, including the standards layer's
// hook-absence warning; a strict run with no registered hook fails.
func promoteWarnings(diags []Diagnostic) {
	for i := range diags {
		if diags[i].Severity == SeverityWarning {
			diags[i].Severity = SeverityError
		}
	}
}
