// Package template renders file content for plan resources.
//
// The default Registry ships a small set of scaffolding templates compiled
// into the binary via go:embed, covering Python/FastAPI and .NET starters.
// Rendering is total: a name the registry has never heard of, a name it
// knows but has no body for yet, or a body that fails to execute all
// degrade to the reserved "basic" fallback instead of returning an error.
// Callers learn about the substitution through the fellBack return value
// and surface it as a warning, never as a failure.
package template

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var builtinFS embed.FS

// FallbackName is the reserved template used whenever a requested name has
// no body. It always exists and cannot be overridden.
const FallbackName = "basic"

// CustomPrefix is the required name prefix for caller-registered templates.
// The prefix keeps user registrations from shadowing builtin names added in
// later releases.
const CustomPrefix = "custom_"

// plannedNames are template names plan authors may reference today that the
// registry recognizes but has no body for yet. They render the fallback with
// fellBack=true rather than being treated as typos.
var plannedNames = []string{
	"basic_readme",
	"fastapi_requirements",
	"jwt_auth",
	"pinia_store",
	"python_main",
	"sqlalchemy_models",
	"vue_app",
	"vue_component",
	"vue_main",
	"vue_package_json",
	"vue_router",
}

// Renderer produces file content for a named template.
//
// Implementations must be total: Render never fails. When the name has no
// implemented body the returned text is fallback content and fellBack is
// true. Render must also be deterministic for a given (name, ctx) pair; the
// diff engine depends on byte-identical repeat renders.
type Renderer interface {
	// Render produces the content for name under ctx.
	Render(name string, ctx Context) (text string, fellBack bool)

	// Known reports whether name is recognized at all: implemented,
	// planned, or registered as a custom template. Unrecognized names
	// still render (via fallback) but validators flag them.
	Known(name string) bool
}

// Registry is the default Renderer, backed by the embedded builtin set plus
// any caller-registered custom templates. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builtin  map[string]*texttemplate.Template
	custom   map[string]*texttemplate.Template
	planned  map[string]bool
	fallback *texttemplate.Template
}

// NewRegistry parses the embedded builtin templates and returns a ready
// Registry. Embedded bodies are build-time assets; a parse failure is a
// corrupt build and panics.
func NewRegistry() *Registry {
	entries, err := builtinFS.ReadDir("templates")
	if err != nil {
		panic(fmt.Sprintf("template: reading embedded templates: %v", err))
	}

	r := &Registry{
		builtin: make(map[string]*texttemplate.Template, len(entries)),
		custom:  make(map[string]*texttemplate.Template),
		planned: make(map[string]bool, len(plannedNames)),
	}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".tmpl")
		body, err := builtinFS.ReadFile(path.Join("templates", entry.Name()))
		if err != nil {
			panic(fmt.Sprintf("template: reading embedded template %s: %v", entry.Name(), err))
		}
		r.builtin[name] = texttemplate.Must(texttemplate.New(name).Parse(string(body)))
	}

	fallback, ok := r.builtin[FallbackName]
	if !ok {
		panic("template: embedded template set is missing the basic fallback")
	}
	r.fallback = fallback

	for _, name := range plannedNames {
		r.planned[name] = true
	}
	return r
}

// Render produces the content for name under ctx. Unknown names, planned
// names without a body, and bodies that fail to execute all render the
// basic fallback and report fellBack=true. Rendering the fallback by its
// own name reports fellBack=false.
func (r *Registry) Render(name string, ctx Context) (string, bool) {
	ctx = ctx.normalized()
	if ctx.TemplateName == "" {
		ctx.TemplateName = name
	}

	r.mu.RLock()
	tmpl := r.lookupLocked(name)
	r.mu.RUnlock()

	if tmpl == nil {
		return r.renderFallback(ctx), name != FallbackName
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, ctx); err != nil {
		// A body that references values the context cannot supply is a
		// content problem, not an apply failure.
		return r.renderFallback(ctx), true
	}
	return buf.String(), false
}

// Known reports whether name is implemented, planned, or custom-registered.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.planned[name] {
		return true
	}
	return r.lookupLocked(name) != nil
}

// Implemented reports whether name has a real body, i.e. rendering it will
// not fall back.
func (r *Registry) Implemented(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(name) != nil
}

// Names returns the implemented template names, builtin and custom, in
// sorted order. Planned names are excluded.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builtin)+len(r.custom))
	for name := range r.builtin {
		names = append(names, name)
	}
	for name := range r.custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Planned returns the names the registry recognizes but has no body for.
func (r *Registry) Planned() []string {
	out := make([]string, len(plannedNames))
	copy(out, plannedNames)
	return out
}

// RegisterCustom parses body and registers it under name. The name must
// carry the custom_ prefix and must not collide with an existing
// registration. The body must be a valid text/template.
func (r *Registry) RegisterCustom(name, body string) error {
	if !strings.HasPrefix(name, CustomPrefix) {
		return fmt.Errorf("template: custom template name %q must start with %q", name, CustomPrefix)
	}

	tmpl, err := texttemplate.New(name).Parse(body)
	if err != nil {
		return fmt.Errorf("template: parsing custom template %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.custom[name]; exists {
		return fmt.Errorf("template: custom template %q already registered", name)
	}
	r.custom[name] = tmpl
	return nil
}

// lookupLocked resolves name to a parsed template, or nil when the name has
// no body. Callers hold r.mu.
func (r *Registry) lookupLocked(name string) *texttemplate.Template {
	if tmpl, ok := r.builtin[name]; ok {
		return tmpl
	}
	if tmpl, ok := r.custom[name]; ok {
		return tmpl
	}
	return nil
}

func (r *Registry) renderFallback(ctx Context) string {
	var buf strings.Builder
	if err := r.fallback.Execute(&buf, ctx); err != nil {
		// The fallback body only references plain string fields; this
		// is unreachable short of a corrupt build.
		return fmt.Sprintf("# %s\n", ctx.FileName)
	}
	return buf.String()
}
