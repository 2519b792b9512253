package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_BuiltinsImplemented(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)

	builtins := []string{
		"basic",
		"dotnet_controller",
		"dotnet_csproj",
		"dotnet_program",
		"dotnet_service",
		"ef_dbcontext",
		"fastapi_main",
		"fastapi_model",
		"requirements",
	}
	for _, name := range builtins {
		assert.True(t, r.Implemented(name), "builtin %s should be implemented", name)
		assert.True(t, r.Known(name), "builtin %s should be known", name)
	}
	assert.Equal(t, builtins, r.Names(), "Names should list exactly the builtins, sorted")
}

func TestRegistry_RenderImplemented(t *testing.T) {
	r := NewRegistry()

	text, fellBack := r.Render("fastapi_main", Context{ProjectName: "orders-api"})
	assert.False(t, fellBack)
	assert.Contains(t, text, `FastAPI(title="orders-api")`)
	assert.Contains(t, text, "uvicorn.run(app")

	// Empty project name keeps the generated app usable.
	text, fellBack = r.Render("fastapi_main", Context{})
	assert.False(t, fellBack)
	assert.Contains(t, text, `FastAPI(title="API Service")`)
}

func TestRegistry_RenderRequirements(t *testing.T) {
	r := NewRegistry()

	text, fellBack := r.Render("requirements", Context{
		Dependencies: []string{"requests>=2.28", "pyyaml"},
	})
	assert.False(t, fellBack)
	assert.Equal(t, "requests>=2.28\npyyaml\n", text)

	// No declared dependencies falls back to the stock FastAPI set.
	text, fellBack = r.Render("requirements", Context{})
	assert.False(t, fellBack)
	assert.Equal(t, "fastapi>=0.68.0\nuvicorn>=0.15.0\npydantic>=1.8.0\n", text)
}

func TestRegistry_RenderPlannedFallsBack(t *testing.T) {
	r := NewRegistry()

	require.True(t, r.Known("vue_router"), "planned names are recognized")
	require.False(t, r.Implemented("vue_router"))

	text, fellBack := r.Render("vue_router", Context{
		Path:     "src/router/index.js",
		FileType: "source_code",
	})
	assert.True(t, fellBack)
	assert.Contains(t, text, "# index.js")
	assert.Contains(t, text, "# Template: vue_router")
	assert.Contains(t, text, "source_code")
}

func TestRegistry_RenderUnknownFallsBack(t *testing.T) {
	r := NewRegistry()

	require.False(t, r.Known("no_such_template"))

	text, fellBack := r.Render("no_such_template", Context{Path: "notes.txt", FileType: "documentation"})
	assert.True(t, fellBack)
	assert.Contains(t, text, "# notes.txt")
	assert.Contains(t, text, "# Template: no_such_template")
}

func TestRegistry_RenderFallbackByName(t *testing.T) {
	r := NewRegistry()

	// Asking for basic directly is not a fallback event.
	text, fellBack := r.Render(FallbackName, Context{Path: "README.md", FileType: "documentation"})
	assert.False(t, fellBack)
	assert.Contains(t, text, "# README.md")
}

func TestRegistry_RenderDeterministic(t *testing.T) {
	r := NewRegistry()
	ctx := Context{
		ProjectName:  "taskflow",
		Path:         "requirements.txt",
		FileType:     "dependencies",
		Dependencies: []string{"fastapi", "uvicorn"},
	}

	first, _ := r.Render("requirements", ctx)
	for i := 0; i < 5; i++ {
		again, _ := r.Render("requirements", ctx)
		require.Equal(t, first, again, "render %d should be byte-identical", i)
	}
}

func TestRegistry_RegisterCustom(t *testing.T) {
	r := NewRegistry()

	err := r.RegisterCustom("custom_makefile", "build:\n\tgo build ./...\n# {{.ProjectName}}\n")
	require.NoError(t, err)

	assert.True(t, r.Known("custom_makefile"))
	assert.True(t, r.Implemented("custom_makefile"))

	text, fellBack := r.Render("custom_makefile", Context{ProjectName: "taskflow"})
	assert.False(t, fellBack)
	assert.Contains(t, text, "go build ./...")
	assert.Contains(t, text, "# taskflow")

	assert.Contains(t, r.Names(), "custom_makefile")
}

func TestRegistry_RegisterCustomRejectsBadInput(t *testing.T) {
	r := NewRegistry()

	err := r.RegisterCustom("makefile", "body")
	require.Error(t, err, "names without the custom_ prefix are rejected")
	assert.Contains(t, err.Error(), CustomPrefix)

	err = r.RegisterCustom("custom_broken", "{{.Unclosed")
	require.Error(t, err, "unparseable bodies are rejected")

	require.NoError(t, r.RegisterCustom("custom_dup", "one"))
	err = r.RegisterCustom("custom_dup", "two")
	require.Error(t, err, "duplicate registration is rejected")
}

func TestRegistry_PlannedList(t *testing.T) {
	r := NewRegistry()

	planned := r.Planned()
	assert.Contains(t, planned, "vue_router")
	assert.Contains(t, planned, "basic_readme")
	assert.Contains(t, planned, "jwt_auth")

	for _, name := range planned {
		assert.False(t, r.Implemented(name), "%s should not be implemented", name)
		assert.True(t, r.Known(name), "%s should be known", name)
	}

	// Mutating the returned slice must not leak into the registry.
	planned[0] = "mutated"
	assert.NotContains(t, r.Planned(), "mutated")
}

func TestContext_FileNameDerivedFromPath(t *testing.T) {
	r := NewRegistry()

	text, _ := r.Render("basic", Context{Path: "src/models/user.py", FileType: "models"})
	assert.True(t, strings.HasPrefix(text, "# user.py\n"), "file name should derive from the path: %q", text)
}
