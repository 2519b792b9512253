package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fancybread-com/cursor-plans/internal/plan"
)

const noTestingPlanYAML = `
schema_version: "1.0"
project:
  name: taskflow
  version: 0.1.0
target_state:
  architecture:
    - language: python
  features: []
resources:
  files: []
  dependencies: []
phases:
  foundation:
    priority: 1
    tasks:
      - setup_project
  development:
    priority: 2
    tasks:
      - implement_api
validation:
  pre_apply: []
`

const cyclePlanYAML = `
schema_version: "1.0"
project:
  name: taskflow
  version: 0.1.0
target_state:
  architecture:
    - language: python
  features: []
resources:
  files: []
  dependencies: []
phases:
  foundation:
    priority: 1
    dependencies:
      - development
    tasks:
      - setup_project
  development:
    priority: 2
    dependencies:
      - foundation
    tasks:
      - implement_api
  testing:
    priority: 3
    tasks:
      - write_tests
validation:
  pre_apply: []
`

func TestSyntax_MissingTestingPhase(t *testing.T) {
	doc := mustParse(t, noTestingPlanYAML)

	// The testing phase is mandatory regardless of strict mode.
	for _, strict := range []bool{false, true} {
		res := NewPipeline(WithStrict(strict)).Run(doc, "")
		assert.False(t, res.Passed(), "strict=%v", strict)
		assert.Contains(t, res.LayersFailed, LayerSyntax)

		var found bool
		for _, d := range layerDiags(res, LayerSyntax) {
			if d.Severity == SeverityError && d.Location == "phases" {
				assert.Contains(t, d.Message, `"testing"`)
				found = true
			}
		}
		assert.True(t, found, "expected a testing-phase error, got %v", res.Diagnostics)
	}
}

func TestSyntax_DependencyCycle(t *testing.T) {
	doc := mustParse(t, cyclePlanYAML)

	res := NewPipeline().Run(doc, "")

	assert.False(t, res.Passed())
	diags := layerDiags(res, LayerSyntax)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "cycle")
	assert.Contains(t, diags[0].Message, "foundation -> development -> foundation")
}

func TestSyntax_TemplateNames(t *testing.T) {
	doc := mustParse(t, basePlanYAML)
	doc.Resources.Files = []plan.FileResource{
		{Path: "src/main.py", Type: "source_code", Template: "fastapi_main"},
		{Path: "src/router.js", Type: "source_code", Template: "vue_router"},
		{Path: "Makefile", Type: "build", Template: "custom_makefile"},
		{Path: "weird.txt", Type: "other", Template: "no_such_template"},
	}

	res := NewPipeline().Run(doc, "")

	diags := layerDiags(res, LayerSyntax)
	require.Len(t, diags, 1, "implemented, planned, and custom_ names all pass: %v", diags)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "resources.files[3].template", diags[0].Location)
	assert.Contains(t, diags[0].Message, "no_such_template")
}

func TestLogic_UnknownPhaseDependency(t *testing.T) {
	doc := mustParse(t, basePlanYAML)
	dev, ok := doc.Phases.Get("development")
	require.True(t, ok)
	dev.Dependencies = append(dev.Dependencies, "missing_phase")

	res := NewPipeline().Run(doc, "")

	assert.False(t, res.Passed())
	diags := layerDiags(res, LayerLogic)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "phases.development.dependencies", diags[0].Location)
	assert.Contains(t, diags[0].Message, "missing_phase")
}

func TestLogic_FilePhaseAttribute(t *testing.T) {
	doc := mustParse(t, basePlanYAML)
	doc.Resources.Files[0].Phase = "nonexistent"

	res := NewPipeline().Run(doc, "")

	diags := layerDiags(res, LayerLogic)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "resources.files[0].phase", diags[0].Location)
}

func TestLogic_DuplicatePaths(t *testing.T) {
	doc := mustParse(t, basePlanYAML)
	doc.Resources.Files = []plan.FileResource{
		{Path: "src/dup.py", Type: "source_code", Template: "basic"},
		{Path: "src/dup.py", Type: "source_code", Template: "fastapi_main"},
		{Path: "src/same.py", Type: "source_code", Template: "basic"},
		{Path: "src/same.py", Type: "source_code", Template: "basic"},
	}

	res := NewPipeline().Run(doc, "")

	diags := layerDiags(res, LayerLogic)
	require.Len(t, diags, 2, "diagnostics: %v", diags)

	assert.Equal(t, SeverityError, diags[0].Severity, "same path, different templates contradict")
	assert.Contains(t, diags[0].Message, "src/dup.py")

	assert.Equal(t, SeverityWarning, diags[1].Severity, "same path, same template is redundant")
	assert.Contains(t, diags[1].Message, "src/same.py")
}

func TestLogic_NestedPaths(t *testing.T) {
	doc := mustParse(t, basePlanYAML)
	doc.Resources.Files = []plan.FileResource{
		{Path: "src/app.py", Type: "source_code", Template: "basic"},
		{Path: "src/app.py/helper.py", Type: "source_code", Template: "basic"},
	}

	res := NewPipeline().Run(doc, "")

	diags := layerDiags(res, LayerLogic)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "nest")
}

func TestLogic_PhaseConstraints(t *testing.T) {
	doc := mustParse(t, basePlanYAML)
	doc.Phases.Set(&plan.Phase{Name: "cleanup", Priority: 0, Tasks: []string{"implement_api"}})
	doc.Phases.Set(&plan.Phase{Name: "idle", Priority: 4, Tasks: []string{}})

	res := NewPipeline().Run(doc, "")

	diags := layerDiags(res, LayerLogic)
	require.Len(t, diags, 3, "diagnostics: %v", diags)

	var priorityErr, emptyWarn, dupTaskWarn bool
	for _, d := range diags {
		switch {
		case d.Location == "phases.cleanup.priority" && d.Severity == SeverityError:
			priorityErr = true
		case d.Location == "phases.idle" && d.Severity == SeverityWarning:
			emptyWarn = true
		case d.Location == "phases.cleanup.tasks" && d.Severity == SeverityWarning:
			dupTaskWarn = true
		}
	}
	assert.True(t, priorityErr, "non-positive priority is an error")
	assert.True(t, emptyWarn, "a phase without tasks warns")
	assert.True(t, dupTaskWarn, "a task id reused across phases warns")
}

func TestContext_RuleSetFindings(t *testing.T) {
	doc := mustParse(t, basePlanYAML)
	doc.Resources.Files = append(doc.Resources.Files,
		plan.FileResource{Path: "secrets/api_key.txt", Type: "configuration", Template: "basic"},
		plan.FileResource{Path: "src/BadName.py", Type: "source_code", Template: "basic"},
	)

	rs := &RuleSet{
		RequiredPhases:   []string{"deployment"},
		RequiredFeatures: []string{"observability"},
		ForbiddenPaths:   []string{"secrets/*"},
		NamingConventions: []NamingConvention{
			{Match: "src/*.py", Pattern: `^[a-z_]+\.py$`, Description: "python files use snake_case"},
		},
	}
	res := NewPipeline(WithRuleProvider(stubProvider{rs: rs})).Run(doc, "")

	diags := layerDiags(res, LayerContext)
	require.Len(t, diags, 4, "diagnostics: %v", diags)
	for _, d := range diags {
		assert.Equal(t, SeverityWarning, d.Severity, "rule findings are always warnings")
	}

	messages := make([]string, 0, len(diags))
	for _, d := range diags {
		messages = append(messages, d.Message)
	}
	joined := ""
	for _, m := range messages {
		joined += m + "\n"
	}
	assert.Contains(t, joined, `"deployment"`)
	assert.Contains(t, joined, `"observability"`)
	assert.Contains(t, joined, "secrets/api_key.txt")
	assert.Contains(t, joined, "snake_case")

	// Rule findings alone never fail a non-strict run.
	assert.True(t, res.Passed())
}

func TestContext_BadConventionPattern(t *testing.T) {
	doc := mustParse(t, basePlanYAML)

	rs := &RuleSet{
		NamingConventions: []NamingConvention{{Match: "*", Pattern: "("}},
	}
	res := NewPipeline(WithRuleProvider(stubProvider{rs: rs})).Run(doc, "")

	diags := layerDiags(res, LayerContext)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "does not compile")
}
