package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fancybread-com/cursor-plans/internal/fsops"
	"github.com/fancybread-com/cursor-plans/internal/plan"
	"github.com/fancybread-com/cursor-plans/internal/validation"
)

const rulesYAML = `
required_phases:
  - deployment
required_features:
  - observability
forbidden_paths:
  - "secrets/*"
naming_conventions:
  - match: "src/*.py"
    pattern: "^[a-z_]+\\.py$"
    description: python files use snake_case
`

func TestFileProvider_LoadsRules(t *testing.T) {
	fs := fsops.NewMemFS()
	fs.Seed("proj/"+RulesFileName, []byte(rulesYAML))

	rs, err := NewFileProvider(fs).RulesFor("proj")
	require.NoError(t, err)
	require.NotNil(t, rs)

	assert.Equal(t, []string{"deployment"}, rs.RequiredPhases)
	assert.Equal(t, []string{"observability"}, rs.RequiredFeatures)
	assert.Equal(t, []string{"secrets/*"}, rs.ForbiddenPaths)
	require.Len(t, rs.NamingConventions, 1)
	assert.Equal(t, "src/*.py", rs.NamingConventions[0].Match)
	assert.Equal(t, `^[a-z_]+\.py$`, rs.NamingConventions[0].Pattern)
}

func TestFileProvider_MissingFileMeansAbsent(t *testing.T) {
	rs, err := NewFileProvider(fsops.NewMemFS()).RulesFor("proj")
	assert.NoError(t, err)
	assert.Nil(t, rs)
}

func TestFileProvider_ReadFailure(t *testing.T) {
	fs := fsops.NewMemFS()
	fs.Seed("proj/"+RulesFileName, []byte(rulesYAML))
	fs.FailReads["proj/"+RulesFileName] = errors.New("disk gone")

	rs, err := NewFileProvider(fs).RulesFor("proj")
	assert.Error(t, err)
	assert.Nil(t, rs)
}

func TestFileProvider_ParseFailure(t *testing.T) {
	fs := fsops.NewMemFS()
	fs.Seed("proj/"+RulesFileName, []byte("required_phases: {not: a list"))

	rs, err := NewFileProvider(fs).RulesFor("proj")
	assert.Error(t, err)
	assert.Nil(t, rs)
	assert.Contains(t, err.Error(), RulesFileName)
}

func testDoc(t *testing.T, features []string, files []plan.FileResource, testingTasks []string) *plan.Document {
	t.Helper()
	doc := &plan.Document{
		SchemaVersion: plan.SchemaVersion1,
		Project:       plan.Project{Name: "taskflow", Version: "0.1.0"},
		TargetState:   plan.TargetState{Features: features},
		Resources:     plan.Resources{Files: files},
	}
	doc.Phases.Set(&plan.Phase{Name: "foundation", Priority: 1, Tasks: []string{"setup"}})
	doc.Phases.Set(&plan.Phase{Name: plan.TestingPhase, Priority: 2, Tasks: testingTasks})
	return doc
}

func TestTeamStandards_AuthWithoutSecurityFile(t *testing.T) {
	doc := testDoc(t, []string{"task_crud", "jwt_auth"}, []plan.FileResource{
		{Path: "src/main.py", Type: "source_code", Template: "fastapi_main"},
	}, []string{"write_tests"})

	diags := TeamStandards{}.Check(doc)
	require.Len(t, diags, 1)
	assert.Equal(t, validation.SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "auth")
}

func TestTeamStandards_AuthWithSecurityFile(t *testing.T) {
	doc := testDoc(t, []string{"jwt_auth"}, []plan.FileResource{
		{Path: "src/auth/jwt.py", Type: "source_code", Template: "basic"},
	}, []string{"write_tests"})

	assert.Empty(t, TeamStandards{}.Check(doc))
}

func TestTeamStandards_EmptyTestingPhase(t *testing.T) {
	doc := testDoc(t, nil, nil, nil)

	diags := TeamStandards{}.Check(doc)
	require.Len(t, diags, 1)
	assert.Equal(t, "phases.testing", diags[0].Location)
}

func TestTeamStandards_WiredIntoPipeline(t *testing.T) {
	doc := testDoc(t, []string{"auth"}, nil, []string{"write_tests"})

	res := validation.NewPipeline(
		validation.WithHook(TeamStandards{}),
		validation.WithRuleProvider(NewFileProvider(fsops.NewMemFS())),
	).Run(doc, "proj")

	// Hook registered and provider absent: one standards warning (auth
	// finding), one context info, nothing else.
	assert.True(t, res.Passed())
	errs, warns, infos := res.Counts()
	assert.Zero(t, errs)
	assert.Equal(t, 1, warns)
	assert.Equal(t, 1, infos)
}
