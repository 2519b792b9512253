package plan

// Starter returns a minimal valid plan document for a new project, used by
// the init command. The scaffold declares the three conventional phases
// (foundation, development, testing) and a README resource, and passes
// validation as written.
func Starter(name string) *Document {
	return &Document{
		SchemaVersion: SchemaVersion1,
		Project: Project{
			Name:        name,
			Version:     "0.1.0",
			Description: "Development plan for " + name,
		},
		TargetState: TargetState{
			Architecture: []map[string]string{
				{"language": "python"},
			},
			Features: []string{"basic_structure", "documentation"},
		},
		Resources: Resources{
			Files: []FileResource{
				{Path: "README.md", Type: "documentation", Template: "basic_readme"},
			},
			Dependencies: []string{"requests"},
		},
		Phases: NewPhaseMap(
			&Phase{
				Name:     "foundation",
				Priority: 1,
				Tasks:    []string{"setup_project_structure", "create_basic_files"},
			},
			&Phase{
				Name:         "development",
				Priority:     2,
				Dependencies: []string{"foundation"},
				Tasks:        []string{"implement_core_features", "add_tests"},
			},
			&Phase{
				Name:         TestingPhase,
				Priority:     3,
				Dependencies: []string{"development"},
				Tasks:        []string{"unit_tests", "integration_tests"},
			},
		),
		Validation: ValidationSpec{
			PreApply:  []string{"syntax_check"},
			PostApply: []string{"functionality_test"},
		},
	}
}
