package config

import (
	"path/filepath"
)

// Built-in locations. Everything is project-relative so that two projects
// never share state.
const (
	// DefaultConfigFile is the optional per-project config file name.
	DefaultConfigFile = ".devplan.yaml"
	// DefaultStateDir holds snapshots and the database.
	DefaultStateDir = ".devstate"
	// DefaultDatabaseFile is the snapshot database file name inside the
	// state dir.
	DefaultDatabaseFile = "devplan.db"
	// DefaultPlanFile is the plan document commands read when -f is not
	// given.
	DefaultPlanFile = "project.devplan"
)

// DefaultConfig returns a Config with built-in default values, before any
// config file or environment overrides.
func DefaultConfig() *Config {
	return &Config{
		ProjectRoot:    ".",
		StateDir:       DefaultStateDir,
		DatabasePath:   "",
		PlanFile:       DefaultPlanFile,
		StrictMode:     false,
		IgnorePatterns: nil,
		Validation: ValidationConfig{
			StandardsHook: HookBuiltin,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultConfigPath returns the per-project config file path for a project
// root.
func DefaultConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, DefaultConfigFile)
}
