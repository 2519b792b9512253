package config

import (
	"path/filepath"
)

// Standards hook selectors accepted by validation.standards_hook.
const (
	// HookBuiltin wires the bundled team-standards checks into the
	// validation pipeline.
	HookBuiltin = "builtin"
	// HookNone leaves the standards layer without a hook; the pipeline
	// reports the absence as a warning.
	HookNone = "none"
)

// Config holds the devplan settings for one project. Values come from an
// optional .devplan.yaml at the project root, DEVPLAN_* environment
// variables, and built-in defaults, in that order of precedence.
type Config struct {
	// ProjectRoot is the directory plans validate, diff, and apply
	// against. The CLI sets it from --project; it is never read from the
	// config file.
	ProjectRoot string `mapstructure:"-" yaml:"-"`

	// StateDir holds snapshots and other local state. Relative paths are
	// anchored at the project root.
	StateDir string `mapstructure:"state_dir" yaml:"state_dir" validate:"required"`

	// DatabasePath overrides the snapshot database location. Empty means
	// devplan.db inside the state dir.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// PlanFile is the plan document read when -f is not given.
	PlanFile string `mapstructure:"plan_file" yaml:"plan_file" validate:"required"`

	// StrictMode promotes validation warnings to errors for every command.
	StrictMode bool `mapstructure:"strict_mode" yaml:"strict_mode"`

	// IgnorePatterns replaces the built-in capture ignore set when
	// non-empty.
	IgnorePatterns []string `mapstructure:"ignore_patterns" yaml:"ignore_patterns"`

	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// ValidationConfig selects how the validation pipeline is assembled.
type ValidationConfig struct {
	// StandardsHook picks the team-standards hook: "builtin" or "none".
	StandardsHook string `mapstructure:"standards_hook" yaml:"standards_hook" validate:"oneof=builtin none"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// ResolvedStateDir returns the state directory anchored at the project root.
func (c *Config) ResolvedStateDir() string {
	if filepath.IsAbs(c.StateDir) {
		return c.StateDir
	}
	return filepath.Join(c.ProjectRoot, c.StateDir)
}

// ResolvedDatabasePath returns the snapshot database path. An explicit
// database_path wins; otherwise the database lives inside the state dir.
func (c *Config) ResolvedDatabasePath() string {
	if c.DatabasePath == "" {
		return filepath.Join(c.ResolvedStateDir(), DefaultDatabaseFile)
	}
	if filepath.IsAbs(c.DatabasePath) {
		return c.DatabasePath
	}
	return filepath.Join(c.ProjectRoot, c.DatabasePath)
}

// ResolvedPlanFile returns the default plan document path anchored at the
// project root.
func (c *Config) ResolvedPlanFile() string {
	if filepath.IsAbs(c.PlanFile) {
		return c.PlanFile
	}
	return filepath.Join(c.ProjectRoot, c.PlanFile)
}
