package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/cmd/devplan/internal"
	"github.com/fancybread-com/cursor-plans/internal/config"
	"github.com/fancybread-com/cursor-plans/internal/database"
	"github.com/fancybread-com/cursor-plans/internal/engine"
	"github.com/fancybread-com/cursor-plans/internal/fsops"
	"github.com/fancybread-com/cursor-plans/internal/plan"
	"github.com/fancybread-com/cursor-plans/internal/rules"
	"github.com/fancybread-com/cursor-plans/internal/state"
	"github.com/fancybread-com/cursor-plans/internal/template"
	"github.com/fancybread-com/cursor-plans/internal/types"
	"github.com/fancybread-com/cursor-plans/internal/validation"
)

// planPath resolves the plan file for a command: the -f flag when given,
// the configured default otherwise.
func planPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return cfg.ResolvedPlanFile()
}

// loadPlan reads and parses a plan document.
func loadPlan(path string) (*plan.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewError(types.PLAN_NOT_FOUND,
				fmt.Sprintf("plan file %s does not exist (run 'devplan init' to create one)", path))
		}
		return nil, types.WrapError(types.FILE_IO_ERROR,
			fmt.Sprintf("failed to read plan file %s", path), err)
	}
	return plan.Parse(raw)
}

// openDatabase opens the snapshot database, creating the state directory
// on first use.
func openDatabase() (*database.DB, error) {
	if err := os.MkdirAll(cfg.ResolvedStateDir(), 0o755); err != nil {
		return nil, types.WrapError(types.FILE_IO_ERROR,
			fmt.Sprintf("failed to create state directory %s", cfg.ResolvedStateDir()), err)
	}
	return database.Open(cfg.ResolvedDatabasePath())
}

// newEngine assembles the execution engine from the session configuration.
func newEngine(store state.Store, strict bool) *engine.Engine {
	opts := []engine.EngineOption{
		engine.WithLogger(logger),
		engine.WithStrict(strict),
		engine.WithRuleProvider(rules.NewFileProvider(fsops.NewOSFS())),
	}
	if cfg.Validation.StandardsHook == config.HookBuiltin {
		opts = append(opts, engine.WithStandardsHook(rules.TeamStandards{}))
	}
	if len(cfg.IgnorePatterns) > 0 {
		opts = append(opts, engine.WithIgnores(state.NewIgnoreSet(cfg.IgnorePatterns...)))
	}
	return engine.New(cfg.ProjectRoot, store, opts...)
}

// newPipeline assembles a standalone validation pipeline for commands that
// never touch the snapshot store.
func newPipeline(strict bool) *validation.Pipeline {
	opts := []validation.Option{
		validation.WithCatalog(template.NewRegistry()),
		validation.WithRuleProvider(rules.NewFileProvider(fsops.NewOSFS())),
		validation.WithStrict(strict),
		validation.WithLogger(logger),
	}
	if cfg.Validation.StandardsHook == config.HookBuiltin {
		opts = append(opts, validation.WithHook(rules.TeamStandards{}))
	}
	return validation.NewPipeline(opts...)
}

// effectiveStrict combines the config's strict mode with a per-command flag.
func effectiveStrict(flagStrict bool) bool {
	return cfg.StrictMode || flagStrict
}

// formatterFor builds the output formatter for a command.
func formatterFor(cmd *cobra.Command) internal.Formatter {
	return internal.NewFormatter(globalFlags.GetOutputFormat(), cmd.OutOrStdout())
}
