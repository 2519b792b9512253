package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/cmd/devplan/internal"
	"github.com/fancybread-com/cursor-plans/internal/plan"
	"github.com/fancybread-com/cursor-plans/internal/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter plan file",
	Long: `Write a minimal valid plan document to the configured plan file. The
scaffold declares foundation, development, and testing phases and passes
validation as written. An existing plan file is never overwritten.`,
	RunE: runInit,
}

var initName string

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Project name (default: project directory name)")
}

func runInit(cmd *cobra.Command, args []string) error {
	target := cfg.ResolvedPlanFile()
	if _, err := os.Stat(target); err == nil {
		return internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("plan file %s already exists; delete it first or point plan_file elsewhere", target))
	}

	name := initName
	if name == "" {
		abs, err := filepath.Abs(cfg.ProjectRoot)
		if err != nil {
			return types.WrapError(types.PATH_INVALID,
				fmt.Sprintf("cannot resolve project root %s", cfg.ProjectRoot), err)
		}
		name = filepath.Base(abs)
	}

	raw, err := plan.Starter(name).Serialize()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return types.WrapError(types.FILE_IO_ERROR,
			fmt.Sprintf("failed to create %s", filepath.Dir(target)), err)
	}
	if err := os.WriteFile(target, raw, 0o644); err != nil {
		return types.WrapError(types.FILE_IO_ERROR,
			fmt.Sprintf("failed to write %s", target), err)
	}

	return formatterFor(cmd).PrintSuccess(fmt.Sprintf("created %s for project %q", target, name))
}
