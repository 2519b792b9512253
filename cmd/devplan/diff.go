package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/cmd/devplan/internal"
	"github.com/fancybread-com/cursor-plans/internal/database"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Preview the changes a plan would make",
	Long: `Capture the project's current state and compare it against the plan's
declared files. Nothing is written and no snapshot is registered; the output
is the exact ordered change list a subsequent apply would execute.`,
	RunE: runDiff,
}

var diffFile string

func init() {
	diffCmd.Flags().StringVarP(&diffFile, "file", "f", "", "Plan file (default: configured plan_file)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	path := planPath(diffFile)
	doc, err := loadPlan(path)
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := newEngine(database.NewSnapshotDAO(db), cfg.StrictMode)
	cs, err := eng.Diff(cmd.Context(), doc)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == internal.FormatText {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Plan %q against %s\n\n", cs.PlanName, cfg.ProjectRoot)
		renderChangeSet(out, cs)
		return nil
	}
	return formatterFor(cmd).PrintObject(cs)
}
