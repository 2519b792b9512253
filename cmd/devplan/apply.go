package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/cmd/devplan/internal"
	"github.com/fancybread-com/cursor-plans/internal/database"
	"github.com/fancybread-com/cursor-plans/internal/engine"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a plan to the project",
	Long: `Validate the plan, register a pre-apply anchor snapshot, and execute the
change list in order. A failing change halts the apply immediately; already
written files stay written and the anchor snapshot is the recovery point for
'devplan rollback'. With --dry-run the validation gate and diff still run,
but no snapshot is registered and no file is written.`,
	RunE: runApply,
}

var (
	applyFile   string
	applyDryRun bool
	applyStrict bool
)

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "Plan file (default: configured plan_file)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Report the changes without writing anything")
	applyCmd.Flags().BoolVar(&applyStrict, "strict", false, "Promote validation warnings to errors")
}

func runApply(cmd *cobra.Command, args []string) error {
	path := planPath(applyFile)
	doc, err := loadPlan(path)
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := newEngine(database.NewSnapshotDAO(db), effectiveStrict(applyStrict))
	report, applyErr := eng.Apply(cmd.Context(), doc, engine.Options{DryRun: applyDryRun})

	if report != nil {
		if globalFlags.GetOutputFormat() == internal.FormatText {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Applying plan %q to %s\n\n", report.PlanName, cfg.ProjectRoot)
			renderApplyReport(out, report)
		} else if err := formatterFor(cmd).PrintObject(report); err != nil {
			return err
		}
	}

	return applyErr
}
