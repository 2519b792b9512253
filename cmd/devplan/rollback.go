package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/cmd/devplan/internal"
	"github.com/fancybread-com/cursor-plans/internal/database"
	"github.com/fancybread-com/cursor-plans/internal/engine"
	"github.com/fancybread-com/cursor-plans/internal/types"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback SNAPSHOT_ID",
	Short: "Restore the project to a recorded snapshot",
	Long: `Restore every file the snapshot recorded. By default files the snapshot
does not know about are left alone (additive restore); --full-restore also
deletes files created since the snapshot. A pre-rollback backup snapshot is
registered first, so a rollback can itself be rolled back.`,
	Args: cobra.ExactArgs(1),
	RunE: runRollback,
}

var rollbackFullRestore bool

func init() {
	rollbackCmd.Flags().BoolVar(&rollbackFullRestore, "full-restore", false, "Also delete files the snapshot does not contain")
}

func runRollback(cmd *cobra.Command, args []string) error {
	id := types.SnapshotID(args[0])

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := newEngine(database.NewSnapshotDAO(db), cfg.StrictMode)
	report, rollbackErr := eng.Rollback(cmd.Context(), id, engine.Options{FullRestore: rollbackFullRestore})

	if report != nil {
		if globalFlags.GetOutputFormat() == internal.FormatText {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rolling back %s to snapshot %s\n\n", cfg.ProjectRoot, id)
			renderRollbackReport(out, report)
		} else if err := formatterFor(cmd).PrintObject(report); err != nil {
			return err
		}
	}

	return rollbackErr
}
