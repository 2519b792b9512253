package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/cmd/devplan/internal"
	"github.com/fancybread-com/cursor-plans/internal/database"
	"github.com/fancybread-com/cursor-plans/internal/state"
	"github.com/fancybread-com/cursor-plans/internal/types"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Manage recorded state snapshots",
	Long:  `List, inspect, and delete the snapshots recorded by apply and rollback.`,
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, oldest first",
	RunE:  runSnapshotsList,
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show SNAPSHOT_ID",
	Short: "Show one snapshot's recorded files",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsShow,
}

var snapshotsDeleteCmd = &cobra.Command{
	Use:   "delete SNAPSHOT_ID",
	Short: "Delete a snapshot and reclaim its space",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsDelete,
}

func init() {
	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsShowCmd)
	snapshotsCmd.AddCommand(snapshotsDeleteCmd)
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	summaries, err := database.NewSnapshotDAO(db).List(cmd.Context())
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() != internal.FormatText {
		return formatterFor(cmd).PrintObject(summaries)
	}

	if len(summaries) == 0 {
		cmd.Println("No snapshots recorded yet. 'devplan apply' registers one before writing.")
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		partial := ""
		if s.Partial {
			partial = "partial"
		}
		rows = append(rows, []string{
			string(s.ID),
			s.CreatedAt.Local().Format(time.RFC3339),
			s.Label,
			strconv.Itoa(s.FileCount),
			strconv.FormatInt(s.TotalSize, 10),
			partial,
		})
	}
	return formatterFor(cmd).PrintTable(
		[]string{"id", "created", "label", "files", "bytes", "state"}, rows)
}

// snapshotView is the display form of a snapshot; file contents stay in the
// database.
type snapshotView struct {
	ID        types.SnapshotID     `json:"id" yaml:"id"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
	Label     string               `json:"label,omitempty" yaml:"label,omitempty"`
	Partial   bool                 `json:"partial,omitempty" yaml:"partial,omitempty"`
	Files     []snapshotFileView   `json:"files" yaml:"files"`
	Errors    []state.CaptureError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type snapshotFileView struct {
	Path        string `json:"path" yaml:"path"`
	Size        int64  `json:"size" yaml:"size"`
	Mode        string `json:"mode" yaml:"mode"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
}

func newSnapshotView(snap *state.Snapshot) snapshotView {
	view := snapshotView{
		ID:        snap.ID,
		CreatedAt: snap.CreatedAt,
		Label:     snap.Label,
		Partial:   snap.Partial,
		Files:     make([]snapshotFileView, 0, len(snap.Files)),
		Errors:    snap.Errors,
	}
	for _, f := range snap.Files {
		view.Files = append(view.Files, snapshotFileView{
			Path:        f.Path,
			Size:        f.Size,
			Mode:        fmt.Sprintf("%04o", uint32(f.Mode.Perm())),
			Fingerprint: f.Fingerprint,
		})
	}
	return view
}

func runSnapshotsShow(cmd *cobra.Command, args []string) error {
	id := types.SnapshotID(args[0])

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := database.NewSnapshotDAO(db).Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	view := newSnapshotView(snap)

	if globalFlags.GetOutputFormat() != internal.FormatText {
		return formatterFor(cmd).PrintObject(view)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Snapshot %s\n", view.ID)
	fmt.Fprintf(out, "Created: %s\n", view.CreatedAt.Local().Format(time.RFC3339))
	if view.Label != "" {
		fmt.Fprintf(out, "Label:   %s\n", view.Label)
	}
	if view.Partial {
		fmt.Fprintln(out, "State:   partial (capture was interrupted)")
	}
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(view.Files))
	for _, f := range view.Files {
		rows = append(rows, []string{
			f.Path,
			strconv.FormatInt(f.Size, 10),
			f.Mode,
			f.Fingerprint,
		})
	}
	if err := formatterFor(cmd).PrintTable([]string{"path", "bytes", "mode", "fingerprint"}, rows); err != nil {
		return err
	}

	if len(view.Errors) > 0 {
		fmt.Fprintln(out, "\nCapture errors:")
		for _, ce := range view.Errors {
			fmt.Fprintf(out, "  %s: %s\n", ce.Path, ce.Err)
		}
	}
	return nil
}

func runSnapshotsDelete(cmd *cobra.Command, args []string) error {
	id := types.SnapshotID(args[0])

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewSnapshotDAO(db).Delete(cmd.Context(), id); err != nil {
		return err
	}

	// Snapshots carry full file contents; reclaim the pages now instead of
	// leaving the database to grow monotonically.
	if err := db.Vacuum(cmd.Context()); err != nil {
		logger.Warn("vacuum after snapshot delete failed", "error", err)
	}

	return formatterFor(cmd).PrintSuccess(fmt.Sprintf("snapshot %s deleted", id))
}
