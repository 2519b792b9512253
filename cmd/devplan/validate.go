package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/cmd/devplan/internal"
	"github.com/fancybread-com/cursor-plans/internal/types"
	"github.com/fancybread-com/cursor-plans/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a plan against the project",
	Long: `Run the plan through all four validation layers (syntax, logic,
context, standards) and report every finding at once. Strict mode promotes
warnings to errors.`,
	RunE: runValidate,
}

var (
	validateFile   string
	validateStrict bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Plan file (default: configured plan_file)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Promote warnings to errors")
}

// validateReport is the structured output of the validate command.
type validateReport struct {
	Plan         string                  `json:"plan" yaml:"plan"`
	Passed       bool                    `json:"passed" yaml:"passed"`
	Strict       bool                    `json:"strict" yaml:"strict"`
	Errors       int                     `json:"errors" yaml:"errors"`
	Warnings     int                     `json:"warnings" yaml:"warnings"`
	Infos        int                     `json:"infos" yaml:"infos"`
	Diagnostics  []validation.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	LayersFailed []validation.Layer      `json:"layers_failed,omitempty" yaml:"layers_failed,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := planPath(validateFile)
	doc, err := loadPlan(path)
	if err != nil {
		return err
	}

	strict := effectiveStrict(validateStrict)
	result := newPipeline(strict).Run(doc, cfg.ProjectRoot)
	errs, warns, infos := result.Counts()

	report := validateReport{
		Plan:         path,
		Passed:       result.Passed(),
		Strict:       strict,
		Errors:       errs,
		Warnings:     warns,
		Infos:        infos,
		Diagnostics:  result.Diagnostics,
		LayersFailed: result.LayersFailed,
	}

	out := cmd.OutOrStdout()
	if globalFlags.GetOutputFormat() == internal.FormatText {
		fmt.Fprintf(out, "Validating %s\n\n", path)
		renderDiagnostics(out, result.Diagnostics)
		if len(result.Diagnostics) > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%d error(s), %d warning(s), %d info(s)\n", errs, warns, infos)
		if report.Passed {
			formatterFor(cmd).PrintSuccess("validation passed")
		} else {
			formatterFor(cmd).PrintError("validation failed")
		}
	} else {
		if err := formatterFor(cmd).PrintObject(report); err != nil {
			return err
		}
	}

	if !report.Passed {
		return types.NewError(types.VALIDATION_FAILED,
			fmt.Sprintf("plan %q failed validation with %d error(s)", doc.Project.Name, errs))
	}
	return nil
}
