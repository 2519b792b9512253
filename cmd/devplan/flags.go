package main

import (
	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/cmd/devplan/internal"
)

// GlobalFlags holds global flags available to all commands
type GlobalFlags struct {
	ProjectRoot  string
	ConfigFile   string
	Verbose      bool
	OutputFormat string
}

var globalFlags = &GlobalFlags{}

// RegisterGlobalFlags registers persistent flags on the root command
func RegisterGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&globalFlags.ProjectRoot, "project", "p", ".", "Project root directory")
	cmd.PersistentFlags().StringVar(&globalFlags.ConfigFile, "config", "", "Path to config file (default: <project>/.devplan.yaml)")
	cmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "text", "Output format (text|json|yaml)")
}

// ParseGlobalFlags parses and validates global flags from the command
func ParseGlobalFlags(cmd *cobra.Command) (*GlobalFlags, error) {
	if _, err := internal.ParseFormat(globalFlags.OutputFormat); err != nil {
		return nil, err
	}
	return globalFlags, nil
}

// GetOutputFormat returns the parsed OutputFormat enum
func (f *GlobalFlags) GetOutputFormat() internal.OutputFormat {
	format, err := internal.ParseFormat(f.OutputFormat)
	if err != nil {
		return internal.FormatText
	}
	return format
}

// IsVerbose returns true if verbose mode is enabled
func (f *GlobalFlags) IsVerbose() bool {
	return f.Verbose
}
