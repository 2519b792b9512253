package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/internal/config"
	"github.com/fancybread-com/cursor-plans/pkg/version"
)

// Session state populated by loadSession before any command runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "devplan",
	Short: "devplan - versioned development plans for your codebase",
	Long: `devplan manages versioned development plan documents (.devplan files):
validate a plan against its project, preview the changes it would make,
apply it with automatic pre-apply snapshots, and roll the project back
to any recorded snapshot.`,
	PersistentPreRunE: loadSession,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadSession is called before any command runs to load configuration and
// build the process logger.
func loadSession(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	// Version, help, and completion never need configuration.
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion", "__complete":
			return nil
		}
	}

	configFile := flags.ConfigFile
	loader := config.NewConfigLoader(config.NewValidator())

	if configFile != "" {
		// An explicit --config must exist.
		cfg, err = loader.Load(configFile)
	} else {
		cfg, err = loader.LoadWithDefaults(config.DefaultConfigPath(flags.ProjectRoot))
	}
	if err != nil {
		return err
	}
	cfg.ProjectRoot = flags.ProjectRoot

	logCfg := cfg.Logging
	if flags.IsVerbose() {
		logCfg.Level = "debug"
	}
	logger = config.NewLogger(logCfg)
	slog.SetDefault(logger)

	return nil
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.String())
	},
}
