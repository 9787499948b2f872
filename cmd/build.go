package cmd

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [app]",
	Short: "Build a tgairbot application",
	Long: `Compile the application with tsc or webpack and copy its assets into
the output directory.

Examples:
  tgairbot build                       # Build the default project
  tgairbot build admin                 # Build the "admin" project
  tgairbot build --watch               # Rebuild on every change
  tgairbot build --builder webpack     # Bundle with webpack`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

var buildFlags CompileFlags

func init() {
	rootCmd.AddCommand(buildCmd)

	addCompileFlags(buildCmd, &buildFlags)
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	workDir, err := workingDir()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	orchestrator, err := newOrchestrator(workDir, logger)
	if err != nil {
		return err
	}

	inputs := compileInputs(cmd, positional(args, 0))
	return orchestrator.Build(ctx, inputs, buildFlags.Watch, buildFlags.WatchAssets, nil)
}
