package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgairbot/cli/internal/config"
	"github.com/tgairbot/cli/internal/supervisor"
)

var startCmd = &cobra.Command{
	Use:   "start [app] [-- args...]",
	Short: "Run a tgairbot application",
	Long: `Compile the application, then run the compiled entry file. In watch
mode the application is restarted after every successful rebuild, and the
previous instance always exits before the next one starts.

Arguments after "--" are forwarded to the application unchanged.

Examples:
  tgairbot start                          # Build once and run
  tgairbot start --watch                  # Restart on every change
  tgairbot start admin -- --port 3000     # Forward flags to the app
  tgairbot start -e "node --inspect"      # Run with a custom executable`,
	Args: validateStartArgs,
	RunE: runStart,
}

var (
	startFlags      CompileFlags
	startExec       string
	startSourceRoot string
	startEntryFile  string
)

func init() {
	rootCmd.AddCommand(startCmd)

	addCompileFlags(startCmd, &startFlags)
	startCmd.Flags().StringVarP(&startExec, "exec", "e", "", "Binary to run (default: \"node\")")
	startCmd.Flags().StringVar(&startSourceRoot, "sourceRoot", "", "Points at the root of the source code for the single project")
	startCmd.Flags().StringVar(&startEntryFile, "entryFile", "", "Path to the entry file where this command will work with")
}

// splitStartArgs separates the optional project name from the arguments
// forwarded to the application.
func splitStartArgs(args []string, dash int) (app string, passthrough []string) {
	own := args
	if dash >= 0 && dash <= len(args) {
		own = args[:dash]
		passthrough = args[dash:]
	}
	return positional(own, 0), passthrough
}

func validateStartArgs(cmd *cobra.Command, args []string) error {
	own := len(args)
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		own = dash
	}
	if own > 1 {
		return fmt.Errorf("accepts at most 1 app name before \"--\", received %d", own)
	}
	return nil
}

func runStart(cmd *cobra.Command, args []string) error {
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

	app, passthrough := splitStartArgs(args, cmd.ArgsLenAtDash())
	inputs := compileInputs(cmd, app)

	plan, err := orchestrator.Plan(inputs)
	if err != nil {
		return err
	}

	launcher := newLauncher(workDir, plan.Config, plan.Project, plan.OutDir, inputs, passthrough)
	launcher.Logger = logger

	sup := supervisor.New(ctx, launcher.Command, logger)
	defer sup.Shutdown()

	done := make(chan error, 1)
	go func() {
		done <- orchestrator.Run(ctx, plan, inputs, startFlags.Watch, startFlags.WatchAssets, sup.RequestRestart)
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case err := <-sup.Errors():
		stop()
		<-done
		return err
	}

	// A one-shot build spawns from inside Run, so a spawn failure is
	// already queued here.
	select {
	case err := <-sup.Errors():
		return err
	default:
	}

	// Without --watch the application runs until it exits on its own.
	sup.Wait(ctx)
	return sup.ExitError()
}

// newLauncher resolves exec, sourceRoot and entryFile for project; the
// --exec, --sourceRoot and --entryFile flags win over the configuration.
func newLauncher(workDir string, cfg *config.Configuration, project, outDir string, inputs config.Inputs, args []string) *supervisor.Launcher {
	return &supervisor.Launcher{
		WorkDir: workDir,
		Exec: config.ResolveString(cfg, "exec", project,
			config.WithOverride("exec", inputs), config.WithDefault(config.DefaultExec)),
		OutDir: outDir,
		SourceRoot: config.ResolveString(cfg, "sourceRoot", project,
			config.WithOverride("sourceRoot", inputs), config.WithDefault(config.DefaultSourceRoot)),
		EntryFile: config.ResolveString(cfg, "entryFile", project,
			config.WithOverride("entryFile", inputs), config.WithDefault(config.DefaultEntryFile)),
		Args:   args,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
