package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tgairbot/cli/internal/config"
)

// CompileFlags are shared by build and start.
type CompileFlags struct {
	Config              string
	Path                string
	Watch               bool
	WatchAssets         bool
	Webpack             bool
	WebpackPath         string
	Tsc                 bool
	Builder             string
	PreserveWatchOutput bool
}

func addCompileFlags(cmd *cobra.Command, flags *CompileFlags) {
	cmd.Flags().StringVarP(&flags.Config, "config", "c", "", "Path to the CLI configuration file")
	cmd.Flags().StringVarP(&flags.Path, "path", "p", "", "Path to the tsconfig file")
	cmd.Flags().BoolVarP(&flags.Watch, "watch", "w", false, "Run in watch mode (live-reload)")
	cmd.Flags().BoolVar(&flags.WatchAssets, "watchAssets", false, "Watch non-ts (e.g., .graphql) files mode")
	cmd.Flags().BoolVar(&flags.Webpack, "webpack", false, "Use webpack for compilation (deprecated, use --builder)")
	cmd.Flags().StringVar(&flags.WebpackPath, "webpackPath", "", "Path to the webpack configuration")
	cmd.Flags().BoolVar(&flags.Tsc, "tsc", false, "Use tsc for compilation")
	cmd.Flags().StringVarP(&flags.Builder, "builder", "b", "", "Builder to be used (tsc, webpack)")
	cmd.Flags().BoolVar(&flags.PreserveWatchOutput, "preserveWatchOutput", false,
		`Use "preserveWatchOutput" option when using tsc watch mode`)
}

// compileInputs turns the flags the user actually set into config inputs,
// so that unset flags never shadow the configuration file. app is the
// optional positional project name.
func compileInputs(cmd *cobra.Command, app string) config.Inputs {
	var inputs config.Inputs
	if app != "" {
		inputs = inputs.Set("app", app)
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		inputs = inputs.Set(f.Name, flagValue(f))
	})

	return inputs
}

func flagValue(f *pflag.Flag) any {
	if f.Value.Type() == "bool" {
		if b, err := strconv.ParseBool(f.Value.String()); err == nil {
			return b
		}
	}
	return f.Value.String()
}
