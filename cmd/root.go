package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tgairbot/cli/internal/errors"
	"github.com/tgairbot/cli/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tgairbot",
	Short: "Scaffold, build and run tgairbot applications",
	Long: `tgairbot creates Telegram bot applications, generates their building
blocks and compiles and runs them, rebuilding and restarting on change.

Quick Start:
  tgairbot new my-bot             Create a new application
  tgairbot generate mi auth       Generate a middleware
  tgairbot build                  Compile the application
  tgairbot start --watch          Run it and restart on every change`,
	Version:       version.GetShortVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it. Errors
// are printed here; the caller only maps them to an exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	var exitErr *errors.ExitError
	if stderrors.As(err, &exitErr) {
		return err
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintf(os.Stderr, "See '%s --help' for a list of available commands.\n", rootCmd.Name())
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig loads .env and binds TGAIRBOT_* environment variables, e.g.
// TGAIRBOT_LOG_LEVEL=debug.
func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	viper.SetEnvPrefix("TGAIRBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}
