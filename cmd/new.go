package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgairbot/cli/internal/config"
	"github.com/tgairbot/cli/internal/project"
	"github.com/tgairbot/cli/internal/schematics"
	"github.com/tgairbot/cli/internal/validation"
)

var newCmd = &cobra.Command{
	Use:     "new <name>",
	Aliases: []string{"n"},
	Short:   "Generate a tgairbot application",
	Long: `Create a new application from the application schematic, install its
dependencies and initialize a git repository.

Examples:
  tgairbot new my-bot                      # Create ./my-bot with npm
  tgairbot new my-bot -p pnpm --strict     # Use pnpm and strict TypeScript
  tgairbot new my-bot --directory bots/one # Create the project in bots/one
  tgairbot new my-bot -g -s                # Skip git and installation`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var (
	newDirectory      string
	newSkipGit        bool
	newSkipInstall    bool
	newPackageManager string
	newToken          string
	newStrict         bool
	newCollection     string
)

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringVar(&newDirectory, "directory", "", "Specify the destination directory")
	newCmd.Flags().BoolVarP(&newSkipGit, "skip-git", "g", false, "Skip git repository initialization")
	newCmd.Flags().BoolVarP(&newSkipInstall, "skip-install", "s", false, "Skip package installation")
	newCmd.Flags().StringVarP(&newPackageManager, "package-manager", "p", "npm",
		"Specify package manager ("+strings.Join(project.PackageManagerNames(), ", ")+")")
	newCmd.Flags().StringVarP(&newToken, "token", "t", "YOU_BOT_TOKEN", "Apply your bot token")
	newCmd.Flags().BoolVar(&newStrict, "strict", false, "Enables strict mode in TypeScript")
	newCmd.Flags().StringVarP(&newCollection, "collection", "c", config.DefaultCollection, "Schematics collection to use")
}

// newSchematicOptions returns the options of the application schematic.
func newSchematicOptions(name string) []schematics.Option {
	options := []schematics.Option{
		{Name: "name", Value: name},
		{Name: "skip-git", Value: newSkipGit},
		{Name: "strict", Value: newStrict},
		{Name: "packageManager", Value: newPackageManager},
		{Name: "token", Value: validation.SanitizeInput(newToken)},
	}
	if newDirectory != "" {
		options = append(options, schematics.Option{Name: "directory", Value: newDirectory})
	}
	return options
}

func runNew(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if err := validation.ValidateName(name); err != nil {
		return fmt.Errorf("invalid project name: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	// Validate before anything is written.
	pm, err := project.NewPackageManager(newPackageManager, os.Stdout, os.Stderr, logger)
	if err != nil {
		return err
	}

	workDir, err := workingDir()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	fmt.Println("We will scaffold your app in a few seconds..")
	fmt.Println()

	collection := schematics.NewCollection(newCollection, schematics.NewExecRunner(os.Stdout, os.Stderr, logger))
	if err := collection.Execute(ctx, workDir, "application", newSchematicOptions(name)); err != nil {
		return err
	}

	dir := filepath.Join(workDir, project.Directory(name, newDirectory))

	if !newSkipInstall {
		if err := pm.Install(ctx, dir); err != nil {
			logger.Error(ctx, err, "Packages have not been installed")
		}
	}

	if !newSkipGit {
		project.NewGit(logger).Init(ctx, dir)
		if _, err := project.WriteGitIgnore(dir); err != nil {
			logger.Warn(ctx, err, "Cannot write .gitignore", "dir", dir)
		}
	}

	logger.Debug(ctx, "Project created", "dir", dir)

	fmt.Println()
	fmt.Println("Thanks for installing tgairbot 🙏")
	fmt.Println()
	return nil
}
