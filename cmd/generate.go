package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tgairbot/cli/internal/config"
	"github.com/tgairbot/cli/internal/project"
	"github.com/tgairbot/cli/internal/schematics"
	"github.com/tgairbot/cli/internal/validation"
)

var generateCmd = &cobra.Command{
	Use:     "generate <schematic> [name] [path]",
	Aliases: []string{"g"},
	Short:   "Generate a tgairbot element",
	Args:    cobra.RangeArgs(1, 3),
	RunE:    runGenerate,
}

var (
	generateProject    string
	generateFlat       bool
	generateNoFlat     bool
	generateSkipImport bool
	generateCollection string
	generateDryRun     bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Long = generateDescription(config.DefaultCollection)

	generateCmd.Flags().StringVarP(&generateProject, "project", "p", "", "Project in which to generate files")
	generateCmd.Flags().BoolVar(&generateFlat, "flat", false, "Enforce flat structure of generated element")
	generateCmd.Flags().BoolVar(&generateNoFlat, "no-flat", false, "Enforce that directories are generated")
	generateCmd.Flags().BoolVar(&generateSkipImport, "skip-import", false, "Skip importing")
	generateCmd.Flags().StringVarP(&generateCollection, "collection", "c", "", "Schematics collection to use")
	generateCmd.Flags().BoolVarP(&generateDryRun, "dry-run", "d", false, "Report actions that would be taken without writing out results")
	generateCmd.MarkFlagsMutuallyExclusive("flat", "no-flat")
}

func generateDescription(collection string) string {
	var b strings.Builder
	b.WriteString("Generate a tgairbot element.\n")
	fmt.Fprintf(&b, "  Schematics available on %s collection:\n\n", collection)
	writeSchematicsTable(&b, schematics.NewCollection(collection, nil).Schematics())
	return b.String()
}

var title = cases.Title(language.English)

func writeSchematicsTable(w io.Writer, list []schematics.Schematic) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "    %s\t%s\t%s\n", title.String("name"), title.String("alias"), title.String("description"))
	for _, s := range list {
		fmt.Fprintf(tw, "    %s\t%s\t%s\n", s.Name, s.Alias, s.Description)
	}
	_ = tw.Flush()
}

// generateOptions builds the schematic options for name and path in
// project. sourceRoot and flat are resolved per project; --flat and
// --no-flat win over generateOptions.flat.
func generateOptions(cfg *config.Configuration, name, path, projectName string) []schematics.Option {
	var options []schematics.Option
	if name != "" {
		options = append(options, schematics.Option{Name: "name", Value: name})
	}
	if path != "" {
		options = append(options, schematics.Option{Name: "path", Value: path})
	}
	if projectName != "" {
		options = append(options, schematics.Option{Name: "project", Value: projectName})
	}

	flat := project.ShouldGenerateFlat(cfg, projectName, generateFlat)
	if generateNoFlat {
		flat = false
	}

	options = append(options,
		schematics.Option{Name: "skipImport", Value: generateSkipImport},
		schematics.Option{Name: "language", Value: config.ResolveString(cfg, "language", "",
			config.WithDefault("ts"))},
		schematics.Option{Name: "sourceRoot", Value: config.ResolveString(cfg, "sourceRoot", projectName,
			config.WithDefault(config.DefaultSourceRoot))},
		schematics.Option{Name: "flat", Value: flat},
	)
	if generateDryRun {
		options = append(options, schematics.Option{Name: "dryRun", Value: true})
	}
	return options
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	workDir, err := workingDir()
	if err != nil {
		return err
	}

	loader, err := newLoader(workDir)
	if err != nil {
		return err
	}
	cfg, err := loader.Load("")
	if err != nil {
		return err
	}

	collectionName := generateCollection
	if collectionName == "" {
		collectionName = config.ResolveString(cfg, "collection", "", config.WithDefault(config.DefaultCollection))
	}
	collection := schematics.NewCollection(collectionName, schematics.NewExecRunner(os.Stdout, os.Stderr, logger))

	// Fail on a bad schematic before looking at the rest.
	schematic, err := collection.Resolve(args[0])
	if err != nil {
		return err
	}

	name, path := positional(args, 1), positional(args, 2)
	if name != "" {
		if err := validation.ValidateName(name); err != nil {
			return fmt.Errorf("invalid element name: %w", err)
		}
	}
	if path != "" {
		if err := validation.ValidateRelativePath(path); err != nil {
			return fmt.Errorf("invalid element path: %w", err)
		}
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	options := generateOptions(cfg, name, path, generateProject)
	return collection.Execute(ctx, workDir, schematic, options)
}
