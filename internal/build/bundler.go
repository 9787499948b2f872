package build

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tgairbot/cli/internal/config"
	"github.com/tgairbot/cli/internal/logging"
)

// WebpackBundler runs webpack-cli.
type WebpackBundler struct {
	command string
	runner  runner
}

// NewWebpackBundler creates a webpack backend running in workDir.
func NewWebpackBundler(workDir string, stdout io.Writer, logger logging.Logger) *WebpackBundler {
	return &WebpackBundler{
		command: "webpack",
		runner:  newRunner(workDir, stdout, logger.WithComponent("webpack")),
	}
}

// Name implements Backend.
func (b *WebpackBundler) Name() string {
	return BackendWebpack
}

// Run implements Backend.
func (b *WebpackBundler) Run(ctx context.Context, req Request, report func(Pass)) error {
	if err := validateCommand(b.command); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	args := b.args(req)

	if !req.Watch {
		pass := Pass{Err: b.runner.once(ctx, b.command, args)}
		report(pass)
		return pass.Err
	}

	return b.runner.watch(ctx, b.command, args, classifyWebpackLine, report)
}

// args uses the project's webpack configuration when there is one, and
// otherwise describes a node build of the entry file on the command line.
func (b *WebpackBundler) args(req Request) []string {
	var args []string

	if req.BundlerConfigPath != "" {
		args = append(args, "--config", req.BundlerConfigPath)
	} else {
		sourceRoot := config.ResolveString(req.Config, "sourceRoot", req.Project,
			config.WithDefault(config.DefaultSourceRoot))
		entryFile := config.ResolveString(req.Config, "entryFile", req.Project,
			config.WithDefault(config.DefaultEntryFile))

		args = append(args,
			"--entry", "./"+filepath.ToSlash(filepath.Join(sourceRoot, entryFile+".ts")),
			"--output-path", req.OutDir,
			"--target", "node",
		)
	}

	if req.Watch {
		args = append(args, "--watch")
	}
	return args
}

// classifyWebpackLine recognizes the status line webpack prints after each
// compilation, e.g. "webpack 5.90.0 compiled successfully in 812 ms".
func classifyWebpackLine(line string) (bool, error) {
	switch {
	case strings.Contains(line, "compiled successfully"):
		return true, nil
	case strings.Contains(line, "compiled with") && strings.Contains(line, "error"):
		return true, fmt.Errorf("webpack: %s", strings.TrimSpace(line))
	default:
		return false, nil
	}
}
