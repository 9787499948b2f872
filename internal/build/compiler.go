package build

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/tgairbot/cli/internal/config"
	"github.com/tgairbot/cli/internal/logging"
	"github.com/tgairbot/cli/internal/validation"
)

var tscSummary = regexp.MustCompile(`Found (\d+) errors?`)

// TscCompiler runs the TypeScript compiler.
type TscCompiler struct {
	command string
	runner  runner
}

// NewTscCompiler creates a tsc backend running in workDir. Compiler output
// goes to stdout.
func NewTscCompiler(workDir string, stdout io.Writer, logger logging.Logger) *TscCompiler {
	return &TscCompiler{
		command: "tsc",
		runner:  newRunner(workDir, stdout, logger.WithComponent("tsc")),
	}
}

// Name implements Backend.
func (tc *TscCompiler) Name() string {
	return BackendTsc
}

// Run implements Backend.
func (tc *TscCompiler) Run(ctx context.Context, req Request, report func(Pass)) error {
	if err := validateCommand(tc.command); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	if plugins, ok := config.Resolve(req.Config, "compilerOptions.plugins", req.Project).([]any); ok && len(plugins) > 0 {
		tc.runner.logger.Warn(ctx, nil, "Compiler plugins are not supported by the tsc command line and are ignored",
			"plugins", len(plugins))
	}

	args := tc.args(req)

	if !req.Watch {
		pass := Pass{Err: tc.runner.once(ctx, tc.command, args)}
		report(pass)
		return pass.Err
	}

	return tc.runner.watch(ctx, tc.command, args, classifyTscLine, report)
}

func (tc *TscCompiler) args(req Request) []string {
	args := []string{"-p", req.TsConfigPath}
	if req.Watch {
		args = append(args, "--watch")
		if req.PreserveWatchOutput {
			args = append(args, "--preserveWatchOutput")
		}
	}
	return args
}

// classifyTscLine recognizes the summary tsc prints after each watch pass,
// e.g. "Found 0 errors. Watching for file changes."
func classifyTscLine(line string) (bool, error) {
	m := tscSummary.FindStringSubmatch(line)
	if m == nil {
		return false, nil
	}
	n, _ := strconv.Atoi(m[1])
	if n > 0 {
		return true, fmt.Errorf("tsc reported %d errors", n)
	}
	return true, nil
}

// allowedCommands are the compiler binaries this package runs.
var allowedCommands = map[string]bool{
	BackendTsc:     true,
	BackendWebpack: true,
}

func validateCommand(command string) error {
	return validation.ValidateCommand(command, allowedCommands)
}
