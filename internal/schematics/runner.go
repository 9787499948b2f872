package schematics

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tgairbot/cli/internal/logging"
)

// Runner executes the schematics engine.
type Runner interface {
	Run(ctx context.Context, dir string, args []string) error
}

// ExecRunner runs the schematics command line tool, preferring a copy
// installed in the project.
type ExecRunner struct {
	binary string
	stdout io.Writer
	stderr io.Writer
	logger logging.Logger
}

// NewExecRunner creates a runner for the schematics binary.
func NewExecRunner(stdout, stderr io.Writer, logger logging.Logger) *ExecRunner {
	return &ExecRunner{
		binary: "schematics",
		stdout: stdout,
		stderr: stderr,
		logger: logger.WithComponent("schematics"),
	}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, dir string, args []string) error {
	binary := r.binary
	local := filepath.Join(dir, "node_modules", ".bin", r.binary)
	if _, err := os.Stat(local); err == nil {
		binary = local
	}

	r.logger.Debug(ctx, "Running schematic", "binary", binary, "args", args)

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", r.binary, args, err)
	}
	return nil
}
