package build

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tgairbot/cli/internal/logging"
)

// lineClassifier inspects one line of compiler output. It returns true when
// the line ends a watch pass, together with the error of that pass.
type lineClassifier func(line string) (bool, error)

// runner executes a compiler binary installed in the project or on PATH.
type runner struct {
	workDir string
	stdout  io.Writer
	logger  logging.Logger
}

func newRunner(workDir string, stdout io.Writer, logger logging.Logger) runner {
	if stdout == nil {
		stdout = os.Stdout
	}
	return runner{workDir: workDir, stdout: stdout, logger: logger}
}

// binary prefers the project-local node_modules/.bin copy of name.
func (r runner) binary(name string) string {
	local := filepath.Join(r.workDir, "node_modules", ".bin", name)
	if runtime.GOOS == "windows" {
		local += ".cmd"
	}
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return local
	}
	return name
}

func (r runner) command(ctx context.Context, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.binary(name), args...)
	cmd.Dir = r.workDir
	cmd.WaitDelay = time.Second
	return cmd
}

// once runs the compiler to completion with its output forwarded.
func (r runner) once(ctx context.Context, name string, args []string) error {
	cmd := r.command(ctx, name, args)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stdout

	r.logger.Debug(ctx, "Running compiler", "command", cmd.Path, "args", args)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s interrupted: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// watch runs a long-lived compiler, forwarding its output line by line and
// calling report whenever classify recognizes the end of a pass.
func (r runner) watch(ctx context.Context, name string, args []string, classify lineClassifier, report func(Pass)) error {
	cmd := r.command(ctx, name, args)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	r.logger.Debug(ctx, "Starting compiler in watch mode", "command", cmd.Path, "args", args)

	if err := cmd.Start(); err != nil {
		pw.Close()
		return fmt.Errorf("starting %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		done <- err
	}()

	passStart := time.Now()
	scanner := bufio.NewScanner(pr)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(r.stdout, line)

		if ended, err := classify(line); ended {
			report(Pass{Err: err, Duration: time.Since(passStart)})
			passStart = time.Now()
		}
	}
	// Drain whatever is left so Wait can finish.
	_, _ = io.Copy(io.Discard, pr)

	err := <-done
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s exited: %w", name, err)
	}
	return nil
}
