package supervisor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/tgairbot/cli/internal/logging"
)

// Launcher builds the shell command that runs the compiled entry file.
type Launcher struct {
	WorkDir    string
	Exec       string
	OutDir     string
	SourceRoot string
	EntryFile  string
	// Args are forwarded to the application, each quoted on its own.
	Args []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger logging.Logger
}

// EntryPath returns <outDir>/<sourceRoot>/<entryFile> when that file was
// compiled, and <outDir>/<entryFile> otherwise. The path has no extension.
func (l *Launcher) EntryPath() string {
	nested := filepath.Join(l.OutDir, l.SourceRoot, l.EntryFile)
	if _, err := os.Stat(l.abs(nested) + ".js"); err == nil {
		return nested
	}
	return filepath.Join(l.OutDir, l.EntryFile)
}

// SourceMapRegister returns the source-map-support preload script installed
// in the project, or "".
func (l *Launcher) SourceMapRegister() string {
	path := filepath.Join(l.WorkDir, "node_modules", "source-map-support", "register.js")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// CommandLine returns the shell command line for the application.
func (l *Launcher) CommandLine() string {
	parts := []string{l.Exec}

	if register := l.SourceMapRegister(); register != "" {
		parts = append(parts, "-r", `"`+register+`"`)
	} else if l.Logger != nil {
		l.Logger.Debug(context.Background(), "source-map-support is not installed, stack traces will point to compiled files")
	}

	entry := l.EntryPath()
	if strings.Contains(entry, " ") {
		entry = `"` + entry + `"`
	}
	parts = append(parts, entry)

	for _, arg := range l.Args {
		parts = append(parts, quoteArg(arg))
	}

	return strings.Join(parts, " ")
}

// Command implements CommandFactory.
func (l *Launcher) Command() (*exec.Cmd, error) {
	if l.Exec == "" {
		return nil, errors.New("no executable configured to run the application")
	}

	cmd := shellCommand(l.CommandLine())
	cmd.Dir = l.WorkDir
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.WaitDelay = time.Second

	return cmd, nil
}

func (l *Launcher) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.WorkDir, path)
}
