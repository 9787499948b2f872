// Package project holds the workspace chores around scaffolding: installing
// dependencies, initializing git and picking generation defaults.
package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tgairbot/cli/internal/config"
	"github.com/tgairbot/cli/internal/logging"
	"github.com/tgairbot/cli/internal/schematics"
)

// DefaultGitIgnore is written to new projects that have no .gitignore.
const DefaultGitIgnore = `# compiled output
/dist
/node_modules

# Logs
logs
*.log
npm-debug.log*
pnpm-debug.log*
yarn-debug.log*
yarn-error.log*

# OS
.DS_Store

# Tests
/coverage
/.nyc_output

# IDEs and editors
/.idea
.project
.classpath
.c9/
*.launch
.settings/
*.sublime-workspace

# IDE - VSCode
.vscode/*
!.vscode/settings.json
!.vscode/tasks.json
!.vscode/launch.json
!.vscode/extensions.json

# dotenv environment variable files
.env
.env.development.local
.env.test.local
.env.production.local
.env.local
`

// Directory returns the directory a new project is created in: the
// explicit directory, or the normalized project name.
func Directory(name, directory string) string {
	if directory != "" {
		return directory
	}
	return schematics.NormalizeName(name)
}

// ShouldGenerateFlat reports whether generated elements go directly into
// the target directory. A true flag wins; otherwise generateOptions.flat of
// the project, then the global one, decides.
func ShouldGenerateFlat(cfg *config.Configuration, project string, flag bool) bool {
	if flag {
		return true
	}
	if v, ok := config.Resolve(cfg, "generateOptions.flat", project).(bool); ok {
		return v
	}
	return flag
}

// Git initializes repositories.
type Git struct {
	logger logging.Logger
}

// NewGit creates a Git helper.
func NewGit(logger logging.Logger) *Git {
	return &Git{logger: logger.WithComponent("git")}
}

// Init runs "git init" in dir. Failures are logged and ignored.
func (g *Git) Init(ctx context.Context, dir string) {
	cmd := exec.CommandContext(ctx, "git", "init")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		g.logger.Warn(ctx, err, "Git repository has not been initialized", "output", string(out))
		return
	}
	g.logger.Debug(ctx, "Initialized git repository", "dir", dir)
}

// WriteGitIgnore creates dir/.gitignore unless one exists. It reports
// whether the file was written.
func WriteGitIgnore(dir string) (bool, error) {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := os.WriteFile(path, []byte(DefaultGitIgnore), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// PackageManager installs project dependencies.
type PackageManager struct {
	Name    string
	install []string
	stdout  io.Writer
	stderr  io.Writer
	logger  logging.Logger
}

var packageManagers = map[string][]string{
	"npm":  {"install", "--silent"},
	"yarn": {"install", "--silent"},
	"pnpm": {"install", "--reporter=silent"},
}

// PackageManagerNames lists the supported package managers.
func PackageManagerNames() []string {
	return []string{"npm", "yarn", "pnpm"}
}

// NewPackageManager returns the package manager called name.
func NewPackageManager(name string, stdout, stderr io.Writer, logger logging.Logger) (*PackageManager, error) {
	install, ok := packageManagers[name]
	if !ok {
		return nil, fmt.Errorf("package manager %q is not supported, use one of %v", name, PackageManagerNames())
	}
	return &PackageManager{
		Name:    name,
		install: install,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger.WithComponent("package-manager"),
	}, nil
}

// InstallArgs returns the arguments of the install command.
func (pm *PackageManager) InstallArgs() []string {
	return append([]string(nil), pm.install...)
}

// Install installs the dependencies of the project in dir.
func (pm *PackageManager) Install(ctx context.Context, dir string) error {
	perf := logging.StartOperation(pm.logger, pm.Name+" install")

	cmd := exec.CommandContext(ctx, pm.Name, pm.install...)
	cmd.Dir = dir
	cmd.Stdout = pm.stdout
	cmd.Stderr = pm.stderr

	if err := cmd.Run(); err != nil {
		err = fmt.Errorf("installation with %s failed, run \"cd %s && %s install\" manually: %w",
			pm.Name, dir, pm.Name, err)
		perf.EndWithError(ctx, err)
		return err
	}

	perf.End(ctx)
	return nil
}
