// Package build turns a project configuration into compiled output: it picks
// the compiler backend, prepares the output directory, synchronizes assets
// and runs the backend once or in watch mode.
package build

import (
	"context"
	"time"

	"github.com/tgairbot/cli/internal/config"
)

// Backend names accepted by the builder setting.
const (
	BackendTsc     = "tsc"
	BackendWebpack = "webpack"
)

// Request carries everything a backend needs for one run.
type Request struct {
	Config              *config.Configuration
	Project             string
	TsConfigPath        string
	OutDir              string
	Watch               bool
	PreserveWatchOutput bool

	// BundlerConfigPath is empty when no bundler configuration file is used.
	BundlerConfigPath string
}

// Pass is the outcome of one compilation pass.
type Pass struct {
	Err      error
	Duration time.Duration
}

// Backend compiles the sources of a project.
type Backend interface {
	Name() string

	// Run compiles once, or keeps compiling on every change when req.Watch
	// is set. report is called after every pass. In watch mode Run returns
	// only when ctx is done or the compiler exits on its own.
	Run(ctx context.Context, req Request, report func(Pass)) error
}
