package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tgairbot/cli/internal/assets"
	"github.com/tgairbot/cli/internal/config"
	clierrors "github.com/tgairbot/cli/internal/errors"
	"github.com/tgairbot/cli/internal/logging"
)

// Plan is the resolved description of a build, computed before anything
// touches the filesystem.
type Plan struct {
	Config            *config.Configuration
	Project           string
	Builder           Builder
	TsConfigPath      string
	OutDir            string
	BundlerConfigPath string
}

// Orchestrator runs builds for one CLI invocation.
type Orchestrator struct {
	workDir  string
	loader   *config.Loader
	assets   *assets.Engine
	backends map[string]Backend
	metrics  *BuildMetrics
	logger   logging.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithBackend registers b under its name, replacing any default backend.
func WithBackend(b Backend) Option {
	return func(o *Orchestrator) {
		o.backends[b.Name()] = b
	}
}

// NewOrchestrator creates an orchestrator for the project in workDir with
// the tsc and webpack backends registered.
func NewOrchestrator(workDir string, loader *config.Loader, engine *assets.Engine, logger logging.Logger, opts ...Option) *Orchestrator {
	logger = logger.WithComponent("build")

	o := &Orchestrator{
		workDir: workDir,
		loader:  loader,
		assets:  engine,
		metrics: NewBuildMetrics(),
		logger:  logger,
		backends: map[string]Backend{
			BackendTsc:     NewTscCompiler(workDir, os.Stdout, logger),
			BackendWebpack: NewWebpackBundler(workDir, os.Stdout, logger),
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Metrics returns the pass statistics of this orchestrator.
func (o *Orchestrator) Metrics() *BuildMetrics {
	return o.metrics
}

// Plan loads the configuration named by the "config" input and resolves the
// project ("app" input), backend, tsconfig, output directory and bundler
// configuration. It never modifies the filesystem.
func (o *Orchestrator) Plan(inputs config.Inputs) (*Plan, error) {
	cfg, err := o.loader.Load(inputs.String("config"))
	if err != nil {
		return nil, err
	}

	project := inputs.String("app")

	builder, err := ResolveBuilder(cfg, project, inputs)
	if err != nil {
		return nil, err
	}

	tsConfigPath := TsConfigPath(cfg, project, inputs, builder, o.workDir)
	outDir, err := OutDir(o.workDir, tsConfigPath)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Config:       cfg,
		Project:      project,
		Builder:      builder,
		TsConfigPath: tsConfigPath,
		OutDir:       outDir,
	}

	if builder.Type == BackendWebpack {
		plan.BundlerConfigPath, err = BundlerConfigPath(cfg, project, inputs, builder, o.workDir)
		if err != nil {
			return nil, err
		}
	}

	return plan, nil
}

// Build compiles the project described by inputs. onSuccess, when set, runs
// after every successful pass. In watch mode Build returns when ctx is
// done. With watchAssets but without watch, Build compiles once and keeps
// the asset watchers running until ctx is done.
func (o *Orchestrator) Build(ctx context.Context, inputs config.Inputs, watch, watchAssets bool, onSuccess func()) error {
	plan, err := o.Plan(inputs)
	if err != nil {
		return err
	}
	return o.Run(ctx, plan, inputs, watch, watchAssets, onSuccess)
}

// Run executes a resolved plan. See Build.
func (o *Orchestrator) Run(ctx context.Context, plan *Plan, inputs config.Inputs, watch, watchAssets bool, onSuccess func()) (err error) {
	backend, ok := o.backends[plan.Builder.Type]
	if !ok {
		return clierrors.NewConfigError(clierrors.ErrCodeUnknownBuilder,
			fmt.Sprintf("no backend registered for builder %q", plan.Builder.Type), nil)
	}

	o.logger.Info(ctx, "Starting build",
		"project", plan.Project,
		"builder", backend.Name(),
		"tsconfig", plan.TsConfigPath,
		"outDir", plan.OutDir,
		"watch", watch,
	)

	if config.ResolveBool(plan.Config, "compilerOptions.deleteOutDir", plan.Project) {
		if err := o.deleteOutDir(plan.OutDir); err != nil {
			return err
		}
	}

	defer func() {
		if serr := o.assets.Shutdown(); serr != nil {
			err = errors.Join(err, clierrors.NewAssetError(clierrors.ErrCodeAssetCopy,
				"cannot stop asset watchers", serr))
		}
	}()

	if err := o.assets.Sync(ctx, plan.Config, plan.Project, plan.OutDir, watchAssets); err != nil {
		return err
	}

	req := Request{
		Config:              plan.Config,
		Project:             plan.Project,
		TsConfigPath:        plan.TsConfigPath,
		OutDir:              plan.OutDir,
		Watch:               watch,
		PreserveWatchOutput: inputs.Bool("preserveWatchOutput"),
		BundlerConfigPath:   plan.BundlerConfigPath,
	}

	report := func(p Pass) {
		o.metrics.RecordBuild(BuildResult{Backend: backend.Name(), Error: p.Err, Duration: p.Duration})
		if p.Err != nil {
			if watch {
				o.logger.Error(ctx, p.Err, "Compilation failed, waiting for changes")
			}
			return
		}
		o.logger.Debug(ctx, "Compilation succeeded", "duration_ms", p.Duration.Milliseconds())
		if onSuccess != nil {
			onSuccess()
		}
	}

	if err := backend.Run(ctx, req, report); err != nil {
		return clierrors.NewBackendError(clierrors.ErrCodeBuildFailed,
			fmt.Sprintf("%s build failed", backend.Name()), err)
	}

	if watch {
		snapshot := o.metrics.GetSnapshot()
		o.logger.Info(ctx, "Watch session finished",
			"passes", snapshot.TotalBuilds,
			"failed", snapshot.FailedBuilds,
			"success_rate", o.metrics.GetSuccessRate(),
		)
		return nil
	}

	if watchAssets {
		<-ctx.Done()
	}
	return nil
}

func (o *Orchestrator) deleteOutDir(outDir string) error {
	path := abs(o.workDir, outDir)
	if filepath.Clean(path) == filepath.Clean(o.workDir) {
		return clierrors.NewIOError(clierrors.ErrCodeConfigInvalid,
			"refusing to delete the project directory as output directory", nil)
	}

	o.logger.Debug(context.Background(), "Deleting output directory", "path", path)
	if err := os.RemoveAll(path); err != nil {
		return clierrors.NewIOError(clierrors.ErrCodeBuildFailed,
			fmt.Sprintf("cannot delete output directory %s", outDir), err)
	}
	return nil
}
