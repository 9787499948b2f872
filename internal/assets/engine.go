// Package assets mirrors non-source files matched by the configured asset
// globs into the build output directory, either once or continuously.
package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tgairbot/cli/internal/config"
	clierrors "github.com/tgairbot/cli/internal/errors"
	"github.com/tgairbot/cli/internal/logging"
	"github.com/tgairbot/cli/internal/watcher"
)

// Action is the kind of synchronization applied to one file.
type Action string

const (
	ActionUpsert Action = "upsert"
	ActionRemove Action = "remove"
)

// FileSyncEvent describes one file to copy into, or remove from, the output
// tree.
type FileSyncEvent struct {
	Action          Action
	SourceRootDepth int
	AbsolutePath    string
	OutDir          string
}

// Destination returns the output path for the event.
func (e FileSyncEvent) Destination() (string, error) {
	return DestinationPath(e.AbsolutePath, e.OutDir, e.SourceRootDepth)
}

// Engine synchronizes assets. One Engine serves one CLI invocation; after
// Shutdown it ignores further events.
type Engine struct {
	workDir string
	logger  logging.Logger

	mu       sync.Mutex
	synced   map[string]bool
	watchers []*watcher.GlobWatcher
	inFlight int
	idle     chan struct{}
	closing  bool

	// apply performs the filesystem work for one event. Replaced in tests.
	apply func(event FileSyncEvent, dest string) error
}

// NewEngine creates an engine resolving relative paths against workDir.
func NewEngine(workDir string, logger logging.Logger) *Engine {
	idle := make(chan struct{})
	close(idle)

	return &Engine{
		workDir: workDir,
		logger:  logger.WithComponent("assets"),
		synced:  make(map[string]bool),
		idle:    idle,
		apply:   applyEvent,
	}
}

// Sync reads compilerOptions.assets for project and copies every match into
// outDir. Entries watch for changes when watchAssets is set, when the
// configuration enables compilerOptions.watchAssets, or when the entry
// itself asks for it. Watchers live until Shutdown.
func (e *Engine) Sync(ctx context.Context, cfg *config.Configuration, project, outDir string, watchAssets bool) error {
	raw := config.Resolve(cfg, "compilerOptions.assets", project)
	if list, ok := raw.([]any); raw == nil || (ok && len(list) == 0) {
		return nil
	}

	sourceRoot := e.abs(config.ResolveString(cfg, "sourceRoot", project,
		config.WithDefault(config.DefaultSourceRoot)))
	outDir = e.abs(outDir)

	entries, err := NormalizeEntries(raw, sourceRoot, outDir)
	if err != nil {
		return wrap(err)
	}

	watchAll := watchAssets || config.ResolveBool(cfg, "compilerOptions.watchAssets", project)
	depth := Depth(sourceRoot)

	e.mu.Lock()
	e.synced = make(map[string]bool)
	e.mu.Unlock()

	perf := logging.StartOperation(e.logger, "asset sync")

	for _, entry := range entries {
		entry.OutDir = e.abs(entry.OutDir)

		if watchAll || entry.Watch {
			if err := e.watch(ctx, entry, depth); err != nil {
				perf.EndWithError(ctx, err)
				return wrap(err)
			}
			continue
		}

		if err := e.copyOnce(entry, depth); err != nil {
			perf.EndWithError(ctx, err)
			return wrap(err)
		}
	}

	perf.End(ctx)
	return nil
}

func (e *Engine) copyOnce(entry Entry, depth int) error {
	matches, err := doublestar.FilepathGlob(entry.Glob, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("expand %s: %w", entry.Glob, err)
	}

	exclude := watcher.ExcludeFilter(entry.Exclude)
	for _, path := range matches {
		if !exclude(path) {
			continue
		}
		err := e.handle(FileSyncEvent{
			Action:          ActionUpsert,
			SourceRootDepth: depth,
			AbsolutePath:    path,
			OutDir:          entry.OutDir,
		}, false)
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) watch(ctx context.Context, entry Entry, depth int) error {
	handler := func(change watcher.ChangeEvent) {
		event := FileSyncEvent{
			Action:          ActionUpsert,
			SourceRootDepth: depth,
			AbsolutePath:    change.Path,
			OutDir:          entry.OutDir,
		}
		if change.Type == watcher.EventTypeDeleted || change.Type == watcher.EventTypeRenamed {
			event.Action = ActionRemove
		}
		if err := e.handle(event, true); err != nil {
			e.logger.Error(ctx, err, "Asset synchronization failed", "path", change.Path)
		}
	}

	w, err := watcher.NewGlobWatcher(entry.Glob, entry.Exclude, handler, e.logger)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.closing {
		e.mu.Unlock()
		return w.Close()
	}
	e.watchers = append(e.watchers, w)
	e.mu.Unlock()

	return w.Start(ctx)
}

// handle applies one event. Outside watch mode each destination is written
// at most once per Sync call.
func (e *Engine) handle(event FileSyncEvent, watchMode bool) error {
	dest, err := event.Destination()
	if err != nil {
		return clierrors.NewAssetError(clierrors.ErrCodePathOutOfRange, "cannot map asset to output directory", err).
			WithContext("path", event.AbsolutePath)
	}

	e.mu.Lock()
	if e.closing {
		e.mu.Unlock()
		return nil
	}
	if !watchMode {
		if e.synced[dest] {
			e.mu.Unlock()
			return nil
		}
		e.synced[dest] = true
	}
	if e.inFlight == 0 {
		e.idle = make(chan struct{})
	}
	e.inFlight++
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight--
		if e.inFlight == 0 {
			close(e.idle)
		}
		e.mu.Unlock()
	}()

	e.logger.Debug(context.Background(), "Synchronizing asset",
		"action", string(event.Action), "source", event.AbsolutePath, "destination", dest)

	return e.apply(event, dest)
}

// Shutdown stops accepting events, waits until no synchronization is in
// flight, and closes every watcher.
func (e *Engine) Shutdown() error {
	for {
		e.mu.Lock()
		e.closing = true
		if e.inFlight == 0 {
			watchers := e.watchers
			e.watchers = nil
			e.mu.Unlock()

			var errs []error
			for _, w := range watchers {
				if err := w.Close(); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		}
		idle := e.idle
		e.mu.Unlock()

		<-idle
	}
}

func (e *Engine) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(e.workDir, path)
}

func wrap(err error) error {
	var cliErr *clierrors.CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	return clierrors.NewAssetError(clierrors.ErrCodeAssetCopy,
		"an error occurred during the assets copying process", err)
}

func applyEvent(event FileSyncEvent, dest string) error {
	switch event.Action {
	case ActionRemove:
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	default:
		return copyFile(event.AbsolutePath, dest)
	}
}
