package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/tgairbot/cli/internal/assets"
	"github.com/tgairbot/cli/internal/build"
	"github.com/tgairbot/cli/internal/config"
	"github.com/tgairbot/cli/internal/logging"
)

// configCacheSize bounds the configurations one invocation keeps parsed.
const configCacheSize = 16

func newLogger() (logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: viper.GetString("log-format"),
		Output: os.Stderr,
	}), nil
}

// signalContext is cancelled on SIGINT or SIGTERM. Cancelling it is what
// stops watchers and kills the supervised application.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func workingDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return dir, nil
}

func newLoader(workDir string) (*config.Loader, error) {
	cache, err := config.NewCache(configCacheSize)
	if err != nil {
		return nil, err
	}
	return config.NewLoader(config.NewFileSystemReader(workDir), cache), nil
}

func newOrchestrator(workDir string, logger logging.Logger, opts ...build.Option) (*build.Orchestrator, error) {
	loader, err := newLoader(workDir)
	if err != nil {
		return nil, err
	}
	engine := assets.NewEngine(workDir, logger)
	return build.NewOrchestrator(workDir, loader, engine, logger, opts...), nil
}

// positional returns args[i] or "".
func positional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
