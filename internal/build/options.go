package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/tgairbot/cli/internal/config"
	clierrors "github.com/tgairbot/cli/internal/errors"
)

// Builder is the resolved compilerOptions.builder setting.
type Builder struct {
	Type    string
	Options map[string]any
}

// ResolveBuilder picks the backend. The deprecated webpack toggle
// (--webpack or compilerOptions.webpack) forces the bundler unless --tsc is
// given. Otherwise --builder names the backend, --tsc selects the compiler,
// and the configured builder, either a name or {type, options}, is used,
// then tsc.
func ResolveBuilder(cfg *config.Configuration, project string, inputs config.Inputs) (Builder, error) {
	var b Builder

	configured := config.Resolve(cfg, "compilerOptions.builder", project)
	switch v := configured.(type) {
	case nil:
	case string:
		b.Type = v
	case map[string]any:
		b.Type, _ = v["type"].(string)
		if b.Type == "" {
			return Builder{}, clierrors.NewConfigError(clierrors.ErrCodeUnknownBuilder,
				"compilerOptions.builder.type is required", nil)
		}
		b.Options, _ = v["options"].(map[string]any)
	default:
		return Builder{}, clierrors.NewConfigError(clierrors.ErrCodeUnknownBuilder,
			fmt.Sprintf("compilerOptions.builder must be a string or an object, got %T", v), nil)
	}

	tsc := inputs.Bool("tsc")
	if tsc {
		inputs = append(config.Inputs(nil), inputs...).Set("webpack", false)
	}

	switch {
	case config.ResolveBool(cfg, "compilerOptions.webpack", project, config.WithOverride("webpack", inputs)):
		if b.Type != BackendWebpack {
			b.Options = nil
		}
		b.Type = BackendWebpack
	case inputs.String("builder") != "":
		if t := inputs.String("builder"); t != b.Type {
			b.Options = nil
			b.Type = t
		}
	case tsc:
		if b.Type != BackendTsc {
			b.Options = nil
		}
		b.Type = BackendTsc
	case b.Type == "":
		b.Type = BackendTsc
	}

	switch b.Type {
	case BackendTsc, BackendWebpack:
		return b, nil
	default:
		return Builder{}, clierrors.NewConfigError(clierrors.ErrCodeUnknownBuilder,
			fmt.Sprintf("unknown builder %q, expected %q or %q", b.Type, BackendTsc, BackendWebpack), nil)
	}
}

// TsConfigPath returns the tsconfig to compile with: the "path" input, the
// builder's options.configPath, compilerOptions.tsConfigPath, and finally
// tsconfig.json when the default tsconfig.build.json is absent.
func TsConfigPath(cfg *config.Configuration, project string, inputs config.Inputs, builder Builder, workDir string) string {
	if p := inputs.String("path"); p != "" {
		return p
	}
	if builder.Type == BackendTsc {
		if p, _ := builder.Options["configPath"].(string); p != "" {
			return p
		}
	}

	p := config.ResolveString(cfg, "compilerOptions.tsConfigPath", project,
		config.WithDefault(config.DefaultTsConfigPath))
	if p == config.DefaultTsConfigPath && !exists(filepath.Join(workDir, p)) {
		return config.FallbackTsConfigPath
	}
	return p
}

// BundlerConfigPath returns the webpack configuration file. A missing
// explicit file is an error; a missing default file yields "".
func BundlerConfigPath(cfg *config.Configuration, project string, inputs config.Inputs, builder Builder, workDir string) (string, error) {
	path := inputs.String("webpackPath")
	if path == "" {
		path = config.ResolveString(cfg, "compilerOptions.webpackConfigPath", project)
	}
	if path == "" && builder.Type == BackendWebpack {
		path, _ = builder.Options["configPath"].(string)
	}

	if path == "" {
		if exists(filepath.Join(workDir, config.DefaultBundlerConfigFilename)) {
			return config.DefaultBundlerConfigFilename, nil
		}
		return "", nil
	}

	if !exists(abs(workDir, path)) {
		return "", clierrors.NewConfigError(clierrors.ErrCodeBundlerConfig,
			fmt.Sprintf("webpack configuration file %s does not exist", path), nil)
	}
	return path, nil
}

type tsConfig struct {
	Extends         string `json:"extends"`
	CompilerOptions struct {
		OutDir string `json:"outDir"`
	} `json:"compilerOptions"`
}

// OutDir reads compilerOptions.outDir from the tsconfig, following one
// level of "extends". The result is relative to workDir; it defaults to
// "dist".
func OutDir(workDir, tsConfigPath string) (string, error) {
	path := abs(workDir, tsConfigPath)

	tc, err := readTsConfig(path)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(tsConfigPath)
	outDir := tc.CompilerOptions.OutDir

	if outDir == "" && tc.Extends != "" && isRelative(tc.Extends) {
		parentPath := filepath.Join(filepath.Dir(path), tc.Extends)
		if filepath.Ext(parentPath) != ".json" {
			parentPath += ".json"
		}
		if parent, err := readTsConfig(parentPath); err == nil && parent.CompilerOptions.OutDir != "" {
			dir = filepath.Join(dir, filepath.Dir(tc.Extends))
			outDir = parent.CompilerOptions.OutDir
		}
	}

	if outDir == "" {
		return config.DefaultOutDir, nil
	}
	if filepath.IsAbs(outDir) {
		return filepath.Clean(outDir), nil
	}
	return filepath.Join(dir, outDir), nil
}

func readTsConfig(path string) (*tsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, clierrors.NewConfigError(clierrors.ErrCodeConfigRead,
			fmt.Sprintf("could not find TypeScript configuration file %s", path), err)
	}

	var tc tsConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &tc); err != nil {
		return nil, clierrors.NewConfigError(clierrors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid TypeScript configuration file %s", path), err)
	}
	return &tc, nil
}

func isRelative(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func abs(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}
