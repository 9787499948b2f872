package build

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgairbot/cli/internal/config"
	clierrors "github.com/tgairbot/cli/internal/errors"
)

func mustConfig(t *testing.T, tree map[string]any) *config.Configuration {
	t.Helper()
	cfg, err := config.FromMap(tree)
	require.NoError(t, err)
	return cfg
}

func TestResolveBuilder(t *testing.T) {
	tests := []struct {
		name      string
		tree      map[string]any
		inputs    config.Inputs
		expected  string
		options   map[string]any
		expectErr bool
	}{
		{
			name:     "defaults to tsc",
			tree:     map[string]any{},
			expected: BackendTsc,
		},
		{
			name:     "legacy webpack toggle",
			tree:     map[string]any{"compilerOptions": map[string]any{"webpack": true}},
			expected: BackendWebpack,
		},
		{
			name:     "builder string",
			tree:     map[string]any{"compilerOptions": map[string]any{"builder": "webpack"}},
			expected: BackendWebpack,
		},
		{
			name: "builder object",
			tree: map[string]any{"compilerOptions": map[string]any{
				"builder": map[string]any{"type": "tsc", "options": map[string]any{"configPath": "tsconfig.app.json"}},
			}},
			expected: BackendTsc,
			options:  map[string]any{"configPath": "tsconfig.app.json"},
		},
		{
			name:     "tsc flag beats webpack config",
			tree:     map[string]any{"compilerOptions": map[string]any{"webpack": true}},
			inputs:   config.Inputs{{Name: "tsc", Value: true}},
			expected: BackendTsc,
		},
		{
			name:     "builder input beats everything",
			tree:     map[string]any{"compilerOptions": map[string]any{"builder": "tsc"}},
			inputs:   config.Inputs{{Name: "builder", Value: "webpack"}, {Name: "tsc", Value: true}},
			expected: BackendWebpack,
		},
		{
			name:     "legacy webpack toggle beats configured builder",
			tree:     map[string]any{"compilerOptions": map[string]any{"builder": "tsc", "webpack": true}},
			expected: BackendWebpack,
		},
		{
			name:     "webpack flag beats builder flag",
			tree:     map[string]any{},
			inputs:   config.Inputs{{Name: "builder", Value: "tsc"}, {Name: "webpack", Value: true}},
			expected: BackendWebpack,
		},
		{
			name:     "webpack flag beats configured builder",
			tree:     map[string]any{"compilerOptions": map[string]any{"builder": "tsc"}},
			inputs:   config.Inputs{{Name: "webpack", Value: true}},
			expected: BackendWebpack,
		},
		{
			name:     "tsc flag beats webpack flag",
			tree:     map[string]any{},
			inputs:   config.Inputs{{Name: "webpack", Value: true}, {Name: "tsc", Value: true}},
			expected: BackendTsc,
		},
		{
			name:     "tsc flag beats configured webpack builder",
			tree:     map[string]any{"compilerOptions": map[string]any{"builder": "webpack"}},
			inputs:   config.Inputs{{Name: "tsc", Value: true}},
			expected: BackendTsc,
		},
		{
			name: "builder flag drops options of another configured type",
			tree: map[string]any{"compilerOptions": map[string]any{
				"builder": map[string]any{"type": "tsc", "options": map[string]any{"configPath": "tsconfig.app.json"}},
			}},
			inputs:   config.Inputs{{Name: "builder", Value: "webpack"}},
			expected: BackendWebpack,
		},
		{
			name:      "unknown builder",
			tree:      map[string]any{"compilerOptions": map[string]any{"builder": "swc"}},
			expectErr: true,
		},
		{
			name:      "builder object without type",
			tree:      map[string]any{"compilerOptions": map[string]any{"builder": map[string]any{}}},
			expectErr: true,
		},
		{
			name:      "builder of wrong type",
			tree:      map[string]any{"compilerOptions": map[string]any{"builder": 3.0}},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ResolveBuilder(mustConfig(t, tt.tree), "", tt.inputs)
			if tt.expectErr {
				require.Error(t, err)
				assert.True(t, clierrors.IsType(err, clierrors.ErrorTypeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, b.Type)
			assert.Equal(t, tt.options, b.Options)
		})
	}
}

func TestResolveBuilderLeavesInputsUntouched(t *testing.T) {
	inputs := config.Inputs{{Name: "webpack", Value: true}, {Name: "tsc", Value: true}}

	_, err := ResolveBuilder(config.Default(), "", inputs)
	require.NoError(t, err)

	assert.Equal(t, true, inputs.Value("webpack"))
}

func TestTsConfigPath(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	tsc := Builder{Type: BackendTsc}

	assert.Equal(t, config.FallbackTsConfigPath, TsConfigPath(cfg, "", nil, tsc, dir))

	writeFile(t, filepath.Join(dir, config.DefaultTsConfigPath), "{}")
	assert.Equal(t, config.DefaultTsConfigPath, TsConfigPath(cfg, "", nil, tsc, dir))

	withOptions := Builder{Type: BackendTsc, Options: map[string]any{"configPath": "tsconfig.app.json"}}
	assert.Equal(t, "tsconfig.app.json", TsConfigPath(cfg, "", nil, withOptions, dir))

	inputs := config.Inputs{{Name: "path", Value: "custom.json"}}
	assert.Equal(t, "custom.json", TsConfigPath(cfg, "", inputs, withOptions, dir))
}

func TestBundlerConfigPath(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	webpack := Builder{Type: BackendWebpack}

	path, err := BundlerConfigPath(cfg, "", nil, webpack, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	writeFile(t, filepath.Join(dir, config.DefaultBundlerConfigFilename), "module.exports = {}")
	path, err = BundlerConfigPath(cfg, "", nil, webpack, dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBundlerConfigFilename, path)

	_, err = BundlerConfigPath(cfg, "", config.Inputs{{Name: "webpackPath", Value: "missing.js"}}, webpack, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, clierrors.NewConfigError(clierrors.ErrCodeBundlerConfig, "", nil))

	writeFile(t, filepath.Join(dir, "webpack.prod.js"), "module.exports = {}")
	withOptions := Builder{Type: BackendWebpack, Options: map[string]any{"configPath": "webpack.prod.js"}}
	path, err = BundlerConfigPath(cfg, "", nil, withOptions, dir)
	require.NoError(t, err)
	assert.Equal(t, "webpack.prod.js", path)
}

func TestOutDir(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "plain.json"), `{"compilerOptions": {"outDir": "./out"}}`)
	writeFile(t, filepath.Join(dir, "none.json"), `{"compilerOptions": {}}`)
	writeFile(t, filepath.Join(dir, "configs", "base.json"), `{"compilerOptions": {"outDir": "../build"}}`)
	writeFile(t, filepath.Join(dir, "child.json"), `{"extends": "./configs/base"}`)
	writeFile(t, filepath.Join(dir, "broken.json"), `{"compilerOptions": `)

	tests := []struct {
		file      string
		expected  string
		expectErr bool
	}{
		{file: "plain.json", expected: "out"},
		{file: "none.json", expected: config.DefaultOutDir},
		{file: "child.json", expected: "build"},
		{file: "broken.json", expectErr: true},
		{file: "missing.json", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := OutDir(dir, tt.file)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
