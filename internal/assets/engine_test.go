package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgairbot/cli/internal/config"
	clierrors "github.com/tgairbot/cli/internal/errors"
	"github.com/tgairbot/cli/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func assetConfig(t *testing.T, assets ...any) *config.Configuration {
	t.Helper()
	cfg, err := config.FromMap(map[string]any{
		"sourceRoot":      "src",
		"compilerOptions": map[string]any{"assets": assets},
	})
	require.NoError(t, err)
	return cfg
}

type countingApply struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingApply) apply(_ FileSyncEvent, dest string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[dest]++
	return nil
}

func TestDestinationPath(t *testing.T) {
	sep := string(filepath.Separator)
	file := sep + filepath.Join("home", "app", "src", "assets", "a.txt")

	tests := []struct {
		name      string
		depth     int
		expected  string
		expectErr bool
	}{
		{
			name:     "strips root segments",
			depth:    3,
			expected: filepath.Join("out", "assets", "a.txt"),
		},
		{
			name:     "keeps last segment",
			depth:    4,
			expected: filepath.Join("out", "a.txt"),
		},
		{
			name:     "zero depth keeps path",
			depth:    0,
			expected: filepath.Join("out", file),
		},
		{
			name:      "equal depth is out of range",
			depth:     5,
			expectErr: true,
		},
		{
			name:      "deeper root is out of range",
			depth:     7,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DestinationPath(file, "out", tt.depth)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrPathOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDepth(t *testing.T) {
	sep := string(filepath.Separator)
	assert.Equal(t, 3, Depth(sep+filepath.Join("a", "b", "c")))
	assert.Equal(t, 3, Depth(sep+filepath.Join("a", "b", "c")+sep))
	assert.Equal(t, 1, Depth("a"))
}

func TestNormalizeEntries(t *testing.T) {
	root := filepath.Join("/p", "src")

	entries, err := NormalizeEntries([]any{
		"**/*.txt",
		map[string]any{
			"include":     "i18n/**/*",
			"outDir":      "dist/i18n",
			"exclude":     "i18n/draft/**",
			"watchAssets": true,
		},
	}, root, "dist")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{Glob: filepath.Join(root, "**/*.txt"), OutDir: "dist"}, entries[0])
	assert.Equal(t, Entry{
		Glob:    filepath.Join(root, "i18n/**/*"),
		OutDir:  "dist/i18n",
		Exclude: filepath.Join(root, "i18n/draft/**"),
		Watch:   true,
	}, entries[1])

	_, err = NormalizeEntries([]any{map[string]any{"outDir": "x"}}, root, "dist")
	assert.Error(t, err)

	_, err = NormalizeEntries([]any{42.0}, root, "dist")
	assert.Error(t, err)

	_, err = NormalizeEntries("nope", root, "dist")
	assert.Error(t, err)

	entries, err = NormalizeEntries(nil, root, "dist")
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSyncWithoutAssetsIsNoop(t *testing.T) {
	root := t.TempDir()
	counter := &countingApply{}
	engine := NewEngine(root, logging.NewNop())
	engine.apply = counter.apply

	require.NoError(t, engine.Sync(context.Background(), config.Default(), "", "dist", false))
	assert.Empty(t, counter.calls)
	assert.NoError(t, engine.Shutdown())
}

func TestSyncDeduplicatesOverlappingGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "assets", "a.txt"), "a")
	writeFile(t, filepath.Join(root, "src", "assets", "b.txt"), "b")

	counter := &countingApply{}
	engine := NewEngine(root, logging.NewNop())
	engine.apply = counter.apply

	cfg := assetConfig(t, "assets/**/*.txt", "**/*.txt")
	require.NoError(t, engine.Sync(context.Background(), cfg, "", "dist", false))

	assert.Equal(t, map[string]int{
		filepath.Join(root, "dist", "assets", "a.txt"): 1,
		filepath.Join(root, "dist", "assets", "b.txt"): 1,
	}, counter.calls)
}

func TestSyncHonorsExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "assets", "keep.txt"), "k")
	writeFile(t, filepath.Join(root, "src", "assets", "draft", "skip.txt"), "s")

	counter := &countingApply{}
	engine := NewEngine(root, logging.NewNop())
	engine.apply = counter.apply

	cfg := assetConfig(t, map[string]any{
		"include": "assets/**/*.txt",
		"exclude": "assets/draft/**",
	})
	require.NoError(t, engine.Sync(context.Background(), cfg, "", "dist", false))

	assert.Equal(t, map[string]int{
		filepath.Join(root, "dist", "assets", "keep.txt"): 1,
	}, counter.calls)
}

func TestSyncIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "assets", "a.txt"), "hello")
	cfg := assetConfig(t, "assets/**/*.txt")
	dest := filepath.Join(root, "dist", "assets", "a.txt")

	engine := NewEngine(root, logging.NewNop())
	require.NoError(t, engine.Sync(context.Background(), cfg, "", "dist", false))

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	first, err := os.Stat(dest)
	require.NoError(t, err)

	engine = NewEngine(root, logging.NewNop())
	require.NoError(t, engine.Sync(context.Background(), cfg, "", "dist", false))

	second, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime())
	assert.Equal(t, first.Size(), second.Size())
}

func TestSyncProjectOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "apps", "bot", "views", "a.hbs"), "x")

	cfg, err := config.FromMap(map[string]any{
		"sourceRoot": "src",
		"projects": map[string]any{
			"bot.v2": map[string]any{
				"sourceRoot":      "apps/bot",
				"compilerOptions": map[string]any{"assets": []any{"views/*.hbs"}},
			},
		},
	})
	require.NoError(t, err)

	counter := &countingApply{}
	engine := NewEngine(root, logging.NewNop())
	engine.apply = counter.apply

	require.NoError(t, engine.Sync(context.Background(), cfg, "bot.v2", "dist", false))
	assert.Equal(t, map[string]int{
		filepath.Join(root, "dist", "views", "a.hbs"): 1,
	}, counter.calls)
}

func TestSyncOutOfRange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "outside.txt"), "x")

	engine := NewEngine(root, logging.NewNop())
	err := engine.Sync(context.Background(), assetConfig(t, "../*.txt"), "", "dist", false)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathOutOfRange)
	assert.True(t, clierrors.IsType(err, clierrors.ErrorTypeAsset))
}

func TestSyncWrapsCopyFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "a.txt"), "x")

	engine := NewEngine(root, logging.NewNop())
	engine.apply = func(FileSyncEvent, string) error { return errors.New("disk full") }

	err := engine.Sync(context.Background(), assetConfig(t, "*.txt"), "", "dist", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assets copying process")
	assert.Contains(t, err.Error(), "disk full")
}

func TestSyncWatchMode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "assets", "a.txt"), "a")

	engine := NewEngine(root, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, engine.Sync(ctx, assetConfig(t, "assets/**/*.txt"), "", "dist", true))

	existing := filepath.Join(root, "dist", "assets", "a.txt")
	assert.FileExists(t, existing)

	writeFile(t, filepath.Join(root, "src", "assets", "b.txt"), "b")
	created := filepath.Join(root, "dist", "assets", "b.txt")
	assert.Eventually(t, func() bool {
		content, err := os.ReadFile(created)
		return err == nil && string(content) == "b"
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(root, "src", "assets", "a.txt")))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(existing)
		return os.IsNotExist(err)
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, engine.Shutdown())
}

func TestShutdownWaitsForInFlightCopy(t *testing.T) {
	root := t.TempDir()
	engine := NewEngine(root, logging.NewNop())

	started := make(chan struct{})
	release := make(chan struct{})
	engine.apply = func(FileSyncEvent, string) error {
		close(started)
		<-release
		return nil
	}

	handled := make(chan error, 1)
	go func() {
		handled <- engine.handle(FileSyncEvent{
			Action:          ActionUpsert,
			SourceRootDepth: 1,
			AbsolutePath:    filepath.Join(root, "src", "a.txt"),
			OutDir:          filepath.Join(root, "dist"),
		}, true)
	}()
	<-started

	done := make(chan error, 1)
	go func() { done <- engine.Shutdown() }()

	select {
	case <-done:
		t.Fatal("shutdown returned while a copy was in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return after the copy finished")
	}
	assert.NoError(t, <-handled)

	// Events after shutdown are dropped.
	engine.apply = func(FileSyncEvent, string) error {
		t.Error("apply called after shutdown")
		return nil
	}
	assert.NoError(t, engine.handle(FileSyncEvent{
		Action:          ActionUpsert,
		SourceRootDepth: 1,
		AbsolutePath:    filepath.Join(root, "src", "b.txt"),
		OutDir:          filepath.Join(root, "dist"),
	}, true))
}

func TestCopyFilePreservesModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "nested", "dst.txt")
	writeFile(t, src, "payload")

	mtime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	require.NoError(t, copyFile(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}
