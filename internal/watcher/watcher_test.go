package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgairbot/cli/internal/logging"
)

type recorder struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (r *recorder) handle(e ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) has(typ EventType, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == typ && e.Path == path {
			return true
		}
	}
	return false
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestFilters(t *testing.T) {
	glob := GlobFilter(filepath.Join("/p", "src", "**", "*.txt"))
	assert.True(t, glob(filepath.Join("/p", "src", "a.txt")))
	assert.True(t, glob(filepath.Join("/p", "src", "deep", "er", "a.txt")))
	assert.False(t, glob(filepath.Join("/p", "src", "a.json")))

	exclude := ExcludeFilter(filepath.Join("/p", "src", "private", "**"))
	assert.False(t, exclude(filepath.Join("/p", "src", "private", "a.txt")))
	assert.True(t, exclude(filepath.Join("/p", "src", "public", "a.txt")))

	assert.True(t, ExcludeFilter("")("anything"))
}

func TestNewGlobWatcherRejectsBadPattern(t *testing.T) {
	_, err := NewGlobWatcher("/p/src/[", "", func(ChangeEvent) {}, logging.NewNop())
	assert.Error(t, err)
}

func TestGlobWatcherReportsExistingAndNewFiles(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src", "assets")
	require.NoError(t, os.MkdirAll(src, 0o755))

	existing := filepath.Join(src, "a.txt")
	require.NoError(t, os.WriteFile(existing, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "skip.json"), []byte("{}"), 0o644))

	rec := &recorder{}
	w, err := NewGlobWatcher(filepath.Join(root, "src", "**", "*.txt"), "", rec.handle, logging.NewNop())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	assert.True(t, rec.has(EventTypeCreated, existing))
	assert.Equal(t, 1, rec.count())

	nested := filepath.Join(src, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	created := filepath.Join(nested, "b.txt")
	require.NoError(t, os.WriteFile(created, []byte("b"), 0o644))

	assert.Eventually(t, func() bool { return rec.has(EventTypeCreated, created) },
		2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(existing))
	assert.Eventually(t, func() bool { return rec.has(EventTypeDeleted, existing) },
		2*time.Second, 20*time.Millisecond)
}

func TestGlobWatcherExclude(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "private"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "private", "secret.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "public.txt"), []byte("x"), 0o644))

	rec := &recorder{}
	w, err := NewGlobWatcher(filepath.Join(src, "**", "*.txt"), filepath.Join(src, "private", "**"), rec.handle, logging.NewNop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Start(context.Background()))

	assert.True(t, rec.has(EventTypeCreated, filepath.Join(src, "public.txt")))
	assert.False(t, rec.has(EventTypeCreated, filepath.Join(src, "private", "secret.txt")))
}

func TestGlobWatcherMissingBaseDirectory(t *testing.T) {
	root := t.TempDir()

	rec := &recorder{}
	w, err := NewGlobWatcher(filepath.Join(root, "src", "assets", "*.txt"), "", rec.handle, logging.NewNop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Start(context.Background()))
	assert.Equal(t, 0, rec.count())

	dir := filepath.Join(root, "src", "assets")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	// Give the watcher a chance to pick up the new directories before the
	// file appears; the initial scan of a new directory reports it anyway.
	time.Sleep(100 * time.Millisecond)
	file := filepath.Join(dir, "late.txt")
	require.NoError(t, os.WriteFile(file, []byte("late"), 0o644))

	assert.Eventually(t, func() bool { return rec.has(EventTypeCreated, file) },
		2*time.Second, 20*time.Millisecond)
}

func TestGlobWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewGlobWatcher(filepath.Join(t.TempDir(), "*.txt"), "", func(ChangeEvent) {}, logging.NewNop())
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
