package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	clierrors "github.com/tgairbot/cli/internal/errors"
)

// DefaultFileNames are searched, in order, when no configuration file is
// named explicitly.
var DefaultFileNames = []string{
	"tgairbot-cli.json",
	".tgairbot-cli.json",
	"tgairbot-cli.yaml",
	".tgairbot-cli.yaml",
}

// Reader abstracts where configuration files come from.
type Reader interface {
	// ID identifies the reader in cache keys.
	ID() string
	Read(name string) ([]byte, error)
	// ReadAnyOf returns the first readable file among names. It returns
	// fs.ErrNotExist when none exists.
	ReadAnyOf(names []string) (string, []byte, error)
}

// FileSystemReader reads files relative to Dir.
type FileSystemReader struct {
	Dir string
}

// NewFileSystemReader creates a reader rooted at dir.
func NewFileSystemReader(dir string) *FileSystemReader {
	return &FileSystemReader{Dir: dir}
}

// ID implements Reader.
func (r *FileSystemReader) ID() string {
	return "fs:" + r.Dir
}

// Read implements Reader.
func (r *FileSystemReader) Read(name string) ([]byte, error) {
	return os.ReadFile(r.path(name))
}

// ReadAnyOf implements Reader.
func (r *FileSystemReader) ReadAnyOf(names []string) (string, []byte, error) {
	for _, name := range names {
		data, err := os.ReadFile(r.path(name))
		if err == nil {
			return name, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return name, nil, err
		}
	}
	return "", nil, fs.ErrNotExist
}

func (r *FileSystemReader) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.Dir, name)
}

// Cache holds loaded configurations for the lifetime of one CLI invocation.
type Cache struct {
	entries *lru.Cache[string, *Configuration]
}

// NewCache creates a cache holding at most size configurations.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, *Configuration](size)
	if err != nil {
		return nil, fmt.Errorf("creating configuration cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Len returns the number of cached configurations.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Loader reads and merges the project configuration file.
type Loader struct {
	reader Reader
	cache  *Cache
}

// NewLoader creates a loader. A nil cache disables caching.
func NewLoader(reader Reader, cache *Cache) *Loader {
	return &Loader{reader: reader, cache: cache}
}

// Load reads the named configuration file, or the first of
// DefaultFileNames when name is empty. A missing default file yields the
// compiled-in defaults; a missing explicitly named file is an error.
func (l *Loader) Load(name string) (*Configuration, error) {
	key := l.reader.ID() + ":" + name
	if l.cache != nil {
		if cfg, ok := l.cache.entries.Get(key); ok {
			return cfg, nil
		}
	}

	var (
		source string
		data   []byte
		err    error
	)

	if name != "" {
		source = name
		data, err = l.reader.Read(name)
		if err != nil {
			return nil, clierrors.NewConfigError(clierrors.ErrCodeConfigRead,
				fmt.Sprintf("cannot read configuration file %s", name), err)
		}
	} else {
		source, data, err = l.reader.ReadAnyOf(DefaultFileNames)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, clierrors.NewConfigError(clierrors.ErrCodeConfigRead,
				fmt.Sprintf("cannot read configuration file %s", source), err)
		}
	}

	var cfg *Configuration
	if len(data) == 0 && err != nil {
		cfg = Default()
	} else {
		fileTree, perr := parse(source, data)
		if perr != nil {
			return nil, clierrors.NewConfigError(clierrors.ErrCodeConfigInvalid,
				fmt.Sprintf("invalid configuration file %s", source), perr)
		}
		cfg, perr = FromMap(fileTree)
		if perr != nil {
			return nil, clierrors.NewConfigError(clierrors.ErrCodeConfigInvalid,
				fmt.Sprintf("invalid configuration file %s", source), perr)
		}
		cfg.source = source
	}

	if l.cache != nil {
		l.cache.entries.Add(key, cfg)
	}

	return cfg, nil
}

func parse(name string, data []byte) (map[string]any, error) {
	tree := map[string]any{}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &tree); err != nil {
			return nil, err
		}
	}

	return tree, nil
}
