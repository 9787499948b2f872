package assets

import (
	"fmt"
	"path/filepath"
)

// Entry is one normalized asset declaration: every file matched by Glob,
// minus those matched by Exclude, is mirrored under OutDir.
type Entry struct {
	Glob    string
	OutDir  string
	Exclude string
	Watch   bool
}

// NormalizeEntries turns the raw "compilerOptions.assets" value into
// entries anchored at sourceRoot. Items are either a bare glob string or an
// object with "include", and optionally "outDir", "exclude" and
// "watchAssets".
func NormalizeEntries(raw any, sourceRoot, outDir string) ([]Entry, error) {
	if raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("compilerOptions.assets must be a list, got %T", raw)
	}

	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			entries = append(entries, Entry{
				Glob:   filepath.Join(sourceRoot, v),
				OutDir: outDir,
			})

		case map[string]any:
			include, _ := v["include"].(string)
			if include == "" {
				return nil, fmt.Errorf("asset #%d: \"include\" is required", i)
			}
			entry := Entry{
				Glob:   filepath.Join(sourceRoot, include),
				OutDir: outDir,
			}
			if dir, _ := v["outDir"].(string); dir != "" {
				entry.OutDir = dir
			}
			if exclude, _ := v["exclude"].(string); exclude != "" {
				entry.Exclude = filepath.Join(sourceRoot, exclude)
			}
			entry.Watch, _ = v["watchAssets"].(bool)
			entries = append(entries, entry)

		default:
			return nil, fmt.Errorf("asset #%d: unsupported type %T", i, item)
		}
	}

	return entries, nil
}
