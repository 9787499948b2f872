package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathOutOfRange is returned when a matched file does not lie deep
// enough below the source root to be re-rooted under the output directory.
var ErrPathOutOfRange = errors.New("path is not below the source root")

// Depth returns the number of non-empty segments of path.
func Depth(path string) int {
	return len(segments(path))
}

func segments(path string) []string {
	parts := strings.Split(filepath.Clean(path), string(filepath.Separator))
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DestinationPath strips the leading rootDepth segments from path and joins
// what remains under outDir. A rootDepth of zero keeps the whole path.
func DestinationPath(path, outDir string, rootDepth int) (string, error) {
	if rootDepth == 0 {
		return filepath.Join(outDir, path), nil
	}

	segs := segments(path)
	if len(segs)-rootDepth < 1 {
		return "", fmt.Errorf("%w: %s has depth %d, source root has depth %d",
			ErrPathOutOfRange, path, len(segs), rootDepth)
	}

	return filepath.Join(append([]string{outDir}, segs[rootDepth:]...)...), nil
}
