package assets

import (
	"io"
	"os"
	"path/filepath"
)

// copyFile copies src to dst, creating parent directories and carrying the
// source modification time over. A destination with the same size and
// modification time is left untouched.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if existing, err := os.Stat(dst); err == nil &&
		existing.Size() == info.Size() && existing.ModTime().Equal(info.ModTime()) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
