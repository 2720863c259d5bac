package writeback

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

// WriteFile replaces the contents of path with data. The write is atomic:
// data goes to a temp file in the same directory, which is then renamed over
// the original. The original file's permissions are kept where the
// filesystem supports it.
func WriteFile(fsys billy.Filesystem, path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := fsys.TempFile(dir, ".recast-write-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	// Preserve original file permissions
	if ch, ok := fsys.(billy.Change); ok {
		if info, err := fsys.Stat(path); err == nil {
			_ = ch.Chmod(tmpName, info.Mode()) // best-effort permission sync
		}
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}
