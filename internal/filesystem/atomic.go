package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile truncates and writes data to target in place. Concurrent writers
// to the same target are not coordinated; the last one to finish wins and a
// reader may observe a partially written file.
func WriteFile(target string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(target, data, perm); err != nil { //nolint:gosec // G306: perm is chosen by the caller
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to a uniquely named temp file next to target,
// syncs it, and renames it over target. Readers see either the old or the new
// content. Concurrent writers to the same target still race and the last
// rename wins.
func WriteFileAtomic(target string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp to target: %w", err)
	}
	return nil
}

// IsTempName reports whether name looks like a temp file left by
// WriteFileAtomic.
func IsTempName(name string) bool {
	base := filepath.Base(name)
	return len(base) > 0 && base[0] == '.' && filepath.Ext(base) == ".tmp"
}
