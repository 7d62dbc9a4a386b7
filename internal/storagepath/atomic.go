package storagepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename, so concurrent readers never observe a
// partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}

// ReplaceFileAtomic moves src over dst with the same no-partial-file
// guarantee. src and dst must live on the same filesystem.
func ReplaceFileAtomic(src, dst string) error {
	// Rename within the destination directory keeps the swap atomic; a
	// cross-directory rename still is on POSIX as long as the mount matches.
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("replace %s with %s: %w", dst, src, err)
	}
	return nil
}
