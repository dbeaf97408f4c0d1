package fs

import (
	"os"
	"path/filepath"
)

// TempPattern is the name pattern of in-flight temp files.
const TempPattern = ".microflame-tmp-*"

// WriteFileAtomic writes data to path atomically using a temp file + rename.
// The temp file is created in the same directory as path so the rename stays
// on one filesystem. If any step fails, the original file (if any) is left
// unchanged and the temp file is removed.
func WriteFileAtomic(fsys FS, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpPath, w, err := fsys.CreateTemp(dir, TempPattern)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if !success {
			fsys.Remove(tmpPath)
		}
	}()

	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}

	// Flush to disk before the rename makes the content visible.
	if s, ok := w.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			w.Close()
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	if err := fsys.Chmod(tmpPath, perm); err != nil {
		return err
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}

// ReplaceFile atomically rewrites an existing file, keeping its permissions.
// Missing files are created with mode 0644.
func ReplaceFile(fsys FS, path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := fsys.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return WriteFileAtomic(fsys, path, data, perm)
}
