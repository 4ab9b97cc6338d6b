package utils

import (
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies a file from src to dst, creating the destination
// directory if needed. The copy is whole-file: the destination is fully
// written and synced or the error is returned.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	return dstFile.Sync()
}

// CopyGlob copies every file in srcDir matching pattern into dstDir,
// returning the destination paths. Zero matches is not an error: packaging
// tools vary in exactly what they emit.
func CopyGlob(srcDir, pattern, dstDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(srcDir, pattern))
	if err != nil {
		return nil, err
	}

	var copied []string
	for _, src := range matches {
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			continue
		}
		dst := filepath.Join(dstDir, filepath.Base(src))
		if err := CopyFile(src, dst); err != nil {
			return copied, err
		}
		copied = append(copied, dst)
	}
	return copied, nil
}

// WriteFile writes data to a file, creating directories as needed
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists reports whether a path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
