package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirArchive reads an already extracted report directory
type DirArchive struct {
	root string
}

// NewDirArchive creates an archive rooted at dir
func NewDirArchive(dir string) *DirArchive {
	return &DirArchive{root: dir}
}

// Name returns the base name of the report directory
func (a *DirArchive) Name() string {
	return filepath.Base(a.root)
}

// ReadFile returns the lines of a file below the report root
func (a *DirArchive) ReadFile(name string) ([]string, error) {
	clean, ok := cleanPath(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	data, err := os.ReadFile(filepath.Join(a.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return splitLines(data), nil
}

// ReadDir returns every regular file directly below dir. Unreadable files are skipped.
func (a *DirArchive) ReadDir(dir string) (map[string][]string, error) {
	clean, ok := cleanPath(dir)
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
	}

	full := filepath.Join(a.root, filepath.FromSlash(clean))
	entries, err := os.ReadDir(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	files := make(map[string][]string)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(full, entry.Name()))
		if err != nil {
			continue
		}
		files[entry.Name()] = splitLines(data)
	}
	return files, nil
}
