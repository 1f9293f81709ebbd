package loader

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when a file or directory is not part of the report
	ErrNotFound = errors.New("not found in report")
	// ErrUnsupportedArchive is returned by Open for files that are not a known tar format
	ErrUnsupportedArchive = errors.New("unsupported archive type")
)

// Archive gives read access to the files of one collected report.
// Paths are slash separated and relative to the report root, e.g. "etc/hosts".
type Archive interface {
	// Name identifies the report, usually its directory or archive file name
	Name() string
	// ReadFile returns the lines of a file
	ReadFile(name string) ([]string, error)
	// ReadDir returns the lines of every regular file directly below dir, keyed by base name
	ReadDir(dir string) (map[string][]string, error)
}

// Option configures how a report is opened
type Option func(*openOptions)

type openOptions struct {
	paths []string
}

// WithPaths keeps only the tarball entries at or below one of paths, which are
// relative to the report root. Directory reports read lazily and ignore it.
func WithPaths(paths ...string) Option {
	return func(o *openOptions) {
		for _, p := range paths {
			if clean, ok := cleanPath(p); ok {
				o.paths = append(o.paths, clean)
			}
		}
	}
}

func newOpenOptions(opts []Option) *openOptions {
	o := &openOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// keep reports whether a report relative path is wanted
func (o *openOptions) keep(name string) bool {
	if len(o.paths) == 0 {
		return true
	}
	for _, p := range o.paths {
		if name == p || strings.HasPrefix(name, p+"/") {
			return true
		}
	}
	return false
}

// Open returns the Archive for an extracted report directory or a report tarball
func Open(p string, opts ...Option) (Archive, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	if info.IsDir() {
		return NewDirArchive(p), nil
	}

	compression, ok := compressionFor(p)
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrUnsupportedArchive)
	}
	return OpenTar(p, compression, opts...)
}

// cleanPath normalizes a report relative path. Paths escaping the root are rejected.
func cleanPath(name string) (string, bool) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if name == "." || name == ".." || strings.HasPrefix(name, "../") {
		return "", false
	}
	return name, true
}

// splitLines splits file content into lines without their terminators
func splitLines(data []byte) []string {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
