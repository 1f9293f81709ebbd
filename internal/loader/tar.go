package loader

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Compression is the compression wrapped around a report tarball
type Compression string

const (
	CompressionNone  Compression = "none"
	CompressionGzip  Compression = "gzip"
	CompressionBzip2 Compression = "bzip2"
	CompressionXZ    Compression = "xz"
)

// Tarball extensions, longest match first
var tarExtensions = []struct {
	ext         string
	compression Compression
}{
	{".tar.gz", CompressionGzip},
	{".tar.bz2", CompressionBzip2},
	{".tar.xz", CompressionXZ},
	{".tgz", CompressionGzip},
	{".tbz2", CompressionBzip2},
	{".txz", CompressionXZ},
	{".tar", CompressionNone},
}

// Files larger than this are left out of the in-memory index; no networking
// source comes anywhere near it.
const maxFileSize = 16 << 20

func compressionFor(name string) (Compression, bool) {
	lower := strings.ToLower(name)
	for _, t := range tarExtensions {
		if strings.HasSuffix(lower, t.ext) {
			return t.compression, true
		}
	}
	return "", false
}

// trimTarExtension strips the tarball extension from a file name
func trimTarExtension(name string) string {
	lower := strings.ToLower(name)
	for _, t := range tarExtensions {
		if strings.HasSuffix(lower, t.ext) {
			return name[:len(name)-len(t.ext)]
		}
	}
	return name
}

// TarArchive is a report tarball read into memory. The leading report directory
// (sosreport-<host>-<date>/) is stripped from every entry.
type TarArchive struct {
	name  string
	files map[string][]byte
}

// OpenTar reads the regular files of a tarball. WithPaths limits which
// entries are kept in memory.
func OpenTar(p string, compression Compression, opts ...Option) (archive *TarArchive, retErr error) {
	o := newOpenOptions(opts)

	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	switch compression {
	case CompressionGzip:
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer func() {
			if closeErr := gzReader.Close(); closeErr != nil && retErr == nil {
				retErr = fmt.Errorf("failed to close gzip reader: %w", closeErr)
			}
		}()
		reader = gzReader
	case CompressionBzip2:
		reader = bzip2.NewReader(file)
	case CompressionXZ:
		xzReader, err := xz.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open xz stream: %w", err)
		}
		reader = xzReader
	case CompressionNone:
	default:
		return nil, fmt.Errorf("%s: %w", compression, ErrUnsupportedArchive)
	}

	files, err := readTar(reader, o.keep)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}

	return &TarArchive{name: trimTarExtension(filepath.Base(p)), files: files}, nil
}

func readTar(r io.Reader, keep func(name string) bool) (map[string][]byte, error) {
	files := make(map[string][]byte)
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg || hdr.Size > maxFileSize {
			continue
		}

		name, ok := stripReportDir(hdr.Name)
		if !ok || !keep(name) {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		files[name] = data
	}
}

// stripReportDir drops the first path component when there is more than one
func stripReportDir(name string) (string, bool) {
	name = strings.TrimPrefix(name, "./")
	if _, rest, ok := strings.Cut(name, "/"); ok {
		name = rest
	}
	return cleanPath(name)
}

// Name returns the archive file name without its tar extensions
func (a *TarArchive) Name() string {
	return a.name
}

// ReadFile returns the lines of a file in the tarball
func (a *TarArchive) ReadFile(name string) ([]string, error) {
	clean, ok := cleanPath(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	data, ok := a.files[clean]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return splitLines(data), nil
}

// ReadDir returns every regular file directly below dir
func (a *TarArchive) ReadDir(dir string) (map[string][]string, error) {
	clean, ok := cleanPath(dir)
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
	}

	files := make(map[string][]string)
	found := false
	for name, data := range a.files {
		parent, base := path.Split(name)
		if !strings.HasPrefix(name, clean+"/") {
			continue
		}
		found = true
		if strings.TrimSuffix(parent, "/") == clean {
			files[base] = splitLines(data)
		}
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
	}
	return files, nil
}

// IsArchiveName reports whether a file name carries a supported tarball extension
func IsArchiveName(name string) bool {
	_, ok := compressionFor(name)
	return ok
}
