package codec

import (
	"errors"
	"fmt"
	"io"

	"sxnet/internal/domain"
)

// ErrUnknownFormat is returned by ForFormat for unsupported format names
var ErrUnknownFormat = errors.New("unknown export format")

// Importer interface for reading exported topology graphs
type Importer interface {
	Parse(r io.Reader) (*domain.GraphFragment, error)
	Format() string
}

// Exporter interface for writing topology graphs to various formats
type Exporter interface {
	Export(fragment *domain.GraphFragment, w io.Writer) error
	Format() string
}

// Codec both reads and writes one format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for a format name ("json" or "yaml")
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
}

// normalize fills in what a hand-edited document may leave out and validates the result
func normalize(fragment *domain.GraphFragment) error {
	for i := range fragment.Nodes {
		if fragment.Nodes[i].Properties == nil {
			fragment.Nodes[i].Properties = make(map[string]any)
		}
		if fragment.Nodes[i].Label == "" {
			fragment.Nodes[i].Label = fragment.Nodes[i].ID
		}
	}
	for i := range fragment.Edges {
		if fragment.Edges[i].Properties == nil {
			fragment.Edges[i].Properties = make(map[string]any)
		}
		if fragment.Edges[i].ID == "" {
			fragment.Edges[i].ID = fragment.Edges[i].GenerateID()
		}
	}
	return fragment.Validate()
}
