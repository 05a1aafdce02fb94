package document

import (
	"context"
	"errors"
	"strings"
)

// DefaultMaxBytes bounds how much of a document is read
const DefaultMaxBytes int64 = 1 << 20

var (
	// ErrTooLarge is returned when a document exceeds the configured size bound
	ErrTooLarge = errors.New("document too large")
	// ErrOutsideRoot is returned for local paths escaping the configured root
	ErrOutsideRoot = errors.New("path outside of allowed root")
	// ErrUnsupportedScheme is returned for URIs no loader handles
	ErrUnsupportedScheme = errors.New("unsupported document scheme")
)

// Document is a loaded document with its metadata
type Document struct {
	// Source is the URI the document was loaded from
	Source  string
	Meta    map[string]string
	Content []byte
}

// Text returns the document content as text
func (d *Document) Text() string {
	return strings.ToValidUTF8(string(d.Content), "")
}

// Loader loads a document by URI
type Loader interface {
	Load(ctx context.Context, uri string) (*Document, error)
}

// Lister expands a URI naming a directory or prefix into document URIs
type Lister interface {
	List(ctx context.Context, uri string) ([]string, error)
}
