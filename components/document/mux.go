package document

import (
	"context"
	"fmt"
)

// Mux dispatches URIs to the loader of their scheme.
// Nil loaders disable the scheme.
type Mux struct {
	File *File
	S3   *S3
	Http *Http
}

var (
	_ Loader = (*Mux)(nil)
	_ Lister = (*Mux)(nil)
)

func (m *Mux) loader(uri string) (Loader, error) {
	var l Loader
	switch {
	case IsS3URI(uri):
		if m.S3 != nil {
			l = m.S3
		}
	case IsHttpURI(uri):
		if m.Http != nil {
			l = m.Http
		}
	default:
		if m.File != nil {
			l = m.File
		}
	}
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri)
	}
	return l, nil
}

func (m *Mux) Load(ctx context.Context, uri string) (*Document, error) {
	l, err := m.loader(uri)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, uri)
}

// List expands directories and prefixes, other URIs are returned as is
func (m *Mux) List(ctx context.Context, uri string) ([]string, error) {
	l, err := m.loader(uri)
	if err != nil {
		return nil, err
	}
	if lister, ok := l.(Lister); ok {
		return lister.List(ctx, uri)
	}
	return []string{uri}, nil
}
