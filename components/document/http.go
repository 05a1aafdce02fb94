package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Http loads documents from http and https URLs
type Http struct {
	client   *http.Client
	maxBytes int64
}

var _ Loader = (*Http)(nil)

type HttpOption func(*Http)

func WithHttpClient(client *http.Client) HttpOption {
	return func(h *Http) {
		h.client = client
	}
}

func WithHttpMaxBytes(n int64) HttpOption {
	return func(h *Http) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

func NewHttp(opts ...HttpOption) *Http {
	ret := &Http{
		client:   http.DefaultClient,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// IsHttpURI reports whether uri uses the http or https scheme
func IsHttpURI(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

func (h *Http) Load(ctx context.Context, uri string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", uri, resp.StatusCode)
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > h.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, h.maxBytes)
	}
	content, contentType, err := Normalize(content, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return &Document{
		Source: uri,
		Meta: map[string]string{
			"source":       "http",
			"url":          uri,
			"content_type": contentType,
		},
		Content: content,
	}, nil
}
