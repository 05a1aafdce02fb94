package fileread

import (
	"context"
	"fmt"
	"time"

	"github.com/bububa/teachassist/components/document"
	"github.com/bububa/teachassist/schema"
	"github.com/bububa/teachassist/tools"
)

const (
	Name           = "read_file"
	DefaultTimeout = 10 * time.Second
)

type Input struct {
	Path string `json:"path" jsonschema:"title=path,description=Relative path of a local document or an s3://bucket/key URI."`
}

type Tool struct {
	tools.Config
	loader  document.Loader
	timeout time.Duration
}

var _ tools.Tool[Input, schema.String] = (*Tool)(nil)

type Option func(*Tool)

func WithTimeout(timeout time.Duration) Option {
	return func(t *Tool) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(t *Tool) {
		tools.Apply(&t.Config, opts...)
	}
}

func New(loader document.Loader, opts ...Option) *Tool {
	ret := &Tool{
		loader:  loader,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.Title() == "" {
		ret.SetTitle(Name)
	}
	if ret.Description() == "" {
		ret.SetDescription("Reads the text content of a document from the knowledge folder or from S3.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*schema.String, error) {
	if input.Path == "" {
		return nil, fmt.Errorf("%w: empty path", tools.ErrInvalidArguments)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	doc, err := t.loader.Load(ctx, input.Path)
	if err != nil {
		return nil, err
	}
	return schema.NewString(doc.Text()), nil
}
