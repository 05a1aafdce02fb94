package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/bububa/teachassist/schema"
	"github.com/bububa/teachassist/tools"
)

const Name = "current_time"

type Input struct {
	Timezone string `json:"timezone,omitempty" jsonschema:"title=timezone,description=IANA time zone name such as Asia/Dhaka. Defaults to UTC."`
}

type Output struct {
	schema.Base
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
	Weekday  string `json:"weekday"`
}

type Tool struct {
	tools.Config
	now func() time.Time
}

var _ tools.Tool[Input, Output] = (*Tool)(nil)

type Option func(*Tool)

// WithNow replaces the time source
func WithNow(fn func() time.Time) Option {
	return func(t *Tool) {
		t.now = fn
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(t *Tool) {
		tools.Apply(&t.Config, opts...)
	}
}

func New(opts ...Option) *Tool {
	ret := &Tool{now: time.Now}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.Title() == "" {
		ret.SetTitle(Name)
	}
	if ret.Description() == "" {
		ret.SetDescription("Returns the current date and time in ISO-8601 format for an optional IANA time zone.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	name := input.Timezone
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", tools.ErrInvalidArguments, name)
	}
	now := t.now().In(loc)
	return &Output{
		Time:     now.Format(time.RFC3339),
		Timezone: loc.String(),
		Weekday:  now.Weekday().String(),
	}, nil
}
