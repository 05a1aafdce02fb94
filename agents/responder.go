package agents

import (
	"context"

	"github.com/bububa/teachassist/components"
)

// Responder fully answers queries of one topic domain.
// Answer never fails: expected failures are rendered as user facing text.
type Responder interface {
	Name() string
	Description() string
	Answer(ctx context.Context, query string, usage *components.LLMUsage) string
}

// MergeUsage adds the usage of resp into usage when both are present
func MergeUsage(usage *components.LLMUsage, resp *components.LLMResponse) {
	if usage == nil || resp == nil {
		return
	}
	usage.Merge(resp.Usage)
}
