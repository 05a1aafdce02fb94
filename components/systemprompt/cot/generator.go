package cot

import (
	"fmt"

	"github.com/bububa/teachassist/components/systemprompt"
)

const (
	sectionIdentity = "IDENTITY and PURPOSE"
	sectionSteps    = "INTERNAL ASSISTANT STEPS"
	sectionOutput   = "OUTPUT INSTRUCTIONS"
)

// Generator is Chain-of-Thought system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	background      []string
	steps           []string
	outputInstructs []string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.background) == 0 {
		ret.background = []string{"- This is a conversation with a helpful and friendly AI assistant."}
	}
	return ret
}

func (g *Generator) Generate() string {
	var promptParts []string
	for _, section := range []struct {
		title   string
		content []string
	}{
		{sectionIdentity, g.background},
		{sectionSteps, g.steps},
		{sectionOutput, g.outputInstructs},
	} {
		if len(section.content) > 0 {
			promptParts = append(promptParts, fmt.Sprintf("# %s", section.title))
			promptParts = append(promptParts, section.content...)
			promptParts = append(promptParts, "")
		}
	}
	promptParts = append(promptParts, g.RenderContext()...)
	return systemprompt.Join(promptParts)
}
