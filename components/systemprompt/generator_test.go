package systemprompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components/systemprompt"
	"github.com/bububa/teachassist/components/systemprompt/cot"
	"github.com/bububa/teachassist/components/systemprompt/simple"
)

func TestSimpleGenerator(t *testing.T) {
	g := simple.New("You are math wizard.")
	assert.Equal(t, "You are math wizard.", g.Generate())

	g.AddContextProviders(
		systemprompt.NewStaticProvider("Domains", "- weather"),
		systemprompt.NewStaticProvider("Domains", "ignored duplicate"),
		systemprompt.NewStaticProvider("Empty", ""),
	)
	assert.Equal(t, "You are math wizard.\n\n# EXTRA INFORMATION AND CONTEXT\n## Domains\n- weather", g.Generate())

	p, err := g.ContextProvider("Domains")
	require.NoError(t, err)
	assert.Equal(t, "- weather", p.Info())

	g.RemoveContextProviders("Domains", "Empty")
	_, err = g.ContextProvider("Domains")
	assert.Error(t, err)
	assert.Equal(t, "You are math wizard.", g.Generate())
}

func TestCoTGenerator(t *testing.T) {
	g := cot.New(
		cot.WithBackground("- You route questions."),
		cot.WithSteps("1. Classify", "2. Delegate"),
		cot.WithOutputInstructs("- Return the responder answer verbatim."),
		cot.WithContextProviders(systemprompt.NewStaticProvider("Decline", "I'm sorry.")),
	)
	want := "# IDENTITY and PURPOSE\n- You route questions.\n\n" +
		"# INTERNAL ASSISTANT STEPS\n1. Classify\n2. Delegate\n\n" +
		"# OUTPUT INSTRUCTIONS\n- Return the responder answer verbatim.\n\n" +
		"# EXTRA INFORMATION AND CONTEXT\n## Decline\nI'm sorry."
	assert.Equal(t, want, g.Generate())

	assert.Contains(t, cot.New().Generate(), "helpful and friendly AI assistant")
}
