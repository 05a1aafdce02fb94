package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/schema"
)

func TestMemoryTurns(t *testing.T) {
	m := NewMemory(0)
	turnID := m.NewTurn()
	require.NotEmpty(t, turnID)
	m.NewMessage(UserRole, schema.String("what is 2+2"))
	m.NewMessage(AssistantRole, schema.String("4"))

	assert.Equal(t, 2, m.MessageCount())
	for _, msg := range m.History() {
		assert.Equal(t, turnID, msg.TurnID())
	}
	last, ok := m.LastMessage(AssistantRole)
	require.True(t, ok)
	assert.Equal(t, "4", last.Text())

	m.Reset()
	assert.Zero(t, m.MessageCount())
	assert.Empty(t, m.TurnID())
	_, ok = m.LastMessage(AssistantRole)
	assert.False(t, ok)
}

func TestMemoryOverflow(t *testing.T) {
	m := NewMemory(2)
	m.NewMessage(UserRole, schema.String("a"))
	m.NewMessage(UserRole, schema.String("b"))
	m.NewMessage(UserRole, schema.String("c"))
	history := m.History()
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].Text())
	assert.Equal(t, "c", history[1].Text())
}
