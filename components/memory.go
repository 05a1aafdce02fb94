package components

import (
	"sync"

	"github.com/bububa/teachassist/schema"
)

// Memory holds the transcript of a single responder call.
// A new Memory is created per call so nothing leaks between requests.
// threadsafe
type Memory struct {
	//	history is a list of messages representing the transcript.
	history []Message
	//	turnID is the ID of the current turn.
	turnID string
	// maxMessages is the maximum number of messages to keep in history.
	// When exceeded, oldest messages are removed first.
	maxMessages int
	// mtx sync lock
	mtx *sync.RWMutex
}

// NewMemory initializes the Memory with an empty history and optional constraints.
func NewMemory(maxMessages int) *Memory {
	return &Memory{
		maxMessages: maxMessages,
		history:     make([]Message, 0, maxMessages+1),
		mtx:         new(sync.RWMutex),
	}
}

// MaxMessages returns the max number of messages
func (m *Memory) MaxMessages() int {
	return m.maxMessages
}

// TurnID returns the current turn ID
func (m *Memory) TurnID() string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.turnID
}

// NewTurn initializes a new turn by generating a random turn ID.
func (m *Memory) NewTurn() string {
	turnID := NewTurnID()
	m.mtx.Lock()
	m.turnID = turnID
	m.mtx.Unlock()
	return turnID
}

// NewMessage adds a message to the transcript and manages overflow.
func (m *Memory) NewMessage(role MessageRole, content schema.Schema) *Message {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	msg := NewMessage(role, content).SetTurnID(m.turnID)
	m.history = append(m.history, *msg)
	if l := len(m.history); m.maxMessages > 0 && l > m.maxMessages {
		m.history = m.history[l-m.maxMessages:]
	}
	return msg
}

// History returns a copy of the transcript.
func (m *Memory) History() []Message {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	ret := make([]Message, len(m.history))
	copy(ret, m.history)
	return ret
}

// LastMessage returns the most recent message with the given role
func (m *Memory) LastMessage(role MessageRole) (*Message, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].Role() == role {
			msg := m.history[i]
			return &msg, true
		}
	}
	return nil, false
}

// Reset empties the transcript
func (m *Memory) Reset() {
	m.mtx.Lock()
	m.history = make([]Message, 0, m.maxMessages+1)
	m.turnID = ""
	m.mtx.Unlock()
}

// MessageCount returns the number of messages in the transcript.
func (m *Memory) MessageCount() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.history)
}
