// Package client implements the consuming side of the interaction
// stream: an incremental chunk parser and the conversation log it
// renders into. It is used by terminal tooling and kept transport
// agnostic so browser-facing ports can share the semantics.
package client

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// CompletionState tracks a message through its streaming lifecycle.
type CompletionState string

const (
	StatePending   CompletionState = "pending"
	StateStreaming CompletionState = "streaming"
	StateComplete  CompletionState = "complete"
)

// ErrMessageNotFound is returned when an update targets an unknown id.
var ErrMessageNotFound = errors.New("conversation message not found")

// Message is one entry in the conversation log. Text is mutated in
// place while the agent reply streams; entries are never removed.
type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
	State     CompletionState `json:"completionState"`
}

// Conversation is an append-only message log safe for concurrent use.
type Conversation struct {
	mu       sync.RWMutex
	messages []*Message
}

// NewConversation creates an empty conversation log.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a new message and returns its generated id.
func (c *Conversation) Append(role Role, text string, state CompletionState) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := &Message{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
		State:     state,
	}
	c.messages = append(c.messages, msg)
	return msg.ID
}

// UpdateContent replaces the text of an in-progress message.
func (c *Conversation) UpdateContent(id, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := c.find(id)
	if msg == nil {
		return ErrMessageNotFound
	}
	msg.Text = text
	if msg.State == StatePending {
		msg.State = StateStreaming
	}
	return nil
}

// MarkComplete finishes a message's lifecycle. Completing an already
// complete message is a no-op.
func (c *Conversation) MarkComplete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := c.find(id)
	if msg == nil {
		return ErrMessageNotFound
	}
	msg.State = StateComplete
	return nil
}

// Messages returns a snapshot of the log in append order.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Message, 0, len(c.messages))
	for _, msg := range c.messages {
		out = append(out, *msg)
	}
	return out
}

// Len reports the number of logged messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Reset clears the log for a fresh conversation.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

func (c *Conversation) find(id string) *Message {
	for _, msg := range c.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}
