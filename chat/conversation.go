package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

const Greeting = "Ask me anything you'd expect to learn from a cv..."

type Message struct {
	ID     string    `json:"id"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// Conversation is an append-only message history that starts with the bot's greeting.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

func NewConversation() *Conversation {
	c := &Conversation{}
	c.Add(SenderBot, Greeting)
	return c
}

func (c *Conversation) Add(sender Sender, text string) Message {
	m := Message{
		ID:     uuid.NewString(),
		Sender: sender,
		Text:   text,
		SentAt: time.Now(),
	}
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
	return m
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Message(nil), c.messages...)
}

// Clear empties the history, greeting included.
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}
