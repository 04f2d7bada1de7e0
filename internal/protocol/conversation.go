// Package protocol defines the step protocol between the agent loop and the
// model: the per-step Decision the model emits, the Result the executor
// reports back, and the append-only Conversation that carries both.
package protocol

// Role tags the origin of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation entry. Content is free text for user-originated
// messages and serialized Decision/Result JSON for agent-originated ones.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered, append-only sequence of messages owned by a
// single engine run. It is never mutated or reordered after insertion.
type Conversation struct {
	messages []Message
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// AppendUser appends a user-role message.
func (c *Conversation) AppendUser(content string) {
	c.messages = append(c.messages, Message{Role: RoleUser, Content: content})
}

// AppendAssistant appends an assistant-role message.
func (c *Conversation) AppendAssistant(content string) {
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: content})
}

// Messages returns a copy of the message list, safe to hand to a client.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}
