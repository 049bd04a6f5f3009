package prompts

import (
	"fmt"

	"github.com/jwebster45206/han-inventor/pkg/chat"
)

// Builder assembles the message list for one completion request.
type Builder struct {
	system      string
	userMessage string
}

// New creates a new prompt builder.
func New() *Builder {
	return &Builder{}
}

// WithSystem sets the system prompt.
func (b *Builder) WithSystem(system string) *Builder {
	b.system = system
	return b
}

// WithUserMessage sets the final user message.
func (b *Builder) WithUserMessage(message string) *Builder {
	b.userMessage = message
	return b
}

// Build returns the system prompt, when set, followed by the user message.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	messages := make([]chat.ChatMessage, 0, 2)

	if b.system != "" {
		messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: b.system})
	}
	if b.userMessage != "" {
		messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleUser, Content: b.userMessage})
	}

	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}
	for _, msg := range messages {
		if err := msg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid message: %w", err)
		}
	}
	return messages, nil
}
