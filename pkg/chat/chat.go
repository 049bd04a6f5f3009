package chat

import (
	"fmt"
	"strings"
)

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // 天工 persona
	ChatRoleSystem = "system"    // System instructions
)

// ChatMessage represents a single chat message in the conversation.
// The shape follows the OpenAI-compatible chat completion API and is
// sent to the LLM unchanged.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Validate checks that the message has a known role.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case ChatRoleUser, ChatRoleAgent, ChatRoleSystem:
		return nil
	default:
		return fmt.Errorf("unknown chat role %q", m.Role)
	}
}

// Window returns at most the last limit messages. The returned slice is a
// copy, so callers may append to it without touching the transcript.
func Window(messages []ChatMessage, limit int) []ChatMessage {
	if limit <= 0 || len(messages) == 0 {
		return []ChatMessage{}
	}
	start := 0
	if len(messages) > limit {
		start = len(messages) - limit
	}
	out := make([]ChatMessage, len(messages)-start)
	copy(out, messages[start:])
	return out
}

// Transcript renders messages as "speaker: content" lines.
// userLabel and agentLabel name the two speakers; system messages are skipped.
func Transcript(messages []ChatMessage, userLabel, agentLabel string) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case ChatRoleUser:
			lines = append(lines, userLabel+": "+msg.Content)
		case ChatRoleAgent:
			lines = append(lines, agentLabel+": "+msg.Content)
		}
	}
	return strings.Join(lines, "\n")
}
