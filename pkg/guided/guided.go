// Package guided implements the bounded clarifying-question dialogue that
// helps a player refine an invention idea before it is sent for generation.
package guided

import (
	"strings"
	"unicode/utf8"

	"github.com/jwebster45206/han-inventor/pkg/chat"
	"github.com/jwebster45206/han-inventor/pkg/prompts"
	"github.com/jwebster45206/han-inventor/pkg/textfilter"
)

const (
	// DoneToken ends the dialogue.
	DoneToken = prompts.DoneToken

	// MaxQuestions is the number of clarifying questions after which the
	// dialogue ends regardless of model output.
	MaxQuestions = 5

	// HistoryLimit caps how many transcript messages are forwarded upstream.
	HistoryLimit = 10

	// maxSentinelReplyRunes bounds replies that merely contain the sentinel.
	maxSentinelReplyRunes = 50
)

// Phase of a guided session
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseDone       Phase = "done"
)

var injectionFilter = textfilter.NewInjectionFilter()

var normalizedDoneToken = textfilter.Normalize(DoneToken)

// IsConversationDone reports whether a model reply signals the end of the
// dialogue. An exact sentinel (ignoring case, width and surrounding space)
// always matches. A reply that only contains the sentinel matches when it is
// short and free of injection markers.
func IsConversationDone(reply string) bool {
	normalized := textfilter.Normalize(reply)
	if normalized == "" {
		return false
	}
	if normalized == normalizedDoneToken {
		return true
	}
	if !strings.Contains(normalized, normalizedDoneToken) {
		return false
	}
	if utf8.RuneCountInString(strings.TrimSpace(reply)) > maxSentinelReplyRunes {
		return false
	}
	return !injectionFilter.ContainsSuspicious(reply)
}

// Session is the persisted state of one guided dialogue.
type Session struct {
	Messages  []chat.ChatMessage `json:"messages"`
	Questions int                `json:"questions"`
	Phase     Phase              `json:"phase"`
}

// NewSession starts a dialogue with the player's initial idea.
func NewSession(idea string) *Session {
	return &Session{
		Messages: []chat.ChatMessage{
			{Role: chat.ChatRoleUser, Content: idea},
		},
		Phase: PhaseCollecting,
	}
}

// Done reports whether the session has terminated.
func (s *Session) Done() bool {
	return s.Phase == PhaseDone
}

// Recent returns the transcript window forwarded to the model.
func (s *Session) Recent() []chat.ChatMessage {
	return chat.Window(s.Messages, HistoryLimit)
}

// Apply records a model reply. It returns the question to show the player,
// or done=true when the session has ended.
func (s *Session) Apply(reply string) (question string, done bool) {
	if s.Done() {
		return "", true
	}
	if IsConversationDone(reply) || s.Questions >= MaxQuestions {
		s.Phase = PhaseDone
		return "", true
	}

	question = strings.TrimSpace(reply)
	if question == "" {
		s.Phase = PhaseDone
		return "", true
	}

	s.Messages = append(s.Messages, chat.ChatMessage{Role: chat.ChatRoleAgent, Content: question})
	s.Questions++
	return question, false
}

// Answer records the player's reply to the last question. It returns true
// when another model question should be requested.
func (s *Session) Answer(text string) bool {
	if s.Done() {
		return false
	}
	s.Messages = append(s.Messages, chat.ChatMessage{Role: chat.ChatRoleUser, Content: text})
	if s.Questions >= MaxQuestions {
		s.Phase = PhaseDone
		return false
	}
	return true
}

// Idea joins everything the player said into one invention description.
func (s *Session) Idea() string {
	parts := make([]string, 0, len(s.Messages))
	for _, msg := range s.Messages {
		if msg.Role == chat.ChatRoleUser && strings.TrimSpace(msg.Content) != "" {
			parts = append(parts, strings.TrimSpace(msg.Content))
		}
	}
	return strings.Join(parts, "；")
}
