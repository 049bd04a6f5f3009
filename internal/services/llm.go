package services

import (
	"context"
	"errors"

	"github.com/jwebster45206/han-inventor/pkg/chat"
	"github.com/jwebster45206/han-inventor/pkg/tools"
)

var (
	// ErrAPIKeyMissing is returned when no upstream credential is configured.
	ErrAPIKeyMissing = errors.New("API key is not configured")

	// ErrUnexpectedResponse is returned when the model replied in a shape
	// the caller cannot use.
	ErrUnexpectedResponse = errors.New("unexpected model response")
)

// CompletionRequest is one chat-completion call.
type CompletionRequest struct {
	Messages    []chat.ChatMessage
	Temperature float64
	MaxTokens   int
	TopP        float64
	Tools       []tools.Tool
	ToolChoice  *tools.ToolChoice
}

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// Complete sends the request and classifies the reply. It never returns
	// nil; transport and protocol failures come back as ErrorResult.
	Complete(ctx context.Context, req CompletionRequest) Result

	// Configured reports whether a credential is available
	Configured() bool
}
