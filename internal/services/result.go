package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the classified outcome of a chat-completion call. It is one of
// ToolCallResult, TextResult or ErrorResult.
type Result interface {
	isResult()
}

// ToolCallResult carries the first tool call of the reply.
type ToolCallResult struct {
	Name      string
	Arguments string
}

// TextResult carries plain assistant content.
type TextResult struct {
	Text string
}

// ErrorResult carries any failure before a usable reply was found.
type ErrorResult struct {
	Err error
}

func (ToolCallResult) isResult() {}
func (TextResult) isResult()     {}
func (ErrorResult) isResult()    {}

// Decode unmarshals the tool arguments into v. Models occasionally wrap
// arguments in a markdown fence; that is stripped first.
func (r ToolCallResult) Decode(v interface{}) error {
	args := cleanJSON(r.Arguments)
	if args == "" {
		return fmt.Errorf("%w: empty arguments for tool %s", ErrUnexpectedResponse, r.Name)
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("%w: malformed arguments for tool %s: %v", ErrUnexpectedResponse, r.Name, err)
	}
	return nil
}

func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// classify inspects a decoded reply exactly once.
func classify(resp *completionResponse) Result {
	if resp.Error != nil {
		return ErrorResult{Err: fmt.Errorf("API error: %s", resp.Error.Message)}
	}
	if resp.Code != "" && len(resp.Choices) == 0 {
		return ErrorResult{Err: fmt.Errorf("API error %s: %s", resp.Code, resp.Message)}
	}
	if len(resp.Choices) == 0 {
		return ErrorResult{Err: fmt.Errorf("%w: no choices", ErrUnexpectedResponse)}
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		return ToolCallResult{Name: call.Function.Name, Arguments: call.Function.Arguments}
	}
	if strings.TrimSpace(msg.Content) != "" {
		return TextResult{Text: msg.Content}
	}
	return ErrorResult{Err: fmt.Errorf("%w: empty message", ErrUnexpectedResponse)}
}
