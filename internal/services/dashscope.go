package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/han-inventor/pkg/chat"
	"github.com/jwebster45206/han-inventor/pkg/tools"
)

const (
	DefaultDashScopeEndpoint = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	DefaultDashScopeModel    = "qwen-plus"

	dashScopeTimeout = 90 * time.Second
)

// DashScopeService implements LLMService for the DashScope
// OpenAI-compatible endpoint
type DashScopeService struct {
	apiKey     string
	modelName  string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Ensure DashScopeService implements LLMService interface
var _ LLMService = (*DashScopeService)(nil)

// completionRequest is the wire body of a chat completion
type completionRequest struct {
	Model       string             `json:"model"`
	Messages    []chat.ChatMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	TopP        float64            `json:"top_p,omitempty"`
	Tools       []tools.Tool       `json:"tools,omitempty"`
	ToolChoice  *tools.ToolChoice  `json:"tool_choice,omitempty"`
	Stream      bool               `json:"stream"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type completionChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role      string     `json:"role"`
		Content   string     `json:"content"`
		ToolCalls []toolCall `json:"tool_calls,omitempty"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// completionResponse is the OpenAI-compatible reply. DashScope reports
// some failures with top-level code/message instead of an error object.
type completionResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewDashScopeService creates a new DashScope service. An empty endpoint or
// model selects the defaults.
func NewDashScopeService(apiKey, modelName, endpoint string, logger *slog.Logger) *DashScopeService {
	if modelName == "" {
		modelName = DefaultDashScopeModel
	}
	if endpoint == "" {
		endpoint = DefaultDashScopeEndpoint
	}
	return &DashScopeService{
		apiKey:    apiKey,
		modelName: modelName,
		endpoint:  endpoint,
		httpClient: &http.Client{
			Timeout: dashScopeTimeout,
		},
		logger: logger,
	}
}

func (d *DashScopeService) Configured() bool {
	return d.apiKey != ""
}

// Complete makes a chat completion request and classifies the reply
func (d *DashScopeService) Complete(ctx context.Context, req CompletionRequest) Result {
	if !d.Configured() {
		return ErrorResult{Err: ErrAPIKeyMissing}
	}

	body := completionRequest{
		Model:       d.modelName,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		Tools:       req.Tools,
		ToolChoice:  req.ToolChoice,
		Stream:      false,
	}
	reqBody, err := json.Marshal(body)
	if err != nil {
		return ErrorResult{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	d.logger.Debug("Sending chat completion",
		"model", d.modelName,
		"messages", len(req.Messages),
		"tools", len(req.Tools),
		"forced_tool", req.ToolChoice != nil)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return ErrorResult{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		d.logger.Error("Chat completion request failed", "error", err)
		return ErrorResult{Err: fmt.Errorf("failed to make request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.Error("Chat completion returned non-2xx",
			"status", resp.StatusCode,
			"body", truncate(string(respBody), 500))
		return ErrorResult{Err: fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))}
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		d.logger.Error("Failed to parse chat completion", "error", err, "body", truncate(string(respBody), 500))
		return ErrorResult{Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	result := classify(&parsed)
	if errResult, ok := result.(ErrorResult); ok {
		d.logger.Warn("Unusable chat completion",
			"error", errResult.Err,
			"has_choices", len(parsed.Choices) > 0,
			"choices", len(parsed.Choices),
			"finish_reason", finishReason(&parsed),
			"code", parsed.Code,
			"request_id", parsed.RequestID)
		return result
	}

	d.logger.Debug("Chat completion classified",
		"result", fmt.Sprintf("%T", result),
		"finish_reason", finishReason(&parsed),
		"total_tokens", parsed.Usage.TotalTokens)
	return result
}

func finishReason(resp *completionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].FinishReason
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
