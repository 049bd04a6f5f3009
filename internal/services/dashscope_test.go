package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/han-inventor/pkg/chat"
	"github.com/jwebster45206/han-inventor/pkg/tools"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDashScopeService_Defaults(t *testing.T) {
	service := NewDashScopeService("test-key", "", "", testLogger())

	assert.Equal(t, DefaultDashScopeModel, service.modelName)
	assert.Equal(t, DefaultDashScopeEndpoint, service.endpoint)
	assert.Equal(t, dashScopeTimeout, service.httpClient.Timeout)
	assert.True(t, service.Configured())
}

func TestDashScopeService_MissingKey(t *testing.T) {
	service := NewDashScopeService("", "", "", testLogger())

	result := service.Complete(context.Background(), CompletionRequest{})
	errResult, ok := result.(ErrorResult)
	require.True(t, ok)
	assert.True(t, errors.Is(errResult.Err, ErrAPIKeyMissing))
}

func TestDashScopeService_RequestShape(t *testing.T) {
	var got map[string]interface{}
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","tool_calls":[{"id":"call_1","type":"function","function":{"name":"saveInventionBlueprint","arguments":"{\"name\":\"连弩\"}"}}]},"finish_reason":"tool_calls"}]}`))
	}))
	defer server.Close()

	service := NewDashScopeService("secret", "qwen-plus", server.URL, testLogger())
	result := service.Complete(context.Background(), CompletionRequest{
		Messages:    []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}},
		Temperature: 0.8,
		MaxTokens:   1500,
		TopP:        0.9,
		Tools:       tools.InventionTools(),
		ToolChoice:  tools.Force(tools.SaveInventionBlueprint),
	})

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "qwen-plus", got["model"])
	assert.Equal(t, 0.8, got["temperature"])
	assert.Equal(t, float64(1500), got["max_tokens"])
	assert.Equal(t, 0.9, got["top_p"])
	assert.Equal(t, false, got["stream"])
	assert.Contains(t, got, "tools")
	choice, ok := got["tool_choice"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "function", choice["type"])

	call, ok := result.(ToolCallResult)
	require.True(t, ok, "expected ToolCallResult, got %T", result)
	assert.Equal(t, "saveInventionBlueprint", call.Name)
	assert.JSONEq(t, `{"name":"连弩"}`, call.Arguments)
}

func TestDashScopeService_OmitsToolsWhenUnset(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"问题？"}}]}`))
	}))
	defer server.Close()

	service := NewDashScopeService("secret", "", server.URL, testLogger())
	result := service.Complete(context.Background(), CompletionRequest{
		Messages: []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}},
	})

	assert.NotContains(t, got, "tools")
	assert.NotContains(t, got, "tool_choice")
	text, ok := result.(TextResult)
	require.True(t, ok)
	assert.Equal(t, "问题？", text.Text)
}

func TestDashScopeService_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-2xx", http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`},
		{"malformed json", http.StatusOK, `{"choices":`},
		{"error object", http.StatusOK, `{"error":{"message":"quota exceeded","code":"quota"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			service := NewDashScopeService("secret", "", server.URL, testLogger())
			result := service.Complete(context.Background(), CompletionRequest{})
			_, ok := result.(ErrorResult)
			assert.True(t, ok, "expected ErrorResult, got %T", result)
		})
	}
}
