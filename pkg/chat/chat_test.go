package chat

import (
	"fmt"
	"testing"
)

func makeMessages(n int) []ChatMessage {
	msgs := make([]ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := ChatRoleUser
		if i%2 == 1 {
			role = ChatRoleAgent
		}
		msgs = append(msgs, ChatMessage{Role: role, Content: fmt.Sprintf("m%d", i)})
	}
	return msgs
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		limit     int
		wantLen   int
		wantFirst string
	}{
		{name: "shorter than limit", count: 3, limit: 10, wantLen: 3, wantFirst: "m0"},
		{name: "exactly limit", count: 10, limit: 10, wantLen: 10, wantFirst: "m0"},
		{name: "longer than limit keeps the most recent", count: 14, limit: 10, wantLen: 10, wantFirst: "m4"},
		{name: "empty transcript", count: 0, limit: 10, wantLen: 0},
		{name: "zero limit", count: 5, limit: 0, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(makeMessages(tt.count), tt.limit)
			if len(got) != tt.wantLen {
				t.Fatalf("Expected %d messages, got %d", tt.wantLen, len(got))
			}
			if tt.wantLen > 0 && got[0].Content != tt.wantFirst {
				t.Errorf("Expected first message %q, got %q", tt.wantFirst, got[0].Content)
			}
		})
	}
}

func TestWindow_ReturnsCopy(t *testing.T) {
	msgs := makeMessages(4)
	got := Window(msgs, 10)
	got[0].Content = "changed"
	if msgs[0].Content != "m0" {
		t.Error("Window must not alias the source transcript")
	}
}

func TestTranscript(t *testing.T) {
	msgs := []ChatMessage{
		{Role: ChatRoleSystem, Content: "ignored"},
		{Role: ChatRoleUser, Content: "做一把犁"},
		{Role: ChatRoleAgent, Content: "用什么材料？"},
	}
	got := Transcript(msgs, "用户", "AI天工")
	want := "用户: 做一把犁\nAI天工: 用什么材料？"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestChatMessage_Validate(t *testing.T) {
	if err := (ChatMessage{Role: ChatRoleUser}).Validate(); err != nil {
		t.Errorf("Expected user role to be valid, got %v", err)
	}
	if err := (ChatMessage{Role: "narrator"}).Validate(); err == nil {
		t.Error("Expected error for unknown role")
	}
}
