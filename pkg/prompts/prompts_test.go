package prompts

import (
	"strings"
	"testing"

	"github.com/jwebster45206/han-inventor/pkg/chat"
)

func TestInventionUserPrompt(t *testing.T) {
	got := InventionUserPrompt("一种防潮的木犁")
	if !strings.Contains(got, `"一种防潮的木犁"`) {
		t.Errorf("Expected idea to be interpolated verbatim, got %q", got)
	}
	if !strings.Contains(got, "saveInventionBlueprint") {
		t.Error("Expected prompt to name the blueprint tool")
	}
}

func TestInventionUserPrompt_Empty(t *testing.T) {
	got := InventionUserPrompt("   ")
	if !strings.Contains(got, NonePlaceholder) {
		t.Errorf("Expected placeholder for empty idea, got %q", got)
	}
}

func TestQuestUserPrompt(t *testing.T) {
	tests := []struct {
		name     string
		chapter  string
		subStage int
		category string
		recent   []string
		contains []string
	}{
		{
			name:     "with recent inventions",
			chapter:  "第一章：立足蜀中，获得信任",
			subStage: 2,
			category: "农业",
			recent:   []string{"耐潮木犁", "清创药布"},
			contains: []string{"第一章：立足蜀中，获得信任", "第2阶段", "农业", "耐潮木犁，清创药布"},
		},
		{
			name:     "no recent inventions",
			chapter:  "东汉末年",
			subStage: 1,
			category: "民生",
			contains: []string{"最近完成的发明包括：" + NonePlaceholder},
		},
		{
			name:     "empty inputs",
			contains: []string{`当前游戏阶段："` + NonePlaceholder + `"`, "期望的任务类别：" + NonePlaceholder},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuestUserPrompt(tt.chapter, tt.subStage, tt.category, tt.recent)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Expected prompt to contain %q, got %q", want, got)
				}
			}
		})
	}
}

func TestGuidedQAPrompt(t *testing.T) {
	msgs := []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "我想做一种灯"},
		{Role: chat.ChatRoleAgent, Content: "用什么燃料？"},
		{Role: chat.ChatRoleUser, Content: "菜籽油"},
	}
	got := GuidedQAPrompt(msgs)

	for _, want := range []string{SystemPersona, "用户: 我想做一种灯", "AI天工: 用什么燃料？", "用户: 菜籽油", DoneToken} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected guided prompt to contain %q", want)
		}
	}
}

func TestGuidedQAPrompt_EmptyHistory(t *testing.T) {
	got := GuidedQAPrompt(nil)
	if !strings.Contains(got, "### 会话历史：\n"+NonePlaceholder) {
		t.Errorf("Expected placeholder history, got %q", got)
	}
}

func TestSystemPromptsShareThePersona(t *testing.T) {
	for _, p := range []string{InventionSystemPrompt, QuestSystemPrompt} {
		if !strings.HasPrefix(p, SystemPersona) {
			t.Error("Expected system prompt to start with the persona")
		}
	}
}
