package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/han-inventor/pkg/chat"
	"github.com/jwebster45206/han-inventor/pkg/prompts"
	"github.com/jwebster45206/han-inventor/pkg/state"
	"github.com/jwebster45206/han-inventor/pkg/tools"
)

const validBlueprintArgs = `{
	"name": "改良水车",
	"description": "以水力驱动的灌溉器械",
	"nationalPowerIncrease": 60,
	"category": "农具",
	"materials": ["木材", "铁钉"],
	"impact": "农田灌溉效率大增"
}`

func TestGateway_GenerateInvention_Success(t *testing.T) {
	llm := NewMockLLM(ToolCallResult{Name: tools.SaveInventionBlueprint, Arguments: validBlueprintArgs})
	gw := NewGateway(llm, testLogger())

	bp, err := gw.GenerateInvention(context.Background(), "一种用水力灌溉农田的装置")
	require.NoError(t, err)
	assert.Equal(t, "改良水车", bp.Name)
	assert.Equal(t, 60, bp.NationalPowerIncrease)

	req := llm.LastCall()
	assert.Equal(t, inventionTemperature, req.Temperature)
	assert.Equal(t, inventionMaxTokens, req.MaxTokens)
	assert.Equal(t, defaultTopP, req.TopP)
	require.NotNil(t, req.ToolChoice)
	assert.Equal(t, tools.SaveInventionBlueprint, req.ToolChoice.Function.Name)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, chat.ChatRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "一种用水力灌溉农田的装置")
}

func TestGateway_GenerateInvention_Failures(t *testing.T) {
	tests := []struct {
		name    string
		result  Result
		wantErr error
	}{
		{"error result", ErrorResult{Err: errors.New("boom")}, nil},
		{"text result", TextResult{Text: "我来设计一个水车"}, ErrUnexpectedResponse},
		{"wrong tool", ToolCallResult{Name: tools.GenerateQuestTask, Arguments: "{}"}, ErrUnexpectedResponse},
		{"empty arguments", ToolCallResult{Name: tools.SaveInventionBlueprint, Arguments: ""}, ErrUnexpectedResponse},
		{"malformed arguments", ToolCallResult{Name: tools.SaveInventionBlueprint, Arguments: "{name"}, ErrUnexpectedResponse},
		{
			"power out of range",
			ToolCallResult{Name: tools.SaveInventionBlueprint, Arguments: strings.Replace(validBlueprintArgs, "60", "500", 1)},
			state.ErrInvalidBlueprint,
		},
		{
			"unknown category",
			ToolCallResult{Name: tools.SaveInventionBlueprint, Arguments: strings.Replace(validBlueprintArgs, "农具", "魔法", 1)},
			state.ErrInvalidBlueprint,
		},
		{
			"empty materials",
			ToolCallResult{Name: tools.SaveInventionBlueprint, Arguments: strings.Replace(validBlueprintArgs, `["木材", "铁钉"]`, "[]", 1)},
			state.ErrInvalidBlueprint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := NewGateway(NewMockLLM(tt.result), testLogger())

			bp, err := gw.GenerateInvention(context.Background(), "idea")
			assert.Nil(t, bp)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGateway_GenerateInvention_MissingKey(t *testing.T) {
	llm := NewMockLLM()
	llm.NoAPIKey = true
	gw := NewGateway(llm, testLogger())

	_, err := gw.GenerateInvention(context.Background(), "idea")
	assert.True(t, errors.Is(err, ErrAPIKeyMissing))
	assert.Zero(t, llm.CallCount())
}

func TestGateway_GetNewQuest_WithSuggestions(t *testing.T) {
	args := `{"quest":{"title":"粮仓告急","description":"秋收在即，粮仓不足","difficulty":"中等","category":"农业","reward":40},
		"inventionSuggestions":["改良粮仓","防潮草席","风车","水车","石磨"]}`
	llm := NewMockLLM(ToolCallResult{Name: tools.GenerateQuestWithSuggestions, Arguments: args})
	gw := NewGateway(llm, testLogger())

	offer := gw.GetNewQuest(context.Background(), "第一章", 2, "农业", []string{"水车"})
	require.NotNil(t, offer)
	assert.Equal(t, "粮仓告急", offer.Quest.Title)
	assert.Equal(t, 40, offer.Quest.Reward)
	assert.Len(t, offer.InventionSuggestions, tools.MaxSuggestions)

	req := llm.LastCall()
	assert.Nil(t, req.ToolChoice, "quest tools are offered, not forced")
	assert.Len(t, req.Tools, 2)
	assert.Equal(t, questTemperature, req.Temperature)
	assert.Equal(t, questMaxTokens, req.MaxTokens)
	assert.Contains(t, req.Messages[1].Content, "第2阶段")
	assert.Contains(t, req.Messages[1].Content, "水车")
}

func TestGateway_GetNewQuest_QuestTaskTool(t *testing.T) {
	args := `{"title":"边关急报","description":"需要更强的弩","difficulty":"困难","category":"军事","reward":80}`
	gw := NewGateway(NewMockLLM(ToolCallResult{Name: tools.GenerateQuestTask, Arguments: args}), testLogger())

	offer := gw.GetNewQuest(context.Background(), "第一章", 1, "军事", nil)
	assert.Equal(t, "边关急报", offer.Quest.Title)
	assert.NotNil(t, offer.InventionSuggestions)
	assert.Empty(t, offer.InventionSuggestions)
}

func TestGateway_GetNewQuest_TextBecomesDescription(t *testing.T) {
	gw := NewGateway(NewMockLLM(TextResult{Text: "  百姓缺水，请发明汲水器械  "}), testLogger())

	offer := gw.GetNewQuest(context.Background(), "第一章", 1, "民生", nil)
	assert.Equal(t, "百姓缺水，请发明汲水器械", offer.Quest.Description)
	assert.Equal(t, "民生", offer.Quest.Category)
	assert.Equal(t, state.DefaultReward, offer.Quest.Reward)
}

func TestGateway_GetNewQuest_FallsBack(t *testing.T) {
	tests := []struct {
		name   string
		result Result
	}{
		{"error", ErrorResult{Err: errors.New("network down")}},
		{"malformed tool args", ToolCallResult{Name: tools.GenerateQuestWithSuggestions, Arguments: "{"}},
		{"unknown tool", ToolCallResult{Name: "other", Arguments: "{}"}},
		{"empty quest", ToolCallResult{Name: tools.GenerateQuestTask, Arguments: "{}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := NewGateway(NewMockLLM(tt.result), testLogger())

			offer := gw.GetNewQuest(context.Background(), "建安年间", 1, "", nil)
			require.NotNil(t, offer)
			assert.Equal(t, state.DefaultQuest("建安年间"), offer)
		})
	}
}

func TestGateway_GetNewQuest_NormalizesInputs(t *testing.T) {
	llm := NewMockLLM(ErrorResult{Err: errors.New("fail")})
	gw := NewGateway(llm, testLogger())

	offer := gw.GetNewQuest(context.Background(), "  ", 0, "", nil)
	assert.Equal(t, state.DefaultChapter+"时期的挑战", offer.Quest.Title)
	assert.Equal(t, 50, offer.Quest.Reward)
	assert.Equal(t, "民生", offer.Quest.Category)

	user := llm.LastCall().Messages[1].Content
	assert.Contains(t, user, fmt.Sprintf("当前游戏阶段：\"%s\"，第1阶段。", state.DefaultChapter))
	assert.Contains(t, user, "期望的任务类别：民生。")
}

func TestGateway_GetNewQuest_MissingKey(t *testing.T) {
	llm := NewMockLLM()
	llm.NoAPIKey = true
	gw := NewGateway(llm, testLogger())

	offer := gw.GetNewQuest(context.Background(), "第一章", 1, "农业", nil)
	assert.Equal(t, state.DefaultQuest("第一章"), offer)
	assert.Zero(t, llm.CallCount())
}

func TestGateway_GetNextInventionQuestion(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{"question", TextResult{Text: "  这个装置用什么材料？ "}, "这个装置用什么材料？"},
		{"sentinel", TextResult{Text: "##DONE##"}, prompts.DoneToken},
		{"lowercase sentinel", TextResult{Text: "  ##done##  "}, prompts.DoneToken},
		{"short text with sentinel", TextResult{Text: "信息足够了 ##DONE##"}, prompts.DoneToken},
		{"error", ErrorResult{Err: errors.New("timeout")}, prompts.DoneToken},
		{"tool call", ToolCallResult{Name: "x"}, prompts.DoneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := NewGateway(NewMockLLM(tt.result), testLogger())
			got := gw.GetNextInventionQuestion(context.Background(), []chat.ChatMessage{
				{Role: chat.ChatRoleUser, Content: "一种水车"},
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateway_GetNextInventionQuestion_WindowsTranscript(t *testing.T) {
	llm := NewMockLLM(TextResult{Text: "下一个问题？"})
	gw := NewGateway(llm, testLogger())

	var msgs []chat.ChatMessage
	for i := 0; i < 14; i++ {
		role := chat.ChatRoleUser
		if i%2 == 1 {
			role = chat.ChatRoleAgent
		}
		msgs = append(msgs, chat.ChatMessage{Role: role, Content: fmt.Sprintf("消息-%02d", i)})
	}

	gw.GetNextInventionQuestion(context.Background(), msgs)

	req := llm.LastCall()
	require.Len(t, req.Messages, 1)
	assert.Equal(t, chat.ChatRoleUser, req.Messages[0].Role)
	assert.Equal(t, guidedTemperature, req.Temperature)
	assert.Equal(t, guidedMaxTokens, req.MaxTokens)

	prompt := req.Messages[0].Content
	for i := 0; i < 4; i++ {
		assert.NotContains(t, prompt, fmt.Sprintf("消息-%02d", i))
	}
	for i := 4; i < 14; i++ {
		assert.Contains(t, prompt, fmt.Sprintf("消息-%02d", i))
	}
}

func TestGateway_GetNextInventionQuestion_MissingKey(t *testing.T) {
	llm := NewMockLLM()
	llm.NoAPIKey = true
	gw := NewGateway(llm, testLogger())

	assert.Equal(t, prompts.DoneToken, gw.GetNextInventionQuestion(context.Background(), nil))
	assert.Zero(t, llm.CallCount())
}

func TestGateway_GenerateImage(t *testing.T) {
	gw := NewGateway(NewMockLLM(), testLogger())

	got := gw.GenerateImage(context.Background(), "水车")
	require.True(t, strings.HasPrefix(got, placeholderImageBase))
	text, err := url.QueryUnescape(strings.TrimPrefix(got, placeholderImageBase))
	require.NoError(t, err)
	assert.Equal(t, "发明图纸", text)
}
