package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jwebster45206/han-inventor/pkg/chat"
	"github.com/jwebster45206/han-inventor/pkg/guided"
	"github.com/jwebster45206/han-inventor/pkg/prompts"
	"github.com/jwebster45206/han-inventor/pkg/state"
	"github.com/jwebster45206/han-inventor/pkg/tools"
)

// Sampling parameters per operation
const (
	inventionTemperature = 0.8
	inventionMaxTokens   = 1500
	questTemperature     = 0.9
	questMaxTokens       = 800
	guidedTemperature    = 0.7
	guidedMaxTokens      = 200
	defaultTopP          = 0.9

	placeholderImageBase = "https://via.placeholder.com/400x300/4a5568/ffffff?text="
	placeholderImageText = "发明图纸"
	textQuestTitle       = "机遇任务"
)

// Gateway turns game requests into model calls and model replies into
// domain values. Invention generation fails hard; quest and guided
// questioning fall back to safe defaults.
type Gateway struct {
	llm    LLMService
	logger *slog.Logger
}

// NewGateway creates a gateway over the given LLM service
func NewGateway(llm LLMService, logger *slog.Logger) *Gateway {
	return &Gateway{llm: llm, logger: logger}
}

// GenerateInvention asks the model for a blueprint via the forced
// saveInventionBlueprint tool. It either returns a valid blueprint or an
// error.
func (g *Gateway) GenerateInvention(ctx context.Context, idea string) (*state.InventionBlueprint, error) {
	if !g.llm.Configured() {
		return nil, ErrAPIKeyMissing
	}

	messages, err := prompts.New().
		WithSystem(prompts.InventionSystemPrompt).
		WithUserMessage(prompts.InventionUserPrompt(idea)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build invention prompt: %w", err)
	}

	result := g.llm.Complete(ctx, CompletionRequest{
		Messages:    messages,
		Temperature: inventionTemperature,
		MaxTokens:   inventionMaxTokens,
		TopP:        defaultTopP,
		Tools:       tools.InventionTools(),
		ToolChoice:  tools.Force(tools.SaveInventionBlueprint),
	})

	switch r := result.(type) {
	case ErrorResult:
		g.logger.Error("Invention generation failed", "error", r.Err)
		return nil, fmt.Errorf("failed to generate invention: %w", r.Err)
	case TextResult:
		g.logger.Warn("Model answered with text instead of a tool call", "text", truncate(r.Text, 200))
		return nil, fmt.Errorf("%w: expected tool call %s, got text", ErrUnexpectedResponse, tools.SaveInventionBlueprint)
	case ToolCallResult:
		if r.Name != tools.SaveInventionBlueprint {
			g.logger.Warn("Model called an unexpected tool", "tool", r.Name)
			return nil, fmt.Errorf("%w: unexpected tool %q", ErrUnexpectedResponse, r.Name)
		}
		var bp state.InventionBlueprint
		if err := r.Decode(&bp); err != nil {
			g.logger.Error("Failed to decode blueprint", "error", err, "arguments", truncate(r.Arguments, 300))
			return nil, err
		}
		if err := bp.Validate(); err != nil {
			g.logger.Warn("Model produced an invalid blueprint", "error", err, "name", bp.Name)
			return nil, err
		}
		g.logger.Info("Invention generated", "name", bp.Name, "power", bp.NationalPowerIncrease, "category", bp.Category)
		return &bp, nil
	default:
		return nil, fmt.Errorf("%w: unknown result %T", ErrUnexpectedResponse, result)
	}
}

// GetNewQuest asks for a quest with invention suggestions. It never returns
// nil: every failure yields the default quest.
func (g *Gateway) GetNewQuest(ctx context.Context, chapter string, subStage int, category string, recentInventions []string) *state.QuestOffer {
	if strings.TrimSpace(chapter) == "" {
		g.logger.Warn("Invalid chapter for quest, using default", "chapter", chapter)
		chapter = state.DefaultChapter
	}
	if subStage < 1 {
		subStage = 1
	}
	if strings.TrimSpace(category) == "" {
		category = state.DefaultCategory
	}

	if !g.llm.Configured() {
		g.logger.Warn("API key missing, offering default quest")
		return state.DefaultQuest(chapter)
	}

	offer, err := g.requestQuest(ctx, chapter, subStage, category, recentInventions)
	if err != nil {
		g.logger.Error("Quest generation failed, offering default quest", "error", err, "chapter", chapter)
		return state.DefaultQuest(chapter)
	}
	return offer
}

func (g *Gateway) requestQuest(ctx context.Context, chapter string, subStage int, category string, recentInventions []string) (*state.QuestOffer, error) {
	messages, err := prompts.New().
		WithSystem(prompts.QuestSystemPrompt).
		WithUserMessage(prompts.QuestUserPrompt(chapter, subStage, category, recentInventions)).
		Build()
	if err != nil {
		return nil, err
	}

	result := g.llm.Complete(ctx, CompletionRequest{
		Messages:    messages,
		Temperature: questTemperature,
		MaxTokens:   questMaxTokens,
		TopP:        defaultTopP,
		Tools:       tools.QuestWithSuggestionsTools(),
	})

	switch r := result.(type) {
	case ErrorResult:
		return nil, r.Err
	case TextResult:
		g.logger.Info("Quest returned as text", "length", len(r.Text))
		cat := category
		if !tools.Contains(tools.QuestCategories, cat) {
			cat = state.DefaultCategory
		}
		return &state.QuestOffer{
			Quest: state.Quest{
				Title:       textQuestTitle,
				Description: strings.TrimSpace(r.Text),
				Difficulty:  state.DefaultDifficulty,
				Category:    cat,
				Reward:      state.DefaultReward,
			},
			InventionSuggestions: []string{},
		}, nil
	case ToolCallResult:
		return decodeQuest(r)
	default:
		return nil, fmt.Errorf("%w: unknown result %T", ErrUnexpectedResponse, result)
	}
}

func decodeQuest(r ToolCallResult) (*state.QuestOffer, error) {
	var offer state.QuestOffer
	switch r.Name {
	case tools.GenerateQuestWithSuggestions:
		if err := r.Decode(&offer); err != nil {
			return nil, err
		}
	case tools.GenerateQuestTask:
		if err := r.Decode(&offer.Quest); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unexpected tool %q", ErrUnexpectedResponse, r.Name)
	}

	if strings.TrimSpace(offer.Quest.Title) == "" && strings.TrimSpace(offer.Quest.Description) == "" {
		return nil, fmt.Errorf("%w: quest has neither title nor description", ErrUnexpectedResponse)
	}
	if offer.InventionSuggestions == nil {
		offer.InventionSuggestions = []string{}
	}
	if len(offer.InventionSuggestions) > tools.MaxSuggestions {
		offer.InventionSuggestions = offer.InventionSuggestions[:tools.MaxSuggestions]
	}
	return &offer, nil
}

// GetNextInventionQuestion asks for the next clarifying question of a guided
// dialogue. Only the last guided.HistoryLimit messages are sent. Any failure,
// or a reply carrying the sentinel, yields prompts.DoneToken.
func (g *Gateway) GetNextInventionQuestion(ctx context.Context, messages []chat.ChatMessage) string {
	if !g.llm.Configured() {
		g.logger.Warn("API key missing, ending guided dialogue")
		return prompts.DoneToken
	}

	recent := chat.Window(messages, guided.HistoryLimit)
	request, err := prompts.New().
		WithUserMessage(prompts.GuidedQAPrompt(recent)).
		Build()
	if err != nil {
		g.logger.Error("Failed to build guided prompt", "error", err)
		return prompts.DoneToken
	}
	result := g.llm.Complete(ctx, CompletionRequest{
		Messages:    request,
		Temperature: guidedTemperature,
		MaxTokens:   guidedMaxTokens,
	})

	switch r := result.(type) {
	case TextResult:
		trimmed := strings.TrimSpace(r.Text)
		if guided.IsConversationDone(trimmed) {
			g.logger.Debug("Guided dialogue completion marker received")
			return prompts.DoneToken
		}
		if trimmed == "" {
			return prompts.DoneToken
		}
		return trimmed
	case ErrorResult:
		if !errors.Is(r.Err, ErrUnexpectedResponse) {
			g.logger.Error("Guided question failed", "error", r.Err)
		}
		return prompts.DoneToken
	default:
		g.logger.Warn("Guided question returned unusable result", "result", fmt.Sprintf("%T", result))
		return prompts.DoneToken
	}
}

// GenerateImage returns a placeholder blueprint image. There is no image
// backend.
func (g *Gateway) GenerateImage(ctx context.Context, prompt string) string {
	return placeholderImageBase + url.QueryEscape(placeholderImageText)
}
