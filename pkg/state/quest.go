package state

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/jwebster45206/han-inventor/pkg/tools"
)

// Fallback quest values
const (
	DefaultChapter    = "东汉末年"
	DefaultCategory   = "民生"
	DefaultDifficulty = "中等"
	DefaultReward     = 50
)

// Quest is an opportunity task that inspires the player's next invention.
type Quest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category"`
	Reward      int    `json:"reward"`
}

// QuestOffer pairs a quest with invention suggestions.
type QuestOffer struct {
	Quest                Quest    `json:"quest"`
	InventionSuggestions []string `json:"inventionSuggestions"`
}

// Format renders the quest in the single-text form shown to players.
func (q Quest) Format() string {
	return fmt.Sprintf("【%s】\n\n%s\n\n难度：%s | 类别：%s | 潜在奖励：%d国力",
		q.Title, q.Description, q.Difficulty, q.Category, q.Reward)
}

// DefaultQuest is offered whenever quest generation fails.
func DefaultQuest(chapter string) *QuestOffer {
	if chapter == "" {
		chapter = DefaultChapter
	}
	return &QuestOffer{
		Quest: Quest{
			Title:       chapter + "时期的挑战",
			Description: "在这个动荡的时代，百姓们面临着各种困难。作为一位发明家，你能否创造出改善民生的发明？",
			Difficulty:  DefaultDifficulty,
			Category:    DefaultCategory,
			Reward:      DefaultReward,
		},
		InventionSuggestions: []string{},
	}
}

// MatchQuestCategory maps free text to the nearest quest category.
// It returns false when nothing is within one edit.
func MatchQuestCategory(input string) (string, bool) {
	if input == "" {
		return "", false
	}
	if tools.Contains(tools.QuestCategories, input) {
		return input, true
	}

	best := ""
	bestDist := -1
	for _, cand := range tools.QuestCategories {
		dist := levenshtein.ComputeDistance(input, cand)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	if bestDist > 1 {
		return "", false
	}
	return best, true
}
