package state

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/han-inventor/pkg/guided"
	"github.com/jwebster45206/han-inventor/pkg/storyline"
)

// DefaultMaxNationalPower caps national power.
const DefaultMaxNationalPower = 1000

// ErrInventionInProgress is returned when a second invention is started
// while one is outstanding.
var ErrInventionInProgress = errors.New("an invention is already in progress")

// DefaultCategories are the categories available from the start.
var DefaultCategories = []string{"军事", "民生", "农业", "工艺", "医疗", "建筑"}

// GameState is the current state of one HanInventor save slot.
type GameState struct {
	ID                  uuid.UUID                     `json:"id"`
	NationalPower       int                           `json:"nationalPower"`
	MaxNationalPower    int                           `json:"maxNationalPower"`
	CurrentChapter      string                        `json:"currentChapter"`
	SubStage            int                           `json:"subStage"`
	AvailableCategories []string                      `json:"availableCategories"`
	HistoricalEvents    []string                      `json:"historicalEvents"`
	InventionResults    map[string]InventionBlueprint `json:"inventionResults"`
	CurrentQuest        *QuestOffer                   `json:"currentQuest,omitempty"`
	QuestQueue          []string                      `json:"questQueue"`
	IsInventing         bool                          `json:"isInventing"`
	GuidedSession       *guided.Session               `json:"guidedSession,omitempty"`
	UpdatedAt           time.Time                     `json:"updatedAt"`
}

// NewGameState returns the canonical seed state: first chapter, first
// sub-stage, and that sub-stage's tasks as the quest queue.
func NewGameState() *GameState {
	chapter := storyline.First()
	return &GameState{
		ID:                  uuid.New(),
		NationalPower:       0,
		MaxNationalPower:    DefaultMaxNationalPower,
		CurrentChapter:      chapter.Title,
		SubStage:            1,
		AvailableCategories: append([]string(nil), DefaultCategories...),
		HistoricalEvents:    []string{},
		InventionResults:    make(map[string]InventionBlueprint),
		QuestQueue:          storyline.SeedTasks(chapter.Title, 1),
		IsInventing:         false,
	}
}

// BeginInventing marks an invention as outstanding.
func (gs *GameState) BeginInventing() error {
	if gs.IsInventing {
		return ErrInventionInProgress
	}
	gs.IsInventing = true
	return nil
}

// EndInventing clears the busy flag.
func (gs *GameState) EndInventing() {
	gs.IsInventing = false
}

// ApplyBlueprint validates bp and records it. This is the only place
// national power changes. It returns the id the invention was stored under.
func (gs *GameState) ApplyBlueprint(bp *InventionBlueprint) (string, error) {
	if err := bp.Validate(); err != nil {
		return "", err
	}

	stored := *bp
	stored.Materials = append([]string(nil), bp.Materials...)
	if stored.InventedAt.IsZero() {
		stored.InventedAt = time.Now()
	}

	id := uuid.New().String()
	if gs.InventionResults == nil {
		gs.InventionResults = make(map[string]InventionBlueprint)
	}
	gs.InventionResults[id] = stored

	gs.NationalPower += stored.NationalPowerIncrease
	if gs.MaxNationalPower > 0 && gs.NationalPower > gs.MaxNationalPower {
		gs.NationalPower = gs.MaxNationalPower
	}
	gs.HistoricalEvents = append(gs.HistoricalEvents,
		fmt.Sprintf("发明「%s」问世，国力提升%d", stored.Name, stored.NationalPowerIncrease))

	gs.advanceStage()
	return id, nil
}

// advanceStage moves to the highest sub-stage whose threshold has been
// reached and queues that sub-stage's seed tasks.
func (gs *GameState) advanceStage() {
	next := storyline.StageForPower(gs.CurrentChapter, gs.NationalPower)
	for next > gs.SubStage {
		gs.SubStage++
		if ss, ok := storyline.SubStageOf(gs.CurrentChapter, gs.SubStage); ok {
			gs.HistoricalEvents = append(gs.HistoricalEvents, "进入新阶段："+ss.Name)
		}
		gs.QuestQueue = append(gs.QuestQueue, storyline.SeedTasks(gs.CurrentChapter, gs.SubStage)...)
	}
}

// NextSeedTask pops the front of the quest queue.
func (gs *GameState) NextSeedTask() (string, bool) {
	if len(gs.QuestQueue) == 0 {
		return "", false
	}
	task := gs.QuestQueue[0]
	gs.QuestQueue = gs.QuestQueue[1:]
	return task, true
}

// RecentInventions returns the names of the n most recent inventions,
// newest first.
func (gs *GameState) RecentInventions(n int) []string {
	all := make([]InventionBlueprint, 0, len(gs.InventionResults))
	for _, bp := range gs.InventionResults {
		all = append(all, bp)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].InventedAt.Equal(all[j].InventedAt) {
			return all[i].Name < all[j].Name
		}
		return all[i].InventedAt.After(all[j].InventedAt)
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	names := make([]string, 0, len(all))
	for _, bp := range all {
		names = append(names, bp.Name)
	}
	return names
}
