package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/han-inventor/pkg/guided"
)

// SaveRecord is the persisted subset of GameState plus a write timestamp
// in Unix milliseconds.
type SaveRecord struct {
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
	Timestamp           int64                         `json:"timestamp"`
}

// ToRecord builds the persisted record, stamping it with now.
func ToRecord(gs *GameState, now time.Time) *SaveRecord {
	r := &SaveRecord{
		ID:                  gs.ID,
		NationalPower:       gs.NationalPower,
		MaxNationalPower:    gs.MaxNationalPower,
		CurrentChapter:      gs.CurrentChapter,
		SubStage:            gs.SubStage,
		AvailableCategories: gs.AvailableCategories,
		HistoricalEvents:    gs.HistoricalEvents,
		InventionResults:    gs.InventionResults,
		CurrentQuest:        gs.CurrentQuest,
		QuestQueue:          gs.QuestQueue,
		IsInventing:         gs.IsInventing,
		GuidedSession:       gs.GuidedSession,
		Timestamp:           now.UnixMilli(),
	}
	if r.AvailableCategories == nil {
		r.AvailableCategories = []string{}
	}
	if r.HistoricalEvents == nil {
		r.HistoricalEvents = []string{}
	}
	if r.InventionResults == nil {
		r.InventionResults = map[string]InventionBlueprint{}
	}
	if r.QuestQueue == nil {
		r.QuestQueue = []string{}
	}
	return r
}

// FromRecord rebuilds a GameState from a persisted record.
func FromRecord(r *SaveRecord) *GameState {
	if r == nil {
		return nil
	}
	gs := &GameState{
		ID:                  r.ID,
		NationalPower:       r.NationalPower,
		MaxNationalPower:    r.MaxNationalPower,
		CurrentChapter:      r.CurrentChapter,
		SubStage:            r.SubStage,
		AvailableCategories: r.AvailableCategories,
		HistoricalEvents:    r.HistoricalEvents,
		InventionResults:    r.InventionResults,
		CurrentQuest:        r.CurrentQuest,
		QuestQueue:          r.QuestQueue,
		IsInventing:         r.IsInventing,
		GuidedSession:       r.GuidedSession,
		UpdatedAt:           time.UnixMilli(r.Timestamp),
	}
	if gs.MaxNationalPower == 0 {
		gs.MaxNationalPower = DefaultMaxNationalPower
	}
	if gs.SubStage < 1 {
		gs.SubStage = 1
	}
	if gs.InventionResults == nil {
		gs.InventionResults = make(map[string]InventionBlueprint)
	}
	return gs
}
