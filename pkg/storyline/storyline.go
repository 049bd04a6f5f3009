// Package storyline holds the static chapter table that seeds quests and
// drives sub-stage progression.
package storyline

// Task categories used by seed tasks
const (
	TaskBasic  = "basic"
	TaskLuxury = "luxury"
)

// Task is a seed quest offered when a sub-stage begins.
type Task struct {
	Description string `json:"description"`
	Category    string `json:"category"` // "basic" or "luxury"
	Reward      int    `json:"reward"`
}

// SubStage is one step of a chapter. It unlocks once national power reaches
// PowerThreshold.
type SubStage struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	PowerThreshold int    `json:"powerThreshold"`
	Tasks          []Task `json:"tasks"`
}

// Chapter is a titled sequence of sub-stages.
type Chapter struct {
	Title     string     `json:"title"`
	SubStages []SubStage `json:"subStages"`
}

// Storyline is the full chapter table.
var Storyline = []Chapter{
	{
		Title: "第一章：立足蜀中，获得信任",
		SubStages: []SubStage{
			{
				Name:           "安身立命",
				Description:    "解决蜀中百姓与军士的生存之忧，奠定立足之本。",
				PowerThreshold: 0,
				Tasks: []Task{
					{
						Description: "丞相府邸传来消息，今年的蜀中雨水过多，许多农具因潮湿而加速朽坏，来年春耕恐受影响，百姓忧心忡忡。你是否能构想一种更耐久的材料，或是一种能提升耕作效率的新式农具？",
						Category:    TaskBasic,
						Reward:      50,
					},
					{
						Description: "军医处传来简报，军士在潮湿环境下，伤口极易感染恶化，非战斗减员日益增多。寻常的布帛和草药，已难堪大用。你是否有办法创造出更有效的清创和包扎之物？",
						Category:    TaskBasic,
						Reward:      60,
					},
				},
			},
			{
				Name:           "改善品质",
				Description:    "在满足基本需求后，提高民生与生活质量。",
				PowerThreshold: 200,
				Tasks: []Task{
					{
						Description: "成都工坊制作的布帛粗糙，士绅不愿穿着。能否改良纺织工艺，使布帛更为细致？",
						Category:    TaskBasic,
						Reward:      40,
					},
					{
						Description: "市井夜色昏暗，商贾苦于夜间无灯。若有长明之灯，可大增商贾之利。",
						Category:    TaskLuxury,
						Reward:      70,
					},
				},
			},
			{
				Name:           "讨好权贵",
				Description:    "通过精巧奢华之物赢得上层青睐，巩固地位。",
				PowerThreshold: 400,
				Tasks: []Task{
					{
						Description: "丞相欲于府中设宴，需要一套能自鸣报时的机关，以示奇技。能否造出此物？",
						Category:    TaskLuxury,
						Reward:      80,
					},
					{
						Description: "太守钟爱园林，渴望有自动浇灌之法，使花木常盛。",
						Category:    TaskLuxury,
						Reward:      90,
					},
				},
			},
		},
	},
}

// First returns the opening chapter.
func First() Chapter {
	return Storyline[0]
}

// Find looks up a chapter by title.
func Find(title string) (Chapter, bool) {
	for _, c := range Storyline {
		if c.Title == title {
			return c, true
		}
	}
	return Chapter{}, false
}

// SubStageOf returns the 1-based sub-stage n of the named chapter.
func SubStageOf(title string, n int) (SubStage, bool) {
	c, ok := Find(title)
	if !ok || n < 1 || n > len(c.SubStages) {
		return SubStage{}, false
	}
	return c.SubStages[n-1], true
}

// SeedTasks returns the task descriptions of a sub-stage, in order.
// Unknown chapters or sub-stages yield an empty slice.
func SeedTasks(title string, n int) []string {
	ss, ok := SubStageOf(title, n)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(ss.Tasks))
	for _, t := range ss.Tasks {
		out = append(out, t.Description)
	}
	return out
}

// FindTask locates a seed task by its description across all chapters and
// returns it together with the sub-stage it belongs to.
func FindTask(description string) (Task, SubStage, bool) {
	for _, c := range Storyline {
		for _, ss := range c.SubStages {
			for _, t := range ss.Tasks {
				if t.Description == description {
					return t, ss, true
				}
			}
		}
	}
	return Task{}, SubStage{}, false
}

// StageForPower returns the highest 1-based sub-stage of the chapter whose
// threshold has been reached. Unknown chapters return 1.
func StageForPower(title string, power int) int {
	c, ok := Find(title)
	if !ok {
		return 1
	}
	stage := 1
	for i, ss := range c.SubStages {
		if power >= ss.PowerThreshold {
			stage = i + 1
		}
	}
	return stage
}
