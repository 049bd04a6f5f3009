// Package tools defines the function-calling schemas offered to the model.
package tools

// Tool names understood by the gateway
const (
	SaveInventionBlueprint       = "saveInventionBlueprint"
	GenerateQuestTask            = "generateQuestTask"
	GenerateQuestWithSuggestions = "generateQuestWithSuggestions"
)

// Enumerations shared with pkg/state validation
var (
	InventionCategories = []string{"农具", "兵器", "医药", "工艺", "机械", "建筑", "交通", "其他"}
	QuestDifficulties   = []string{"简单", "中等", "困难", "极难"}
	QuestCategories     = []string{"军事", "民生", "农业", "工艺", "医疗", "建筑", "其他"}
)

// Bounds encoded in the schemas
const (
	MinPowerIncrease = 10
	MaxPowerIncrease = 200
	MinQuestReward   = 5
	MaxQuestReward   = 100
	MinSuggestions   = 2
	MaxSuggestions   = 4
)

// Function describes a callable function
type Function struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Tool is an OpenAI-compatible tool descriptor
type Tool struct {
	Type     string   `json:"type"` // always "function"
	Function Function `json:"function"`
}

// ToolChoice forces the model to call one named function
type ToolChoice struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

// Force returns a tool_choice that pins the model to the named tool.
func Force(name string) *ToolChoice {
	tc := &ToolChoice{Type: "function"}
	tc.Function.Name = name
	return tc
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func enumProp(description string, values []string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
}

func intProp(description string, min, max int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     min,
		"maximum":     max,
	}
}

func questSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title":       stringProp("机遇任务的标题"),
			"description": stringProp("机遇任务的详细描述"),
			"difficulty":  enumProp("任务难度等级", QuestDifficulties),
			"category":    enumProp("任务类别", QuestCategories),
			"reward":      intProp("完成任务的潜在国力奖励", MinQuestReward, MaxQuestReward),
		},
		"required": []string{"title", "description", "difficulty", "category", "reward"},
	}
}

var inventionTool = Tool{
	Type: "function",
	Function: Function{
		Name:        SaveInventionBlueprint,
		Description: "保存发明蓝图到游戏系统，用于记录AI生成的发明成果",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":                  stringProp("发明的古雅名称，如：天工开物·某某器"),
				"description":           stringProp("详细的发明描述，包括原理、制作方法、使用效果等，语言要有古韵但易懂"),
				"nationalPowerIncrease": intProp("对国力的提升数值，范围10-200之间", MinPowerIncrease, MaxPowerIncrease),
				"category":              enumProp("发明类别", InventionCategories),
				"materials": map[string]interface{}{
					"type":        "array",
					"description": "所需材料清单",
					"items":       map[string]interface{}{"type": "string"},
				},
				"impact": stringProp("对社会的具体影响描述"),
			},
			"required": []string{"name", "description", "nationalPowerIncrease", "category", "materials", "impact"},
		},
	},
}

var questTool = Tool{
	Type: "function",
	Function: Function{
		Name:        GenerateQuestTask,
		Description: "生成新的机遇任务，为玩家提供发明灵感",
		Parameters:  questSchema(),
	},
}

var questWithSuggestionsTool = Tool{
	Type: "function",
	Function: Function{
		Name:        GenerateQuestWithSuggestions,
		Description: "生成一个机遇任务以及2-4个与之相关的发明建议",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"quest": questSchema(),
				"inventionSuggestions": map[string]interface{}{
					"type":        "array",
					"description": "与任务紧密相关的发明建议，每条简洁明了",
					"items":       map[string]interface{}{"type": "string"},
					"minItems":    MinSuggestions,
					"maxItems":    MaxSuggestions,
				},
			},
			"required": []string{"quest", "inventionSuggestions"},
		},
	},
}

var registry = map[string]Tool{
	SaveInventionBlueprint:       inventionTool,
	GenerateQuestTask:            questTool,
	GenerateQuestWithSuggestions: questWithSuggestionsTool,
}

// InventionTools returns the tools offered for blueprint generation.
func InventionTools() []Tool {
	return []Tool{inventionTool}
}

// QuestTools returns the legacy single-quest tool.
func QuestTools() []Tool {
	return []Tool{questTool}
}

// QuestWithSuggestionsTools returns the tools offered for quest generation.
func QuestWithSuggestionsTools() []Tool {
	return []Tool{questWithSuggestionsTool, questTool}
}

// All returns every registered tool.
func All() []Tool {
	return []Tool{inventionTool, questTool, questWithSuggestionsTool}
}

// Lookup returns the tool registered under name.
func Lookup(name string) (Tool, bool) {
	t, ok := registry[name]
	return t, ok
}

// Contains reports whether value is one of allowed.
func Contains(allowed []string, value string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
