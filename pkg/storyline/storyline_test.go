package storyline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirst(t *testing.T) {
	c := First()
	assert.Equal(t, "第一章：立足蜀中，获得信任", c.Title)
	assert.Len(t, c.SubStages, 3)
}

func TestSeedTasks(t *testing.T) {
	title := First().Title

	tasks := SeedTasks(title, 1)
	assert.Len(t, tasks, 2)
	assert.Contains(t, tasks[0], "农具")

	assert.Empty(t, SeedTasks(title, 0))
	assert.Empty(t, SeedTasks(title, 99))
	assert.Empty(t, SeedTasks("不存在的章节", 1))
}

func TestFindTask(t *testing.T) {
	desc := First().SubStages[1].Tasks[1].Description

	task, ss, ok := FindTask(desc)
	assert.True(t, ok)
	assert.Equal(t, 70, task.Reward)
	assert.Equal(t, TaskLuxury, task.Category)
	assert.Equal(t, "改善品质", ss.Name)

	_, _, ok = FindTask("nothing")
	assert.False(t, ok)
}

func TestStageForPower(t *testing.T) {
	title := First().Title

	tests := []struct {
		power    int
		expected int
	}{
		{power: 0, expected: 1},
		{power: 199, expected: 1},
		{power: 200, expected: 2},
		{power: 399, expected: 2},
		{power: 400, expected: 3},
		{power: 1000, expected: 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, StageForPower(title, tt.power), "power %d", tt.power)
	}

	assert.Equal(t, 1, StageForPower("unknown", 500))
}
