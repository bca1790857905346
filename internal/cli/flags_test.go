package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
)

func TestCategoryFlag(t *testing.T) {
	var c domain.Category
	f := categoryFlag{&c}
	require.NoError(t, f.Set(" Research "))
	assert.Equal(t, domain.CategoryResearch, c)
	assert.Equal(t, "research", f.String())
	assert.Error(t, f.Set("cooking"))
}

func TestPriorityFlag(t *testing.T) {
	var p int
	f := priorityFlag{&p}
	require.NoError(t, f.Set("10"))
	assert.Equal(t, 10, p)
	for _, bad := range []string{"0", "11", "high"} {
		assert.Error(t, f.Set(bad), bad)
	}
}

func TestDateFlag(t *testing.T) {
	var d time.Time
	loc := time.FixedZone("UTC+2", 2*3600)
	f := dateFlag{value: &d, loc: loc}
	assert.Equal(t, "", f.String())
	require.NoError(t, f.Set("2025-01-08"))
	assert.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, loc), d)
	assert.Equal(t, "2025-01-08", f.String())
	assert.Error(t, f.Set("tomorrow"))
}

func TestOnTimeFlag(t *testing.T) {
	var v domain.DoneOnTime
	f := onTimeFlag{&v}
	require.NoError(t, f.Set("Y"))
	assert.Equal(t, domain.DoneOnTimeYes, v)
	require.NoError(t, f.Set("false"))
	assert.Equal(t, domain.DoneOnTimeNo, v)
	assert.Error(t, f.Set("maybe"))
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", "#22"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 22}, ids)

	_, err = parseIDs([]string{"0"})
	assert.Error(t, err)
}

func TestChooseSuggestions(t *testing.T) {
	all := []intelligence.SuggestedTask{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	a := &App{}

	got, err := chooseSuggestions(a, all, nil, false)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = chooseSuggestions(a, all, []int{3, 1}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, []string{got[0].Title, got[1].Title})

	_, err = chooseSuggestions(a, all, []int{4}, false)
	assert.Error(t, err)
}

func TestTaskFormFieldsApply(t *testing.T) {
	var task domain.Task
	_, fields := newTaskForm(&task)
	assert.Equal(t, domain.CategoryResearch, task.Category)
	assert.Equal(t, domain.ArtifactNotes, task.Artifact)

	fields.hours = "1.25"
	fields.priority = "9"
	require.NoError(t, fields.apply(&task))
	assert.Equal(t, 1.25, task.TimeHours)
	assert.Equal(t, 9, task.Priority)

	fields.priority = "99"
	assert.Error(t, fields.apply(&task))
}
