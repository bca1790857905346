package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndComplete_Drops(t *testing.T) {
	tasks := []domain.Task{task(1, domain.CategoryCoding, 3, 5)}
	survivor := ProposedBlock{TaskID: 1, Start: at(monday, 10, 0), End: at(monday, 13, 0), Reason: "peak"}

	tests := []struct {
		name  string
		extra ProposedBlock
		check func(t *testing.T, r ValidationReport)
	}{
		{
			name:  "overlapping an accepted block",
			extra: ProposedBlock{TaskID: 1, Start: at(monday, 12, 0), End: at(monday, 14, 0)},
			check: func(t *testing.T, r ValidationReport) { assert.Equal(t, 1, r.DroppedOverlap) },
		},
		{
			name:  "zero length",
			extra: ProposedBlock{TaskID: 1, Start: at(monday, 15, 0), End: at(monday, 15, 0)},
			check: func(t *testing.T, r ValidationReport) { assert.Equal(t, 1, r.DroppedInvalid) },
		},
		{
			name:  "end before start",
			extra: ProposedBlock{TaskID: 1, Start: at(monday, 16, 0), End: at(monday, 15, 0)},
			check: func(t *testing.T, r ValidationReport) { assert.Equal(t, 1, r.DroppedInvalid) },
		},
		{
			name:  "unknown task",
			extra: ProposedBlock{TaskID: 42, Start: at(monday, 14, 0), End: at(monday, 15, 0)},
			check: func(t *testing.T, r ValidationReport) { assert.Equal(t, 1, r.DroppedUnknown) },
		},
		{
			name:  "spanning midnight",
			extra: ProposedBlock{TaskID: 1, Start: at(monday, 23, 0), End: at(monday.AddDate(0, 0, 1), 1, 0)},
			check: func(t *testing.T, r ValidationReport) { assert.Equal(t, 1, r.DroppedRestWindow) },
		},
		{
			name:  "early morning",
			extra: ProposedBlock{TaskID: 1, Start: at(monday, 5, 0), End: at(monday, 7, 0)},
			check: func(t *testing.T, r ValidationReport) { assert.Equal(t, 1, r.DroppedRestWindow) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewScheduleValidator(nil)

			blocks, report, err := v.ValidateAndComplete([]ProposedBlock{survivor, tt.extra}, tasks, monday, 9, 17)
			require.NoError(t, err)

			require.Len(t, blocks, 1)
			assert.Equal(t, at(monday, 10, 0), blocks[0].Start)
			assert.Equal(t, at(monday, 13, 0), blocks[0].End)
			assert.Equal(t, "peak", blocks[0].Reason)
			assert.Empty(t, report.Repacked)
			tt.check(t, report)
		})
	}
}

func TestValidateAndComplete_RepacksAroundSurvivors(t *testing.T) {
	tasks := []domain.Task{
		task(1, domain.CategoryCoding, 3, 8),
		task(2, domain.CategoryResearch, 3, 5),
		task(3, domain.CategoryAdmin, 0, 1),
	}
	proposed := []ProposedBlock{
		{TaskID: 1, Start: at(monday, 10, 0), End: at(monday, 13, 0)},
		{TaskID: 2, Start: at(monday, 23, 0), End: at(monday.AddDate(0, 0, 1), 1, 0)},
	}

	blocks, report, err := NewScheduleValidator(nil).ValidateAndComplete(proposed, tasks, monday, 9, 17)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DroppedRestWindow)
	assert.Equal(t, []int{2}, report.Repacked)

	type span struct {
		id         int
		start, end time.Time
	}
	var got []span
	for _, b := range blocks {
		got = append(got, span{b.TaskID, b.Start, b.End})
	}
	assert.Equal(t, []span{
		{1, at(monday, 10, 0), at(monday, 13, 0)},
		{2, at(monday, 9, 0), at(monday, 10, 0)},
		{2, at(monday, 13, 0), at(monday, 15, 0)},
	}, got)

	for i := range blocks {
		assert.NotEqual(t, 3, blocks[i].TaskID, "zero-hour task must not be scheduled")
		assert.False(t, TouchesRestWindow(blocks[i].Start, blocks[i].End))
		for j := i + 1; j < len(blocks); j++ {
			assert.False(t, blocks[i].Interval().Overlaps(blocks[j].Interval()),
				"blocks %d and %d overlap", i, j)
		}
	}
}

func TestValidateAndComplete_NothingMissing(t *testing.T) {
	tasks := []domain.Task{task(1, domain.CategoryCoding, 1, 5), task(2, domain.CategoryAdmin, 0, 1)}
	proposed := []ProposedBlock{{TaskID: 1, Start: at(monday, 9, 0), End: at(monday, 10, 0)}}

	blocks, report, err := NewScheduleValidator(nil).ValidateAndComplete(proposed, tasks, monday, 9, 17)
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	assert.Empty(t, report.Repacked)
}

func TestValidateAndComplete_RejectsBadWindow(t *testing.T) {
	tasks := []domain.Task{task(1, domain.CategoryCoding, 1, 5)}

	_, _, err := NewScheduleValidator(nil).ValidateAndComplete(nil, tasks, monday, 0, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}
