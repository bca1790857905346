package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday is 2024-01-01, a Monday.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func task(id int, cat domain.Category, hours float64, priority int) domain.Task {
	return domain.Task{ID: id, Title: "task", Category: cat, TimeHours: hours, Priority: priority}
}

func TestPackSequential_GroupsByCategory(t *testing.T) {
	tasks := []domain.Task{
		task(3, domain.CategoryResearch, 2, 9),
		task(2, domain.CategoryCoding, 1, 5),
		task(1, domain.CategoryCoding, 3, 7),
	}

	blocks, err := PackSequential(tasks, monday, 9, 17, PlainPack())
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, 1, blocks[0].TaskID)
	assert.Equal(t, at(monday, 9, 0), blocks[0].Start)
	assert.Equal(t, at(monday, 12, 0), blocks[0].End)

	assert.Equal(t, 2, blocks[1].TaskID)
	assert.Equal(t, at(monday, 12, 0), blocks[1].Start)
	assert.Equal(t, at(monday, 13, 0), blocks[1].End)

	assert.Equal(t, 3, blocks[2].TaskID)
	assert.Equal(t, at(monday, 13, 0), blocks[2].Start)
	assert.Equal(t, at(monday, 15, 0), blocks[2].End)
}

func TestPackSequential_SplitsAcrossDays(t *testing.T) {
	blocks, err := PackSequential([]domain.Task{task(1, domain.CategoryCoding, 10, 5)}, monday, 9, 17, PlainPack())
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, at(monday, 9, 0), blocks[0].Start)
	assert.Equal(t, at(monday, 17, 0), blocks[0].End)
	assert.Equal(t, 8.0, blocks[0].DurationHours)

	tuesday := monday.AddDate(0, 0, 1)
	assert.Equal(t, at(tuesday, 9, 0), blocks[1].Start)
	assert.Equal(t, at(tuesday, 11, 0), blocks[1].End)
	assert.Equal(t, 2.0, blocks[1].DurationHours)
}

func TestPackSequential_ExactWindowIsOneBlock(t *testing.T) {
	blocks, err := PackSequential([]domain.Task{task(1, domain.CategoryAdmin, 8, 5)}, monday, 9, 17, PlainPack())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, at(monday, 17, 0), blocks[0].End)
}

func TestPackSequential_SkipsWeekend(t *testing.T) {
	friday := monday.AddDate(0, 0, 4)
	blocks, err := PackSequential([]domain.Task{task(1, domain.CategoryCoding, 10, 5)}, friday, 9, 17, PlainPack())
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, time.Friday, blocks[0].Start.Weekday())
	nextMonday := monday.AddDate(0, 0, 7)
	assert.Equal(t, at(nextMonday, 9, 0), blocks[1].Start)
	assert.Equal(t, at(nextMonday, 11, 0), blocks[1].End)
}

func TestPackSequential_WeekStartOnSaturday(t *testing.T) {
	saturday := monday.AddDate(0, 0, 5)
	blocks, err := PackSequential([]domain.Task{task(1, domain.CategoryCoding, 1, 5)}, saturday, 9, 17, PlainPack())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, at(monday.AddDate(0, 0, 7), 9, 0), blocks[0].Start)
}

func TestPackSequential_CappedVariantLimitsBlocks(t *testing.T) {
	blocks, err := PackSequential([]domain.Task{task(1, domain.CategoryCoding, 5, 5)}, monday, 9, 17, CappedPack())
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, 2.0, blocks[0].DurationHours)
	assert.Equal(t, 2.0, blocks[1].DurationHours)
	assert.Equal(t, 1.0, blocks[2].DurationHours)
	assert.Equal(t, at(monday, 14, 0), blocks[2].End)
}

func TestPackSequential_NeverStartsInRestWindow(t *testing.T) {
	blocks, err := PackSequential([]domain.Task{task(1, domain.CategoryCoding, 2, 5)}, monday, 4, 10, PlainPack())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, at(monday, 6, 0), blocks[0].Start)
	assert.Equal(t, at(monday, 8, 0), blocks[0].End)
}

func TestPackSequential_RoutesAroundBusyIntervals(t *testing.T) {
	opts := PlainPack()
	opts.Busy = []domain.Interval{{Start: at(monday, 10, 0), End: at(monday, 11, 0)}}

	blocks, err := PackSequential([]domain.Task{task(1, domain.CategoryCoding, 3, 5)}, monday, 9, 17, opts)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, at(monday, 9, 0), blocks[0].Start)
	assert.Equal(t, at(monday, 10, 0), blocks[0].End)
	assert.Equal(t, at(monday, 11, 0), blocks[1].Start)
	assert.Equal(t, at(monday, 13, 0), blocks[1].End)
}

func TestPackSequential_EmptyInput(t *testing.T) {
	blocks, err := PackSequential(nil, monday, 9, 17, PlainPack())
	require.NoError(t, err)
	assert.NotNil(t, blocks)
	assert.Empty(t, blocks)
}

func TestPackSequential_RejectsNonPositiveHours(t *testing.T) {
	_, err := PackSequential([]domain.Task{task(1, domain.CategoryCoding, 0, 5)}, monday, 9, 17, PlainPack())
	assert.ErrorIs(t, err, domain.ErrInvalidTask)

	_, err = PackSequential([]domain.Task{task(1, domain.CategoryCoding, -2, 5)}, monday, 9, 17, PlainPack())
	assert.ErrorIs(t, err, domain.ErrInvalidTask)

	// Positive but below one second once rounded.
	_, err = PackSequential([]domain.Task{task(1, domain.CategoryCoding, 0.0001, 5)}, monday, 9, 17, PlainPack())
	assert.ErrorIs(t, err, domain.ErrInvalidTask)
}

func TestPackSequential_RejectsBadWindow(t *testing.T) {
	tasks := []domain.Task{task(1, domain.CategoryCoding, 1, 5)}

	_, err := PackSequential(tasks, monday, 17, 9, PlainPack())
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = PackSequential(tasks, monday, 9, 9, PlainPack())
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = PackSequential(tasks, monday, -1, 9, PlainPack())
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestValidateWindow_RestWindowOverlap(t *testing.T) {
	cases := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{"inside rest window", 0, 5, true},
		{"ends at rest window end", 0, 6, true},
		{"starts inside, ends at rest end", 3, 6, true},
		{"spans rest window end", 0, 8, false},
		{"starts inside, ends after", 5, 7, false},
		{"regular day", 9, 17, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateWindow(tc.start, tc.end)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidWindow)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPackSequential_WindowReachingIntoRestStartsAtRestEnd(t *testing.T) {
	tasks := []domain.Task{task(1, domain.CategoryCoding, 1, 5)}

	_, err := PackSequential(tasks, monday, 0, 6, PlainPack())
	require.ErrorIs(t, err, domain.ErrInvalidWindow)

	blocks, err := PackSequential(tasks, monday, 0, 8, PlainPack())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, at(monday, 6, 0), blocks[0].Start)
	assert.Equal(t, at(monday, 7, 0), blocks[0].End)
}

func TestPackSequential_OrderIndependentForDistinctKeys(t *testing.T) {
	a := task(1, domain.CategoryAdmin, 2, 3)
	b := task(2, domain.CategoryCoding, 4, 8)
	c := task(3, domain.CategoryCoding, 1, 2)
	d := task(4, domain.CategoryResearch, 3, 6)

	first, err := PackSequential([]domain.Task{a, b, c, d}, monday, 9, 17, PlainPack())
	require.NoError(t, err)
	second, err := PackSequential([]domain.Task{d, c, b, a}, monday, 9, 17, PlainPack())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPackSequential_DoesNotMutateInput(t *testing.T) {
	tasks := []domain.Task{
		task(1, domain.CategoryResearch, 1, 1),
		task(2, domain.CategoryAdmin, 1, 1),
	}
	_, err := PackSequential(tasks, monday, 9, 17, PlainPack())
	require.NoError(t, err)
	assert.Equal(t, 1, tasks[0].ID)
	assert.Equal(t, 2, tasks[1].ID)
}

func TestPackingSort(t *testing.T) {
	tasks := []domain.Task{
		task(1, domain.CategoryResearch, 1, 5),
		task(2, domain.CategoryCoding, 1, 5),
		task(3, domain.CategoryCoding, 3, 5),
		task(4, domain.CategoryCoding, 1, 9),
		task(5, domain.CategoryAdmin, 1, 1),
	}
	PackingSort(tasks)

	ids := make([]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	assert.Equal(t, []int{5, 4, 3, 2, 1}, ids)
}

func TestWeekStart(t *testing.T) {
	wednesday := time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(wednesday))

	sunday := time.Date(2024, 1, 7, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(sunday))
	assert.Equal(t, monday, WeekStart(monday))
}
