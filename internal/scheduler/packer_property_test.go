package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPackSequential_Invariants property-tests coverage, placement and
// ordering of packed blocks over random task sets and windows.
func TestPackSequential_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		dailyStart := rng.Intn(16) // 0-15, including starts inside the rest window
		dailyEnd := max(dailyStart, RestWindowEndHour) + rng.Intn(8) + 1
		if dailyEnd > 23 {
			dailyEnd = 23
		}
		weekStart := monday.AddDate(0, 0, rng.Intn(14))
		opts := PlainPack()
		if rng.Intn(2) == 1 {
			opts = CappedPack()
		}

		n := rng.Intn(8) + 1
		tasks := make([]domain.Task, n)
		want := map[int]time.Duration{}
		for i := range tasks {
			hours := float64(rng.Intn(40)+1) / 4 // 0.25–10h in quarter hours
			tasks[i] = task(i+1, domain.Categories[rng.Intn(len(domain.Categories))], hours, rng.Intn(10)+1)
			want[i+1] = tasks[i].Duration()
		}

		blocks, err := PackSequential(tasks, weekStart, dailyStart, dailyEnd, opts)
		require.NoError(t, err, "trial %d", trial)

		got := map[int]time.Duration{}
		for j, b := range blocks {
			got[b.TaskID] += b.Duration()

			// Invariant 1: duration_hours matches the wall-clock difference
			assert.Equal(t, b.End.Sub(b.Start).Hours(), b.DurationHours,
				"trial %d block %d: duration mismatch", trial, j)

			// Invariant 2: weekdays only, inside the daily window
			assert.False(t, isWeekend(b.Start), "trial %d block %d: starts on weekend", trial, j)
			assert.GreaterOrEqual(t, hourOf(b.Start), float64(dailyStart),
				"trial %d block %d: starts before daily_start", trial, j)
			assert.False(t, b.End.After(atHour(b.Start, dailyEnd)),
				"trial %d block %d: ends after daily_end", trial, j)

			// Invariant 3: capped variant never exceeds two hours
			if opts.MaxBlock > 0 {
				assert.LessOrEqual(t, b.Duration(), CappedBlockLimit,
					"trial %d block %d: exceeds cap", trial, j)
			}

			// Invariant 4: blocks are emitted in time order without overlap
			if j > 0 {
				assert.False(t, b.Start.Before(blocks[j-1].End),
					"trial %d block %d: overlaps previous block", trial, j)
			}

			// Invariant 5: nothing in the rest window
			assert.False(t, TouchesRestWindow(b.Start, b.End),
				"trial %d block %d: touches rest window", trial, j)
		}

		// Invariant 6: each task is covered exactly
		assert.Equal(t, want, got, "trial %d: coverage mismatch", trial)
	}
}
