package scheduler

import (
	"sort"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// PackingSort orders tasks for the sequential packer:
// 1. Category: lexical ascending (groups same-category work)
// 2. Priority: higher first
// 3. Time: longer first
// Ties keep their input order.
func PackingSort(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		// 1. Category
		if a.Category != b.Category {
			return a.Category < b.Category
		}

		// 2. Priority (higher first)
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}

		// 3. Time (longer first)
		return a.TimeHours > b.TimeHours
	})
}

// PrioritySort orders tasks by priority descending, keeping input order for ties.
func PrioritySort(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority > tasks[j].Priority
	})
}
