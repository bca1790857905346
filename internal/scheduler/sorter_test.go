package scheduler

import (
	"testing"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ids(tasks []domain.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestPackingSort_CategoryThenPriorityThenLength(t *testing.T) {
	tasks := []domain.Task{
		task(1, domain.CategoryResearch, 1, 9),
		task(2, domain.CategoryCoding, 1, 5),
		task(3, domain.CategoryCoding, 3, 5),
		task(4, domain.CategoryCoding, 1, 8),
		task(5, domain.CategoryAdmin, 4, 1),
	}

	PackingSort(tasks)

	assert.Equal(t, []int{5, 4, 3, 2, 1}, ids(tasks))
}

func TestPackingSort_StableForTies(t *testing.T) {
	tasks := []domain.Task{
		task(7, domain.CategoryCoding, 2, 5),
		task(3, domain.CategoryCoding, 2, 5),
		task(9, domain.CategoryCoding, 2, 5),
	}

	PackingSort(tasks)

	assert.Equal(t, []int{7, 3, 9}, ids(tasks))
}

func TestPrioritySort_HighestFirstStable(t *testing.T) {
	tasks := []domain.Task{
		task(1, domain.CategoryCoding, 1, 3),
		task(2, domain.CategoryAdmin, 1, 9),
		task(3, domain.CategoryResearch, 1, 3),
		task(4, domain.CategoryCoding, 1, 9),
	}

	PrioritySort(tasks)

	assert.Equal(t, []int{2, 4, 1, 3}, ids(tasks))
}

func TestPrioritySort_IdempotentOnSortedInput(t *testing.T) {
	tasks := []domain.Task{
		task(1, domain.CategoryCoding, 1, 9),
		task(2, domain.CategoryCoding, 1, 5),
		task(3, domain.CategoryCoding, 1, 5),
	}

	PrioritySort(tasks)
	PrioritySort(tasks)

	assert.Equal(t, []int{1, 2, 3}, ids(tasks))
}
