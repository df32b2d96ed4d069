package taskview

import (
	"cmp"
	"slices"

	"github.com/yukikurage/tracker-api/internal/models"
)

var priorityRank = map[models.TaskPriority]int{
	models.PriorityUrgent: 0,
	models.PriorityHigh:   1,
	models.PriorityMedium: 2,
	models.PriorityLow:    3,
}

const noPriorityRank = 4

func rankOf(p *models.TaskPriority) int {
	if p == nil {
		return noPriorityRank
	}
	if r, ok := priorityRank[*p]; ok {
		return r
	}
	return noPriorityRank
}

// SortTasksByDueDate returns tasks ordered by ascending due date; tasks
// without one come last. The input is not modified.
func SortTasksByDueDate(tasks []models.Task) []models.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b models.Task) int {
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	})
	return sorted
}

// SortTasksByPriority returns tasks ordered urgent, high, medium, low, none.
// Ties keep their input order.
func SortTasksByPriority(tasks []models.Task) []models.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b models.Task) int {
		return cmp.Compare(rankOf(a.Priority), rankOf(b.Priority))
	})
	return sorted
}

// SortTasksByOrder returns tasks ordered by display order, nulls last.
func SortTasksByOrder(tasks []models.Task) []models.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b models.Task) int {
		switch {
		case a.DisplayOrder == nil && b.DisplayOrder == nil:
			return 0
		case a.DisplayOrder == nil:
			return 1
		case b.DisplayOrder == nil:
			return -1
		}
		return cmp.Compare(*a.DisplayOrder, *b.DisplayOrder)
	})
	return sorted
}
