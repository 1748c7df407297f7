package query

import (
	"slices"
	"strings"

	"github.com/nissyi-gh/taskflow/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of a task list.
type SortKey string

const (
	SortCreated      SortKey = "created"
	SortDueDate      SortKey = "dueDate"
	SortPriority     SortKey = "priority"
	SortAlphabetical SortKey = "alphabetical"
)

// SortKeys lists the sort keys in menu order.
var SortKeys = []SortKey{SortCreated, SortDueDate, SortPriority, SortAlphabetical}

// Valid returns true for a known sort key.
func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

// Label returns a display name for the key.
func (k SortKey) Label() string {
	switch k {
	case SortDueDate:
		return "due date"
	case SortPriority:
		return "priority"
	case SortAlphabetical:
		return "A-Z"
	default:
		return "newest"
	}
}

// Sort orders tasks in place. The sort is stable, so ties keep their
// relative order and sorting twice by the same key is a no-op. Unknown keys
// sort by creation time, newest first.
func Sort(tasks []model.Task, key SortKey, locale language.Tag) {
	switch key {
	case SortDueDate:
		slices.SortStableFunc(tasks, compareDueDate)
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b model.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		})
	case SortAlphabetical:
		c := collate.New(locale)
		slices.SortStableFunc(tasks, func(a, b model.Task) int {
			return c.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(tasks, func(a, b model.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}

// compareDueDate orders by ISO date ascending, tasks without a date last.
func compareDueDate(a, b model.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return strings.Compare(*a.DueDate, *b.DueDate)
}
