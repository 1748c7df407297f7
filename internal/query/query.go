// Package query selects and orders the tasks a view should display.
//
// Everything here is a pure function of its arguments: the current time is
// passed in by the caller and input slices are never modified.
package query

import (
	"strings"
	"time"

	"github.com/nissyi-gh/taskflow/internal/model"
	"golang.org/x/text/language"
)

// View is the active top-level filter.
type View string

const (
	ViewAll       View = "all"
	ViewToday     View = "today"
	ViewUpcoming  View = "upcoming"
	ViewCompleted View = "completed"
	ViewOverdue   View = "overdue"
	ViewCategory  View = "category"
)

// Views lists the selectable views in navigation order.
var Views = []View{ViewAll, ViewToday, ViewUpcoming, ViewCompleted, ViewOverdue, ViewCategory}

// Valid returns true for a known view.
func (v View) Valid() bool {
	for _, x := range Views {
		if v == x {
			return true
		}
	}
	return false
}

// Params selects and orders tasks.
type Params struct {
	View View
	// CategoryID is only consulted when View is ViewCategory.
	CategoryID string
	Search     string
	Sort       SortKey
	// Locale drives alphabetical collation. The zero value uses the root collation.
	Locale language.Tag
}

// Tasks returns the tasks matching p, ordered by p.Sort. The result holds
// copies; tasks is left untouched.
func Tasks(tasks []model.Task, p Params, now time.Time) []model.Task {
	search := strings.ToLower(strings.TrimSpace(p.Search))
	today := model.Today(now)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !InView(t, p.View, p.CategoryID, today, now) {
			continue
		}
		if !t.Matches(search) {
			continue
		}
		out = append(out, t.Clone())
	}
	Sort(out, p.Sort, p.Locale)
	return out
}

// InView applies the view filter to a single task. Unknown views behave
// like ViewAll.
func InView(t model.Task, view View, categoryID, today string, now time.Time) bool {
	switch view {
	case ViewToday:
		return !t.Completed && t.IsDueOn(today)
	case ViewUpcoming:
		return !t.Completed && t.DueDate != nil && *t.DueDate > today
	case ViewCompleted:
		return t.Completed
	case ViewOverdue:
		return t.IsOverdue(now)
	case ViewCategory:
		return t.CategoryID != nil && *t.CategoryID == categoryID
	default:
		return true
	}
}
