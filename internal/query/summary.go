package query

import (
	"math"
	"time"

	"github.com/nissyi-gh/taskflow/internal/model"
)

// Summary holds the counters shown next to the task list.
type Summary struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int
	// Percent is the rounded share of completed tasks, 0 when there are none.
	Percent int
	// Badges counts incomplete tasks per view, except ViewCompleted which
	// counts completed ones.
	Badges map[View]int
	// ByCategory counts incomplete tasks per category id.
	ByCategory map[string]int
}

// Summarize computes the counters for tasks at now.
func Summarize(tasks []model.Task, categories []model.Category, now time.Time) Summary {
	s := Summary{
		Total:      len(tasks),
		Badges:     make(map[View]int, len(Views)),
		ByCategory: make(map[string]int, len(categories)),
	}
	for _, c := range categories {
		s.ByCategory[c.ID] = 0
	}

	today := model.Today(now)
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
			continue
		}
		s.Pending++
		if InView(t, ViewToday, "", today, now) {
			s.Badges[ViewToday]++
		}
		if InView(t, ViewUpcoming, "", today, now) {
			s.Badges[ViewUpcoming]++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
		if t.CategoryID != nil {
			if _, ok := s.ByCategory[*t.CategoryID]; ok {
				s.ByCategory[*t.CategoryID]++
			}
		}
	}
	s.Badges[ViewAll] = s.Pending
	s.Badges[ViewCompleted] = s.Completed
	s.Badges[ViewOverdue] = s.Overdue

	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
