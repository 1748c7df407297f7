package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/nissyi-gh/taskflow/internal/model"
)

// taskLine renders one task of "ls".
func (r *runner) taskLine(t model.Task, categories []model.Category, now time.Time) string {
	box := "[ ]"
	title := t.Title
	if t.Completed {
		box = r.out.ok.Render("[x]")
		title = r.out.muted.Render(title)
	}
	parts := []string{box, r.out.muted.Render(shortID(t.ID)), title}

	if t.Priority != model.PriorityNone && t.Priority != "" {
		parts = append(parts, "!"+string(t.Priority))
	}
	if label := t.DueLabel(now); label != "" {
		switch t.DueState(now) {
		case model.DueOverdue:
			label = r.out.overdue.Render(label)
		case model.DueToday:
			if t.IsOverdue(now) {
				label = r.out.overdue.Render(label)
			} else {
				label = r.out.today.Render(label)
			}
		}
		parts = append(parts, label)
	}
	if t.CategoryID != nil {
		if c, ok := model.LookupCategory(categories, t.CategoryID); ok {
			parts = append(parts, r.out.color(c.Color).Render("#"+c.Name))
		}
	}
	if n := len(t.Subtasks); n > 0 {
		parts = append(parts, r.out.muted.Render(fmt.Sprintf("%d/%d", t.DoneSubtasks(), n)))
	}
	return strings.Join(parts, "  ")
}
