package ui

import (
	"fmt"
	"time"

	"github.com/nissyi-gh/taskflow/internal/model"
)

// TaskItem wraps model.Task to satisfy the list.DefaultItem interface.
type TaskItem struct {
	Task model.Task
	// Category is nil when the task has none or references a deleted one.
	Category *model.Category
	Now      time.Time
}

func (i TaskItem) Title() string {
	check := "[ ]"
	if i.Task.Completed {
		check = "[x]"
	}
	priorityMark := ""
	switch i.Task.Priority {
	case model.PriorityUrgent:
		priorityMark = "‼ "
	case model.PriorityHigh:
		priorityMark = "! "
	}
	dueMark := ""
	if i.Task.IsOverdue(i.Now) {
		dueMark = "⚠️ "
	} else if i.Task.DueState(i.Now) == model.DueToday {
		dueMark = "📅 "
	}
	progress := ""
	if n := len(i.Task.Subtasks); n > 0 {
		progress = fmt.Sprintf(" (%d/%d)", i.Task.DoneSubtasks(), n)
	}
	return fmt.Sprintf("%s %s%s%s%s", check, priorityMark, dueMark, i.Task.Title, progress)
}

func (i TaskItem) Description() string {
	return ""
}

func (i TaskItem) FilterValue() string {
	return i.Task.Title
}

// BuildItems resolves each task's category and wraps it for the list.
func BuildItems(tasks []model.Task, categories []model.Category, now time.Time) []TaskItem {
	items := make([]TaskItem, len(tasks))
	for idx, t := range tasks {
		item := TaskItem{Task: t, Now: now}
		if c, ok := model.LookupCategory(categories, t.CategoryID); ok {
			item.Category = &c
		}
		items[idx] = item
	}
	return items
}
