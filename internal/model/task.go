package model

import (
	"strings"
	"time"
)

const (
	// DateLayout is the layout of Task.DueDate.
	DateLayout = "2006-01-02"
	// TimeLayout is the layout of Task.DueTime.
	TimeLayout = "15:04"
)

// Subtask is a checklist entry owned by a Task. It has no identity beyond
// its index in the parent's Subtasks.
type Subtask struct {
	Text string `json:"text" yaml:"text"`
	Done bool   `json:"done" yaml:"done"`
}

// Task represents a single to-do item.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	DueDate     *string    `json:"dueDate" yaml:"dueDate,omitempty"`
	DueTime     *string    `json:"dueTime" yaml:"dueTime,omitempty"`
	CategoryID  *string    `json:"categoryId" yaml:"categoryId,omitempty"`
	Subtasks    []Subtask  `json:"subtasks" yaml:"subtasks,omitempty"`
	Completed   bool       `json:"completed" yaml:"completed"`
	CompletedAt *time.Time `json:"completedAt" yaml:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
}

// Today returns the calendar date of now in DateLayout.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// SetCompleted updates Completed and keeps CompletedAt in step with it.
func (t *Task) SetCompleted(done bool, now time.Time) {
	t.Completed = done
	if done {
		at := now
		t.CompletedAt = &at
		return
	}
	t.CompletedAt = nil
}

// AllSubtasksDone reports whether the task has subtasks and every one is done.
func (t Task) AllSubtasksDone() bool {
	if len(t.Subtasks) == 0 {
		return false
	}
	for _, s := range t.Subtasks {
		if !s.Done {
			return false
		}
	}
	return true
}

// DoneSubtasks returns the number of finished subtasks.
func (t Task) DoneSubtasks() int {
	n := 0
	for _, s := range t.Subtasks {
		if s.Done {
			n++
		}
	}
	return n
}

// IsDueOn returns true if the task's due date equals day (DateLayout).
func (t Task) IsDueOn(day string) bool {
	return t.DueDate != nil && *t.DueDate == day
}

// DueMoment returns the instant the task becomes overdue, interpreted in loc.
// A task without a due time is due at 23:59:59 of its due date.
func (t Task) DueMoment(loc *time.Location) (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(DateLayout, *t.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	if t.DueTime != nil && *t.DueTime != "" {
		clock, err := time.Parse(TimeLayout, *t.DueTime)
		if err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), true
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc), true
}

// IsOverdue returns true if the task is incomplete and its due moment is
// strictly before now.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	due, ok := t.DueMoment(now.Location())
	if !ok {
		return false
	}
	return due.Before(now)
}

// DueState classifies a task's due date relative to now for display.
type DueState int

const (
	DueNone DueState = iota
	DueLater
	DueTomorrow
	DueToday
	DueOverdue
)

// DueState returns how the due date should be presented. Today and tomorrow
// take precedence over overdue so a task due earlier today still reads "Today".
func (t Task) DueState(now time.Time) DueState {
	if t.DueDate == nil {
		return DueNone
	}
	switch *t.DueDate {
	case Today(now):
		return DueToday
	case Today(now.AddDate(0, 0, 1)):
		return DueTomorrow
	}
	if t.IsOverdue(now) {
		return DueOverdue
	}
	return DueLater
}

// Matches reports whether query (already lower-cased) is a substring of the
// title or the description.
func (t Task) Matches(query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), query)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.DueDate = cloneString(t.DueDate)
	c.DueTime = cloneString(t.DueTime)
	c.CategoryID = cloneString(t.CategoryID)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.Subtasks != nil {
		c.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(c.Subtasks, t.Subtasks)
	}
	return c
}

// CloneTasks deep-copies a task slice.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DueLabel renders the due date for display: "Today", "Tomorrow" or the
// date itself, followed by the due time when set. Empty without a due date.
func (t Task) DueLabel(now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	var label string
	switch t.DueState(now) {
	case DueToday:
		label = "Today"
	case DueTomorrow:
		label = "Tomorrow"
	default:
		label = *t.DueDate
	}
	if t.DueTime != nil && *t.DueTime != "" {
		label += " " + *t.DueTime
	}
	return label
}
