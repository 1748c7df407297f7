package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/state"
)

// TaskInput carries the user-editable fields of a task. Empty strings mean
// "not set".
type TaskInput struct {
	Title       string
	Description string
	Priority    model.Priority
	DueDate     string
	DueTime     string
	CategoryID  string
	Subtasks    []model.Subtask
}

// InputFrom returns the editable fields of t, for prefilling an edit.
func InputFrom(t model.Task) TaskInput {
	in := TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
	}
	if t.DueDate != nil {
		in.DueDate = *t.DueDate
	}
	if t.DueTime != nil {
		in.DueTime = *t.DueTime
	}
	if t.CategoryID != nil {
		in.CategoryID = *t.CategoryID
	}
	in.Subtasks = append([]model.Subtask(nil), t.Subtasks...)
	return in
}

func (in TaskInput) normalize() (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, ErrEmptyTitle
	}
	in.Description = strings.TrimSpace(in.Description)

	p, err := model.ParsePriority(strings.TrimSpace(string(in.Priority)))
	if err != nil {
		return in, fmt.Errorf("%w: %q", ErrInvalidPriority, in.Priority)
	}
	in.Priority = p

	in.DueDate = strings.TrimSpace(in.DueDate)
	in.DueTime = strings.TrimSpace(in.DueTime)
	if in.DueDate != "" {
		if _, err := time.Parse(model.DateLayout, in.DueDate); err != nil {
			return in, fmt.Errorf("%w: %q", ErrInvalidDueDate, in.DueDate)
		}
	} else {
		in.DueTime = ""
	}
	if in.DueTime != "" {
		if _, err := time.Parse(model.TimeLayout, in.DueTime); err != nil {
			return in, fmt.Errorf("%w: %q", ErrInvalidDueTime, in.DueTime)
		}
	}

	in.CategoryID = strings.TrimSpace(in.CategoryID)

	subtasks := make([]model.Subtask, 0, len(in.Subtasks))
	for _, st := range in.Subtasks {
		st.Text = strings.TrimSpace(st.Text)
		if st.Text == "" {
			continue
		}
		subtasks = append(subtasks, st)
	}
	in.Subtasks = subtasks
	return in, nil
}

func (in TaskInput) apply(t *model.Task) {
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority
	t.DueDate = model.StringPtr(in.DueDate)
	t.DueTime = model.StringPtr(in.DueTime)
	t.CategoryID = model.StringPtr(in.CategoryID)
	t.Subtasks = append([]model.Subtask{}, in.Subtasks...)
}

// CreateTask validates in and appends a new incomplete task.
func (s *Service) CreateTask(in TaskInput) (model.Task, error) {
	in, err := in.normalize()
	if err != nil {
		s.logger.Debug("create task rejected", "err", err)
		return model.Task{}, err
	}

	t := model.Task{ID: model.NewID(), CreatedAt: s.now()}
	in.apply(&t)

	s.state.Update(func(d *state.State) bool {
		d.Tasks = append(d.Tasks, t.Clone())
		return true
	})
	s.logger.Info("task created", "id", t.ID, "title", t.Title)
	return t, nil
}

// UpdateTask replaces the editable fields of the task with id. It reports
// false, without error, when no such task exists.
func (s *Service) UpdateTask(id string, in TaskInput) (bool, error) {
	in, err := in.normalize()
	if err != nil {
		s.logger.Debug("update task rejected", "id", id, "err", err)
		return false, err
	}

	found := false
	s.state.Update(func(d *state.State) bool {
		i := d.TaskIndex(id)
		if i < 0 {
			return false
		}
		in.apply(&d.Tasks[i])
		found = true
		return true
	})
	if found {
		s.logger.Info("task updated", "id", id)
	}
	return found, nil
}

// DeleteTask removes the task with id. Deleting an absent task is a no-op.
func (s *Service) DeleteTask(id string) bool {
	found := false
	s.state.Update(func(d *state.State) bool {
		i := d.TaskIndex(id)
		if i < 0 {
			return false
		}
		d.Tasks = append(d.Tasks[:i], d.Tasks[i+1:]...)
		found = true
		return true
	})
	if found {
		s.logger.Info("task deleted", "id", id)
	}
	return found
}

// DuplicateTask appends an incomplete copy of the task with id, with a new
// id and creation time, the title suffixed with CopySuffix and every subtask
// reset.
func (s *Service) DuplicateTask(id string) (model.Task, bool) {
	var dup model.Task
	found := false
	s.state.Update(func(d *state.State) bool {
		i := d.TaskIndex(id)
		if i < 0 {
			return false
		}
		dup = d.Tasks[i].Clone()
		dup.ID = model.NewID()
		dup.Title += CopySuffix
		dup.CreatedAt = s.now()
		dup.SetCompleted(false, dup.CreatedAt)
		for j := range dup.Subtasks {
			dup.Subtasks[j].Done = false
		}
		d.Tasks = append(d.Tasks, dup.Clone())
		found = true
		return true
	})
	if found {
		s.logger.Info("task duplicated", "source", id, "id", dup.ID)
	}
	return dup, found
}

// ToggleTask flips the completion of the task with id and returns the
// updated task.
func (s *Service) ToggleTask(id string) (model.Task, bool) {
	var out model.Task
	found := false
	s.state.Update(func(d *state.State) bool {
		i := d.TaskIndex(id)
		if i < 0 {
			return false
		}
		t := &d.Tasks[i]
		t.SetCompleted(!t.Completed, s.now())
		out = t.Clone()
		found = true
		return true
	})
	if found {
		s.logger.Info("task toggled", "id", id, "completed", out.Completed)
	}
	return out, found
}

// ToggleSubtask flips subtask index of the task with id. When that leaves
// every subtask done and the task was still open, the task is completed too;
// autoCompleted reports that. Reopening a subtask never reopens the task.
func (s *Service) ToggleSubtask(id string, index int) (autoCompleted, ok bool) {
	s.state.Update(func(d *state.State) bool {
		i := d.TaskIndex(id)
		if i < 0 || index < 0 || index >= len(d.Tasks[i].Subtasks) {
			return false
		}
		t := &d.Tasks[i]
		t.Subtasks[index].Done = !t.Subtasks[index].Done
		if t.AllSubtasksDone() && !t.Completed {
			t.SetCompleted(true, s.now())
			autoCompleted = true
		}
		ok = true
		return true
	})
	if ok {
		s.logger.Info("subtask toggled", "id", id, "index", index, "auto_completed", autoCompleted)
	}
	return autoCompleted, ok
}

// MarkAllDone completes every open task and all of its subtasks. It returns
// the number of tasks changed, or ErrNothingPending.
func (s *Service) MarkAllDone() (int, error) {
	n := 0
	s.state.Update(func(d *state.State) bool {
		now := s.now()
		for i := range d.Tasks {
			t := &d.Tasks[i]
			if t.Completed {
				continue
			}
			t.SetCompleted(true, now)
			for j := range t.Subtasks {
				t.Subtasks[j].Done = true
			}
			n++
		}
		return n > 0
	})
	if n == 0 {
		return 0, ErrNothingPending
	}
	s.logger.Info("marked all done", "count", n)
	return n, nil
}

// ClearCompleted removes every completed task, keeping the relative order of
// the rest, and returns how many were removed.
func (s *Service) ClearCompleted() int {
	removed := 0
	s.state.Update(func(d *state.State) bool {
		kept := d.Tasks[:0]
		for _, t := range d.Tasks {
			if t.Completed {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		d.Tasks = kept
		return removed > 0
	})
	if removed > 0 {
		s.logger.Info("cleared completed", "count", removed)
	}
	return removed
}
