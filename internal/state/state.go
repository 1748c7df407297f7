// Package state owns the application state: tasks, categories and UI
// preferences. State values are snapshots; the Container is the only place
// that replaces them.
package state

import (
	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/query"
)

// SchemaVersion is the version written with every persisted record.
const SchemaVersion = 1

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Valid returns true for a known theme.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// State is a full snapshot of the application.
type State struct {
	Version        int              `json:"version"`
	Tasks          []model.Task     `json:"tasks"`
	Categories     []model.Category `json:"categories"`
	View           query.View       `json:"currentView"`
	Sort           query.SortKey    `json:"currentSort"`
	CategoryFilter *string          `json:"currentCategoryFilter"`
	Theme          Theme            `json:"theme"`
}

// Defaults returns the state of a fresh installation.
func Defaults() State {
	return State{
		Version:    SchemaVersion,
		Tasks:      []model.Task{},
		Categories: model.DefaultCategories(),
		View:       query.ViewAll,
		Sort:       query.SortCreated,
		Theme:      ThemeDark,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.Tasks = model.CloneTasks(s.Tasks)
	if s.Categories != nil {
		c.Categories = make([]model.Category, len(s.Categories))
		copy(c.Categories, s.Categories)
	}
	if s.CategoryFilter != nil {
		v := *s.CategoryFilter
		c.CategoryFilter = &v
	}
	return c
}

// TaskIndex returns the position of the task with id, or -1.
func (s State) TaskIndex(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// CategoryIndex returns the position of the category with id, or -1.
func (s State) CategoryIndex(id string) int {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

// Params returns the query parameters stored in the state.
func (s State) Params(search string) query.Params {
	p := query.Params{View: s.View, Sort: s.Sort, Search: search}
	if s.CategoryFilter != nil {
		p.CategoryID = *s.CategoryFilter
	}
	return p
}
