package service

import (
	"strings"

	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/query"
	"github.com/nissyi-gh/taskflow/internal/state"
)

// CreateCategory adds a category. An empty color falls back to
// model.DefaultCategoryColor.
func (s *Service) CreateCategory(name, color string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, ErrEmptyCategoryName
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = model.DefaultCategoryColor
	}

	c := model.Category{ID: model.NewCategoryID(), Name: name, Color: color}
	s.state.Update(func(d *state.State) bool {
		d.Categories = append(d.Categories, c)
		return true
	})
	s.logger.Info("category created", "id", c.ID, "name", c.Name)
	return c, nil
}

// DeleteCategory removes the category with id. Tasks that reference it keep
// the now dangling id and resolve to no category. If the category view was
// showing it, the view falls back to all.
func (s *Service) DeleteCategory(id string) bool {
	found := false
	s.state.Update(func(d *state.State) bool {
		i := d.CategoryIndex(id)
		if i < 0 {
			return false
		}
		d.Categories = append(d.Categories[:i], d.Categories[i+1:]...)
		if d.CategoryFilter != nil && *d.CategoryFilter == id {
			d.CategoryFilter = nil
			if d.View == query.ViewCategory {
				d.View = query.ViewAll
			}
		}
		found = true
		return true
	})
	if found {
		s.logger.Info("category deleted", "id", id)
	}
	return found
}

// SetView selects the active view. categoryID is kept only for the category
// view; unknown views select all.
func (s *Service) SetView(view query.View, categoryID string) {
	if !view.Valid() || (view == query.ViewCategory && categoryID == "") {
		view = query.ViewAll
	}
	s.state.Update(func(d *state.State) bool {
		var filter *string
		if view == query.ViewCategory {
			filter = &categoryID
		}
		if d.View == view && equalRef(d.CategoryFilter, filter) {
			return false
		}
		d.View = view
		d.CategoryFilter = filter
		return true
	})
}

// SetSort selects the sort key. Unknown keys select created.
func (s *Service) SetSort(key query.SortKey) {
	if !key.Valid() {
		key = query.SortCreated
	}
	s.state.Update(func(d *state.State) bool {
		if d.Sort == key {
			return false
		}
		d.Sort = key
		return true
	})
}

// SetTheme stores the theme preference.
func (s *Service) SetTheme(theme state.Theme) {
	if !theme.Valid() {
		theme = state.ThemeDark
	}
	s.state.Update(func(d *state.State) bool {
		if d.Theme == theme {
			return false
		}
		d.Theme = theme
		return true
	})
}

// ToggleTheme switches between dark and light and returns the new theme.
func (s *Service) ToggleTheme() state.Theme {
	snap := s.state.Update(func(d *state.State) bool {
		d.Theme = d.Theme.Toggle()
		return true
	})
	return snap.Theme
}

func equalRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
