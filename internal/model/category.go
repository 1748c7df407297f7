package model

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#e63946"

// Category groups tasks. Tasks reference it by ID only.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// CategoryPalette is cycled through when categories are created implicitly.
var CategoryPalette = []string{"#e63946", "#ff6b6b", "#b91c2c", "#f4a261", "#2a9d8f", "#457b9d", "#8338ec", "#ffbe0b"}

// DefaultCategories returns the preset categories of a fresh state.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat_work", Name: "Work", Color: "#e63946"},
		{ID: "cat_personal", Name: "Personal", Color: "#ff6b6b"},
		{ID: "cat_health", Name: "Health", Color: "#b91c2c"},
	}
}

// LookupCategory resolves a weak reference. A nil or dangling id yields false.
func LookupCategory(categories []Category, id *string) (Category, bool) {
	if id == nil {
		return Category{}, false
	}
	for _, c := range categories {
		if c.ID == *id {
			return c, true
		}
	}
	return Category{}, false
}

// FindCategoryByName matches names case-insensitively.
func FindCategoryByName(categories []Category, name string) (Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}

// NewID returns a fresh task identifier.
func NewID() string {
	return uuid.NewString()
}

// NewCategoryID returns a fresh category identifier.
func NewCategoryID() string {
	return "cat_" + uuid.NewString()
}
