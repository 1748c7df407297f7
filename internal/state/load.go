package state

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/query"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	// Key is the storage key of the persisted record.
	Key = "taskflow_state"
	// RejectedKey holds the last record that failed to load.
	RejectedKey = Key + ".rejected"
)

//go:embed state.schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("state.schema.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add state schema: %w", err)
	}
	return compiler.Compile("state.schema.json")
})

// Storage is a durable key-value store.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
}

// LoadError describes why a stored record was not trusted.
type LoadError struct {
	Stage string // "parse", "schema" or "version"
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load state (%s): %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Stored mirrors State with every field optional, as found on disk.
type Stored struct {
	Version        *int              `json:"version"`
	Tasks          *[]model.Task     `json:"tasks"`
	Categories     *[]model.Category `json:"categories"`
	View           *query.View       `json:"currentView"`
	Sort           *query.SortKey    `json:"currentSort"`
	CategoryFilter *string           `json:"currentCategoryFilter"`
	Theme          *Theme            `json:"theme"`
}

// Merge fills every field missing from stored with its value in defaults:
// tasks default to empty, categories to the presets, view to all, sort to
// created, the category filter to none and the theme to dark. Unknown enum
// values are replaced by their default too.
func Merge(defaults State, stored Stored) State {
	s := defaults.Clone()
	s.Version = SchemaVersion
	if stored.Tasks != nil {
		s.Tasks = normalizeTasks(*stored.Tasks)
	}
	if stored.Categories != nil {
		s.Categories = normalizeCategories(*stored.Categories)
	}
	if stored.View != nil && stored.View.Valid() {
		s.View = *stored.View
	}
	if stored.Sort != nil && stored.Sort.Valid() {
		s.Sort = *stored.Sort
	}
	if stored.CategoryFilter != nil {
		v := *stored.CategoryFilter
		s.CategoryFilter = &v
	}
	if stored.Theme != nil && stored.Theme.Valid() {
		s.Theme = *stored.Theme
	}
	if s.View == query.ViewCategory && s.CategoryFilter == nil {
		s.View = query.ViewAll
	}
	return s
}

// Decode validates raw against the state schema and merges it with Defaults.
// Records that are not valid JSON, violate the schema or come from a newer
// version return a *LoadError.
func Decode(raw []byte) (State, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return State{}, &LoadError{Stage: "parse", Err: err}
	}

	schema, err := compiledSchema()
	if err != nil {
		return State{}, &LoadError{Stage: "schema", Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return State{}, &LoadError{Stage: "schema", Err: err}
	}

	var stored Stored
	if err := json.Unmarshal(raw, &stored); err != nil {
		return State{}, &LoadError{Stage: "parse", Err: err}
	}
	if stored.Version != nil && *stored.Version > SchemaVersion {
		return State{}, &LoadError{
			Stage: "version",
			Err:   fmt.Errorf("record version %d is newer than supported version %d", *stored.Version, SchemaVersion),
		}
	}

	return Merge(Defaults(), stored), nil
}

// Load reads the persisted state. It never fails: an absent record yields
// Defaults, and an unreadable or rejected one is logged and replaced by
// Defaults. Rejected records are copied to RejectedKey first.
func Load(storage Storage, logger *log.Logger) State {
	s, _ := LoadChecked(storage, logger)
	return s
}

// LoadChecked is Load but also returns the error when the record could not be
// read at all. The returned Defaults then stand in for a record that may
// still exist, so they must not be saved over it.
func LoadChecked(storage Storage, logger *log.Logger) (State, error) {
	logger = orDiscard(logger)
	raw, ok, err := storage.Get(Key)
	if err != nil {
		logger.Warn("read state, using defaults", "err", err)
		return Defaults(), fmt.Errorf("read state: %w", err)
	}
	if !ok {
		logger.Debug("no stored state, using defaults")
		return Defaults(), nil
	}

	s, err := Decode(raw)
	if err != nil {
		logger.Warn("stored state rejected, using defaults", "err", err, "backup", RejectedKey)
		if err := storage.Set(RejectedKey, raw); err != nil {
			logger.Error("back up rejected state", "err", err)
		}
		return Defaults(), nil
	}
	logger.Debug("state loaded", "tasks", len(s.Tasks), "categories", len(s.Categories))
	return s, nil
}

// Encode serialises s for storage.
func Encode(s State) ([]byte, error) {
	s.Version = SchemaVersion
	if s.Tasks == nil {
		s.Tasks = []model.Task{}
	}
	if s.Categories == nil {
		s.Categories = []model.Category{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// Save encodes s and writes it to storage.
func Save(storage Storage, s State) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := storage.Set(Key, data); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func normalizeTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		t = t.Clone()
		if t.ID == "" {
			t.ID = model.NewID()
		}
		t.Title = strings.TrimSpace(t.Title)
		// The schema only checks the shape, so 2026-02-30 gets this far.
		if t.DueDate != nil && !validLayout(model.DateLayout, *t.DueDate) {
			t.DueDate = nil
		}
		if t.DueDate == nil {
			t.DueTime = nil
		}
		if t.DueTime != nil && !validLayout(model.TimeLayout, *t.DueTime) {
			t.DueTime = nil
		}
		if !t.Completed {
			t.CompletedAt = nil
		} else if t.CompletedAt == nil {
			at := t.CreatedAt
			t.CompletedAt = &at
		}
		out = append(out, t)
	}
	return out
}

func validLayout(layout, value string) bool {
	_, err := time.Parse(layout, value)
	return err == nil
}

func normalizeCategories(categories []model.Category) []model.Category {
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c.Color == "" {
			c.Color = model.DefaultCategoryColor
		}
		out = append(out, c)
	}
	return out
}
