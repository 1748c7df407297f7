package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/query"
	"github.com/nissyi-gh/taskflow/internal/store"
)

func TestDecodeMergesMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, s State)
	}{
		{
			name: "empty object",
			raw:  `{}`,
			check: func(t *testing.T, s State) {
				if !reflect.DeepEqual(s, Defaults()) {
					t.Errorf("got %+v, want defaults", s)
				}
			},
		},
		{
			name: "only tasks",
			raw:  `{"tasks":[{"id":"a","title":"Buy milk","createdAt":"2026-01-02T03:04:05Z"}]}`,
			check: func(t *testing.T, s State) {
				if len(s.Tasks) != 1 || s.Tasks[0].Title != "Buy milk" {
					t.Errorf("Tasks = %+v", s.Tasks)
				}
				if len(s.Categories) != 3 || s.View != query.ViewAll || s.Sort != query.SortCreated || s.Theme != ThemeDark {
					t.Errorf("defaults not applied: %+v", s)
				}
			},
		},
		{
			name: "preferences kept",
			raw:  `{"currentView":"category","currentCategoryFilter":"cat_work","currentSort":"priority","theme":"light","categories":[]}`,
			check: func(t *testing.T, s State) {
				if s.View != query.ViewCategory || s.CategoryFilter == nil || *s.CategoryFilter != "cat_work" {
					t.Errorf("view/filter = %v/%v", s.View, s.CategoryFilter)
				}
				if s.Sort != query.SortPriority || s.Theme != ThemeLight {
					t.Errorf("sort/theme = %v/%v", s.Sort, s.Theme)
				}
				if len(s.Categories) != 0 {
					t.Errorf("explicit empty categories replaced by %v", s.Categories)
				}
			},
		},
		{
			name: "category view without filter",
			raw:  `{"currentView":"category"}`,
			check: func(t *testing.T, s State) {
				if s.View != query.ViewAll {
					t.Errorf("View = %v, want all", s.View)
				}
			},
		},
		{
			name: "task normalisation",
			raw: `{"tasks":[
				{"title":"no id"},
				{"id":"b","title":"done without timestamp","completed":true,"createdAt":"2026-01-02T03:04:05Z"},
				{"id":"c","title":"open with timestamp","completed":false,"completedAt":"2026-01-02T03:04:05Z"},
				{"id":"d","title":"time without date","dueTime":"10:00"},
				{"id":"e","title":"impossible date","dueDate":"2026-02-30","dueTime":"10:00"},
				{"id":"f","title":"impossible time","dueDate":"2026-03-01","dueTime":"25:61"}
			]}`,
			check: func(t *testing.T, s State) {
				if s.Tasks[0].ID == "" {
					t.Error("missing id not regenerated")
				}
				want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
				if s.Tasks[1].CompletedAt == nil || !s.Tasks[1].CompletedAt.Equal(want) {
					t.Errorf("completedAt not backfilled: %v", s.Tasks[1].CompletedAt)
				}
				if s.Tasks[2].CompletedAt != nil {
					t.Error("completedAt kept on incomplete task")
				}
				if s.Tasks[3].DueTime != nil {
					t.Error("dueTime kept without dueDate")
				}
				if s.Tasks[4].DueDate != nil || s.Tasks[4].DueTime != nil {
					t.Errorf("impossible date kept: %v %v", s.Tasks[4].DueDate, s.Tasks[4].DueTime)
				}
				if s.Tasks[5].DueDate == nil || *s.Tasks[5].DueDate != "2026-03-01" || s.Tasks[5].DueTime != nil {
					t.Errorf("impossible time: date %v time %v", s.Tasks[5].DueDate, s.Tasks[5].DueTime)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			tt.check(t, s)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		stage string
	}{
		{"not json", `{"tasks":`, "parse"},
		{"wrong type", `{"tasks":"lots"}`, "schema"},
		{"unknown view", `{"currentView":"someday"}`, "schema"},
		{"blank title", `{"tasks":[{"id":"a","title":"   "}]}`, "schema"},
		{"bad due date", `{"tasks":[{"id":"a","title":"x","dueDate":"tomorrow"}]}`, "schema"},
		{"bad priority", `{"tasks":[{"id":"a","title":"x","priority":"asap"}]}`, "schema"},
		{"category without name", `{"categories":[{"id":"c"}]}`, "schema"},
		{"newer version", `{"version":99}`, "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Decode err = %v, want *LoadError", err)
			}
			if le.Stage != tt.stage {
				t.Errorf("Stage = %q, want %q", le.Stage, tt.stage)
			}
		})
	}
}

func TestLoadFallsBackAndBacksUp(t *testing.T) {
	mem := store.NewMemory()
	mem.Set(Key, []byte(`{"tasks":"garbage"}`))

	s := Load(mem, nil)
	if !reflect.DeepEqual(s, Defaults()) {
		t.Errorf("Load = %+v, want defaults", s)
	}
	backup, ok, _ := mem.Get(RejectedKey)
	if !ok || string(backup) != `{"tasks":"garbage"}` {
		t.Errorf("backup = %q, ok %v", backup, ok)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	mem := store.NewMemory()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := Defaults()
	s.Tasks = append(s.Tasks, model.Task{
		ID:         "a",
		Title:      "Write report",
		Priority:   model.PriorityHigh,
		DueDate:    model.StringPtr("2026-01-10"),
		DueTime:    model.StringPtr("09:30"),
		CategoryID: model.StringPtr("cat_work"),
		Subtasks:   []model.Subtask{{Text: "outline", Done: true}},
		CreatedAt:  created,
	})
	s.Theme = ThemeLight

	if err := Save(mem, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got := Load(mem, nil)
	if !reflect.DeepEqual(got, s) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, s)
	}
}

func TestContainerUpdateAndSubscribe(t *testing.T) {
	mem := store.NewMemory()
	c := NewContainer(mem, nil)

	var seen []int
	unsubscribe := c.Subscribe(func(s State) { seen = append(seen, len(s.Tasks)) })

	c.Update(func(d *State) bool {
		d.Tasks = append(d.Tasks, model.Task{ID: "a", Title: "a"})
		return true
	})
	c.Update(func(d *State) bool { return false })

	unsubscribe()
	c.Update(func(d *State) bool {
		d.Tasks = append(d.Tasks, model.Task{ID: "b", Title: "b"})
		return true
	})

	if !reflect.DeepEqual(seen, []int{1}) {
		t.Errorf("subscriber saw %v, want [1]", seen)
	}
	if got := len(c.Snapshot().Tasks); got != 2 {
		t.Errorf("snapshot has %d tasks, want 2", got)
	}

	reloaded := Load(mem, nil)
	if len(reloaded.Tasks) != 2 {
		t.Errorf("persisted %d tasks, want 2", len(reloaded.Tasks))
	}
}

func TestContainerSnapshotsAreIsolated(t *testing.T) {
	c := NewContainer(store.NewMemory(), nil)
	c.Update(func(d *State) bool {
		d.Tasks = append(d.Tasks, model.Task{ID: "a", Title: "original"})
		return true
	})

	snap := c.Snapshot()
	snap.Tasks[0].Title = "mutated"
	snap.Categories[0].Name = "mutated"

	again := c.Snapshot()
	if again.Tasks[0].Title != "original" || again.Categories[0].Name != "Work" {
		t.Error("mutating a snapshot changed the container")
	}
}

func TestContainerKeepsStateWhenWriteFails(t *testing.T) {
	mem := store.NewMemory()
	c := NewContainer(mem, nil)
	mem.FailWrites(errors.New("quota exceeded"))

	s := c.Update(func(d *State) bool {
		d.Tasks = append(d.Tasks, model.Task{ID: "a", Title: "a"})
		return true
	})

	if len(s.Tasks) != 1 || len(c.Snapshot().Tasks) != 1 {
		t.Error("in-memory update was rolled back")
	}
	if c.Err() == nil {
		t.Error("Err() = nil, want write error")
	}

	mem.FailWrites(nil)
	c.Update(func(d *State) bool { d.Theme = ThemeLight; return true })
	if c.Err() != nil {
		t.Errorf("Err() = %v after successful write", c.Err())
	}
}

func TestContainerDoesNotOverwriteUnreadableRecord(t *testing.T) {
	mem := store.NewMemory()
	stored := Defaults()
	stored.Tasks = []model.Task{{ID: "a", Title: "a"}, {ID: "b", Title: "b"}}
	if err := Save(mem, stored); err != nil {
		t.Fatal(err)
	}

	mem.FailReads(errors.New("database is locked"))
	c := NewContainer(mem, nil)
	if c.Err() == nil {
		t.Error("Err() = nil after a failed read")
	}

	c.Update(func(d *State) bool { d.Theme = d.Theme.Toggle(); return true })
	if c.Err() == nil {
		t.Error("Err() = nil for an update that could not be saved")
	}

	mem.FailReads(nil)
	if got := Load(mem, nil); len(got.Tasks) != 2 || got.Theme != ThemeDark {
		t.Fatalf("stored record changed while unreadable: %d tasks, theme %v", len(got.Tasks), got.Theme)
	}
	if _, ok, _ := mem.Get(RejectedKey); ok {
		t.Error("unread record was backed up as rejected")
	}

	s := c.Update(func(d *State) bool { d.Theme = ThemeLight; return true })
	if c.Err() != nil {
		t.Errorf("Err() = %v after the record became readable", c.Err())
	}
	if len(s.Tasks) != 2 || s.Theme != ThemeLight {
		t.Errorf("update not applied to the stored record: %d tasks, theme %v", len(s.Tasks), s.Theme)
	}
	if got := Load(mem, nil); len(got.Tasks) != 2 || got.Theme != ThemeLight {
		t.Errorf("persisted %d tasks, theme %v", len(got.Tasks), got.Theme)
	}
}

func TestContainerErrIsPerUpdate(t *testing.T) {
	mem := store.NewMemory()
	c := NewContainer(mem, nil)

	mem.FailWrites(errors.New("quota exceeded"))
	c.Update(func(d *State) bool { d.Theme = ThemeLight; return true })
	if c.Err() == nil {
		t.Fatal("Err() = nil after a failed write")
	}

	mem.FailWrites(nil)
	c.Update(func(d *State) bool { return false })
	if c.Err() != nil {
		t.Errorf("Err() = %v after an update with nothing to save", c.Err())
	}
}

func TestContainerSavedAt(t *testing.T) {
	mem := store.NewMemory()
	c := NewContainer(mem, nil)
	if _, ok, err := c.SavedAt(); ok || err != nil {
		t.Fatalf("SavedAt before any write = ok %v, err %v", ok, err)
	}

	before := time.Now().UTC()
	c.Update(func(d *State) bool { d.Theme = ThemeLight; return true })
	at, ok, err := c.SavedAt()
	if err != nil || !ok || at.Before(before) {
		t.Errorf("SavedAt = %v, ok %v, err %v", at, ok, err)
	}
}
