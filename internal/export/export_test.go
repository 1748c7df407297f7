package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/state"
	"gopkg.in/yaml.v3"
)

var exportNow = time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

func sampleState() state.State {
	s := state.Defaults()
	s.Tasks = []model.Task{{
		ID:         "a",
		Title:      "Pay rent",
		Priority:   model.PriorityUrgent,
		DueDate:    model.StringPtr("2026-03-31"),
		CategoryID: model.StringPtr("cat_personal"),
		Subtasks:   []model.Subtask{{Text: "check balance"}},
		CreatedAt:  exportNow.Add(-time.Hour),
	}}
	return s
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(exportNow, FormatJSON); got != "taskflow-export-2026-03-10.json" {
		t.Errorf("Filename = %q", got)
	}
	if got := Filename(exportNow, FormatYAML); got != "taskflow-export-2026-03-10.yaml" {
		t.Errorf("Filename = %q", got)
	}
}

func TestWriteJSONShape(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, New(sampleState(), exportNow), FormatJSON); err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"exportedAt", "tasks", "categories"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if len(doc) != 3 {
		t.Errorf("unexpected keys: %v", doc)
	}
	task := doc["tasks"].([]any)[0].(map[string]any)
	if task["title"] != "Pay rent" || task["dueDate"] != "2026-03-31" || task["categoryId"] != "cat_personal" {
		t.Errorf("task = %v", task)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, New(sampleState(), exportNow), FormatYAML); err != nil {
		t.Fatal(err)
	}

	var doc Snapshot
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if !doc.ExportedAt.Equal(exportNow) || len(doc.Tasks) != 1 || len(doc.Categories) != 3 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestNewCopiesState(t *testing.T) {
	s := sampleState()
	snap := New(s, exportNow)
	snap.Tasks[0].Title = "changed"
	snap.Categories[0].Name = "changed"
	if s.Tasks[0].Title != "Pay rent" || s.Categories[0].Name != "Work" {
		t.Error("snapshot aliases state")
	}

	empty := New(state.State{}, exportNow)
	if empty.Tasks == nil {
		t.Error("empty export has nil tasks")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), Filename(exportNow, FormatJSON))
	if err := WriteFile(path, New(sampleState(), exportNow), FormatJSON); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("file is not valid JSON")
	}
}
