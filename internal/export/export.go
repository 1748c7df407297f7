// Package export writes a read-only copy of the tasks and categories.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/state"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of an export.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time        `json:"exportedAt" yaml:"exportedAt"`
	Tasks      []model.Task     `json:"tasks" yaml:"tasks"`
	Categories []model.Category `json:"categories" yaml:"categories"`
}

// New builds a snapshot of s taken at now.
func New(s state.State, now time.Time) Snapshot {
	snap := Snapshot{
		ExportedAt: now,
		Tasks:      model.CloneTasks(s.Tasks),
		Categories: append([]model.Category{}, s.Categories...),
	}
	if snap.Tasks == nil {
		snap.Tasks = []model.Task{}
	}
	return snap
}

// Filename returns the default file name for an export taken at now.
func Filename(now time.Time, f Format) string {
	return fmt.Sprintf("taskflow-export-%s.%s", now.Format(model.DateLayout), f)
}

// Write encodes snap to w.
func Write(w io.Writer, snap Snapshot, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteFile writes snap to path, creating or truncating it.
func WriteFile(path string, snap Snapshot, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := Write(file, snap, f); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	return nil
}
