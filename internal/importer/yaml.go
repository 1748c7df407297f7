package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/service"
	"gopkg.in/yaml.v3"
)

// ErrNoTasks is returned when the document parses but lists nothing.
var ErrNoTasks = errors.New("no tasks found in YAML")

// YAMLTask represents a single task in the YAML input.
type YAMLTask struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Priority    string   `yaml:"priority,omitempty"`
	DueDate     string   `yaml:"due_date,omitempty"`
	DueTime     string   `yaml:"due_time,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Subtasks    []string `yaml:"subtasks,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// Import parses a YAML document and creates its tasks through svc.
// Categories are matched by name, ignoring case, and created when missing.
// Tasks before a failing one stay created; the count says how many.
func Import(svc *service.Service, data []byte) (int, error) {
	var input YAMLInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return 0, fmt.Errorf("parse YAML: %w", err)
	}
	if len(input.Tasks) == 0 {
		return 0, ErrNoTasks
	}

	count := 0
	for i, yt := range input.Tasks {
		if err := importTask(svc, yt); err != nil {
			return count, fmt.Errorf("import task %d (%q): %w", i+1, yt.Title, err)
		}
		count++
	}
	return count, nil
}

func importTask(svc *service.Service, yt YAMLTask) error {
	in := service.TaskInput{
		Title:       yt.Title,
		Description: yt.Description,
		Priority:    model.Priority(strings.ToLower(strings.TrimSpace(yt.Priority))),
		DueDate:     yt.DueDate,
		DueTime:     yt.DueTime,
	}
	for _, text := range yt.Subtasks {
		in.Subtasks = append(in.Subtasks, model.Subtask{Text: text})
	}

	if name := strings.TrimSpace(yt.Category); name != "" {
		id, err := ensureCategory(svc, name)
		if err != nil {
			return err
		}
		in.CategoryID = id
	}

	_, err := svc.CreateTask(in)
	return err
}

func ensureCategory(svc *service.Service, name string) (string, error) {
	categories := svc.Snapshot().Categories
	if c, ok := model.FindCategoryByName(categories, name); ok {
		return c.ID, nil
	}

	palette := model.CategoryPalette
	c, err := svc.CreateCategory(name, palette[len(categories)%len(palette)])
	if err != nil {
		return "", fmt.Errorf("create category %q: %w", name, err)
	}
	return c.ID, nil
}
