package prompt

import (
	"fmt"
	"strings"

	"github.com/nissyi-gh/taskflow/internal/model"
)

const yamlFormat = `Answer in the YAML format below. Output only the YAML code block and no other text.

` + "```yaml" + `
tasks:
  - title: "Task title"
    description: "What needs to be done"
    priority: "medium"
    due_date: "YYYY-MM-DD"
    due_time: "HH:MM"
    category: "Category name"
    subtasks:
      - "First step"
      - "Second step"
` + "```" + `

Fields:
- title: (required) task title
- description: (optional) longer description
- priority: (optional) one of urgent, high, medium, low, none
- due_date: (optional) due date in YYYY-MM-DD form
- due_time: (optional) due time in HH:MM form, only together with due_date
- category: (optional) category name; unknown names are created
- subtasks: (optional) list of checklist steps`

// GenerateNew returns a prompt for creating new tasks from scratch.
func GenerateNew() string {
	return fmt.Sprintf(`You are a task management assistant.
Break the user's request down into tasks of a sensible size.

%s
`, yamlFormat)
}

// GenerateFromTask returns a prompt for breaking down an existing task.
// category may be nil when the task has none or its category was deleted.
func GenerateFromTask(task model.Task, category *model.Category) string {
	var sb strings.Builder

	sb.WriteString("You are a task management assistant.\n")
	sb.WriteString("Break the existing task below down into smaller, concrete tasks.\n\n")

	sb.WriteString("## Task\n")
	sb.WriteString(fmt.Sprintf("- Title: %s\n", task.Title))

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("- Description: %s\n", task.Description))
	}
	if task.Priority != "" {
		sb.WriteString(fmt.Sprintf("- Priority: %s\n", task.Priority))
	}
	if task.DueDate != nil {
		due := *task.DueDate
		if task.DueTime != nil {
			due += " " + *task.DueTime
		}
		sb.WriteString(fmt.Sprintf("- Due: %s\n", due))
	}
	if category != nil {
		sb.WriteString(fmt.Sprintf("- Category: %s\n", category.Name))
	}

	if len(task.Subtasks) > 0 {
		sb.WriteString("\n## Existing subtasks\n")
		for _, st := range task.Subtasks {
			status := "open"
			if st.Done {
				status = "done"
			}
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", st.Text, status))
		}
		sb.WriteString("\nTake the existing subtasks into account and only add what is missing.\n")
	}

	sb.WriteString("\n")
	sb.WriteString(yamlFormat)
	sb.WriteString("\n")

	return sb.String()
}
