package ui

import (
	"fmt"

	"github.com/nissyi-gh/taskflow/internal/model"
)

// SubtaskLines renders a task's checklist as branches hanging off the task,
// with tree-drawing prefixes (├─, └─). The first nine entries carry the digit
// that toggles them.
func SubtaskLines(subtasks []model.Subtask) []string {
	lines := make([]string, 0, len(subtasks))
	for idx, st := range subtasks {
		prefix := " ├─ "
		if idx == len(subtasks)-1 {
			prefix = " └─ "
		}
		num := "  "
		if idx < 9 {
			num = fmt.Sprintf("%d.", idx+1)
		}
		check := "[ ]"
		if st.Done {
			check = "[x]"
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s", prefix, num, check, st.Text))
	}
	return lines
}
