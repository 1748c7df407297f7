package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nissyi-gh/taskflow/internal/model"
)

func (m Model) renderDetail() string {
	item, ok := m.selected()
	if !ok {
		return m.styles.status.Render("No task selected")
	}
	t := item.Task
	now := item.Now

	title := t.Title
	if t.Completed {
		title = m.styles.ok.Render("✓ ") + title
	}

	descContent := m.styles.status.Render("(no description)")
	if t.Description != "" {
		descContent = t.Description
	}
	desc := m.styles.descBox.Render(descContent)

	var fields []string
	if label := t.Priority.Label(); label != "" {
		fields = append(fields, "priority:   "+label)
	}

	switch {
	case item.Category != nil:
		fields = append(fields, "category:   "+categoryStyle(item.Category.Color).Render(item.Category.Name))
	case t.CategoryID != nil:
		fields = append(fields, "category:   "+m.styles.status.Render("no category"))
	}

	if due := t.DueLabel(now); due != "" {
		label := "due:        " + due
		switch {
		case t.IsOverdue(now):
			label = m.styles.err.Render("⚠️ " + label + " (overdue)")
		case t.DueState(now) == model.DueToday:
			label = m.styles.warn.Render("📅 " + label)
		}
		fields = append(fields, label)
	}
	fields = append(fields, "created_at: "+t.CreatedAt.Local().Format("2006-01-02 15:04"))
	if t.CompletedAt != nil {
		fields = append(fields, "done_at:    "+t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}

	subtasks := ""
	if len(t.Subtasks) > 0 {
		header := fmt.Sprintf("sub-tasks %d/%d", t.DoneSubtasks(), len(t.Subtasks))
		subtasks = "\n\n" + header + "\n" + strings.Join(SubtaskLines(t.Subtasks), "\n")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s%s\n\n%s",
		title,
		desc,
		strings.Join(fields, "\n"),
		subtasks,
		m.styles.status.Render("e: desc  D: due  c: category  s: sub-task  1-9: toggle sub-task"),
	)
}

func (m Model) statusLine() string {
	if m.notice != "" {
		if m.noticeErr {
			return m.styles.err.Render(m.notice)
		}
		return m.styles.ok.Render(m.notice)
	}
	s := m.summary
	line := fmt.Sprintf("%d pending · %d done · %d%%", s.Pending, s.Completed, s.Percent)
	if s.Overdue > 0 {
		return m.styles.status.Render(line+" · ") + m.styles.err.Render(fmt.Sprintf("%d overdue", s.Overdue))
	}
	return m.styles.status.Render(line)
}

func (m Model) View() string {
	var noticeView string
	if m.notice != "" && m.state != stateList {
		noticeView = "\n\n" + m.statusLine()
	}

	switch m.state {
	case stateCategorySelect:
		cursor := func(i int) string {
			if i == m.catCursor {
				return "> "
			}
			return "  "
		}
		current := ""
		if task, ok := m.svc.Task(m.editTaskID); ok && task.CategoryID != nil {
			current = *task.CategoryID
		}

		lines := []string{cursor(0) + m.styles.status.Render("No category")}
		for i, c := range m.categories {
			check := "( )"
			if c.ID == current {
				check = "(•)"
			}
			lines = append(lines, cursor(i+1)+check+" "+categoryStyle(c.Color).Render(c.Name))
		}
		lines = append(lines, cursor(len(m.categories)+1)+"+ New category...")

		content := m.styles.title.Render("Category") + "\n\n" + strings.Join(lines, "\n")
		if m.catCreating {
			content += "\n\n" + m.catInput.View()
		}
		content += "\n\n" + m.styles.status.Render("j/k: navigate  enter: choose  esc: back")
		return m.styles.app.Render(content + noticeView)

	case stateEditDesc:
		return m.styles.app.Render(
			m.styles.title.Render("Edit Description") + "\n\n" +
				m.descInput.View() + "\n\n" +
				m.styles.status.Render("esc: save • ctrl+c: cancel") +
				noticeView,
		)

	case stateInput:
		header := map[inputPurpose]string{
			inputAdd:     "New Task",
			inputRename:  "Rename Task",
			inputSubtask: "New Sub-task",
			inputSearch:  "Search",
		}[m.inputPurpose]
		return m.styles.app.Render(
			m.styles.title.Render(header) + "\n\n" +
				m.input.View() + "\n\n" +
				m.styles.status.Render("enter: save • esc: cancel") +
				noticeView,
		)

	case stateDueDate:
		return m.styles.app.Render(
			m.styles.title.Render("Set Due Date") + "\n\n" +
				m.dateInput.View() + "\n\n" +
				m.styles.status.Render("tab/→: next field • enter: save (all empty clears) • esc: cancel") +
				noticeView,
		)

	case stateConfirm:
		var header, body string
		switch m.confirm {
		case confirmClear:
			header = "Clear Completed?"
			body = fmt.Sprintf("%d completed tasks will be deleted", m.summary.Completed)
		default:
			item, _ := m.selected()
			header = "Delete Task?"
			body = item.Task.Title
		}
		return m.styles.app.Render(
			m.styles.confirm.Render(header) + "\n\n" +
				"  " + body + "\n\n" +
				m.styles.status.Render("y: confirm • n/esc: cancel") +
				noticeView,
		)

	default:
		h, v := m.styles.app.GetFrameSize()
		contentWidth := m.width - h
		contentHeight := m.height - v - 1
		leftWidth := contentWidth * 60 / 100
		rightWidth := contentWidth - leftWidth

		rightPane := m.styles.detail.
			Width(max(rightWidth, 0)).
			Height(max(contentHeight, 0)).
			Render(m.renderDetail())
		content := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), rightPane)
		return m.styles.app.Render(content + "\n" + m.statusLine())
	}
}
