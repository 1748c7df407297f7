package ui

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/nissyi-gh/taskflow/internal/export"
	"github.com/nissyi-gh/taskflow/internal/importer"
	"github.com/nissyi-gh/taskflow/internal/logging"
	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/prompt"
	"github.com/nissyi-gh/taskflow/internal/query"
	"github.com/nissyi-gh/taskflow/internal/service"
	"github.com/nissyi-gh/taskflow/internal/state"
)

type appState int

const (
	stateList appState = iota
	stateInput
	stateConfirm
	stateDueDate
	stateEditDesc
	stateCategorySelect
)

type inputPurpose int

const (
	inputAdd inputPurpose = iota
	inputRename
	inputSubtask
	inputSearch
)

type confirmPurpose int

const (
	confirmDelete confirmPurpose = iota
	confirmClear
)

// Options configures the TUI.
type Options struct {
	Logger *log.Logger
	// CategoryColor is used for categories created from the picker.
	CategoryColor string
	// ExportDir receives exports. Empty means the working directory.
	ExportDir string
}

// Model is the top-level BubbleTea model for the taskflow TUI.
type Model struct {
	state        appState
	list         list.Model
	input        textinput.Model
	inputPurpose inputPurpose
	dateInput    dateInput
	descInput    textarea.Model
	catInput     textinput.Model
	catCursor    int
	catCreating  bool
	categories   []model.Category
	confirm      confirmPurpose
	svc          *service.Service
	opts         Options
	logger       *log.Logger
	keys         keyMap
	styles       styles
	theme        state.Theme
	search       string
	editTaskID   string
	summary      query.Summary
	notice       string
	noticeErr    bool
	width        int
	height       int
}

type tasksLoadedMsg struct {
	items   []TaskItem
	summary query.Summary
	snap    state.State
}

type noticeMsg struct {
	text   string
	isErr  bool
	reload bool
}

// NewModel creates a new TUI model.
func NewModel(svc *service.Service, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	ti := textinput.New()
	ti.CharLimit = 256

	keys := newKeyMap()

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "taskflow"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	l.KeyMap.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full

	ta := textarea.New()
	ta.Placeholder = "Task description..."
	ta.CharLimit = 4096

	catIn := textinput.New()
	catIn.Placeholder = "New category name..."
	catIn.CharLimit = 32

	m := Model{
		state:     stateList,
		list:      l,
		input:     ti,
		dateInput: newDateInput(),
		descInput: ta,
		catInput:  catIn,
		svc:       svc,
		opts:      opts,
		logger:    logger,
		keys:      keys,
	}
	m.applyTheme(svc.Snapshot().Theme)
	if err := svc.Err(); err != nil {
		m.setNotice("Not saved: "+err.Error(), true)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.loadTasks
}

func (m Model) loadTasks() tea.Msg {
	snap := m.svc.Snapshot()
	tasks := m.svc.Tasks(m.search)
	return tasksLoadedMsg{
		items:   BuildItems(tasks, snap.Categories, m.svc.Now()),
		summary: m.svc.Summary(),
		snap:    snap,
	}
}

func (m *Model) applyTheme(theme state.Theme) {
	m.theme = theme
	m.styles = newStyles(theme)
	m.list.Styles.Title = m.styles.title
	m.list.SetDelegate(m.styles.delegate())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := m.styles.app.GetFrameSize()
		contentWidth := msg.Width - h
		leftWidth := contentWidth * 60 / 100
		rightWidth := contentWidth - leftWidth
		m.list.SetSize(leftWidth, msg.Height-v-1)
		m.descInput.SetWidth(max(rightWidth-6, 20))
		m.descInput.SetHeight(max(msg.Height-v-10, 3))
		return m, nil

	case tasksLoadedMsg:
		items := make([]list.Item, len(msg.items))
		for i, ti := range msg.items {
			items[i] = ti
		}
		cmd := m.list.SetItems(items)
		m.summary = msg.summary
		if msg.snap.Theme != m.theme {
			m.applyTheme(msg.snap.Theme)
		}
		m.list.Title = m.listTitle(msg.snap)
		return m, cmd

	case noticeMsg:
		m.setNotice(msg.text, msg.isErr)
		if msg.reload {
			return m, m.loadTasks
		}
		return m, nil
	}

	switch m.state {
	case stateList:
		return m.updateList(msg)
	case stateInput:
		return m.updateInput(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	case stateDueDate:
		return m.updateDueDate(msg)
	case stateEditDesc:
		return m.updateEditDesc(msg)
	case stateCategorySelect:
		return m.updateCategorySelect(msg)
	}

	return m, nil
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// mutated reloads the list after a service call and surfaces a failed write.
func (m Model) mutated(notice string) (tea.Model, tea.Cmd) {
	m.setNotice(notice, false)
	if err := m.svc.Err(); err != nil {
		m.setNotice("Not saved: "+err.Error(), true)
	}
	return m, m.loadTasks
}

func (m Model) failed(err error) (tea.Model, tea.Cmd) {
	m.setNotice(err.Error(), true)
	return m, nil
}

func (m Model) selected() (TaskItem, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	return item, ok
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	m.setNotice("", false)
	item, ok := m.selected()

	switch {
	case key.Matches(keyMsg, m.keys.Add):
		return m.openInput(inputAdd, "")
	case key.Matches(keyMsg, m.keys.Search):
		return m.openInput(inputSearch, m.search)
	case key.Matches(keyMsg, m.keys.ClearSearch) && m.search != "":
		m.search = ""
		return m, m.loadTasks
	case key.Matches(keyMsg, m.keys.View):
		return m.cycleView()
	case key.Matches(keyMsg, m.keys.Sort):
		current := m.svc.Snapshot().Sort
		i := slices.Index(query.SortKeys, current)
		next := query.SortKeys[(i+1)%len(query.SortKeys)]
		m.svc.SetSort(next)
		return m.mutated("Sort: " + next.Label())
	case key.Matches(keyMsg, m.keys.Theme):
		m.applyTheme(m.svc.ToggleTheme())
		return m.mutated("")
	case key.Matches(keyMsg, m.keys.MarkAll):
		n, err := m.svc.MarkAllDone()
		if err != nil {
			return m.failed(err)
		}
		return m.mutated(fmt.Sprintf("Completed %d tasks", n))
	case key.Matches(keyMsg, m.keys.ClearDone):
		if m.summary.Completed == 0 {
			m.setNotice("No completed tasks", false)
			return m, nil
		}
		m.confirm = confirmClear
		m.state = stateConfirm
		return m, nil
	case key.Matches(keyMsg, m.keys.Export):
		return m, m.exportCmd()
	case key.Matches(keyMsg, m.keys.Prompt):
		text, label := prompt.GenerateNew(), "New-task prompt copied"
		if ok {
			text, label = prompt.GenerateFromTask(item.Task, item.Category), "Breakdown prompt copied"
		}
		return m, copyCmd(text, label)
	case key.Matches(keyMsg, m.keys.Import):
		return m, m.importClipboardCmd()
	}

	if ok {
		id := item.Task.ID
		switch {
		case key.Matches(keyMsg, m.keys.Toggle):
			m.svc.ToggleTask(id)
			return m.mutated("")
		case key.Matches(keyMsg, m.keys.SubToggle):
			n := int(keyMsg.Runes[0] - '1')
			auto, found := m.svc.ToggleSubtask(id, n)
			if !found {
				m.setNotice(fmt.Sprintf("No sub-task %d", n+1), true)
				return m, nil
			}
			if auto {
				return m.mutated("All sub-tasks done, task completed")
			}
			return m.mutated("")
		case key.Matches(keyMsg, m.keys.SubAdd):
			m.editTaskID = id
			return m.openInput(inputSubtask, "")
		case key.Matches(keyMsg, m.keys.Rename):
			m.editTaskID = id
			return m.openInput(inputRename, item.Task.Title)
		case key.Matches(keyMsg, m.keys.Priority):
			in := service.InputFrom(item.Task)
			in.Priority = in.Priority.Next()
			if _, err := m.svc.UpdateTask(id, in); err != nil {
				return m.failed(err)
			}
			return m.mutated("Priority: " + string(in.Priority))
		case key.Matches(keyMsg, m.keys.Duplicate):
			dup, _ := m.svc.DuplicateTask(id)
			return m.mutated("Added " + dup.Title)
		case key.Matches(keyMsg, m.keys.Delete):
			m.confirm = confirmDelete
			m.state = stateConfirm
			return m, nil
		case key.Matches(keyMsg, m.keys.DueDate):
			m.state = stateDueDate
			m.editTaskID = id
			m.dateInput = newDateInput()
			m.dateInput.SetValue(item.Task.DueDate, item.Task.DueTime)
			cmd := m.dateInput.Focus()
			return m, cmd
		case key.Matches(keyMsg, m.keys.EditDesc):
			m.state = stateEditDesc
			m.editTaskID = id
			m.descInput.Reset()
			m.descInput.SetValue(item.Task.Description)
			cmd := m.descInput.Focus()
			return m, cmd
		case key.Matches(keyMsg, m.keys.Category):
			m.state = stateCategorySelect
			m.editTaskID = id
			m.categories = m.svc.Snapshot().Categories
			m.catCreating = false
			m.catCursor = 0
			if item.Category != nil {
				if i := slices.IndexFunc(m.categories, func(c model.Category) bool { return c.ID == item.Category.ID }); i >= 0 {
					m.catCursor = i + 1
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

type viewChoice struct {
	view       query.View
	categoryID string
	label      string
}

// viewChoices lists the fixed views followed by one entry per category.
func viewChoices(categories []model.Category) []viewChoice {
	choices := []viewChoice{
		{view: query.ViewAll, label: "All"},
		{view: query.ViewToday, label: "Today"},
		{view: query.ViewUpcoming, label: "Upcoming"},
		{view: query.ViewCompleted, label: "Completed"},
		{view: query.ViewOverdue, label: "Overdue"},
	}
	for _, c := range categories {
		choices = append(choices, viewChoice{view: query.ViewCategory, categoryID: c.ID, label: c.Name})
	}
	return choices
}

func currentChoice(snap state.State) int {
	for i, c := range viewChoices(snap.Categories) {
		if c.view != snap.View {
			continue
		}
		if c.view != query.ViewCategory || (snap.CategoryFilter != nil && *snap.CategoryFilter == c.categoryID) {
			return i
		}
	}
	return 0
}

func (m Model) cycleView() (tea.Model, tea.Cmd) {
	snap := m.svc.Snapshot()
	choices := viewChoices(snap.Categories)
	next := choices[(currentChoice(snap)+1)%len(choices)]
	m.svc.SetView(next.view, next.categoryID)
	m.list.ResetSelected()
	return m.mutated("")
}

func (m Model) listTitle(snap state.State) string {
	choice := viewChoices(snap.Categories)[currentChoice(snap)]
	count := m.summary.Badges[choice.view]
	if choice.view == query.ViewCategory {
		count = m.summary.ByCategory[choice.categoryID]
	}
	title := fmt.Sprintf("taskflow · %s (%d) · %s", choice.label, count, snap.Sort.Label())
	if m.search != "" {
		title += fmt.Sprintf(" · %q", m.search)
	}
	return title
}

func (m Model) openInput(purpose inputPurpose, value string) (tea.Model, tea.Cmd) {
	m.state = stateInput
	m.inputPurpose = purpose
	m.input.Reset()
	switch purpose {
	case inputSearch:
		m.input.Placeholder = "Search title and description..."
	case inputSubtask:
		m.input.Placeholder = "Sub-task..."
	default:
		m.input.Placeholder = "Task title..."
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m.submitInput(m.input.Value())
		case "esc":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput(value string) (tea.Model, tea.Cmd) {
	switch m.inputPurpose {
	case inputSearch:
		m.state = stateList
		m.search = strings.TrimSpace(value)
		m.list.ResetSelected()
		return m, m.loadTasks

	case inputAdd:
		in := service.TaskInput{Title: value}
		// New tasks land in the category being viewed.
		if snap := m.svc.Snapshot(); snap.View == query.ViewCategory && snap.CategoryFilter != nil {
			in.CategoryID = *snap.CategoryFilter
		}
		task, err := m.svc.CreateTask(in)
		if err != nil {
			return m.failed(err)
		}
		m.state = stateList
		return m.mutated("Added " + task.Title)

	case inputRename:
		task, ok := m.svc.Task(m.editTaskID)
		m.state = stateList
		if !ok {
			return m, m.loadTasks
		}
		in := service.InputFrom(task)
		in.Title = value
		if _, err := m.svc.UpdateTask(m.editTaskID, in); err != nil {
			m.state = stateInput
			return m.failed(err)
		}
		return m.mutated("")

	case inputSubtask:
		task, ok := m.svc.Task(m.editTaskID)
		m.state = stateList
		if !ok || strings.TrimSpace(value) == "" {
			return m, nil
		}
		in := service.InputFrom(task)
		in.Subtasks = append(in.Subtasks, model.Subtask{Text: value})
		if _, err := m.svc.UpdateTask(m.editTaskID, in); err != nil {
			return m.failed(err)
		}
		return m.mutated("")
	}
	m.state = stateList
	return m, nil
}

func (m Model) updateEditDesc(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = stateList
			task, ok := m.svc.Task(m.editTaskID)
			if !ok {
				return m, m.loadTasks
			}
			in := service.InputFrom(task)
			in.Description = m.descInput.Value()
			if _, err := m.svc.UpdateTask(m.editTaskID, in); err != nil {
				return m.failed(err)
			}
			return m.mutated("")
		case "ctrl+c":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.descInput, cmd = m.descInput.Update(msg)
	return m, cmd
}

func (m Model) updateDueDate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			task, ok := m.svc.Task(m.editTaskID)
			if !ok {
				m.state = stateList
				return m, m.loadTasks
			}
			in := service.InputFrom(task)
			if m.dateInput.IsEmpty() {
				in.DueDate, in.DueTime = "", ""
			} else {
				date, clock, err := m.dateInput.Value(m.svc.Now())
				if err != nil {
					return m.failed(err)
				}
				in.DueDate, in.DueTime = date, clock
			}
			if _, err := m.svc.UpdateTask(m.editTaskID, in); err != nil {
				return m.failed(err)
			}
			m.state = stateList
			return m.mutated("")
		case "esc":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

// The picker rows are: "No category", each category, "+ New category...".
func (m Model) updateCategorySelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.catCreating {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "enter":
				c, err := m.svc.CreateCategory(m.catInput.Value(), m.opts.CategoryColor)
				if err != nil {
					return m.failed(err)
				}
				m.catCreating = false
				m.catInput.Reset()
				return m.assignCategory(c.ID, "Added category "+c.Name)
			case "esc":
				m.catCreating = false
				m.catInput.Reset()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.catInput, cmd = m.catInput.Update(msg)
		return m, cmd
	}

	last := len(m.categories) + 1
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "j", "down":
			if m.catCursor < last {
				m.catCursor++
			}
		case "k", "up":
			if m.catCursor > 0 {
				m.catCursor--
			}
		case "enter", " ", "x":
			switch {
			case m.catCursor == 0:
				return m.assignCategory("", "")
			case m.catCursor == last:
				m.catCreating = true
				m.catInput.Reset()
				cmd := m.catInput.Focus()
				return m, cmd
			default:
				return m.assignCategory(m.categories[m.catCursor-1].ID, "")
			}
		case "esc":
			m.state = stateList
			return m, nil
		}
	}
	return m, nil
}

func (m Model) assignCategory(categoryID, notice string) (tea.Model, tea.Cmd) {
	m.state = stateList
	task, ok := m.svc.Task(m.editTaskID)
	if !ok {
		return m, m.loadTasks
	}
	in := service.InputFrom(task)
	in.CategoryID = categoryID
	if _, err := m.svc.UpdateTask(m.editTaskID, in); err != nil {
		return m.failed(err)
	}
	return m.mutated(notice)
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y":
			m.state = stateList
			switch m.confirm {
			case confirmDelete:
				if item, ok := m.selected(); ok {
					m.svc.DeleteTask(item.Task.ID)
					return m.mutated("Deleted " + item.Task.Title)
				}
			case confirmClear:
				n := m.svc.ClearCompleted()
				return m.mutated(fmt.Sprintf("Removed %d completed tasks", n))
			}
			return m, m.loadTasks
		case "n", "esc":
			m.state = stateList
			return m, nil
		}
	}
	return m, nil
}

func copyCmd(text, label string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return noticeMsg{text: "Clipboard: " + err.Error(), isErr: true}
		}
		return noticeMsg{text: label}
	}
}

func (m Model) importClipboardCmd() tea.Cmd {
	svc, logger := m.svc, m.logger
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		if err != nil {
			return noticeMsg{text: "Clipboard: " + err.Error(), isErr: true}
		}
		n, err := importer.Import(svc, []byte(text))
		if err != nil {
			logger.Warn("clipboard import", "created", n, "err", err)
			return noticeMsg{text: fmt.Sprintf("Imported %d tasks: %v", n, err), isErr: true, reload: n > 0}
		}
		return noticeMsg{text: fmt.Sprintf("Imported %d tasks", n), reload: true}
	}
}

func (m Model) exportCmd() tea.Cmd {
	svc, logger, dir := m.svc, m.logger, m.opts.ExportDir
	return func() tea.Msg {
		now := svc.Now()
		path := filepath.Join(dir, export.Filename(now, export.FormatJSON))
		if err := export.WriteFile(path, export.New(svc.Snapshot(), now), export.FormatJSON); err != nil {
			return noticeMsg{text: err.Error(), isErr: true}
		}
		logger.Info("exported", "path", path)
		return noticeMsg{text: "Exported to " + path}
	}
}
