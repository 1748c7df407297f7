package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add         key.Binding
	Rename      key.Binding
	EditDesc    key.Binding
	DueDate     key.Binding
	Priority    key.Binding
	Category    key.Binding
	SubAdd      key.Binding
	SubToggle   key.Binding
	Toggle      key.Binding
	Duplicate   key.Binding
	Delete      key.Binding
	View        key.Binding
	Sort        key.Binding
	Search      key.Binding
	ClearSearch key.Binding
	MarkAll     key.Binding
	ClearDone   key.Binding
	Theme       key.Binding
	Export      key.Binding
	Prompt      key.Binding
	Import      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a/n", "add"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		EditDesc: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit desc"),
		),
		DueDate: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "due date"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "priority"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "category"),
		),
		SubAdd: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sub-task"),
		),
		SubToggle: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "toggle sub-task"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", "x"),
			key.WithHelp("enter/x", "toggle"),
		),
		Duplicate: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "duplicate"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		View: key.NewBinding(
			key.WithKeys("tab", "v"),
			key.WithHelp("tab/v", "view"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ClearSearch: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
		MarkAll: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "all done"),
		),
		ClearDone: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear done"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Export: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export"),
		),
		Prompt: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "copy prompt"),
		),
		Import: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "import clipboard"),
		),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.View, k.Search}
}

func (k keyMap) full() []key.Binding {
	return []key.Binding{
		k.Add, k.Rename, k.EditDesc, k.DueDate, k.Priority, k.Category,
		k.SubAdd, k.SubToggle, k.Toggle, k.Duplicate, k.Delete,
		k.View, k.Sort, k.Search, k.MarkAll, k.ClearDone,
		k.Theme, k.Export, k.Prompt, k.Import,
	}
}
