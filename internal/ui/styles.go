package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/nissyi-gh/taskflow/internal/state"
)

type palette struct {
	accent, text, muted, err, warn, ok, border lipgloss.Color
}

var palettes = map[state.Theme]palette{
	state.ThemeDark: {
		accent: "170", text: "252", muted: "241", err: "196", warn: "214", ok: "42", border: "241",
	},
	state.ThemeLight: {
		accent: "125", text: "235", muted: "245", err: "160", warn: "130", ok: "28", border: "250",
	},
}

type styles struct {
	pal     palette
	app     lipgloss.Style
	title   lipgloss.Style
	status  lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	ok      lipgloss.Style
	confirm lipgloss.Style
	detail  lipgloss.Style
	descBox lipgloss.Style
}

func newStyles(theme state.Theme) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[state.ThemeDark]
	}
	return styles{
		pal:     p,
		app:     lipgloss.NewStyle().Padding(1, 2),
		title:   lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		status:  lipgloss.NewStyle().Foreground(p.muted),
		err:     lipgloss.NewStyle().Foreground(p.err),
		warn:    lipgloss.NewStyle().Foreground(p.warn),
		ok:      lipgloss.NewStyle().Foreground(p.ok),
		confirm: lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		detail: lipgloss.NewStyle().
			Padding(1, 2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.border),
		descBox: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border),
	}
}

func (s styles) delegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetHeight(1)
	d.SetSpacing(0)
	d.Styles.NormalTitle = d.Styles.NormalTitle.Foreground(s.pal.text)
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(s.pal.accent).
		BorderForeground(s.pal.accent)
	d.Styles.DimmedTitle = d.Styles.DimmedTitle.Foreground(s.pal.muted)
	return d
}

func categoryStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
