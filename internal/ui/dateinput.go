package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/taskflow/internal/model"
)

const (
	fieldYear = iota
	fieldMonth
	fieldDay
	fieldHour
	fieldMinute
	fieldCount
)

// dateInput edits a due date and an optional due time as five digit fields.
type dateInput struct {
	fields [fieldCount]textinput.Model
	focus  int
}

func newDateInput() dateInput {
	placeholders := [fieldCount]string{"YYYY", "MM", "DD", "hh", "mm"}
	charLimits := [fieldCount]int{4, 2, 2, 2, 2}

	var fields [fieldCount]textinput.Model
	for i := range fields {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = charLimits[i]
		ti.Width = charLimits[i] + 2
		ti.Validate = func(s string) error {
			for _, r := range s {
				if !unicode.IsDigit(r) {
					return fmt.Errorf("digits only")
				}
			}
			return nil
		}
		fields[i] = ti
	}

	return dateInput{fields: fields}
}

func (d *dateInput) Focus() tea.Cmd {
	return d.focusField(fieldYear)
}

// SetValue fills the fields from a task's due date and time; either may be nil.
func (d *dateInput) SetValue(date, clock *string) {
	for i := range d.fields {
		d.fields[i].SetValue("")
	}
	if date != nil {
		parts := strings.SplitN(*date, "-", 3)
		for i := 0; i < len(parts) && i < 3; i++ {
			d.fields[fieldYear+i].SetValue(parts[i])
		}
	}
	if clock != nil {
		parts := strings.SplitN(*clock, ":", 2)
		for i := 0; i < len(parts); i++ {
			d.fields[fieldHour+i].SetValue(parts[i])
		}
	}
}

func (d *dateInput) value(i int) string {
	return strings.TrimSpace(d.fields[i].Value())
}

// Value returns the date (model.DateLayout) and the time (model.TimeLayout,
// empty when both time fields are blank). A blank year or month defaults to
// now's; the day is required. A lone hour means the full hour.
func (d *dateInput) Value(now time.Time) (date, clock string, err error) {
	yyyy, mm, dd := d.value(fieldYear), d.value(fieldMonth), d.value(fieldDay)

	if yyyy == "" {
		yyyy = fmt.Sprintf("%04d", now.Year())
	}
	if mm == "" {
		mm = fmt.Sprintf("%02d", int(now.Month()))
	}
	if dd == "" {
		return "", "", errors.New("day is required")
	}

	date = fmt.Sprintf("%s-%s-%s", yyyy, padLeft(mm, 2), padLeft(dd, 2))
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return "", "", fmt.Errorf("invalid date: %s", date)
	}

	hh, mi := d.value(fieldHour), d.value(fieldMinute)
	if hh == "" && mi == "" {
		return date, "", nil
	}
	if hh == "" {
		return "", "", errors.New("hour is required when minutes are set")
	}
	if mi == "" {
		mi = "00"
	}
	clock = padLeft(hh, 2) + ":" + padLeft(mi, 2)
	if _, err := time.Parse(model.TimeLayout, clock); err != nil {
		return "", "", fmt.Errorf("invalid time: %s", clock)
	}
	return date, clock, nil
}

func padLeft(s string, length int) string {
	for len(s) < length {
		s = "0" + s
	}
	return s
}

func (d *dateInput) IsEmpty() bool {
	for i := range d.fields {
		if d.fields[i].Value() != "" {
			return false
		}
	}
	return true
}

func (d *dateInput) focusField(idx int) tea.Cmd {
	d.focus = idx
	var cmds []tea.Cmd
	for i := range d.fields {
		if i == idx {
			cmds = append(cmds, d.fields[i].Focus())
		} else {
			d.fields[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

func (d dateInput) Update(msg tea.Msg) (dateInput, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab", "right":
			if d.focus < fieldCount-1 {
				cmd := d.focusField(d.focus + 1)
				return d, cmd
			}
			return d, nil
		case "shift+tab", "left":
			if d.focus > 0 {
				cmd := d.focusField(d.focus - 1)
				return d, cmd
			}
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.fields[d.focus], cmd = d.fields[d.focus].Update(msg)
	return d, cmd
}

func (d dateInput) View() string {
	return d.fields[fieldYear].View() + " - " + d.fields[fieldMonth].View() + " - " + d.fields[fieldDay].View() +
		"   " + d.fields[fieldHour].View() + " : " + d.fields[fieldMinute].View()
}
