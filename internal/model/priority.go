package model

import "fmt"

// Priority is the urgency of a task. The empty value means unset.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = "none"
)

// DefaultPriority is assigned to new tasks that do not specify one.
const DefaultPriority = PriorityMedium

// Priorities lists every valid priority from most to least severe.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow, PriorityNone}

// Rank orders priorities by severity. Unset and unknown values rank with none.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid returns true for the five named priorities.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Next cycles to the following priority, wrapping from none to urgent.
func (p Priority) Next() Priority {
	for i, v := range Priorities {
		if p == v {
			return Priorities[(i+1)%len(Priorities)]
		}
	}
	return DefaultPriority
}

// Label returns a short display name, empty for none or unset.
func (p Priority) Label() string {
	switch p {
	case PriorityUrgent:
		return "Urgent"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return ""
	}
}

// ParsePriority converts user input to a Priority. Empty input yields the
// default priority.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return DefaultPriority, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q, must be one of: urgent, high, medium, low, none", s)
	}
	return p, nil
}
