// Package service exposes every operation that changes tasks, categories or
// view preferences. Each successful mutation replaces the state snapshot and
// is written to storage before the call returns.
package service

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/query"
	"github.com/nissyi-gh/taskflow/internal/state"
	"golang.org/x/text/language"
)

// Validation failures. The operation that returns one changed nothing.
var (
	ErrEmptyTitle        = errors.New("title is required")
	ErrEmptyCategoryName = errors.New("category name is required")
	ErrInvalidDueDate    = errors.New("due date must be YYYY-MM-DD")
	ErrInvalidDueTime    = errors.New("due time must be HH:MM")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrNothingPending    = errors.New("all tasks already completed")
)

// IsValidation reports whether err is one of the validation failures above.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyTitle, ErrEmptyCategoryName, ErrInvalidDueDate,
		ErrInvalidDueTime, ErrInvalidPriority, ErrNothingPending,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CopySuffix is appended to the title of a duplicated task.
const CopySuffix = " (copy)"

// Service mutates and queries the application state.
type Service struct {
	state  *state.Container
	logger *log.Logger
	now    func() time.Time
	locale language.Tag
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for mutation events.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocale sets the collation locale for alphabetical sorting.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) { s.locale = tag }
}

// New returns a service operating on c.
func New(c *state.Container, opts ...Option) *Service {
	s := &Service{
		state:  c,
		logger: log.New(io.Discard),
		now:    time.Now,
		locale: language.Und,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() state.State {
	return s.state.Snapshot()
}

// Subscribe forwards to the state container.
func (s *Service) Subscribe(fn func(state.State)) func() {
	return s.state.Subscribe(fn)
}

// Err reports the last persistence failure, if any. Mutations are kept in
// memory even when the write fails.
func (s *Service) Err() error {
	return s.state.Err()
}

// SavedAt reports when the state was last written, when storage tracks it.
func (s *Service) SavedAt() (time.Time, bool, error) {
	return s.state.SavedAt()
}

// Tasks runs the query engine over the current state with the stored view
// and sort, reading the clock afresh.
func (s *Service) Tasks(search string) []model.Task {
	snap := s.state.Snapshot()
	p := snap.Params(search)
	p.Locale = s.locale
	return query.Tasks(snap.Tasks, p, s.now())
}

// Query runs the query engine with explicit parameters. A zero Locale is
// replaced by the configured one.
func (s *Service) Query(p query.Params) []model.Task {
	if p.Locale == language.Und {
		p.Locale = s.locale
	}
	return query.Tasks(s.state.Snapshot().Tasks, p, s.now())
}

// Now reads the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Summary returns the counters for the current state.
func (s *Service) Summary() query.Summary {
	snap := s.state.Snapshot()
	return query.Summarize(snap.Tasks, snap.Categories, s.now())
}

// Task returns the task with id.
func (s *Service) Task(id string) (model.Task, bool) {
	snap := s.state.Snapshot()
	if i := snap.TaskIndex(id); i >= 0 {
		return snap.Tasks[i], true
	}
	return model.Task{}, false
}

// Category resolves a weak category reference.
func (s *Service) Category(id *string) (model.Category, bool) {
	return model.LookupCategory(s.state.Snapshot().Categories, id)
}

// ErrNotFound and ErrAmbiguous are returned by ResolveTaskID.
var (
	ErrNotFound  = errors.New("no task matches")
	ErrAmbiguous = errors.New("several tasks match")
)

// ResolveTaskID expands a unique id prefix to the full task id.
func (s *Service) ResolveTaskID(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	var match string
	for _, t := range s.state.Snapshot().Tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %q", ErrAmbiguous, prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}
	return match, nil
}
