package state

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Timestamped is implemented by storage that records when a key was written.
type Timestamped interface {
	UpdatedAt(key string) (time.Time, bool, error)
}

// Container holds the current snapshot and writes every update through to
// storage. Snapshots handed out are copies and may be modified freely.
type Container struct {
	mu      sync.Mutex
	current State
	storage Storage
	logger  *log.Logger
	subs    map[int]func(State)
	nextSub int
	err     error
	// readErr is set while the stored record could not be read. Nothing is
	// saved until a later read succeeds.
	readErr error
}

// NewContainer loads the stored state and returns a container for it.
func NewContainer(storage Storage, logger *log.Logger) *Container {
	logger = orDiscard(logger)
	s, readErr := LoadChecked(storage, logger)
	c := &Container{
		current: s,
		storage: storage,
		logger:  logger,
		subs:    make(map[int]func(State)),
		readErr: readErr,
	}
	c.err = c.blockedErr()
	return c
}

// Snapshot returns a copy of the current state.
func (c *Container) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

// Update applies fn to a copy of the current state. If fn reports a change
// the copy becomes the current snapshot, is persisted and is sent to every
// subscriber. A failed write is logged and kept in Err; the in-memory update
// stands. fn must not call back into the container.
//
// While the stored record is unreadable each Update retries the read first.
// Until it succeeds changes stay in memory and Err reports why.
func (c *Container) Update(fn func(draft *State) bool) State {
	c.mu.Lock()
	c.rereadLocked()
	draft := c.current.Clone()
	if !fn(&draft) {
		c.err = c.blockedErr()
		c.mu.Unlock()
		return draft
	}
	c.current = draft
	if c.readErr != nil {
		c.err = c.blockedErr()
	} else {
		c.err = Save(c.storage, draft)
	}
	err := c.err
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	snap := draft.Clone()
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("persist state", "err", err)
	}
	for _, fn := range subs {
		fn(snap.Clone())
	}
	return snap
}

// rereadLocked retries a failed read. On success the stored record replaces
// the stand-in defaults together with any unsaved changes made on top of them.
func (c *Container) rereadLocked() {
	if c.readErr == nil {
		return
	}
	s, err := LoadChecked(c.storage, c.logger)
	if err != nil {
		c.readErr = err
		return
	}
	c.logger.Warn("stored state readable again, dropping unsaved changes")
	c.current = s
	c.readErr = nil
}

func (c *Container) blockedErr() error {
	if c.readErr == nil {
		return nil
	}
	return fmt.Errorf("stored state unreadable, not saving: %w", c.readErr)
}

// Subscribe registers fn to receive every new snapshot. The returned
// function removes the subscription.
func (c *Container) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Err returns the persistence error of the most recent Update, nil when it
// saved or had nothing to save.
func (c *Container) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SavedAt reports when the record was last written. ok is false when the
// storage does not track write times or nothing was written yet.
func (c *Container) SavedAt() (at time.Time, ok bool, err error) {
	ts, isTimestamped := c.storage.(Timestamped)
	if !isTimestamped {
		return time.Time{}, false, nil
	}
	return ts.UpdatedAt(Key)
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
