// Package session tracks the lifecycle of the single analysis request the
// application allows at a time, along with the checklist built from its reply.
package session

import (
	"errors"
	"sync"
	"time"

	"summymail/internal/analysis"
)

// State is the request lifecycle state shown by the presentation layer
type State string

const (
	StateIdle     State = "idle"
	StateInFlight State = "in_flight"
	StateError    State = "error"
	StateDone     State = "done"
)

var (
	// ErrRequestInFlight is returned by Begin while a request is outstanding
	ErrRequestInFlight = errors.New("an analysis is already in progress")

	// ErrNoSuchItem is returned by Toggle for an index outside the checklist
	ErrNoSuchItem = errors.New("action item not found")

	// ErrNotReady is returned when an operation needs a completed analysis
	ErrNotReady = errors.New("no completed analysis available")
)

// ActionItem is a checklist entry
type ActionItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Snapshot is a copy of the session at a point in time
type Snapshot struct {
	State       State        `json:"state" example:"done"`
	Reply       string       `json:"reply,omitempty"`
	ActionItems []ActionItem `json:"action_items"`
	Error       string       `json:"error,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Session holds the most recent reply and its checklist
type Session struct {
	mu        sync.Mutex
	state     State
	reply     string
	items     []ActionItem
	err       string
	updatedAt time.Time
	now       func() time.Time
}

// New creates an idle session
func New() *Session {
	s := &Session{
		state: StateIdle,
		now:   time.Now,
	}
	s.updatedAt = s.now().UTC()
	return s
}

// Begin moves the session to in_flight and discards the previous result
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInFlight {
		return ErrRequestInFlight
	}

	s.state = StateInFlight
	s.reply = ""
	s.items = nil
	s.err = ""
	s.touch()
	return nil
}

// Complete stores reply, builds the checklist from it and moves to done
func (s *Session) Complete(reply string) Snapshot {
	items := analysis.ExtractActionItems(reply)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateDone
	s.reply = reply
	s.err = ""
	s.items = make([]ActionItem, len(items))
	for i, text := range items {
		s.items[i] = ActionItem{Text: text}
	}
	s.touch()
	return s.snapshotLocked()
}

// Fail records err and moves to error
func (s *Session) Fail(err error) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateError
	s.reply = ""
	s.items = nil
	if err != nil {
		s.err = err.Error()
	}
	s.touch()
	return s.snapshotLocked()
}

// Toggle flips the done flag of the checklist item at index
func (s *Session) Toggle(index int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDone {
		return s.snapshotLocked(), ErrNotReady
	}
	if index < 0 || index >= len(s.items) {
		return s.snapshotLocked(), ErrNoSuchItem
	}

	s.items[index].Done = !s.items[index].Done
	s.touch()
	return s.snapshotLocked(), nil
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	items := make([]ActionItem, len(s.items))
	copy(items, s.items)

	return Snapshot{
		State:       s.state,
		Reply:       s.reply,
		ActionItems: items,
		Error:       s.err,
		UpdatedAt:   s.updatedAt,
	}
}

func (s *Session) touch() {
	s.updatedAt = s.now().UTC()
}
