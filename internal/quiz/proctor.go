package quiz

import "time"

type ProctorState int

const (
	StateActive ProctorState = iota
	StateSuspected
	StateLocked
)

func (s ProctorState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateSuspected:
		return "suspected"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// FocusEvent is an abstract signal from the viewing surface. The monitor is
// deliberately decoupled from any browser API so it can be driven with
// synthetic events in tests.
type FocusEvent string

const (
	// EventFocusLost: the surface lost focus but may still be visible.
	EventFocusLost FocusEvent = "focus_lost"
	// EventFocusRegained: the surface is focused again.
	EventFocusRegained FocusEvent = "focus_regained"
	// EventHidden: the surface was backgrounded entirely.
	EventHidden FocusEvent = "hidden"
)

// Violation describes the transition into the locked state.
type Violation struct {
	Event      FocusEvent   `json:"event"`
	FromState  ProctorState `json:"-"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// ProctorMonitor is the anti-cheat state machine:
//
//	Active --focus_lost--> Suspected --focus_regained--> Active
//	Active/Suspected --hidden--> Locked
//	Suspected --focus_lost--> Locked
//
// Locked is absorbing: every further event is ignored and the lock callback
// never fires twice. Only an administrative unlock (outside this type)
// reverses a lock.
type ProctorMonitor struct {
	state  ProctorState
	now    func() time.Time
	onLock func(Violation)
}

// NewProctorMonitor starts a monitor in the active state. clock may be nil
// for time.Now; onLock may be nil.
func NewProctorMonitor(clock func() time.Time, onLock func(Violation)) *ProctorMonitor {
	if clock == nil {
		clock = time.Now
	}
	return &ProctorMonitor{
		state:  StateActive,
		now:    clock,
		onLock: onLock,
	}
}

// State returns the current state.
func (m *ProctorMonitor) State() ProctorState {
	return m.state
}

// Locked reports whether the monitor has reached the terminal state.
func (m *ProctorMonitor) Locked() bool {
	return m.state == StateLocked
}

// HandleEvent feeds one focus event through the state machine and returns the
// resulting state.
func (m *ProctorMonitor) HandleEvent(ev FocusEvent) ProctorState {
	if m.state == StateLocked {
		return m.state
	}

	switch ev {
	case EventFocusLost:
		if m.state == StateSuspected {
			m.lock(ev)
		} else {
			m.state = StateSuspected
		}
	case EventFocusRegained:
		m.state = StateActive
	case EventHidden:
		m.lock(ev)
	}
	return m.state
}

func (m *ProctorMonitor) lock(ev FocusEvent) {
	from := m.state
	m.state = StateLocked
	if m.onLock != nil {
		m.onLock(Violation{
			Event:      ev,
			FromState:  from,
			OccurredAt: m.now(),
		})
	}
}
