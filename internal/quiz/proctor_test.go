package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProctorMonitor_Transitions(t *testing.T) {
	t.Run("focus lost then regained", func(t *testing.T) {
		m := NewProctorMonitor(nil, nil)
		assert.Equal(t, StateActive, m.State())

		assert.Equal(t, StateSuspected, m.HandleEvent(EventFocusLost))
		assert.Equal(t, StateActive, m.HandleEvent(EventFocusRegained))
		assert.False(t, m.Locked())
	})

	t.Run("hidden locks immediately", func(t *testing.T) {
		m := NewProctorMonitor(nil, nil)
		assert.Equal(t, StateLocked, m.HandleEvent(EventHidden))
		assert.True(t, m.Locked())
	})

	t.Run("second focus loss while suspected locks", func(t *testing.T) {
		m := NewProctorMonitor(nil, nil)
		m.HandleEvent(EventFocusLost)
		assert.Equal(t, StateLocked, m.HandleEvent(EventFocusLost))
	})

	t.Run("hidden while suspected locks", func(t *testing.T) {
		m := NewProctorMonitor(nil, nil)
		m.HandleEvent(EventFocusLost)
		assert.Equal(t, StateLocked, m.HandleEvent(EventHidden))
	})
}

func TestProctorMonitor_LockIsIdempotent(t *testing.T) {
	clock := newFakeClock()

	var violations []Violation
	m := NewProctorMonitor(clock.Now, func(v Violation) {
		violations = append(violations, v)
	})

	m.HandleEvent(EventHidden)
	require.Len(t, violations, 1)
	assert.Equal(t, EventHidden, violations[0].Event)
	assert.Equal(t, clock.Now(), violations[0].OccurredAt)

	// Repeated hide/show cycles after the lock change nothing and emit no
	// further violation records.
	for i := 0; i < 5; i++ {
		assert.Equal(t, StateLocked, m.HandleEvent(EventFocusRegained))
		assert.Equal(t, StateLocked, m.HandleEvent(EventHidden))
	}
	assert.Len(t, violations, 1)
}

func TestProctorState_String(t *testing.T) {
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "suspected", StateSuspected.String())
	assert.Equal(t, "locked", StateLocked.String())
	assert.Equal(t, "unknown", ProctorState(42).String())
}
