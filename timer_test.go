package opcua

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseiot/opcua/ua"
)

func TestTimerWheelRejectsTooSmallInterval(t *testing.T) {
	w := newTimerWheel()
	_, err := w.addRepeated(time.Now(), time.Millisecond, func() {})
	assert.Equal(t, ua.StatusBadInvalidArgument, err)
}

func TestTimerWheelTickFiresDueEntriesAndReschedules(t *testing.T) {
	w := newTimerWheel()
	now := time.Now()
	fired := 0
	id, err := w.addRepeated(now, 10*time.Millisecond, func() { fired++ })
	require.NoError(t, err)

	w.tick(now) // not due yet
	assert.Equal(t, 0, fired)

	w.tick(now.Add(10 * time.Millisecond))
	assert.Equal(t, 1, fired)

	next, ok := w.earliestDeadline()
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(20*time.Millisecond), next, time.Millisecond)

	w.remove(id)
	w.tick(now.Add(20 * time.Millisecond))
	assert.Equal(t, 1, fired, "removed callback must not fire again")
}

func TestTimerWheelMissedFiresDoNotPileUp(t *testing.T) {
	w := newTimerWheel()
	now := time.Now()
	fired := 0
	w.addRepeated(now, 10*time.Millisecond, func() { fired++ })

	// 300ms have passed without a single tick; the callback is due many
	// times over but must still only fire once per tick.
	w.tick(now.Add(300 * time.Millisecond))
	assert.Equal(t, 1, fired)

	next, ok := w.earliestDeadline()
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(310*time.Millisecond), next, time.Millisecond)
}

func TestTimerWheelSelfRemoval(t *testing.T) {
	w := newTimerWheel()
	now := time.Now()
	var id uint64
	fired := 0
	id, _ = w.addRepeated(now, 10*time.Millisecond, func() {
		fired++
		w.remove(id)
	})
	w.tick(now.Add(10 * time.Millisecond))
	assert.Equal(t, 1, fired)
	_, ok := w.earliestDeadline()
	assert.False(t, ok)
}

func TestTimerWheelChangeInterval(t *testing.T) {
	w := newTimerWheel()
	now := time.Now()
	id, _ := w.addRepeated(now, 100*time.Millisecond, func() {})

	require.NoError(t, w.changeInterval(id, 5*time.Millisecond))
	assert.Equal(t, ua.StatusBadInvalidArgument, w.changeInterval(id, time.Millisecond))
	assert.Equal(t, ua.StatusBadInvalidArgument, w.changeInterval(999, 10*time.Millisecond))
}
