package opcua

import (
	"time"

	"github.com/pulseiot/opcua/ua"
)

// minInterval is the smallest interval a repeated callback may use (spec
// §4.5 "Interval ≥ 5 ms; smaller values are rejected with
// BadInvalidArgument").
const minInterval = 5 * time.Millisecond

// timerEntry is one repeated callback (spec §3 "Repeated callback").
type timerEntry struct {
	id        uint64
	callback  func()
	interval  time.Duration
	nextFire  time.Time
	removed   bool
}

// timerWheel is a sorted-by-deadline list of repeated callbacks (spec
// §4.5). It is deliberately a plain slice kept sorted on insert: the
// client's callback counts are small (a handful of housekeeping timers
// plus one per subscription at most), so a sorted slice beats the
// complexity of a real wheel/heap while keeping earliestDeadline O(1).
type timerWheel struct {
	entries []*timerEntry
	nextID  uint64
	firing  *timerEntry // set while tick() is invoking firing.callback, to support self-removal
}

func newTimerWheel() *timerWheel {
	return &timerWheel{nextID: 1}
}

// addRepeated registers cb to fire every interval starting interval from
// now (spec §4.5 `add_repeated`).
func (w *timerWheel) addRepeated(now time.Time, interval time.Duration, cb func()) (uint64, error) {
	if interval < minInterval {
		return 0, ua.StatusBadInvalidArgument
	}
	e := &timerEntry{
		id:       w.nextID,
		callback: cb,
		interval: interval,
		nextFire: now.Add(interval),
	}
	w.nextID++
	w.insertSorted(e)
	return e.id, nil
}

func (w *timerWheel) insertSorted(e *timerEntry) {
	i := 0
	for ; i < len(w.entries); i++ {
		if w.entries[i].nextFire.After(e.nextFire) {
			break
		}
	}
	w.entries = append(w.entries, nil)
	copy(w.entries[i+1:], w.entries[i:])
	w.entries[i] = e
}

// changeInterval updates id's firing interval, taking effect on its next
// scheduled fire (spec §4.5 `change_interval`).
func (w *timerWheel) changeInterval(id uint64, interval time.Duration) error {
	if interval < minInterval {
		return ua.StatusBadInvalidArgument
	}
	for _, e := range w.entries {
		if e.id == id && !e.removed {
			e.interval = interval
			return nil
		}
	}
	return ua.StatusBadInvalidArgument
}

// remove unregisters id. Removing the callback currently executing
// inside tick() is legal: it is marked removed and filtered out when
// tick() reinserts entries after the callback returns (spec §4.5 "the
// wheel tolerates self-removal by deferring structural edits").
func (w *timerWheel) remove(id uint64) {
	if w.firing != nil && w.firing.id == id {
		w.firing.removed = true
		return
	}
	for _, e := range w.entries {
		if e.id == id {
			e.removed = true
			return
		}
	}
}

// earliestDeadline returns the soonest nextFire among live entries.
func (w *timerWheel) earliestDeadline() (time.Time, bool) {
	for _, e := range w.entries {
		if !e.removed {
			return e.nextFire, true
		}
	}
	return time.Time{}, false
}

// tick pops and runs every entry whose nextFire has passed, then
// reinserts each with nextFire = now + interval (drift-absorbing: a
// callback that was due 300ms ago still only fires once and is
// rescheduled from now, not from its missed deadline, per spec §4.5
// "missed fires do not pile up").
func (w *timerWheel) tick(now time.Time) {
	var due []*timerEntry
	var rest []*timerEntry
	for _, e := range w.entries {
		if e.removed {
			continue
		}
		if !e.nextFire.After(now) {
			due = append(due, e)
		} else {
			rest = append(rest, e)
		}
	}
	w.entries = rest
	for _, e := range due {
		w.firing = e
		e.callback()
		w.firing = nil
		if e.removed {
			continue
		}
		e.nextFire = now.Add(e.interval)
		w.insertSorted(e)
	}
}
