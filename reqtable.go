package opcua

import (
	"sort"
	"time"

	"github.com/pulseiot/opcua/ua"
)

// pending is one outstanding request table entry (spec §3 "Pending
// request", spec §9 "typed continuation variant Sync(waker) |
// Async{callback, userdata, response_type}"). Because the client is
// single-threaded cooperative (spec §5), a "synchronous" wait is not a
// blocked goroutine reading a channel: service() registers a callback
// that stores the result into a local variable and sets a local done
// flag, then drives the event loop itself (runUntil, which calls loopOnce
// with the transport read enabled) until done is observed true (spec §9).
// Sync and Async therefore share one representation.
type pending struct {
	requestID uint32
	respType  ua.Response
	deadline  time.Time
	callback  func(ua.Response, error)
}

type result struct {
	resp ua.Response
	err  error
}

// requestTable maps outstanding requestId to its pending continuation
// (spec §4, "Request table"). It is only ever touched from the thread
// executing run/run_iterate/service/async_service (spec §5).
type requestTable struct {
	byID map[uint32]*pending
}

func newRequestTable() *requestTable {
	return &requestTable{byID: make(map[uint32]*pending)}
}

func (t *requestTable) insert(p *pending) {
	t.byID[p.requestID] = p
}

func (t *requestTable) len() int { return len(t.byID) }

// complete removes requestID's entry (if any) and delivers result r to
// it. Returns false if requestID was unknown, which the caller logs and
// discards per spec §4.4 "stale or duplicate" handling.
func (t *requestTable) complete(requestID uint32, r result) bool {
	p, ok := t.byID[requestID]
	if !ok {
		return false
	}
	delete(t.byID, requestID) // removed before delivery: re-entrant safe
	p.callback(r.resp, r.err)
	return true
}

// earliestDeadline returns the soonest deadline among all pending
// entries, or the zero Time if none.
func (t *requestTable) earliestDeadline() (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, p := range t.byID {
		if !found || p.deadline.Before(earliest) {
			earliest = p.deadline
			found = true
		}
	}
	return earliest, found
}

// expireTimeouts completes every entry whose deadline has passed with
// BadTimeout (spec §4.4 step 5b).
func (t *requestTable) expireTimeouts(now time.Time) {
	var expired []uint32
	for id, p := range t.byID {
		if !now.Before(p.deadline) {
			expired = append(expired, id)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	for _, id := range expired {
		t.complete(id, result{err: ua.StatusBadTimeout})
	}
}

// flush drains every pending entry in ascending requestId order,
// completing each with err (spec §4.4 "On channel teardown, pending
// entries are drained in ascending request_id order, each completed with
// BadShutdown").
func (t *requestTable) flush(err error) {
	var ids []uint32
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		t.complete(id, result{err: err})
	}
}
