package opcua

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseiot/opcua/ua"
)

func TestRequestTableCompleteDeliversAndRemoves(t *testing.T) {
	tbl := newRequestTable()
	var got result
	tbl.insert(&pending{
		requestID: 7,
		deadline:  time.Now().Add(time.Minute),
		callback: func(resp ua.Response, err error) {
			got = result{resp: resp, err: err}
		},
	})
	require.Equal(t, 1, tbl.len())

	resp := &ua.ReadResponse{}
	ok := tbl.complete(7, result{resp: resp})
	assert.True(t, ok)
	assert.Same(t, resp, got.resp)
	assert.Equal(t, 0, tbl.len())

	// a second completion for the same id is a no-op, matching the
	// "stale or duplicate" handling dispatch relies on.
	ok = tbl.complete(7, result{resp: resp})
	assert.False(t, ok)
}

func TestRequestTableExpireTimeoutsOrdersAscendingByID(t *testing.T) {
	tbl := newRequestTable()
	now := time.Now()
	var fired []uint32
	for _, id := range []uint32{3, 1, 2} {
		id := id
		tbl.insert(&pending{
			requestID: id,
			deadline:  now.Add(-time.Second), // already expired
			callback: func(_ ua.Response, err error) {
				assert.Equal(t, ua.StatusBadTimeout, err)
				fired = append(fired, id)
			},
		})
	}
	tbl.expireTimeouts(now)
	assert.Equal(t, []uint32{1, 2, 3}, fired)
	assert.Equal(t, 0, tbl.len())
}

func TestRequestTableFlushDrainsInAscendingOrder(t *testing.T) {
	tbl := newRequestTable()
	var fired []uint32
	for _, id := range []uint32{5, 4, 6} {
		id := id
		tbl.insert(&pending{
			requestID: id,
			callback: func(_ ua.Response, err error) {
				assert.Equal(t, ua.StatusBadShutdown, err)
				fired = append(fired, id)
			},
		})
	}
	tbl.flush(ua.StatusBadShutdown)
	assert.Equal(t, []uint32{4, 5, 6}, fired)
	assert.Equal(t, 0, tbl.len())
}

func TestRequestTableEarliestDeadline(t *testing.T) {
	tbl := newRequestTable()
	_, ok := tbl.earliestDeadline()
	assert.False(t, ok)

	now := time.Now()
	tbl.insert(&pending{requestID: 1, deadline: now.Add(5 * time.Second), callback: func(ua.Response, error) {}})
	tbl.insert(&pending{requestID: 2, deadline: now.Add(time.Second), callback: func(ua.Response, error) {}})
	tbl.insert(&pending{requestID: 3, deadline: now.Add(10 * time.Second), callback: func(ua.Response, error) {}})

	earliest, ok := tbl.earliestDeadline()
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(time.Second), earliest, time.Millisecond)
}
