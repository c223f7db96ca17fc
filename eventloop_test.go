package opcua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseiot/opcua/ua"
	"github.com/pulseiot/opcua/uasc"
)

// encodeAsResponse mimics what a server puts on the wire: the NodeId tag for
// resp's own binary encoding id, followed by resp's body -- the same framing
// dispatch's ua.DecodeResponse call expects.
func encodeAsResponse(t *testing.T, resp ua.Response) []byte {
	t.Helper()
	enc := ua.NewEncoder()
	require.NoError(t, ua.NewFourByteExpandedNodeID(0, ua.TypeID(resp)).Encode(enc))
	tag := enc.Bytes()
	body, err := ua.Encode(resp)
	require.NoError(t, err)
	return append(tag, body...)
}

// TestDispatchSurfacesPublishResponseServiceResultAsError drives a
// well-formed PublishResponse carrying BadTooManyPublishRequests in its
// ResponseHeader.ServiceResult through dispatch (the same path
// ProcessBinaryMessage/routeRaw use), not by calling handlePublishResponse
// directly with a hand-built error. This is the wire path spec §4.6's
// throttle behavior and testable scenario 6 actually depend on.
func TestDispatchSurfacesPublishResponseServiceResultAsError(t *testing.T) {
	c := newTestClient()
	c.subs[1] = &subscriptionState{id: 1}
	c.pubTarget = 3

	raw := encodeAsResponse(t, &ua.PublishResponse{
		ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusBadTooManyPublishRequests},
		SubscriptionID: 1,
	})

	c.reqtable.insert(&pending{
		requestID: 42,
		respType:  &ua.PublishResponse{},
		callback: func(resp ua.Response, err error) {
			c.handlePublishResponse(resp.(*ua.PublishResponse), err)
		},
	})

	require.NoError(t, c.dispatch(&uasc.Message{RequestID: 42, Payload: raw}))

	assert.Equal(t, 2, c.pubTarget, "pump target must drop by one on BadTooManyPublishRequests")
	assert.Equal(t, 0, c.reqtable.len())
}

// TestDispatchEscalatesPublishResponseSessionIDInvalid is the
// BadSessionIdInvalid counterpart: dispatch must surface it as the
// completion error so handlePublishResponse's escalation branch runs.
func TestDispatchEscalatesPublishResponseSessionIDInvalid(t *testing.T) {
	c := newTestClient()
	c.state = SessionActive

	raw := encodeAsResponse(t, &ua.PublishResponse{
		ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusBadSessionIDInvalid},
	})

	c.reqtable.insert(&pending{
		requestID: 1,
		respType:  &ua.PublishResponse{},
		callback: func(resp ua.Response, err error) {
			c.handlePublishResponse(resp.(*ua.PublishResponse), err)
		},
	})

	require.NoError(t, c.dispatch(&uasc.Message{RequestID: 1, Payload: raw}))

	assert.Equal(t, Disconnected, c.GetState())
	assert.Equal(t, 0, c.reqtable.len())
}

// TestDispatchLeavesNonPublishServiceResultOnTheResponse checks the other
// side of the fix: a non-Good ServiceResult on any service other than
// Publish is left on the response for the caller to read, "surfaced
// unchanged" per spec §7 kind 4, not translated into a completion error.
func TestDispatchLeavesNonPublishServiceResultOnTheResponse(t *testing.T) {
	c := newTestClient()
	raw := encodeAsResponse(t, &ua.ReadResponse{
		ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusBadSessionIDInvalid},
	})

	var gotResp ua.Response
	var gotErr error
	c.reqtable.insert(&pending{
		requestID: 7,
		respType:  &ua.ReadResponse{},
		callback: func(resp ua.Response, err error) {
			gotResp = resp
			gotErr = err
		},
	})

	require.NoError(t, c.dispatch(&uasc.Message{RequestID: 7, Payload: raw}))

	assert.NoError(t, gotErr)
	require.NotNil(t, gotResp)
	assert.Equal(t, ua.StatusBadSessionIDInvalid, gotResp.(*ua.ReadResponse).ResponseHeader.ServiceResult)
}
