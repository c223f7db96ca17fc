package opcua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseiot/opcua/ua"
)

func newTestClient() *Client {
	return newClientFromConfig(newConfig("opc.tcp://localhost:4840"))
}

func TestDrainAcksCollectsAndClearsAllSubscriptions(t *testing.T) {
	c := newTestClient()
	c.subs[1] = &subscriptionState{id: 1, pendingAcks: []*ua.SubscriptionAcknowledgement{{SubscriptionID: 1, SequenceNumber: 5}}}
	c.subs[2] = &subscriptionState{id: 2, pendingAcks: []*ua.SubscriptionAcknowledgement{{SubscriptionID: 2, SequenceNumber: 9}}}

	acks := c.drainAcks()
	assert.Len(t, acks, 2)
	assert.Empty(t, c.subs[1].pendingAcks)
	assert.Empty(t, c.subs[2].pendingAcks)

	// a second drain with nothing pending returns nothing.
	assert.Empty(t, c.drainAcks())
}

func TestQueueAckAppendsForKnownSubscriptionOnly(t *testing.T) {
	c := newTestClient()
	c.subs[1] = &subscriptionState{id: 1}

	c.queueAck(&ua.PublishResponse{SubscriptionID: 1, NotificationMessage: &ua.NotificationMessage{SequenceNumber: 42}})
	require.Len(t, c.subs[1].pendingAcks, 1)
	assert.Equal(t, uint32(42), c.subs[1].pendingAcks[0].SequenceNumber)

	// unknown subscription id is ignored rather than panicking.
	c.queueAck(&ua.PublishResponse{SubscriptionID: 99, NotificationMessage: &ua.NotificationMessage{SequenceNumber: 1}})
	assert.NotContains(t, c.subs, uint32(99))
}

func TestHandlePublishResponseThrottlesOnTooManyPublishRequests(t *testing.T) {
	c := newTestClient()
	c.pubTarget = 3

	c.handlePublishResponse(nil, ua.StatusBadTooManyPublishRequests)
	assert.Equal(t, 2, c.pubTarget)
}

func TestHandlePublishResponseEscalatesOnSessionIDInvalid(t *testing.T) {
	c := newTestClient()
	c.state = SessionActive
	c.reqtable.insert(&pending{requestID: 1, callback: func(ua.Response, error) {}})

	c.handlePublishResponse(nil, ua.StatusBadSessionIDInvalid)
	assert.Equal(t, Disconnected, c.GetState())
	assert.Equal(t, 0, c.reqtable.len(), "onFatal must flush the request table")
}

func TestNotifySubscriptionRoutesKnownNotificationKinds(t *testing.T) {
	c := newTestClient()
	var got interface{}
	var gotErr error
	c.subs[1] = &subscriptionState{id: 1, handler: func(value interface{}, err error) {
		got = value
		gotErr = err
	}}

	dc := &ua.DataChangeNotification{}
	c.notifySubscription(&ua.PublishResponse{
		SubscriptionID: 1,
		NotificationMessage: &ua.NotificationMessage{
			NotificationData: []*ua.ExtensionObject{{Value: dc}},
		},
	})
	assert.Same(t, dc, got)
	assert.NoError(t, gotErr)
}

func TestNotifySubscriptionReportsUnknownNotificationKind(t *testing.T) {
	c := newTestClient()
	var gotErr error
	c.subs[1] = &subscriptionState{id: 1, handler: func(_ interface{}, err error) { gotErr = err }}

	c.notifySubscription(&ua.PublishResponse{
		SubscriptionID: 1,
		NotificationMessage: &ua.NotificationMessage{
			NotificationData: []*ua.ExtensionObject{{Value: "not a real notification"}},
		},
	})
	assert.Error(t, gotErr)
}

func TestPublishInFlightCountsOnlyPublishResponses(t *testing.T) {
	c := newTestClient()
	c.reqtable.insert(&pending{requestID: 1, respType: &ua.PublishResponse{}, callback: func(ua.Response, error) {}})
	c.reqtable.insert(&pending{requestID: 2, respType: &ua.ReadResponse{}, callback: func(ua.Response, error) {}})
	c.reqtable.insert(&pending{requestID: 3, respType: &ua.PublishResponse{}, callback: func(ua.Response, error) {}})

	assert.Equal(t, 2, c.publishInFlight())
}

func TestTopUpPublishPumpNoopsWithoutChannel(t *testing.T) {
	c := newTestClient()
	c.pubTarget = 5
	c.subs[1] = &subscriptionState{id: 1}
	// sechan is nil: topUpPublishPump must not attempt to send anything.
	c.topUpPublishPump()
	assert.Equal(t, 0, c.publishInFlight())
}
