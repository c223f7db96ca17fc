package opcua

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pulseiot/opcua/ua"
)

// SubscriptionParameters configures CreateSubscription (teacher's
// SubscriptionParameters, trimmed to what the publish pump needs).
type SubscriptionParameters struct {
	Interval                   time.Duration
	LifetimeCount              uint32
	MaxKeepAliveCount          uint32
	MaxNotificationsPerPublish uint32
	Priority                   byte
}

const (
	defaultSubscriptionInterval  = 100 * time.Millisecond
	defaultSubscriptionLifetime  = 60
	defaultSubscriptionKeepAlive = 20
)

func (p *SubscriptionParameters) setDefaults() {
	if p.Interval == 0 {
		p.Interval = defaultSubscriptionInterval
	}
	if p.LifetimeCount == 0 {
		p.LifetimeCount = defaultSubscriptionLifetime
	}
	if p.MaxKeepAliveCount == 0 {
		p.MaxKeepAliveCount = defaultSubscriptionKeepAlive
	}
}

// NotificationHandler receives each data/event/status-change notification
// routed to one subscription (spec §4.6 step 2 "dispatches ... to the
// subscription's registered handler (external collaborator)").
type NotificationHandler func(value interface{}, err error)

// subscriptionState is the client-side bookkeeping for one subscription:
// its id, the acknowledgements owed to the server on the next
// PublishRequest, and the handler notifications are routed to (spec §4.6;
// teacher's Subscription type, trimmed to the single-threaded design --
// no per-subscription channels or goroutines).
type subscriptionState struct {
	id       uint32
	interval time.Duration
	handler  NotificationHandler

	pendingAcks []*ua.SubscriptionAcknowledgement
}

// Subscription is the handle returned to callers; it carries nothing
// beyond what DeleteSubscriptions needs plus the fields Subscribe's
// caller reads back immediately.
type Subscription struct {
	SubscriptionID            uint32
	RevisedPublishingInterval time.Duration
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32
}

// Subscribe issues CreateSubscriptionRequest and registers handler to
// receive every notification the new subscription produces (spec §4.6).
// When the publish pump's target is zero, Subscribe also sets it to
// Config.OutstandingPublishReqs, matching "maintains a target count of
// outstanding PublishRequests" once there is something to publish for.
func (c *Client) Subscribe(ctx context.Context, params *SubscriptionParameters, handler NotificationHandler) (*Subscription, error) {
	if params == nil {
		params = &SubscriptionParameters{}
	}
	params.setDefaults()

	req := &ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: float64(params.Interval / time.Millisecond),
		RequestedLifetimeCount:      params.LifetimeCount,
		RequestedMaxKeepAliveCount:  params.MaxKeepAliveCount,
		PublishingEnabled:           true,
		MaxNotificationsPerPublish:  params.MaxNotificationsPerPublish,
		Priority:                    params.Priority,
	}
	resp := &ua.CreateSubscriptionResponse{}
	if err := Service(ctx, c, req, resp); err != nil {
		return nil, err
	}
	if resp.ResponseHeader.ServiceResult != ua.StatusOK {
		return nil, resp.ResponseHeader.ServiceResult
	}

	if _, exists := c.subs[resp.SubscriptionID]; exists || resp.SubscriptionID == 0 {
		return nil, ua.StatusBadSubscriptionIDInvalid
	}
	c.subs[resp.SubscriptionID] = &subscriptionState{
		id:       resp.SubscriptionID,
		interval: time.Duration(resp.RevisedPublishingInterval) * time.Millisecond,
		handler:  handler,
	}
	if c.cfg.OutstandingPublishReqs > 0 && c.pubTarget == 0 {
		c.pubTarget = c.cfg.OutstandingPublishReqs
	}

	return &Subscription{
		SubscriptionID:            resp.SubscriptionID,
		RevisedPublishingInterval: time.Duration(resp.RevisedPublishingInterval) * time.Millisecond,
		RevisedLifetimeCount:      resp.RevisedLifetimeCount,
		RevisedMaxKeepAliveCount:  resp.RevisedMaxKeepAliveCount,
	}, nil
}

// Unsubscribe issues DeleteSubscriptionsRequest for id and forgets its
// local state.
func (c *Client) Unsubscribe(ctx context.Context, id uint32) error {
	req := &ua.DeleteSubscriptionsRequest{SubscriptionIDs: []uint32{id}}
	resp := &ua.DeleteSubscriptionsResponse{}
	if err := Service(ctx, c, req, resp); err != nil {
		return err
	}
	delete(c.subs, id)
	if len(c.subs) == 0 {
		c.pubTarget = 0
	}
	return nil
}

// publishInFlight counts PublishRequests currently registered in the
// request table (tagged by their expected PublishResponse type).
func (c *Client) publishInFlight() int {
	n := 0
	for _, p := range c.reqtable.byID {
		if _, ok := p.respType.(*ua.PublishResponse); ok {
			n++
		}
	}
	return n
}

// topUpPublishPump is spec §4.6 step 3: replenish outstanding
// PublishRequests up to pubTarget. A single call keeps sending until the
// number in flight reaches the target, stopping early if a send fails.
func (c *Client) topUpPublishPump() {
	if c.pubTarget <= 0 || len(c.subs) == 0 || c.sechan == nil || c.state < SessionActive {
		return
	}
	for c.publishInFlight() < c.pubTarget {
		if !c.sendPublishRequest() {
			return
		}
	}
}

func (c *Client) sendPublishRequest() bool {
	req := &ua.PublishRequest{SubscriptionAcknowledgements: c.drainAcks()}
	resp := &ua.PublishResponse{}
	if _, err := AsyncService(c, req, resp, func(r *ua.PublishResponse, err error) {
		c.handlePublishResponse(r, err)
	}); err != nil {
		return false
	}
	return true
}

// drainAcks collects every subscription's pending acknowledgements into
// one slice and clears them, piggybacking them on the next
// PublishRequest (spec §4.6 step 1).
func (c *Client) drainAcks() []*ua.SubscriptionAcknowledgement {
	var acks []*ua.SubscriptionAcknowledgement
	for _, sub := range c.subs {
		if len(sub.pendingAcks) == 0 {
			continue
		}
		acks = append(acks, sub.pendingAcks...)
		sub.pendingAcks = nil
	}
	return acks
}

// handlePublishResponse routes one PublishResponse's notifications and
// replenishes the pump (spec §4.6 steps 2-3, "On BadTooManyPublishRequests,
// reduce the target by one ... On BadSessionIdInvalid, escalate to
// channel/session reconnect").
func (c *Client) handlePublishResponse(resp *ua.PublishResponse, err error) {
	if err == ua.StatusBadTooManyPublishRequests {
		if c.pubTarget > 0 {
			c.pubTarget--
			c.metrics.publishThrottled.Inc()
		}
		return
	}
	if err == ua.StatusBadSessionIDInvalid {
		c.onFatal(err)
		return
	}
	if err != nil {
		c.notifySubscriptionsOfError(resp, err)
		c.topUpPublishPump()
		return
	}

	c.queueAck(resp)
	c.notifySubscription(resp)
	c.topUpPublishPump()
}

func (c *Client) queueAck(resp *ua.PublishResponse) {
	sub, ok := c.subs[resp.SubscriptionID]
	if !ok || resp.NotificationMessage == nil {
		return
	}
	sub.pendingAcks = append(sub.pendingAcks, &ua.SubscriptionAcknowledgement{
		SubscriptionID: resp.SubscriptionID,
		SequenceNumber: resp.NotificationMessage.SequenceNumber,
	})
}

func (c *Client) notifySubscriptionsOfError(resp *ua.PublishResponse, err error) {
	if resp != nil && resp.SubscriptionID != 0 {
		if sub, ok := c.subs[resp.SubscriptionID]; ok && sub.handler != nil {
			sub.handler(nil, err)
		}
		return
	}
	for _, sub := range c.subs {
		if sub.handler != nil {
			sub.handler(nil, err)
		}
	}
}

// notifySubscription dispatches every NotificationData entry in resp to
// its subscription's handler (spec §4.6 step 2; teacher's
// notifySubscription).
func (c *Client) notifySubscription(resp *ua.PublishResponse) {
	sub, ok := c.subs[resp.SubscriptionID]
	if !ok {
		c.logger.Log("msg", "publish response for unknown subscription", "subscription_id", resp.SubscriptionID)
		return
	}
	if sub.handler == nil {
		return
	}
	if resp.NotificationMessage == nil {
		sub.handler(nil, errors.New("empty NotificationMessage"))
		return
	}
	for _, data := range resp.NotificationMessage.NotificationData {
		if data == nil || data.Value == nil {
			sub.handler(nil, errors.New("missing NotificationData parameter"))
			continue
		}
		switch data.Value.(type) {
		case *ua.DataChangeNotification, *ua.EventNotificationList, *ua.StatusChangeNotification:
			sub.handler(data.Value, nil)
		default:
			sub.handler(nil, errors.New("unknown NotificationData parameter"))
		}
	}
}
