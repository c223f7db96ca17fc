// Package opcua implements the stateful core of an OPC UA Binary client:
// the connection state machine (TCP Hello/Ack -> OpenSecureChannel ->
// CreateSession -> ActivateSession), the request/response correlation
// engine, and the single-threaded cooperative event loop that drives
// timers and the subscription publish pump alongside network I/O.
package opcua

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/pulseiot/opcua/ua"
	"github.com/pulseiot/opcua/uacp"
	"github.com/pulseiot/opcua/uasc"
)

// DialFunc is re-exported from uacp for callers building an Option.
type DialFunc = uacp.DialFunc

// Client is a single OPC UA connection: one transport, one secure channel,
// at most one session, plus the request table, timer wheel and publish
// pump that ride on top of them. Every exported method that mutates this
// state must only be called from the goroutine currently executing inside
// Run, RunIterate, a Service call, or a callback invoked by one of those
// (spec §5). The client takes no locks, matching the "single-threaded
// cooperative" design; the only runtime check is the inService flag, which
// makes Service reject a call made while another Service call is running.
type Client struct {
	cfg *Config

	conn   *uacp.Conn
	sechan *uasc.SecureChannel

	state   ConnState
	session *Session

	reqtable *requestTable
	timers   *timerWheel

	registry *ua.Registry
	logger   log.Logger
	metrics  *ClientMetrics

	subs      map[uint32]*subscriptionState
	pubTarget int

	inService bool
	inLoop    bool

	closeOnce sync.Once
}

// NewClient constructs a Client in the Disconnected state, applying opts
// on top of sensible defaults (spec §3 Configuration; teacher's
// NewClient(endpoint, opts...) entry point).
func NewClient(endpoint string, opts ...Option) *Client {
	cfg := newConfig(endpoint, opts...)
	return newClientFromConfig(cfg)
}

func newClientFromConfig(cfg *Config) *Client {
	reg := ua.DefaultRegistry()
	reg.Merge(cfg.customTypes)
	c := &Client{
		cfg:      cfg,
		state:    Disconnected,
		reqtable: newRequestTable(),
		timers:   newTimerWheel(),
		registry: reg,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		subs:     make(map[uint32]*subscriptionState),
	}
	if c.metrics == nil {
		c.metrics = newNopMetrics()
	}
	return c
}

// GetState returns the client's current connection state (spec §6
// `get_state`).
func (c *Client) GetState() ConnState { return c.state }

// GetConnection exposes the raw transport, but only while the client holds
// one; it is invalidated by any state regression to Disconnected (spec §9
// "model as a capability returned only while state != Disconnected").
// Callers that use it directly must respect the single-threaded contract
// of §5 exactly as calls through Run do.
func (c *Client) GetConnection() *uacp.Conn {
	if c.state == Disconnected {
		return nil
	}
	return c.conn
}

// setState performs one state transition and fires the registered
// observer synchronously, exactly once (spec §3 invariant "every
// transition fires the registered state callback exactly once"; "state
// transitions are serialized; no observer sees an intermediate state").
func (c *Client) setState(s ConnState) {
	if c.state == s {
		return
	}
	c.state = s
	if c.cfg.stateCB != nil {
		c.cfg.stateCB(s)
	}
	c.metrics.state.Set(float64(s))
}

// nextRenewalDeadline is the point at which the current secure channel
// token needs renewing (spec §3 "renewal deadline = created_at + 0.75 x
// lifetime"). It only has meaning once a channel exists; callers check
// state first.
func (c *Client) nextRenewalDeadline() time.Time {
	if c.sechan == nil {
		return time.Time{}
	}
	return c.sechan.RenewalDeadline()
}

// Connect establishes a secure channel and an anonymous session against
// url (spec §4.8 `connect`). Any failure tears down whatever was built and
// returns the first non-Good status.
func (c *Client) Connect(ctx context.Context, url string) error {
	return c.connect(ctx, url, &ua.AnonymousIdentityToken{PolicyID: "anonymous"})
}

// ConnectUsername is Connect with a UserNameIdentityToken carrying user
// and pass (spec §4.3 "connect_username is connect with a
// UserNameIdentityToken").
func (c *Client) ConnectUsername(ctx context.Context, url, user, pass string) error {
	return c.connect(ctx, url, &ua.UserNameIdentityToken{
		PolicyID: "username",
		UserName: user,
		Password: []byte(pass),
	})
}

func (c *Client) connect(ctx context.Context, url string, identity ua.UserIdentityToken) (err error) {
	if c.sechan != nil {
		return errors.New("opcua: already connected")
	}

	defer func() {
		if err != nil {
			c.teardown()
		}
	}()

	if err = c.dial(ctx, url); err != nil {
		return err
	}
	c.setState(Connected)

	if err = c.openChannel(ctx, ua.SecurityTokenIssue); err != nil {
		return err
	}
	c.setState(SecureChannelOpen)

	endpoints, err := c.GetEndpoints(url)
	if err != nil {
		return err
	}
	selected := SelectEndpoint(endpoints.Endpoints, c.cfg.SecurityPolicyURI, c.cfg.SecurityMode)
	if selected == nil {
		return errors.Errorf("opcua: no endpoint matches policy %q", c.cfg.SecurityPolicyURI)
	}
	// spec §4.8 step 4: "If the selected endpoint's security differs,
	// close and re-open on that policy (single retry)."
	if selected.SecurityPolicyURI != c.cfg.sechanCfg.SecurityPolicyURI || selected.SecurityMode != c.cfg.sechanCfg.SecurityMode {
		retry := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1)
		err = backoff.Retry(func() error {
			c.sechan.Close(ctx)
			c.cfg.sechanCfg.SecurityPolicyURI = selected.SecurityPolicyURI
			c.cfg.sechanCfg.SecurityMode = selected.SecurityMode
			c.sechan = uasc.NewSecureChannel(url, c.conn, c.cfg.sechanCfg)
			return c.openChannel(ctx, ua.SecurityTokenIssue)
		}, retry)
		if err != nil {
			return err
		}
	}

	if anon, ok := identity.(*ua.AnonymousIdentityToken); ok {
		anon.PolicyID = anonymousPolicyID(endpoints.Endpoints)
	}

	sess, err := c.createSession(ctx, url)
	if err != nil {
		return err
	}
	c.cfg.sessionCfg.UserIdentity = identity
	if err = c.activateSession(ctx, sess, identity); err != nil {
		return err
	}
	c.session = sess
	c.setState(SessionActive)
	return nil
}

func (c *Client) dial(ctx context.Context, url string) error {
	conn, err := uacp.Dial(ctx, url, c.cfg.dialFn)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *Client) openChannel(ctx context.Context, reqType ua.SecurityTokenRequestType) error {
	if c.sechan == nil {
		c.sechan = uasc.NewSecureChannel(c.cfg.Endpoint, c.conn, c.cfg.sechanCfg)
	}
	_, err := c.sechan.Open(ctx, reqType, c.cfg.Timeout())
	return err
}

// renewSecureChannel issues an OpenSecureChannel Renew (spec §4.2 step 2).
// It is called automatically from the event loop when NeedsRenewal is true
// and may also be forced via ManuallyRenewSecureChannel. A failed renewal
// is retried once with backoff before being surfaced, mirroring the
// "local recovery only for ... token rollover" allowance of spec §7.
func (c *Client) renewSecureChannel(ctx context.Context) error {
	retry := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1)
	err := backoff.Retry(func() error {
		return c.openChannel(ctx, ua.SecurityTokenRenew)
	}, retry)
	if err != nil {
		c.onFatal(ua.StatusBadSecureChannelClosed)
		return err
	}
	c.metrics.renewals.Inc()
	if c.state == SessionActive {
		c.setState(SessionRenewed)
	}
	return nil
}

// ManuallyRenewSecureChannel forces a renewal regardless of the 0.75x
// deadline (spec §6 `manually_renew_secure_channel`).
func (c *Client) ManuallyRenewSecureChannel(ctx context.Context) error {
	if c.sechan == nil {
		return ua.StatusBadServerNotConnected
	}
	return c.renewSecureChannel(ctx)
}

// Disconnect sends CloseSession then CloseSecureChannel then closes the
// transport; teardown errors are logged, not returned, and the client
// always ends Disconnected (spec §4.8 `disconnect`).
func (c *Client) Disconnect(ctx context.Context) {
	if c.session != nil {
		if err := c.closeSession(ctx, true); err != nil {
			level.Warn(c.logger).Log("msg", "close session failed", "err", err)
		}
		c.session = nil
	}
	if c.sechan != nil {
		if err := c.sechan.Close(ctx); err != nil {
			level.Warn(c.logger).Log("msg", "close secure channel failed", "err", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			level.Warn(c.logger).Log("msg", "close transport failed", "err", err)
		}
	}
	c.teardown()
}

// Close drops the transport immediately without the graceful
// CloseSession/CloseSecureChannel exchange (spec §4.8 `close`).
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.teardown()
}

// teardown clears connection-scoped state, flushes outstanding requests
// with BadShutdown (spec §7 kind 7) and returns to Disconnected. Timers
// and Config survive (Reset/Close both preserve the client for reuse;
// Client has no separate `delete`, matching Go's GC-managed lifetime --
// spec §6's `delete()` has no analogue here beyond Close).
func (c *Client) teardown() {
	c.reqtable.flush(ua.StatusBadShutdown)
	c.subs = make(map[uint32]*subscriptionState)
	c.pubTarget = 0
	c.conn = nil
	c.sechan = nil
	c.session = nil
	c.setState(Disconnected)
}

// Reset returns the client to Disconnected without deleting it, keeping
// Config and every registered repeated callback intact (spec §4.8
// `reset`).
func (c *Client) Reset() {
	c.teardown()
}

// Metrics returns the Prometheus collectors this client updates, for an
// embedding process to register (spec's DOMAIN STACK addition; see
// SPEC_FULL.md).
func (c *Client) Metrics() *ClientMetrics { return c.metrics }

func (c *Client) reportMetrics() {
	c.metrics.pendingRequests.Set(float64(c.reqtable.len()))
	c.metrics.publishOutstanding.Set(float64(c.publishInFlight()))
}
