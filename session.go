package opcua

import (
	"context"
	"time"

	"github.com/pulseiot/opcua/ua"
)

// Session holds the state CreateSession/ActivateSession negotiate (spec
// §3 "Session": authentication_token, session_id, server_nonce), plus
// the server certificate needed to recompute a fresh client signature if
// the session is ever reactivated. Created exactly once per connect,
// discarded on disconnect (spec §3).
type Session struct {
	sessionID         *ua.NodeID
	authToken         *ua.NodeID
	serverNonce       []byte
	serverCertificate []byte

	maxRequestMessageSize uint32
}

// defaultAnonymousPolicyID is used when the server's endpoint description
// doesn't advertise an anonymous UserTokenPolicy explicitly.
const defaultAnonymousPolicyID = "anonymous"

// anonymousPolicyID finds the PolicyID a None/None endpoint advertises for
// anonymous authentication (teacher's client.go anonymousPolicyID).
func anonymousPolicyID(endpoints []*ua.EndpointDescription) string {
	for _, e := range endpoints {
		if e.SecurityMode != ua.MessageSecurityModeNone || e.SecurityPolicyURI != ua.SecurityPolicyURINone {
			continue
		}
		for _, t := range e.UserIdentityTokens {
			if t.TokenType == ua.UserTokenTypeAnonymous {
				return t.PolicyID
			}
		}
	}
	return defaultAnonymousPolicyID
}

// createSession issues CreateSessionRequest (spec §4.3 `create_session`).
// The client nonce is opaque filler here: real nonce entropy and the
// signature it backs are part of the pluggable crypto policy (spec §1);
// this client sends a fixed-length placeholder so the wire shape matches
// a real CreateSessionRequest.
func (c *Client) createSession(ctx context.Context, url string) (*Session, error) {
	if c.sechan == nil {
		return nil, ua.StatusBadServerNotConnected
	}
	name := c.cfg.sessionCfg.SessionName
	req := &ua.CreateSessionRequest{
		ClientDescription: ua.ApplicationDescription{
			ApplicationURI: c.cfg.sessionCfg.ApplicationURI,
			ApplicationType: 1, // Client
		},
		ServerURI:               c.cfg.sessionCfg.ServerURI,
		EndpointURL:             url,
		SessionName:             name,
		ClientNonce:             make([]byte, 32),
		ClientCertificate:       c.cfg.sechanCfg.Certificate,
		RequestedSessionTimeout: float64(c.cfg.sessionCfg.RequestedSessionTimeout / time.Millisecond),
	}
	resp := &ua.CreateSessionResponse{}
	if err := Service(ctx, c, req, resp); err != nil {
		return nil, err
	}
	return &Session{
		sessionID:             resp.SessionID,
		authToken:             resp.AuthenticationToken,
		serverNonce:           resp.ServerNonce,
		serverCertificate:     resp.ServerCertificate,
		maxRequestMessageSize: resp.MaxRequestMessageSize,
	}, nil
}

// clientSignature returns the ClientSignature ActivateSession carries. It
// returns an empty SignatureData for every security policy, None
// included: no signature over the server nonce and certificate is
// computed (spec §1 Non-goals treats signing as pluggable crypto).
func (c *Client) clientSignature(sess *Session) ua.SignatureData {
	return ua.SignatureData{}
}

// activateSession issues ActivateSessionRequest carrying identity (spec
// §4.3 `activate_session`).
func (c *Client) activateSession(ctx context.Context, sess *Session, identity ua.UserIdentityToken) error {
	if c.sechan == nil {
		return ua.StatusBadServerNotConnected
	}
	req := &ua.ActivateSessionRequest{
		ClientSignature:    c.clientSignature(sess),
		LocaleIDs:          c.cfg.sessionCfg.Locales,
		UserIdentityToken:  ua.NewExtensionObject(identity),
		UserTokenSignature: ua.SignatureData{},
	}
	req.RequestHeader.AuthenticationToken = sess.authToken
	resp := &ua.ActivateSessionResponse{}
	if err := Service(ctx, c, req, resp); err != nil {
		return err
	}
	sess.serverNonce = resp.ServerNonce
	return nil
}

// closeSession issues CloseSessionRequest (spec §4.8 `disconnect` step
// "close_session(delete_subscriptions=true)").
func (c *Client) closeSession(ctx context.Context, deleteSubscriptions bool) error {
	if c.sechan == nil || c.session == nil {
		return nil
	}
	req := &ua.CloseSessionRequest{DeleteSubscriptions: deleteSubscriptions}
	resp := &ua.CloseSessionResponse{}
	return Service(ctx, c, req, resp)
}
