package uacp

import (
	"context"
	"encoding/binary"
	"net"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/pulseiot/opcua/debug"
	"github.com/pulseiot/opcua/ua"
)

// DefaultConnectionParams are the local buffer/chunk limits every Hello
// advertises; no Config field overrides them (spec §3,
// `connection_params`).
var DefaultConnectionParams = struct {
	ReceiveBufSize uint32
	SendBufSize    uint32
	MaxMessageSize uint32
	MaxChunkCount  uint32
}{
	ReceiveBufSize: 64 * 1024,
	SendBufSize:    64 * 1024,
	MaxMessageSize: 16 * 1024 * 1024,
	MaxChunkCount:  4096,
}

// DialFunc produces a byte-stream transport for an endpoint URL. This is
// the client's stand-in for spec §3's `connect_fn`: by default it dials
// TCP, but tests substitute an in-memory pipe.
type DialFunc func(ctx context.Context, endpointURL string) (net.Conn, error)

// DialTCP is the default DialFunc: a plain TCP dial to the host:port
// embedded in the opc.tcp:// endpoint URL.
func DialTCP(ctx context.Context, endpointURL string) (net.Conn, error) {
	u, err := url.Parse(endpointURL)
	if err != nil {
		return nil, errors.Wrapf(err, "uacp: invalid endpoint url %q", endpointURL)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", u.Host)
}

// Conn is an open UACP connection: the TCP (or equivalent) byte stream
// plus the negotiated Acknowledge limits everything above it must respect.
type Conn struct {
	c   net.Conn
	ack *Acknowledge

	readDeadline time.Duration
}

// Dial opens conn via dialFn, exchanges Hello/Acknowledge, and returns a
// ready Conn. This mirrors the teacher's `uacp.Dial(ctx, endpointURL)`
// entry point used from the client's Connect orchestration (spec §4.8
// step 1).
func Dial(ctx context.Context, endpointURL string, dialFn DialFunc) (*Conn, error) {
	if dialFn == nil {
		dialFn = DialTCP
	}
	raw, err := dialFn(ctx, endpointURL)
	if err != nil {
		return nil, errors.Wrap(err, "uacp: dial")
	}
	conn := &Conn{c: raw}
	if err := conn.handshake(endpointURL); err != nil {
		raw.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Conn) handshake(endpointURL string) error {
	hello := &Hello{
		Version:        0,
		ReceiveBufSize: DefaultConnectionParams.ReceiveBufSize,
		SendBufSize:    DefaultConnectionParams.SendBufSize,
		MaxMessageSize: DefaultConnectionParams.MaxMessageSize,
		MaxChunkCount:  DefaultConnectionParams.MaxChunkCount,
		EndpointURL:    endpointURL,
	}
	if _, err := c.c.Write(hello.encode()); err != nil {
		return errors.Wrap(err, "uacp: send hello")
	}
	debug.Printf("uacp: sent HEL to %s", endpointURL)

	msgType, _, body, err := readMessage(c.c)
	if err != nil {
		return errors.Wrap(err, "uacp: read handshake reply")
	}
	switch msgType {
	case MessageTypeAcknowledge:
		ack, err := decodeAcknowledge(body)
		if err != nil {
			return err
		}
		c.ack = ack
		debug.Printf("uacp: received ACK bufsize=%d/%d maxmsg=%d", ack.ReceiveBufSize, ack.SendBufSize, ack.MaxMessageSize)
		return nil
	case MessageTypeError:
		uaerr, _ := decodeError(body)
		return errors.Wrap(uaerr, "uacp: server rejected hello")
	default:
		return ua.StatusBadTcpMessageTypeInvalid
	}
}

// Acknowledge returns the server-chosen limits negotiated at Dial time.
func (c *Conn) Acknowledge() *Acknowledge { return c.ack }

// Send writes one already-framed chunk (produced by uasc's chunk codec).
func (c *Conn) Send(b []byte) error {
	_, err := c.c.Write(b)
	return errors.Wrap(err, "uacp: send")
}

// Recv reads one inbound chunk, blocking for at most timeout (0 means
// block indefinitely). This is the transport suspension point the event
// loop calls into (spec §4.7 step 3, §5 "suspension points").
func (c *Conn) Recv(timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		c.c.SetReadDeadline(time.Now().Add(timeout))
		defer c.c.SetReadDeadline(time.Time{})
	} else {
		c.c.SetReadDeadline(time.Time{})
	}
	msgType, chunkType, body, err := readMessage(c.c)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, ErrTimeout
		}
		return nil, errors.Wrap(err, "uacp: recv")
	}
	// Reassemble the 8-byte header back onto the body so uasc's chunk codec
	// (which parses MessageType/ChunkType/SecureChannelId itself) sees
	// exactly what crossed the wire.
	out := make([]byte, headerLen+len(body))
	copy(out[0:3], msgType)
	out[3] = chunkType
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)))
	copy(out[headerLen:], body)
	return out, nil
}

// ErrTimeout is returned by Recv when no message arrives within the
// requested timeout; the event loop treats this as "nothing to route" and
// continues (spec §7 "transient recv timeouts: just continue").
var ErrTimeout = errors.New("uacp: recv timeout")

// Close closes the underlying transport without sending a UACP Error or
// CLO message; callers that want a graceful shutdown send CLO via uasc
// first (spec §4.8 `disconnect`).
func (c *Conn) Close() error {
	return c.c.Close()
}

// LocalAddr and RemoteAddr expose the underlying net.Conn endpoints,
// useful for logging.
func (c *Conn) LocalAddr() net.Addr  { return c.c.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.c.RemoteAddr() }
