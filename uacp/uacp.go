// Package uacp implements the OPC UA Connection Protocol (Part 6, 7.1): the
// Hello/Acknowledge/Error handshake that establishes the byte-stream
// transport a SecureChannel is then opened over. It is the concrete
// stand-in for the "blocking-with-timeout connection object" the client
// core treats as an external collaborator.
package uacp

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/pulseiot/opcua/ua"
)

// Message type tags, Part 6, 7.1.2.2 Table 26.
const (
	MessageTypeHello       = "HEL"
	MessageTypeAcknowledge = "ACK"
	MessageTypeError       = "ERR"
)

const headerLen = 8

// Hello is the client's opening message: the buffer sizes and endpoint URL
// it intends to use.
type Hello struct {
	Version        uint32
	ReceiveBufSize uint32
	SendBufSize    uint32
	MaxMessageSize uint32
	MaxChunkCount  uint32
	EndpointURL    string
}

func (h *Hello) encode() []byte {
	body := make([]byte, 0, 20+len(h.EndpointURL))
	body = appendUint32(body, h.Version)
	body = appendUint32(body, h.ReceiveBufSize)
	body = appendUint32(body, h.SendBufSize)
	body = appendUint32(body, h.MaxMessageSize)
	body = appendUint32(body, h.MaxChunkCount)
	body = appendString(body, h.EndpointURL)
	return frame(MessageTypeHello, body)
}

// Acknowledge is the server's reply: the buffer sizes actually in effect
// for the remainder of the connection (spec §6, Acknowledge "mirrors Hello
// with server-chosen limits; all subsequent traffic respects these").
type Acknowledge struct {
	Version        uint32
	ReceiveBufSize uint32
	SendBufSize    uint32
	MaxMessageSize uint32
	MaxChunkCount  uint32
}

func decodeAcknowledge(body []byte) (*Acknowledge, error) {
	if len(body) < 20 {
		return nil, errors.Wrap(ErrMessageTooShort, "ACK")
	}
	a := &Acknowledge{
		Version:        binary.LittleEndian.Uint32(body[0:4]),
		ReceiveBufSize: binary.LittleEndian.Uint32(body[4:8]),
		SendBufSize:    binary.LittleEndian.Uint32(body[8:12]),
		MaxMessageSize: binary.LittleEndian.Uint32(body[12:16]),
		MaxChunkCount:  binary.LittleEndian.Uint32(body[16:20]),
	}
	return a, nil
}

// Error is sent by either side to abort the connection before a secure
// channel exists (Part 6, 7.1.2.5).
type Error struct {
	ErrorCode uint32
	Reason    string
}

func (e *Error) Error() string {
	return "uacp: " + e.Reason
}

func decodeError(body []byte) (*Error, error) {
	if len(body) < 4 {
		return nil, errors.Wrap(ErrMessageTooShort, "ERR")
	}
	code := binary.LittleEndian.Uint32(body[0:4])
	reason, _ := decodeString(body[4:])
	return &Error{ErrorCode: code, Reason: reason}, nil
}

// ErrMessageTooShort is wrapped with the offending message type by the
// decode helpers above.
var ErrMessageTooShort = errors.New("uacp: message shorter than its fixed fields")

func frame(msgType string, body []byte) []byte {
	out := make([]byte, headerLen+len(body))
	copy(out[0:3], msgType)
	out[3] = 'F'
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)))
	copy(out[headerLen:], body)
	return out
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendString(b []byte, s string) []byte {
	if s == "" {
		return appendUint32(b, 0xFFFFFFFF)
	}
	b = appendUint32(b, uint32(len(s)))
	return append(b, s...)
}

func decodeString(b []byte) (string, []byte) {
	if len(b) < 4 {
		return "", b
	}
	n := binary.LittleEndian.Uint32(b)
	b = b[4:]
	if n == 0xFFFFFFFF || int(n) > len(b) {
		return "", b
	}
	return string(b[:n]), b[n:]
}

// readMessage reads one length-prefixed UACP message from r, returning its
// message type, chunk type byte, and body (everything after the 8-byte
// header).
func readMessage(r io.Reader) (msgType string, chunkType byte, body []byte, err error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", 0, nil, err
	}
	msgType = string(hdr[0:3])
	chunkType = hdr[3]
	size := binary.LittleEndian.Uint32(hdr[4:8])
	if size < headerLen {
		return "", 0, nil, ua.StatusBadTcpMessageTypeInvalid
	}
	body = make([]byte, size-headerLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return "", 0, nil, err
	}
	return msgType, chunkType, body, nil
}
