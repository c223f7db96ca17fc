// Package uasc implements the OPC UA Secure Conversation layer (Part 6,
// 7.2-7.3): chunk framing/defragmentation, the secure channel's token
// lifecycle, and the SessionConfig the opcua package's session layer
// reads. It sits directly on top of a uacp.Conn.
package uasc

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/pulseiot/opcua/ua"
)

// Message type tags a chunk's first 3 bytes carry (Part 6, 7.1.2.2 plus
// the OPN/MSG/CLO secure-conversation types of 7.2.1.1).
const (
	MessageTypeOpenSecureChannel  = "OPN"
	MessageTypeMessage            = "MSG"
	MessageTypeCloseSecureChannel = "CLO"
)

// Chunk types, Part 6, 7.2.1.1 Table 28.
const (
	ChunkTypeContinue byte = 'C'
	ChunkTypeFinal    byte = 'F'
	ChunkTypeAbort    byte = 'A'
)

const sequenceHeaderLen = 8 // sequenceNumber(4) + requestId(4)

// sequenceWrapThreshold is the point at which an outgoing sequence number
// wraps to 1 instead of continuing to increment, per OPC UA Part 6 and
// spec §9 ("Sequence number wrap... wrap to 1 at the next chunk boundary,
// not to 0").
const sequenceWrapThreshold = ^uint32(0) - 1023 // 2^32 - 1024

// nextSequenceNumber advances cur by one, wrapping per sequenceWrapThreshold.
func nextSequenceNumber(cur uint32) uint32 {
	if cur >= sequenceWrapThreshold {
		return 1
	}
	return cur + 1
}

// chunkHeader is the 8-byte UACP header plus the 4-byte SecureChannelId
// that OPN/MSG/CLO chunks carry (Part 6, 7.2.1.1 Table 27).
type chunkHeader struct {
	MessageType     string
	ChunkType       byte
	MessageSize     uint32
	SecureChannelID uint32
}

const chunkHeaderLen = 12

func decodeChunkHeader(b []byte) (chunkHeader, error) {
	if len(b) < chunkHeaderLen {
		return chunkHeader{}, ua.StatusBadCommunicationError
	}
	return chunkHeader{
		MessageType:     string(b[0:3]),
		ChunkType:       b[3],
		MessageSize:     binary.LittleEndian.Uint32(b[4:8]),
		SecureChannelID: binary.LittleEndian.Uint32(b[8:12]),
	}, nil
}

// symmetricHeaderLen is chunkHeaderLen plus the TokenId that MSG/CLO (but
// not OPN) chunks carry (Part 6, 7.2.1.1 Table 27 Symmetric variant).
const symmetricHeaderLen = chunkHeaderLen + 4

// rawChunk is one still-framed chunk read off the wire, split into its
// header fields and body (sequence header + payload, still possibly
// encrypted).
type rawChunk struct {
	hdr        chunkHeader
	tokenID    uint32
	seqNum     uint32
	requestID  uint32
	body       []byte // payload only, after the sequence header
}

// parseChunk splits a single wire chunk (as handed back by uacp.Conn.Recv)
// into its header and body. OPN chunks have no TokenId field; MSG/CLO do.
func parseChunk(b []byte) (*rawChunk, error) {
	hdr, err := decodeChunkHeader(b)
	if err != nil {
		return nil, err
	}
	rest := b[chunkHeaderLen:]
	rc := &rawChunk{hdr: hdr}
	if hdr.MessageType != MessageTypeOpenSecureChannel {
		if len(rest) < 4 {
			return nil, ua.StatusBadCommunicationError
		}
		rc.tokenID = binary.LittleEndian.Uint32(rest[0:4])
		rest = rest[4:]
	}
	if len(rest) < sequenceHeaderLen {
		return nil, ua.StatusBadCommunicationError
	}
	rc.seqNum = binary.LittleEndian.Uint32(rest[0:4])
	rc.requestID = binary.LittleEndian.Uint32(rest[4:8])
	rc.body = rest[sequenceHeaderLen:]
	return rc, nil
}

// frameChunk assembles one complete chunk: header, optional TokenId,
// sequence header, and payload (already ciphertext/plaintext as decided by
// the caller).
func frameChunk(msgType string, chunkType byte, channelID, tokenID uint32, seqNum, requestID uint32, payload []byte) []byte {
	hasToken := msgType != MessageTypeOpenSecureChannel
	size := chunkHeaderLen + sequenceHeaderLen + len(payload)
	if hasToken {
		size += 4
	}
	out := make([]byte, size)
	copy(out[0:3], msgType)
	out[3] = chunkType
	binary.LittleEndian.PutUint32(out[4:8], uint32(size))
	binary.LittleEndian.PutUint32(out[8:12], channelID)
	off := chunkHeaderLen
	if hasToken {
		binary.LittleEndian.PutUint32(out[off:off+4], tokenID)
		off += 4
	}
	binary.LittleEndian.PutUint32(out[off:off+4], seqNum)
	binary.LittleEndian.PutUint32(out[off+4:off+8], requestID)
	off += sequenceHeaderLen
	copy(out[off:], payload)
	return out
}

// Message is one fully reassembled OPC UA message: a message type plus the
// requestId it's keyed on and its decrypted, defragmented payload. A
// message may have been split across several chunks sharing that requestId
// (Part 6, 7.2.1).
type Message struct {
	MessageType string
	RequestID   uint32
	Payload     []byte
}

// reassembler buffers partial chunks per requestId until a Final (or
// Abort) chunk completes the message (spec §4.1 `feed`).
type reassembler struct {
	parts         map[uint32][][]byte
	maxMessageSize int
	maxChunkCount  int
}

func newReassembler(maxMessageSize, maxChunkCount int) *reassembler {
	return &reassembler{
		parts:          make(map[uint32][][]byte),
		maxMessageSize: maxMessageSize,
		maxChunkCount:  maxChunkCount,
	}
}

// feed appends one decrypted chunk payload to its requestId's buffer and
// returns a complete Message once a Final chunk arrives. An Abort chunk
// drops the partial message and returns an error attributed to that
// requestId (spec §4.1).
func (r *reassembler) feed(msgType string, chunkType byte, requestID uint32, payload []byte) (*Message, error) {
	switch chunkType {
	case ChunkTypeAbort:
		delete(r.parts, requestID)
		return nil, errors.Wrapf(ua.StatusBadCommunicationError, "uasc: message %d aborted by peer", requestID)
	case ChunkTypeContinue:
		r.parts[requestID] = append(r.parts[requestID], payload)
		if r.maxChunkCount > 0 && len(r.parts[requestID]) > r.maxChunkCount {
			delete(r.parts, requestID)
			return nil, ua.StatusBadTcpMessageTooLarge
		}
		return nil, nil
	case ChunkTypeFinal:
		parts := append(r.parts[requestID], payload)
		delete(r.parts, requestID)
		total := 0
		for _, p := range parts {
			total += len(p)
		}
		if r.maxMessageSize > 0 && total > r.maxMessageSize {
			return nil, ua.StatusBadTcpMessageTooLarge
		}
		full := make([]byte, 0, total)
		for _, p := range parts {
			full = append(full, p...)
		}
		return &Message{MessageType: msgType, RequestID: requestID, Payload: full}, nil
	default:
		return nil, ua.StatusBadTcpMessageTypeInvalid
	}
}
