package ua

import "time"

// RequestHeader is Part 4, 7.29 RequestHeader: the common envelope every
// Service request carries. The client fills AuthenticationToken,
// Timestamp, RequestHandle and TimeoutHint per spec §4.4 step 2
// (RequestHandle in uasc.SecureChannel.SendRequest, the others in
// opcua.AsyncService).
type RequestHeader struct {
	AuthenticationToken *NodeID
	Timestamp            time.Time
	RequestHandle         uint32
	ReturnDiagnostics     uint32
	AuditEntryID          string
	TimeoutHint           uint32
	AdditionalHeader      *ExtensionObject
}

// ResponseHeader is Part 4, 7.30 ResponseHeader.
type ResponseHeader struct {
	Timestamp          time.Time
	RequestHandle      uint32
	ServiceResult      StatusCode
	ServiceDiagnostics DiagnosticInfo
	StringTable        []string
	AdditionalHeader   *ExtensionObject
}

// DiagnosticInfo is Part 4, 7.12; this client never requests diagnostics so
// only the wire shape (an all-absent encoding mask) is modeled.
type DiagnosticInfo struct {
	EncodingMask uint8
}

func (d DiagnosticInfo) Encode(enc *Encoder) error {
	enc.WriteUint8(d.EncodingMask)
	return nil
}

func (d *DiagnosticInfo) Decode(dec *Decoder) error {
	d.EncodingMask = dec.ReadUint8()
	return nil
}

// Request is implemented by every Service request type. Header returns the
// common envelope so the dispatch layer (spec §4.4) can stamp it without
// type-switching on every concrete request.
type Request interface {
	Header() *RequestHeader
}

// Response is implemented by every Service response type.
type Response interface {
	Header() *ResponseHeader
}
