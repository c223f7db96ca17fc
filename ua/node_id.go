package ua

import (
	"fmt"

	"github.com/pkg/errors"
)

// NodeIDType is the encoding variant of a NodeID (Part 6, 5.2.2.9).
type NodeIDType byte

const (
	NodeIDTypeTwoByte NodeIDType = iota
	NodeIDTypeFourByte
	NodeIDTypeNumeric
	NodeIDTypeString
	NodeIDTypeGUID
	NodeIDTypeByteString
)

// NodeID identifies a node (or, reused here as the spec's header does, a
// message/data type) within a namespace. Only the numeric and string forms
// used by this client's service surface are modeled. GUID and ByteString
// identifiers are read as a length-prefixed byte string into StrID and are
// re-encoded as String NodeIDs, so they do not round-trip.
type NodeID struct {
	Namespace uint16
	IntID     uint32
	StrID     string
	typ       NodeIDType
}

// NewNumericNodeID builds a numeric NodeID, the common case for the
// server-object and method NodeIDs used by Service calls.
func NewNumericNodeID(ns uint16, id uint32) *NodeID {
	typ := NodeIDTypeFourByte
	if ns > 0 || id > 0xFFFF {
		typ = NodeIDTypeNumeric
	}
	return &NodeID{Namespace: ns, IntID: id, typ: typ}
}

// NewStringNodeID builds a string NodeID.
func NewStringNodeID(ns uint16, id string) *NodeID {
	return &NodeID{Namespace: ns, StrID: id, typ: NodeIDTypeString}
}

// NewFourByteExpandedNodeID builds the NodeID used to tag an ExtensionObject
// TypeID: namespace 0 (OPC UA's own type dictionary), numeric identifier.
func NewFourByteExpandedNodeID(ns uint16, id uint32) *NodeID {
	return NewNumericNodeID(ns, id)
}

func (n *NodeID) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.StrID != "" {
		return fmt.Sprintf("ns=%d;s=%s", n.Namespace, n.StrID)
	}
	return fmt.Sprintf("ns=%d;i=%d", n.Namespace, n.IntID)
}

// Equal compares two NodeIDs by value, not by identity.
func (n *NodeID) Equal(o *NodeID) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.Namespace == o.Namespace && n.IntID == o.IntID && n.StrID == o.StrID
}

// Encode writes the NodeID using the most compact applicable variant.
func (n *NodeID) Encode(enc *Encoder) error {
	if n == nil {
		enc.WriteUint8(byte(NodeIDTypeTwoByte))
		enc.WriteUint8(0)
		return nil
	}
	if n.StrID != "" {
		enc.WriteUint8(byte(NodeIDTypeString))
		enc.WriteUint16(n.Namespace)
		enc.WriteString(n.StrID)
		return nil
	}
	switch {
	case n.Namespace == 0 && n.IntID <= 0xFF:
		enc.WriteUint8(byte(NodeIDTypeTwoByte))
		enc.WriteUint8(uint8(n.IntID))
	case n.Namespace <= 0xFF && n.IntID <= 0xFFFF:
		enc.WriteUint8(byte(NodeIDTypeFourByte))
		enc.WriteUint8(uint8(n.Namespace))
		enc.WriteUint16(uint16(n.IntID))
	default:
		enc.WriteUint8(byte(NodeIDTypeNumeric))
		enc.WriteUint16(n.Namespace)
		enc.WriteUint32(n.IntID)
	}
	return nil
}

// Decode reads a NodeID in any of the supported encodings.
func (n *NodeID) Decode(dec *Decoder) error {
	n.typ = NodeIDType(dec.ReadUint8())
	switch n.typ {
	case NodeIDTypeTwoByte:
		n.Namespace = 0
		n.IntID = uint32(dec.ReadUint8())
	case NodeIDTypeFourByte:
		n.Namespace = uint16(dec.ReadUint8())
		n.IntID = uint32(dec.ReadUint16())
	case NodeIDTypeNumeric:
		n.Namespace = dec.ReadUint16()
		n.IntID = dec.ReadUint32()
	case NodeIDTypeString:
		n.Namespace = dec.ReadUint16()
		n.StrID = dec.ReadString()
	case NodeIDTypeGUID:
		n.Namespace = dec.ReadUint16()
		n.StrID = string(dec.ReadByteString()) // opaque; GUID layout not modeled
	case NodeIDTypeByteString:
		n.Namespace = dec.ReadUint16()
		n.StrID = string(dec.ReadByteString())
	default:
		return errors.Errorf("ua: unknown NodeID encoding 0x%02X", n.typ)
	}
	return nil
}
