package ua

import (
	"time"

	"github.com/pkg/errors"
)

// Variant type ids, Part 6, 5.2.2.16 Table 14 (the subset this client's
// Read/Write service surface actually needs to move values through).
const (
	variantTypeBoolean   = 1
	variantTypeInt32     = 6
	variantTypeUInt32    = 7
	variantTypeInt64     = 8
	variantTypeUInt64    = 9
	variantTypeFloat     = 10
	variantTypeDouble    = 11
	variantTypeString    = 12
	variantTypeByteString = 15
	variantTypeNodeID    = 17
	variantTypeStatusCode = 19
)

// Variant is Part 6, 5.2.2.16: a tagged union carrying any single scalar
// value. MonitoredItem notifications and Read/Write results all move
// values around as a Variant.
type Variant struct {
	Value interface{}
}

// NewVariant wraps v. v must be one of the Go types Encode below knows
// about; anything else round-trips as an error.
func NewVariant(v interface{}) *Variant { return &Variant{Value: v} }

func (v *Variant) Encode(enc *Encoder) error {
	if v == nil || v.Value == nil {
		enc.WriteUint8(0)
		return nil
	}
	switch x := v.Value.(type) {
	case bool:
		enc.WriteUint8(variantTypeBoolean)
		enc.WriteBool(x)
	case int32:
		enc.WriteUint8(variantTypeInt32)
		enc.WriteInt32(x)
	case uint32:
		enc.WriteUint8(variantTypeUInt32)
		enc.WriteUint32(x)
	case int64:
		enc.WriteUint8(variantTypeInt64)
		enc.WriteInt64(x)
	case uint64:
		enc.WriteUint8(variantTypeUInt64)
		enc.WriteUint64(x)
	case float32:
		enc.WriteUint8(variantTypeFloat)
		enc.WriteFloat32(x)
	case float64:
		enc.WriteUint8(variantTypeDouble)
		enc.WriteFloat64(x)
	case string:
		enc.WriteUint8(variantTypeString)
		enc.WriteString(x)
	case []byte:
		enc.WriteUint8(variantTypeByteString)
		enc.WriteByteString(x)
	case *NodeID:
		enc.WriteUint8(variantTypeNodeID)
		return x.Encode(enc)
	case StatusCode:
		enc.WriteUint8(variantTypeStatusCode)
		enc.WriteStatusCode(x)
	default:
		return errors.Errorf("ua: variant does not support %T", x)
	}
	return nil
}

func (v *Variant) Decode(dec *Decoder) error {
	mask := dec.ReadUint8()
	switch mask {
	case 0:
		v.Value = nil
	case variantTypeBoolean:
		v.Value = dec.ReadBool()
	case variantTypeInt32:
		v.Value = dec.ReadInt32()
	case variantTypeUInt32:
		v.Value = dec.ReadUint32()
	case variantTypeInt64:
		v.Value = dec.ReadInt64()
	case variantTypeUInt64:
		v.Value = dec.ReadUint64()
	case variantTypeFloat:
		v.Value = dec.ReadFloat32()
	case variantTypeDouble:
		v.Value = dec.ReadFloat64()
	case variantTypeString:
		v.Value = dec.ReadString()
	case variantTypeByteString:
		v.Value = dec.ReadByteString()
	case variantTypeNodeID:
		n := &NodeID{}
		if err := n.Decode(dec); err != nil {
			return err
		}
		v.Value = n
	case variantTypeStatusCode:
		v.Value = dec.ReadStatusCode()
	default:
		return errors.Errorf("ua: unsupported variant type id %d", mask)
	}
	return nil
}

// DataValue is Part 4, 7.9: a Variant plus quality/timestamp metadata.
// Only the encoding-mask bits this client sets are modeled; others decode
// as their zero value.
type DataValue struct {
	EncodingMask      uint8
	Value             *Variant
	Status            StatusCode
	SourceTimestamp   time.Time
	SourcePicoseconds uint16
	ServerTimestamp   time.Time
	ServerPicoseconds uint16
}

const (
	dvHasValue             = 1 << 0
	dvHasStatus            = 1 << 1
	dvHasSourceTimestamp   = 1 << 2
	dvHasServerTimestamp   = 1 << 3
	dvHasSourcePicoseconds = 1 << 4
	dvHasServerPicoseconds = 1 << 5
)

func (d *DataValue) Encode(enc *Encoder) error {
	mask := uint8(0)
	if d.Value != nil {
		mask |= dvHasValue
	}
	if d.Status != StatusOK {
		mask |= dvHasStatus
	}
	if !d.SourceTimestamp.IsZero() {
		mask |= dvHasSourceTimestamp
	}
	if !d.ServerTimestamp.IsZero() {
		mask |= dvHasServerTimestamp
	}
	enc.WriteUint8(mask)
	if mask&dvHasValue != 0 {
		if err := d.Value.Encode(enc); err != nil {
			return err
		}
	}
	if mask&dvHasStatus != 0 {
		enc.WriteStatusCode(d.Status)
	}
	if mask&dvHasSourceTimestamp != 0 {
		enc.WriteTime(d.SourceTimestamp)
	}
	if mask&dvHasServerTimestamp != 0 {
		enc.WriteTime(d.ServerTimestamp)
	}
	return nil
}

func (d *DataValue) Decode(dec *Decoder) error {
	d.EncodingMask = dec.ReadUint8()
	if d.EncodingMask&dvHasValue != 0 {
		d.Value = &Variant{}
		if err := d.Value.Decode(dec); err != nil {
			return err
		}
	}
	if d.EncodingMask&dvHasStatus != 0 {
		d.Status = dec.ReadStatusCode()
	}
	if d.EncodingMask&dvHasSourceTimestamp != 0 {
		d.SourceTimestamp = dec.ReadTime()
	}
	if d.EncodingMask&dvHasServerTimestamp != 0 {
		d.ServerTimestamp = dec.ReadTime()
	}
	return nil
}
