package ua

import (
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"time"

	"github.com/pkg/errors"
)

// epoch is the OPC UA UtcTime epoch: 1601-01-01T00:00:00Z, expressed in
// 100ns ticks per Part 6, 5.2.2.5.
var epoch = time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)

// Encoder serializes values into the OPC UA Binary encoding (Part 6, 5.2).
// It is the concrete stand-in for the `encode(v, &buf)` collaborator the
// spec treats as an external given; everything in this file is the minimal
// reflective codec needed to drive the state machine end to end.
type Encoder struct {
	buf bytes.Buffer
	err error
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated wire bytes.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Err returns the first error encountered by any Write call, if any.
func (e *Encoder) Err() error { return e.err }

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) WriteUint8(v uint8)   { e.buf.WriteByte(v) }
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.WriteUint8(1)
	} else {
		e.WriteUint8(0)
	}
}
func (e *Encoder) WriteUint16(v uint16) { binary.Write(&e.buf, binary.LittleEndian, v) }
func (e *Encoder) WriteUint32(v uint32) { binary.Write(&e.buf, binary.LittleEndian, v) }
func (e *Encoder) WriteUint64(v uint64) { binary.Write(&e.buf, binary.LittleEndian, v) }
func (e *Encoder) WriteInt16(v int16)   { binary.Write(&e.buf, binary.LittleEndian, v) }
func (e *Encoder) WriteInt32(v int32)   { binary.Write(&e.buf, binary.LittleEndian, v) }
func (e *Encoder) WriteInt64(v int64)   { binary.Write(&e.buf, binary.LittleEndian, v) }
func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUint32(math.Float32bits(v))
}
func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUint64(math.Float64bits(v))
}

// WriteByteString writes a length-prefixed byte array. A nil slice encodes
// as length -1, matching the OPC UA "null array" convention.
func (e *Encoder) WriteByteString(b []byte) {
	if b == nil {
		e.WriteInt32(-1)
		return
	}
	e.WriteInt32(int32(len(b)))
	e.buf.Write(b)
}

// WriteString writes a length-prefixed UTF-8 string.
func (e *Encoder) WriteString(s string) {
	if s == "" {
		e.WriteInt32(-1)
		return
	}
	e.WriteByteString([]byte(s))
}

// WriteTime writes a timestamp as 100ns ticks since the OPC UA epoch.
func (e *Encoder) WriteTime(t time.Time) {
	if t.IsZero() {
		e.WriteInt64(0)
		return
	}
	ticks := t.Sub(epoch).Nanoseconds() / 100
	e.WriteInt64(ticks)
}

// WriteStatusCode writes a StatusCode as its underlying uint32.
func (e *Encoder) WriteStatusCode(s StatusCode) { e.WriteUint32(uint32(s)) }

// BinaryEncoder is implemented by types with a hand-written wire encoding
// (headers, identifiers, variants -- anything the generic struct walker
// can't express because it carries an interface{} payload).
type BinaryEncoder interface {
	Encode(*Encoder) error
}

// BinaryDecoder is the Decode-side counterpart of BinaryEncoder.
type BinaryDecoder interface {
	Decode(*Decoder) error
}

// Encode serializes v, which must be a struct (or pointer to one),
// delegating to v's own Encode method if it implements BinaryEncoder and
// otherwise walking its exported fields in declaration order. Declaration
// order is significant: it is the wire order.
func Encode(v interface{}) ([]byte, error) {
	enc := NewEncoder()
	if err := encodeValue(enc, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	if enc.err != nil {
		return nil, enc.err
	}
	return enc.Bytes(), nil
}

func encodeValue(enc *Encoder, rv reflect.Value) error {
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return encodeZero(enc, rv.Type().Elem())
		}
		rv = rv.Elem()
	}

	if rv.CanAddr() {
		if be, ok := rv.Addr().Interface().(BinaryEncoder); ok {
			return be.Encode(enc)
		}
	}
	if rv.IsValid() {
		if be, ok := rv.Interface().(BinaryEncoder); ok {
			return be.Encode(enc)
		}
	}
	if rv.IsValid() && rv.Type() == reflect.TypeOf(time.Time{}) {
		enc.WriteTime(rv.Interface().(time.Time))
		return nil
	}

	switch rv.Kind() {
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			f := rv.Type().Field(i)
			if f.PkgPath != "" { // unexported
				continue
			}
			if err := encodeValue(enc, rv.Field(i)); err != nil {
				return errors.Wrapf(err, "field %s", f.Name)
			}
		}
		return nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				enc.WriteByteString(nil)
			} else {
				enc.WriteByteString(rv.Bytes())
			}
			return nil
		}
		if rv.IsNil() {
			enc.WriteInt32(-1)
			return nil
		}
		enc.WriteInt32(int32(rv.Len()))
		for i := 0; i < rv.Len(); i++ {
			if err := encodeValue(enc, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.String:
		enc.WriteString(rv.String())
		return nil
	case reflect.Bool:
		enc.WriteBool(rv.Bool())
		return nil
	case reflect.Uint8:
		enc.WriteUint8(uint8(rv.Uint()))
		return nil
	case reflect.Uint16:
		enc.WriteUint16(uint16(rv.Uint()))
		return nil
	case reflect.Uint32:
		enc.WriteUint32(uint32(rv.Uint()))
		return nil
	case reflect.Uint64:
		enc.WriteUint64(rv.Uint())
		return nil
	case reflect.Int16:
		enc.WriteInt16(int16(rv.Int()))
		return nil
	case reflect.Int32:
		enc.WriteInt32(int32(rv.Int()))
		return nil
	case reflect.Int64:
		enc.WriteInt64(rv.Int())
		return nil
	case reflect.Float32:
		enc.WriteFloat32(float32(rv.Float()))
		return nil
	case reflect.Float64:
		enc.WriteFloat64(rv.Float())
		return nil
	case reflect.Invalid:
		return nil
	default:
		return errors.Errorf("ua: cannot encode kind %s", rv.Kind())
	}
}

// encodeZero writes the null/zero-length encoding for a nil pointer.
func encodeZero(enc *Encoder, t reflect.Type) error {
	switch t.Kind() {
	case reflect.Struct:
		return encodeValue(enc, reflect.New(t).Elem())
	default:
		enc.WriteInt32(-1)
		return nil
	}
}

// Decoder deserializes OPC UA Binary encoded values.
type Decoder struct {
	data []byte
	pos  int
	err  error
}

// NewDecoder wraps b for sequential reads.
func NewDecoder(b []byte) *Decoder { return &Decoder{data: b} }

// Err returns the first error encountered by any Read call, if any.
func (d *Decoder) Err() error { return d.err }

// Len returns the number of unread bytes.
func (d *Decoder) Len() int { return len(d.data) - d.pos }

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) read(n int) []byte {
	if d.err != nil {
		return make([]byte, n)
	}
	if d.pos+n > len(d.data) {
		d.fail(StatusBadCommunicationError)
		return make([]byte, n)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b
}

func (d *Decoder) ReadUint8() uint8 { return d.read(1)[0] }
func (d *Decoder) ReadBool() bool   { return d.ReadUint8() != 0 }
func (d *Decoder) ReadUint16() uint16 {
	return binary.LittleEndian.Uint16(d.read(2))
}
func (d *Decoder) ReadUint32() uint32 {
	return binary.LittleEndian.Uint32(d.read(4))
}
func (d *Decoder) ReadUint64() uint64 {
	return binary.LittleEndian.Uint64(d.read(8))
}
func (d *Decoder) ReadInt16() int16 { return int16(d.ReadUint16()) }
func (d *Decoder) ReadInt32() int32 { return int32(d.ReadUint32()) }
func (d *Decoder) ReadInt64() int64 { return int64(d.ReadUint64()) }
func (d *Decoder) ReadFloat32() float32 {
	return math.Float32frombits(d.ReadUint32())
}
func (d *Decoder) ReadFloat64() float64 {
	return math.Float64frombits(d.ReadUint64())
}

// ReadByteString reads a length-prefixed byte array. A length of -1 yields nil.
func (d *Decoder) ReadByteString() []byte {
	n := d.ReadInt32()
	if n < 0 {
		return nil
	}
	b := d.read(int(n))
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ReadString reads a length-prefixed UTF-8 string.
func (d *Decoder) ReadString() string {
	b := d.ReadByteString()
	if b == nil {
		return ""
	}
	return string(b)
}

// ReadTime reads a UtcTime value.
func (d *Decoder) ReadTime() time.Time {
	ticks := d.ReadInt64()
	if ticks == 0 {
		return time.Time{}
	}
	return epoch.Add(time.Duration(ticks) * 100)
}

// ReadStatusCode reads a StatusCode.
func (d *Decoder) ReadStatusCode() StatusCode { return StatusCode(d.ReadUint32()) }

// Decode deserializes b into v, which must be a non-nil pointer to a struct.
// As with Encode, a type's own Decode method (if any) takes precedence over
// the generic field walker.
func Decode(b []byte, v interface{}) error {
	dec := NewDecoder(b)
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Errorf("ua: Decode needs a non-nil pointer, got %T", v)
	}
	if err := decodeValue(dec, rv.Elem()); err != nil {
		return err
	}
	return dec.err
}

func decodeValue(dec *Decoder, rv reflect.Value) error {
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return decodeValue(dec, rv.Elem())
	}

	if rv.CanAddr() {
		if bd, ok := rv.Addr().Interface().(BinaryDecoder); ok {
			return bd.Decode(dec)
		}
	}
	if rv.IsValid() && rv.Type() == reflect.TypeOf(time.Time{}) {
		rv.Set(reflect.ValueOf(dec.ReadTime()))
		return nil
	}

	switch rv.Kind() {
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			f := rv.Type().Field(i)
			if f.PkgPath != "" {
				continue
			}
			if err := decodeValue(dec, rv.Field(i)); err != nil {
				return errors.Wrapf(err, "field %s", f.Name)
			}
		}
		return nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			rv.SetBytes(dec.ReadByteString())
			return nil
		}
		n := dec.ReadInt32()
		if n <= 0 {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		out := reflect.MakeSlice(rv.Type(), int(n), int(n))
		for i := 0; i < int(n); i++ {
			elem := out.Index(i)
			if elem.Kind() == reflect.Ptr && elem.IsNil() {
				elem.Set(reflect.New(elem.Type().Elem()))
			}
			if err := decodeValue(dec, elem); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil

	case reflect.String:
		rv.SetString(dec.ReadString())
		return nil
	case reflect.Bool:
		rv.SetBool(dec.ReadBool())
		return nil
	case reflect.Uint8:
		rv.SetUint(uint64(dec.ReadUint8()))
		return nil
	case reflect.Uint16:
		rv.SetUint(uint64(dec.ReadUint16()))
		return nil
	case reflect.Uint32:
		rv.SetUint(uint64(dec.ReadUint32()))
		return nil
	case reflect.Uint64:
		rv.SetUint(dec.ReadUint64())
		return nil
	case reflect.Int16:
		rv.SetInt(int64(dec.ReadInt16()))
		return nil
	case reflect.Int32:
		rv.SetInt(int64(dec.ReadInt32()))
		return nil
	case reflect.Int64:
		rv.SetInt(dec.ReadInt64())
		return nil
	case reflect.Float32:
		rv.SetFloat(float64(dec.ReadFloat32()))
		return nil
	case reflect.Float64:
		rv.SetFloat(dec.ReadFloat64())
		return nil
	case reflect.Invalid:
		return nil
	default:
		return errors.Errorf("ua: cannot decode kind %s", rv.Kind())
	}
}
