package ua

const (
	ExtensionObjectNone   = 0
	ExtensionObjectBinary = 1
	ExtensionObjectXML    = 2
)

// ExtensionObject is Part 6, 5.2.2.15: a NodeID-tagged, self-describing
// envelope for a polymorphic payload (identity tokens, notification data,
// history-read details). Value holds the decoded Go struct; for encoding, a
// caller constructs the ExtensionObject directly (NewExtensionObject),
// matching the teacher's own `ua.NewExtensionObject`.
type ExtensionObject struct {
	TypeID       *NodeID
	EncodingMask uint8
	Value        interface{}
}

// NewExtensionObject wraps v, looking up its binary encoding id from the
// identity-token cases this client actually constructs. Other payload kinds
// should set TypeID directly.
func NewExtensionObject(v interface{}) *ExtensionObject {
	if v == nil {
		return &ExtensionObject{EncodingMask: ExtensionObjectNone}
	}
	var typeID uint32
	if tok, ok := v.(UserIdentityToken); ok {
		typeID = identityTokenID(tok)
	}
	return &ExtensionObject{
		TypeID:       NewFourByteExpandedNodeID(0, typeID),
		EncodingMask: ExtensionObjectBinary,
		Value:        v,
	}
}

func (e *ExtensionObject) Encode(enc *Encoder) error {
	if e == nil || e.EncodingMask == ExtensionObjectNone || e.Value == nil {
		(&NodeID{}).Encode(enc)
		enc.WriteUint8(ExtensionObjectNone)
		return nil
	}
	if err := e.TypeID.Encode(enc); err != nil {
		return err
	}
	enc.WriteUint8(e.EncodingMask)
	body, err := Encode(e.Value)
	if err != nil {
		return err
	}
	enc.WriteByteString(body)
	return nil
}

// Decode reads an ExtensionObject using the default registry. Use
// DecodeWithRegistry to resolve against a client's merged registry.
func (e *ExtensionObject) Decode(dec *Decoder) error {
	return e.DecodeWithRegistry(dec, defaultRegistry)
}

// DecodeWithRegistry reads an ExtensionObject, resolving its body against
// reg. An unrecognized type id decodes successfully with Value left nil; the
// body bytes are read and discarded, while TypeID and EncodingMask stay set.
func (e *ExtensionObject) DecodeWithRegistry(dec *Decoder, reg *Registry) error {
	e.TypeID = &NodeID{}
	if err := e.TypeID.Decode(dec); err != nil {
		return err
	}
	e.EncodingMask = dec.ReadUint8()
	if e.EncodingMask == ExtensionObjectNone {
		return nil
	}
	body := dec.ReadByteString()
	desc, ok := reg.Lookup(e.TypeID.IntID)
	if !ok {
		return nil
	}
	v := desc.New()
	if err := Decode(body, v); err != nil {
		return err
	}
	e.Value = v
	return nil
}
