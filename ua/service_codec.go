package ua

// EncodeRequest serializes req the way every OPC UA Service message is
// framed on the wire (Part 6, 5.2.2.15's self-describing pattern, applied
// here to top-level request/response bodies and not just ExtensionObject
// payloads): a leading NodeId naming req's binary encoding id, then the
// struct body itself. The request table relies on the tag surviving the
// round trip to detect a wrong-typed response (spec §4.4
// BadResponseTypeMismatch).
func EncodeRequest(req Request) ([]byte, error) {
	enc := NewEncoder()
	if err := NewFourByteExpandedNodeID(0, TypeID(req)).Encode(enc); err != nil {
		return nil, err
	}
	tag := enc.Bytes()
	body, err := Encode(req)
	if err != nil {
		return nil, err
	}
	return append(tag, body...), nil
}

// DecodeResponse peels the leading NodeId tag off raw, checks it against
// resp's expected binary encoding id, and decodes the remainder into resp.
// A mismatched tag yields StatusBadResponseTypeMismatch without touching
// resp (spec §4.4: "the pending entry is completed with
// BadResponseTypeMismatch").
func DecodeResponse(raw []byte, resp Response) error {
	dec := NewDecoder(raw)
	var tag NodeID
	if err := tag.Decode(dec); err != nil {
		return err
	}
	if want := TypeID(resp); want != 0 && tag.IntID != want {
		return StatusBadResponseTypeMismatch
	}
	return Decode(raw[len(raw)-dec.Len():], resp)
}
