package ua

import (
	"testing"

	"github.com/pascaldekloe/goe/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadRequestRoundTripIsStructurallyEqual exercises spec §8's round-trip
// property ("Encode→decode of every request type yields a structurally
// equal value") with a deep structural comparison of NodesToRead, the same
// role goe/verify.Values plays in the teacher's own ua package tests.
// RequestHeader's optional *NodeID/*ExtensionObject fields are asserted by
// value instead: this codec's generic nil-pointer-to-struct encoding always
// allocates a zero value on decode (there is no wire bit for "absent"
// distinct from "zero"), so a nil header pointer intentionally decodes back
// non-nil rather than nil.
func TestReadRequestRoundTripIsStructurallyEqual(t *testing.T) {
	want := &ReadRequest{
		RequestHeader: RequestHeader{
			AuthenticationToken: NewNumericNodeID(0, 99),
			RequestHandle:       42,
			TimeoutHint:         5000,
		},
		TimestampsToReturn: 2,
		NodesToRead: []*ReadValueID{
			{
				NodeID:       NewNumericNodeID(0, 2258),
				AttributeID:  AttributeIDValue,
				DataEncoding: QualifiedName{NamespaceIndex: 0, Name: "Default Binary"},
			},
			{
				NodeID:      NewStringNodeID(3, "Temperature.Sensor1"),
				AttributeID: AttributeIDValue,
			},
		},
	}

	raw, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := &ReadRequest{}
	if err := Decode(raw, got); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	verify.Values(t, "ReadRequest.NodesToRead round-trip", got.NodesToRead, want.NodesToRead)

	require.NotNil(t, got.RequestHeader.AuthenticationToken)
	assert.True(t, got.RequestHeader.AuthenticationToken.Equal(want.RequestHeader.AuthenticationToken))
	assert.Equal(t, want.RequestHeader.RequestHandle, got.RequestHeader.RequestHandle)
	assert.Equal(t, want.RequestHeader.TimeoutHint, got.RequestHeader.TimeoutHint)
	assert.Equal(t, want.TimestampsToReturn, got.TimestampsToReturn)
}

// TestWriteValueRoundTripIsStructurallyEqual does the same for a WriteValue
// carrying a scalar Variant, the shape Service_write sends one per node.
func TestWriteValueRoundTripIsStructurallyEqual(t *testing.T) {
	want := &WriteValue{
		NodeID:      NewNumericNodeID(0, 2258),
		AttributeID: AttributeIDValue,
		Value: DataValue{
			EncodingMask: dvHasValue,
			Value:        NewVariant(int32(42)),
		},
	}

	raw, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := &WriteValue{}
	if err := Decode(raw, got); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	verify.Values(t, "WriteValue round-trip", got, want)
}
