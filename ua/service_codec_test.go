package ua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeAsResponse mimics what a server puts on the wire: the NodeId tag for
// resp's own binary encoding id, followed by resp's body. DecodeResponse is
// the client-side counterpart exercised below.
func encodeAsResponse(t *testing.T, resp Response) []byte {
	t.Helper()
	enc := NewEncoder()
	require.NoError(t, NewFourByteExpandedNodeID(0, TypeID(resp)).Encode(enc))
	tag := enc.Bytes()
	body, err := Encode(resp)
	require.NoError(t, err)
	return append(tag, body...)
}

func TestDecodeResponseRoundTrip(t *testing.T) {
	raw := encodeAsResponse(t, &ReadResponse{
		ResponseHeader: ResponseHeader{RequestHandle: 7, ServiceResult: StatusOK},
	})

	got := &ReadResponse{}
	require.NoError(t, DecodeResponse(raw, got))
	assert.Equal(t, uint32(7), got.ResponseHeader.RequestHandle)
	assert.Equal(t, StatusOK, got.ResponseHeader.ServiceResult)
}

func TestDecodeResponseDetectsTypeMismatch(t *testing.T) {
	raw := encodeAsResponse(t, &ReadResponse{})

	got := &WriteResponse{}
	err := DecodeResponse(raw, got)
	assert.Equal(t, StatusBadResponseTypeMismatch, err)
}

func TestEncodeRequestTagsWithRequestsOwnTypeID(t *testing.T) {
	raw, err := EncodeRequest(&GetEndpointsRequest{EndpointURL: "opc.tcp://localhost:4840"})
	require.NoError(t, err)

	var tag NodeID
	dec := NewDecoder(raw)
	require.NoError(t, tag.Decode(dec))
	assert.Equal(t, TypeID(&GetEndpointsRequest{}), tag.IntID)
}
