package proto

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetRequestWireShape(t *testing.T) {
	data, err := json.Marshal(SetRequest("key1", "value1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"Set":{"key":"key1","value":"value1"}}`, string(data))
}

func TestGetRequestWireShape(t *testing.T) {
	data, err := json.Marshal(GetRequest("key1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"Get":{"key":"key1"}}`, string(data))
}

func TestRemoveRequestWireShape(t *testing.T) {
	data, err := json.Marshal(RemoveRequest("key1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"Remove":{"key":"key1"}}`, string(data))
}

func TestRequestRoundTrip(t *testing.T) {
	for _, req := range []Request{
		SetRequest("key1", "value1"),
		GetRequest("key1"),
		RemoveRequest("key1"),
	} {
		data, err := json.Marshal(req)
		require.NoError(t, err)

		var decoded Request
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Equal(t, req, decoded)
	}
}

func TestOKResponseWireShape(t *testing.T) {
	data, err := json.Marshal(OK())
	require.NoError(t, err)
	require.JSONEq(t, `{"Ok":null}`, string(data))
}

func TestGetResultFoundWireShape(t *testing.T) {
	data, err := json.Marshal(GetResult("value1", true))
	require.NoError(t, err)
	require.JSONEq(t, `{"Ok":"value1"}`, string(data))
}

func TestGetResultNotFoundWireShape(t *testing.T) {
	data, err := json.Marshal(GetResult("", false))
	require.NoError(t, err)
	require.JSONEq(t, `{"Ok":null}`, string(data))
}

func TestFailedResponseWireShape(t *testing.T) {
	data, err := json.Marshal(Failed(errors.New("key not found")))
	require.NoError(t, err)
	require.JSONEq(t, `{"Err":"key not found"}`, string(data))
}

func TestResponseRoundTrip(t *testing.T) {
	for _, resp := range []Response{
		OK(),
		GetResult("value1", true),
		GetResult("", false),
		Failed(errors.New("boom")),
	} {
		data, err := json.Marshal(resp)
		require.NoError(t, err)

		var decoded Response
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Equal(t, resp, decoded)
	}
}

func TestEncoderDecoderStreamsMultipleValues(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	require.NoError(t, enc.Encode(SetRequest("key1", "value1")))
	require.NoError(t, enc.Encode(GetRequest("key1")))

	dec := NewDecoder(&buf)

	var first, second Request
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	require.Equal(t, SetRequest("key1", "value1"), first)
	require.Equal(t, GetRequest("key1"), second)
}
