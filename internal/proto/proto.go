// Package proto defines the request/response wire protocol between a kvs
// client and server: self-delimiting JSON values streamed over a TCP
// connection, one request per response, strictly in order within a
// connection.
//
// Both Request and Response are externally-tagged JSON unions — the
// variant name is the sole object key, e.g. {"Set":{"key":"k","value":"v"}}
// or {"Err":"key not found"} — mirroring the serde derive on the Rust
// enums this protocol was ported from. encoding/json has no native
// support for that shape, so both types carry hand-written
// MarshalJSON/UnmarshalJSON.
package proto

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Request is a client-issued command. Op selects which of Key/Value are
// meaningful: "set" uses both, "get" and "remove" use only Key.
type Request struct {
	Op    string
	Key   string
	Value string
}

// SetRequest builds a Set request.
func SetRequest(key, value string) Request { return Request{Op: "set", Key: key, Value: value} }

// GetRequest builds a Get request.
func GetRequest(key string) Request { return Request{Op: "get", Key: key} }

// RemoveRequest builds a Remove request.
func RemoveRequest(key string) Request { return Request{Op: "remove", Key: key} }

type setArgs struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type keyArgs struct {
	Key string `json:"key"`
}

// MarshalJSON encodes the request as an externally-tagged object keyed by
// its variant name: {"Set":{...}}, {"Get":{...}}, or {"Remove":{...}}.
func (r Request) MarshalJSON() ([]byte, error) {
	switch r.Op {
	case "set":
		return json.Marshal(struct {
			Set setArgs `json:"Set"`
		}{setArgs{Key: r.Key, Value: r.Value}})
	case "get":
		return json.Marshal(struct {
			Get keyArgs `json:"Get"`
		}{keyArgs{Key: r.Key}})
	case "remove":
		return json.Marshal(struct {
			Remove keyArgs `json:"Remove"`
		}{keyArgs{Key: r.Key}})
	default:
		return nil, fmt.Errorf("proto: unknown request op %q", r.Op)
	}
}

// UnmarshalJSON decodes an externally-tagged Set/Get/Remove object back
// into a Request.
func (r *Request) UnmarshalJSON(data []byte) error {
	var wire struct {
		Set    *setArgs `json:"Set"`
		Get    *keyArgs `json:"Get"`
		Remove *keyArgs `json:"Remove"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch {
	case wire.Set != nil:
		*r = Request{Op: "set", Key: wire.Set.Key, Value: wire.Set.Value}
	case wire.Get != nil:
		*r = Request{Op: "get", Key: wire.Get.Key}
	case wire.Remove != nil:
		*r = Request{Op: "remove", Key: wire.Remove.Key}
	default:
		return fmt.Errorf("proto: request has no recognized variant")
	}
	return nil
}

// Response is the server's reply to a Request. Err is set on any failure,
// including "key not found" for a Remove of an absent key; a Get of an
// absent key is not a failure but a successful response with Found false.
// Found and Value are meaningful only for Get; a successful Set or Remove
// has Found false.
type Response struct {
	Err   string
	Found bool
	Value string
}

// OK builds a successful Set/Remove response.
func OK() Response { return Response{} }

// Failed builds an error response.
func Failed(err error) Response { return Response{Err: err.Error()} }

// GetResult builds a Get response: found reports whether the key existed.
func GetResult(value string, found bool) Response { return Response{Found: found, Value: value} }

// MarshalJSON encodes the response as an externally-tagged object:
// {"Err":"message"} on failure, {"Ok":"value"} for a found Get, or
// {"Ok":null} for Set, Remove, and a Get that found nothing.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Err != "" {
		return json.Marshal(struct {
			Err string `json:"Err"`
		}{r.Err})
	}
	var value *string
	if r.Found {
		value = &r.Value
	}
	return json.Marshal(struct {
		Ok *string `json:"Ok"`
	}{value})
}

// UnmarshalJSON decodes an externally-tagged Ok/Err object back into a
// Response.
func (r *Response) UnmarshalJSON(data []byte) error {
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	if raw, ok := wire["Err"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return err
		}
		*r = Response{Err: msg}
		return nil
	}

	if raw, ok := wire["Ok"]; ok {
		if string(raw) == "null" {
			*r = Response{}
			return nil
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		*r = Response{Found: true, Value: value}
		return nil
	}

	return fmt.Errorf("proto: response has no recognized variant")
}

// Encoder writes successive JSON values to an underlying writer, relying
// on encoding/json's self-delimiting object encoding rather than an
// explicit length prefix or newline framing.
type Encoder struct {
	enc *json.Encoder
	w   *bufio.Writer
}

// NewEncoder wraps w in a buffered JSON encoder.
func NewEncoder(w io.Writer) *Encoder {
	bw := bufio.NewWriter(w)
	return &Encoder{enc: json.NewEncoder(bw), w: bw}
}

// Encode writes v and flushes immediately — a connection's request/response
// loop needs each reply to reach the client before waiting on the next
// request, not batched behind the next flush.
func (e *Encoder) Encode(v any) error {
	if err := e.enc.Encode(v); err != nil {
		return err
	}
	return e.w.Flush()
}

// Decoder reads successive JSON values from an underlying reader.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder wraps r in a streaming JSON decoder.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Decode reads the next JSON value into v. It returns io.EOF when the
// underlying connection has no further requests.
func (d *Decoder) Decode(v any) error {
	return d.dec.Decode(v)
}
