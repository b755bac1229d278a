// Package client provides a minimal synchronous client for the kvs wire
// protocol: one TCP connection, one in-flight request at a time.
package client

import (
	"errors"
	"net"

	"github.com/bitcaskdb/kvs/internal/proto"
)

// ErrKeyNotFound is returned by Remove when the server rejects the removal
// of an absent key. Get does not return it: an absent key is reported
// through Get's ok result.
var ErrKeyNotFound = errors.New("key not found")

// Client is a single TCP connection to a kvs server, issuing requests and
// reading responses strictly in order — exactly the discipline the server
// assumes of each connection.
type Client struct {
	conn net.Conn
	enc  *proto.Encoder
	dec  *proto.Decoder
}

// Connect dials addr and returns a ready Client.
func Connect(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, enc: proto.NewEncoder(conn), dec: proto.NewDecoder(conn)}, nil
}

// Set stores key/value.
func (c *Client) Set(key, value string) error {
	resp, err := c.roundTrip(proto.SetRequest(key, value))
	if err != nil {
		return err
	}
	if resp.Err != "" {
		return errors.New(resp.Err)
	}
	return nil
}

// Get retrieves key's value. ok is false if the key is absent.
func (c *Client) Get(key string) (value string, ok bool, err error) {
	resp, err := c.roundTrip(proto.GetRequest(key))
	if err != nil {
		return "", false, err
	}
	if resp.Err != "" {
		return "", false, errors.New(resp.Err)
	}
	return resp.Value, resp.Found, nil
}

// Remove deletes key, returning ErrKeyNotFound if it was absent.
func (c *Client) Remove(key string) error {
	resp, err := c.roundTrip(proto.RemoveRequest(key))
	if err != nil {
		return err
	}
	if resp.Err == "key not found" {
		return ErrKeyNotFound
	}
	if resp.Err != "" {
		return errors.New(resp.Err)
	}
	return nil
}

func (c *Client) roundTrip(req proto.Request) (proto.Response, error) {
	if err := c.enc.Encode(req); err != nil {
		return proto.Response{}, err
	}
	var resp proto.Response
	if err := c.dec.Decode(&resp); err != nil {
		return proto.Response{}, err
	}
	return resp, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
