// Package server implements the TCP front end: it accepts connections,
// hands each one a cloned engine handle through the worker pool, and runs
// a strict request/response loop per connection.
package server

import (
	"encoding/json"
	"io"
	"net"

	"github.com/bitcaskdb/kvs/internal/engine"
	"github.com/bitcaskdb/kvs/internal/pool"
	"github.com/bitcaskdb/kvs/internal/proto"
	"go.uber.org/zap"
)

// Server accepts connections on a single listener and dispatches each
// one's request loop to a worker pool. It holds one engine handle as the
// template every connection clones from.
type Server struct {
	engine engine.Engine
	pool   pool.Pool
	log    *zap.SugaredLogger
}

// New constructs a Server over eng, dispatching connections through p.
func New(eng engine.Engine, p pool.Pool, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{engine: eng, pool: p, log: log}
}

// Serve accepts connections on ln until it returns an error (typically
// because ln was closed by the caller during shutdown).
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}

		handle := s.engine.Clone()
		s.pool.Spawn(func() {
			s.handleConnection(conn, handle)
		})
	}
}

// handleConnection drains successive requests from conn, invoking the
// engine and writing each response before reading the next request — the
// spec's strict in-order guarantee falls directly out of this being a
// single-threaded loop per connection.
func (s *Server) handleConnection(conn net.Conn, handle engine.Engine) {
	defer conn.Close()
	defer handle.Close()

	dec := proto.NewDecoder(conn)
	enc := proto.NewEncoder(conn)

	for {
		var req proto.Request
		if err := dec.Decode(&req); err != nil {
			if err != io.EOF {
				s.log.Debugw("connection closed with decode error", "error", err)
			}
			return
		}

		resp := s.dispatch(handle, req)
		if err := enc.Encode(resp); err != nil {
			s.log.Debugw("failed to write response", "error", err)
			return
		}
	}
}

func (s *Server) dispatch(handle engine.Engine, req proto.Request) proto.Response {
	switch req.Op {
	case "set":
		if err := handle.Set(req.Key, req.Value); err != nil {
			return proto.Failed(err)
		}
		return proto.OK()
	case "get":
		value, found, err := handle.Get(req.Key)
		if err != nil {
			return proto.Failed(err)
		}
		return proto.GetResult(value, found)
	case "remove":
		if err := handle.Remove(req.Key); err != nil {
			return proto.Failed(err)
		}
		return proto.OK()
	default:
		return proto.Failed(&unknownOpError{op: req.Op})
	}
}

type unknownOpError struct{ op string }

func (e *unknownOpError) Error() string {
	data, _ := json.Marshal(e.op)
	return "unknown operation: " + string(data)
}
