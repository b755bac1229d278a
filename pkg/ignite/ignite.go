// Package ignite is the public entry point for embedding kvs directly in
// a Go process, without going through the TCP server: it wires the
// configured engine and exposes Set/Get/Delete against it.
package ignite

import (
	"github.com/bitcaskdb/kvs/internal/engine"
	"github.com/bitcaskdb/kvs/internal/sledengine"
	"github.com/bitcaskdb/kvs/pkg/logger"
	"github.com/bitcaskdb/kvs/pkg/options"
	"go.uber.org/zap"
)

// Instance is an embedded kvs database. It encapsulates the underlying
// engine handle and the options that produced it.
//
// Instance is the primary entry point for interacting with the kvs store
// in-process, providing methods for setting, getting, and deleting
// key-value pairs.
type Instance struct {
	handle  engine.Engine
	options *options.Options
}

// NewInstance opens a database instance under the configured data
// directory, choosing the engine implementation from opts.EngineName.
func NewInstance(service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	handle, err := openEngine(resolved, log)
	if err != nil {
		return nil, err
	}

	return &Instance{handle: handle, options: &resolved}, nil
}

func openEngine(opts options.Options, log *zap.SugaredLogger) (engine.Engine, error) {
	switch opts.EngineName {
	case "sled":
		return sledengine.Open(opts.DataDir)
	default:
		eng, err := engine.Open(engine.Config{
			DataDir:             opts.DataDir,
			CompactionThreshold: opts.CompactionThreshold,
			Logger:              log,
		})
		if err != nil {
			return nil, err
		}
		return engine.NewHandle(eng), nil
	}
}

// Set stores a key-value pair in the database. If the key already exists,
// its value is overwritten.
func (i *Instance) Set(key, value string) error {
	return i.handle.Set(key, value)
}

// Get retrieves the value associated with the given key. ok is false if
// the key is absent.
func (i *Instance) Get(key string) (value string, ok bool, err error) {
	return i.handle.Get(key)
}

// Delete removes a key-value pair from the database.
func (i *Instance) Delete(key string) error {
	return i.handle.Remove(key)
}

// Close releases the instance's resources.
func (i *Instance) Close() error {
	return i.handle.Close()
}
