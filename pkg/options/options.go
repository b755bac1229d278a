// Package options provides data structures and functions for configuring
// a kvs engine and server. It defines the parameters that control storage
// location, compaction behavior, worker pool selection, and the listen
// address, following a functional-options pattern so callers only set
// what they need to override.
package options

import (
	"strings"

	kvserrors "github.com/bitcaskdb/kvs/pkg/errors"
)

// Options defines the configuration parameters for a kvs engine and the
// server that fronts it.
type Options struct {
	// DataDir is the directory holding segment files and the engine
	// sentinel file.
	//
	// Default: "/var/lib/kvs"
	DataDir string `json:"dataDir"`

	// CompactionThreshold is the cumulative uncompacted-byte count that
	// triggers a compaction after a write.
	//
	// Default: 1 MiB
	CompactionThreshold uint64 `json:"compactionThreshold"`

	// EngineName selects the storage engine: "kvs" for the log-structured
	// engine, "sled" for the bbolt-backed reference engine.
	//
	// Default: "kvs"
	EngineName string `json:"engineName"`

	// PoolKind selects the worker pool implementation: "naive",
	// "shared-queue", or "work-stealing".
	//
	// Default: "shared-queue"
	PoolKind string `json:"poolKind"`

	// PoolSize is the number of workers for pool kinds that require
	// positive sizing. Ignored by "naive".
	//
	// Default: number of CPUs
	PoolSize int `json:"poolSize"`

	// Addr is the TCP address the server listens on.
	//
	// Default: "127.0.0.1:4000"
	Addr string `json:"addr"`
}

// OptionFunc is a function type that modifies an Options value.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration values.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDataDir sets the directory where segment files are stored.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithCompactionThreshold sets the uncompacted-byte threshold that triggers
// a compaction after a write.
func WithCompactionThreshold(bytes uint64) OptionFunc {
	return func(o *Options) {
		if bytes > 0 {
			o.CompactionThreshold = bytes
		}
	}
}

// WithEngineName selects the storage engine implementation.
func WithEngineName(name string) OptionFunc {
	return func(o *Options) {
		name = strings.TrimSpace(name)
		if name != "" {
			o.EngineName = name
		}
	}
}

// WithPoolKind selects the worker pool implementation.
func WithPoolKind(kind string) OptionFunc {
	return func(o *Options) {
		kind = strings.TrimSpace(kind)
		if kind != "" {
			o.PoolKind = kind
		}
	}
}

// WithPoolSize sets the number of workers for pool kinds that require
// positive sizing.
func WithPoolSize(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.PoolSize = n
		}
	}
}

// WithAddr sets the TCP address the server listens on.
func WithAddr(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.Addr = addr
		}
	}
}

// Validate checks an Options value for internally inconsistent settings
// that would otherwise surface as a confusing failure deep inside the
// engine or pool constructor.
func (o Options) Validate() error {
	switch o.EngineName {
	case "kvs", "sled":
	default:
		return kvserrors.NewFieldFormatError("EngineName", o.EngineName, `"kvs" or "sled"`)
	}

	switch o.PoolKind {
	case "naive", "shared-queue", "work-stealing":
	default:
		return kvserrors.NewFieldFormatError("PoolKind", o.PoolKind, `"naive", "shared-queue", or "work-stealing"`)
	}

	if o.PoolKind != "naive" && o.PoolSize <= 0 {
		return kvserrors.NewFieldRangeError("PoolSize", o.PoolSize, 1, nil)
	}

	if o.CompactionThreshold == 0 {
		return kvserrors.NewRequiredFieldError("CompactionThreshold")
	}

	return nil
}
