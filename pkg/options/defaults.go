package options

import "runtime"

const (
	// DefaultDataDir is the base directory kvs stores its data files in
	// if no other directory is specified during initialization.
	DefaultDataDir = "/var/lib/kvs"

	// DefaultCompactionThreshold is the cumulative uncompacted-byte count
	// that triggers a compaction after a write: 1 MiB.
	DefaultCompactionThreshold uint64 = 1024 * 1024

	// DefaultEngineName selects the log-structured engine.
	DefaultEngineName = "kvs"

	// DefaultPoolKind selects the bounded shared-queue worker pool.
	DefaultPoolKind = "shared-queue"

	// DefaultAddr is the address the server listens on absent a
	// configured override.
	DefaultAddr = "127.0.0.1:4000"
)

// NewDefaultOptions returns the default configuration settings for a kvs
// instance. PoolSize defaults to the number of logical CPUs, mirroring the
// convention of sizing a worker pool to hardware parallelism.
func NewDefaultOptions() Options {
	return Options{
		DataDir:             DefaultDataDir,
		CompactionThreshold: DefaultCompactionThreshold,
		EngineName:          DefaultEngineName,
		PoolKind:            DefaultPoolKind,
		PoolSize:            runtime.NumCPU(),
		Addr:                DefaultAddr,
	}
}
