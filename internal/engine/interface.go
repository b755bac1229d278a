package engine

// Engine is the contract both the log-structured engine's Handle and the
// bbolt-backed reference engine satisfy. The server and worker pool code
// dispatch against this interface so the engine implementation is a
// runtime choice (see pkg/options.Options.EngineName), not a compile-time
// one.
type Engine interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
	Remove(key string) error

	// Clone returns a handle sharing the same underlying store but with
	// its own private resources (file descriptors, cursors). The server
	// clones once per accepted connection and hands the clone to a pool
	// worker.
	Clone() Engine

	Close() error
}
