package engine

import (
	"os"
	"sync"

	"github.com/bitcaskdb/kvs/internal/seg"
	"github.com/bitcaskdb/kvs/internal/store"
	kvserrors "github.com/bitcaskdb/kvs/pkg/errors"
)

// Handle is a cheaply cloneable reference to an Engine: it shares the
// engine's path, index, writer, and safe_point, but carries its own
// private reader cache. Clone produces a fresh empty cache; the cache is
// never shared across handles, which is what lets Get run lock-free
// against everything but the index's read side.
//
// The cache is guarded by a mutex rather than true thread-local storage —
// acceptable per the engine's own contract, since a Handle is used by at
// most one worker goroutine at a time, so the mutex is never contended.
type Handle struct {
	engine *kvStore

	cacheMu sync.Mutex
	cache   map[uint64]*store.Reader
}

// NewHandle wraps engine in a Handle with an empty reader cache.
func NewHandle(e *kvStore) *Handle {
	return &Handle{engine: e, cache: make(map[uint64]*store.Reader)}
}

// Clone returns a new Handle sharing this handle's engine but starting
// with an empty reader cache, the way a worker pool hands each worker its
// own file descriptors while sharing the index and writer.
func (h *Handle) Clone() Engine {
	return NewHandle(h.engine)
}

// Set stores key/value, delegating to the shared engine.
func (h *Handle) Set(key, value string) error {
	return h.engine.Set(key, value)
}

// Remove deletes key, delegating to the shared engine.
func (h *Handle) Remove(key string) error {
	return h.engine.Remove(key)
}

// Get looks up key. It reads the index under its many-reader lock only
// long enough to copy out the CommandPos, then consults this handle's own
// reader cache — evicting any entries whose generation has fallen behind
// safe_point — to seek and decode the record without ever touching the
// writer mutex.
func (h *Handle) Get(key string) (string, bool, error) {
	if h.engine.closed.Load() {
		return "", false, ErrEngineClosed
	}

	pos, ok := h.engine.idx.get(key)
	if !ok {
		return "", false, nil
	}

	h.evictStale()

	reader, err := h.readerFor(pos.Gen)
	if err != nil {
		return "", false, err
	}

	data, err := reader.ReadAt(pos.Pos, pos.Len)
	if err != nil {
		return "", false, kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to read record").
			WithGeneration(pos.Gen).WithOffset(pos.Pos)
	}

	cmd, err := decodeCommand(data)
	if err != nil {
		return "", false, kvserrors.NewCorruptedLogError(pos.Gen, err)
	}
	if cmd.Op != "set" {
		return "", false, kvserrors.NewUnexpectedCommandError(key, pos.Gen)
	}
	return cmd.Value, true, nil
}

// evictStale drops cached readers for generations below the engine's
// current safe_point, closing the file handle. Unlinked-but-still-open
// files are harmless on POSIX, but there is no reason to keep reading
// from a generation that compaction has already superseded.
func (h *Handle) evictStale() {
	safePoint := h.engine.SafePoint()

	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	for gen, r := range h.cache {
		if gen < safePoint {
			r.Close()
			delete(h.cache, gen)
		}
	}
}

// readerFor returns this handle's reader for gen, opening it on demand.
func (h *Handle) readerFor(gen uint64) (*store.Reader, error) {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()

	if r, ok := h.cache[gen]; ok {
		return r, nil
	}

	path := seg.Path(h.engine.dataDir, gen)
	file, err := os.Open(path)
	if err != nil {
		return nil, kvserrors.NewLogFileNotFoundError(gen)
	}
	r := store.NewReader(file)
	h.cache[gen] = r
	return r, nil
}

// Close releases every file handle in this handle's private reader
// cache. It does not touch the shared engine — callers close the Engine
// separately once every Handle derived from it is done.
func (h *Handle) Close() error {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()

	var first error
	for gen, r := range h.cache {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
		delete(h.cache, gen)
	}
	return first
}
