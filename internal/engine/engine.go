// Package engine provides the log-structured storage engine: an in-memory
// index over a directory of append-only JSON command segments, with a
// single writer mutex serializing mutations and a many-reader/single-
// writer lock guarding the index so reads never wait on the writer.
//
// The engine is the central coordinator for all database operations. It
// uses atomic operations for lifecycle state so Close is safe to call
// concurrently with in-flight operations issued through a Handle.
package engine

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/bitcaskdb/kvs/internal/seg"
	"github.com/bitcaskdb/kvs/internal/store"
	kvserrors "github.com/bitcaskdb/kvs/pkg/errors"
	"go.uber.org/zap"
)

const engineName = "kvs"

// Name identifies this engine to the segment directory's sentinel file.
func Name() string { return engineName }

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = errors.New("operation failed: cannot access closed engine")
)

// kvStore is the shared state behind every Handle cloned from it: the
// directory path, the guarded index, the mutex-guarded writer state, and
// the safe_point below which no generation may be referenced. Handles
// clone cheaply because all of this is shared; only the reader cache is
// handle-local.
type kvStore struct {
	dataDir             string
	compactionThreshold uint64
	log                 *zap.SugaredLogger
	closed              atomic.Bool

	idx *index
	wr  *writerState

	safePoint atomic.Uint64
}

// Config carries the dependencies Open needs beyond the directory path.
type Config struct {
	DataDir             string
	CompactionThreshold uint64
	Logger              *zap.SugaredLogger
}

// Open replays every segment in dataDir in generation order to rebuild
// the index and the uncompacted byte count, then creates a new active
// segment at max_existing_gen + 1.
func Open(cfg Config) (*kvStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.CompactionThreshold == 0 {
		cfg.CompactionThreshold = 1024 * 1024
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, kvserrors.ClassifyDirectoryCreationError(err, cfg.DataDir)
	}
	if err := seg.CheckEngine(cfg.DataDir, engineName); err != nil {
		return nil, err
	}

	gens, err := seg.SortedGenerations(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	idx := newIndex()
	auxReaders := make(map[uint64]*store.Reader, len(gens))
	var uncompacted uint64

	for _, gen := range gens {
		path := seg.Path(cfg.DataDir, gen)
		file, err := os.Open(path)
		if err != nil {
			return nil, kvserrors.ClassifyFileOpenError(err, path, path)
		}

		n, err := replaySegment(gen, file, idx)
		if err != nil {
			file.Close()
			return nil, err
		}
		uncompacted += n
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to rewind segment after replay").
				WithGeneration(gen)
		}
		auxReaders[gen] = store.NewReader(file)
	}

	currentGen := uint64(1)
	if len(gens) > 0 {
		currentGen = gens[len(gens)-1] + 1
	}

	writer, err := createSegmentWriter(cfg.DataDir, currentGen)
	if err != nil {
		return nil, err
	}

	e := &kvStore{
		dataDir:             cfg.DataDir,
		compactionThreshold: cfg.CompactionThreshold,
		log:                 cfg.Logger,
		idx:                 idx,
		wr: &writerState{
			gen:         currentGen,
			writer:      writer,
			auxReaders:  auxReaders,
			uncompacted: uncompacted,
		},
	}
	return e, nil
}

// replaySegment stream-decodes every command in file, recording each
// one's (gen, pos, len) span, and returns the number of uncompacted bytes
// the segment contributes. file is left open and positioned at EOF; the
// caller takes ownership, rewinds it, and wraps it as an auxiliary reader.
func replaySegment(gen uint64, file *os.File, idx *index) (uint64, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to seek segment for replay").
			WithGeneration(gen)
	}

	dec := json.NewDecoder(file)
	var uncompacted uint64
	pos := int64(0)

	for dec.More() {
		var cmd Command
		if err := dec.Decode(&cmd); err != nil {
			return 0, kvserrors.NewCorruptedLogError(gen, err)
		}
		newPos := dec.InputOffset()
		length := uint64(newPos - pos)

		switch cmd.Op {
		case "set":
			if old, displaced := idx.insert(cmd.Key, CommandPos{Gen: gen, Pos: pos, Len: length}); displaced {
				uncompacted += old.Len
			}
		case "remove":
			if old, removed := idx.remove(cmd.Key); removed {
				uncompacted += old.Len
			}
			uncompacted += length
		default:
			return 0, kvserrors.NewCorruptedLogError(gen, nil).WithDetail("op", cmd.Op)
		}

		pos = newPos
	}

	return uncompacted, nil
}

// Close flushes and closes the active writer and every auxiliary reader.
// It is safe to call once; a second call returns ErrEngineClosed. It does
// not close per-handle reader caches — each Handle.Close does that.
func (e *kvStore) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.wr.mu.Lock()
	defer e.wr.mu.Unlock()

	err := e.wr.writer.Close()
	for gen, r := range e.wr.auxReaders {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(e.wr.auxReaders, gen)
	}
	return err
}

// SafePoint returns the minimum generation any reader may reference.
// Generations below it have been unlinked by a past compaction.
func (e *kvStore) SafePoint() uint64 {
	return e.safePoint.Load()
}
