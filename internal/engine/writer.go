package engine

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/bitcaskdb/kvs/internal/seg"
	"github.com/bitcaskdb/kvs/internal/store"
	kvserrors "github.com/bitcaskdb/kvs/pkg/errors"
)

// writerState is the mutex-guarded writer side of the engine: the active
// generation, its buffered append handle, an auxiliary read-handle map
// used only during compaction, and the uncompacted byte counter. Holding
// wr.mu serializes Set, Remove, and Compact against each other.
type writerState struct {
	mu sync.Mutex

	gen         uint64
	writer      *store.Writer
	auxReaders  map[uint64]*store.Reader
	uncompacted uint64
}

// createSegmentWriter opens gen as a fresh create+append segment and
// returns a positional writer over it.
func createSegmentWriter(dataDir string, gen uint64) (*store.Writer, error) {
	path := seg.Path(dataDir, gen)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, kvserrors.ClassifyFileOpenError(err, path, path)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to stat new segment").
			WithGeneration(gen).WithPath(path)
	}
	return store.NewWriter(file, info.Size()), nil
}

// openAuxReader opens gen for random-access reads and registers it in the
// writer's auxiliary reader map, used by compaction to copy live records
// out of older generations.
func (wr *writerState) openAuxReader(dataDir string, gen uint64) (*store.Reader, error) {
	if r, ok := wr.auxReaders[gen]; ok {
		return r, nil
	}
	path := seg.Path(dataDir, gen)
	file, err := os.Open(path)
	if err != nil {
		return nil, kvserrors.NewLogFileNotFoundError(gen)
	}
	r := store.NewReader(file)
	wr.auxReaders[gen] = r
	return r, nil
}

// Set serializes a Set{key, value} record to the active segment, inserts
// the resulting CommandPos into the index, and runs compaction inline if
// the uncompacted byte count has crossed the configured threshold.
func (e *kvStore) Set(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.wr.mu.Lock()
	defer e.wr.mu.Unlock()

	start, err := e.appendLocked(setCommand(key, value))
	if err != nil {
		return err
	}

	pos := CommandPos{Gen: e.wr.gen, Pos: start, Len: uint64(e.wr.writer.Pos() - start)}
	if old, displaced := e.idx.insert(key, pos); displaced {
		e.wr.uncompacted += old.Len
	}

	if e.wr.uncompacted > e.compactionThreshold {
		if err := e.compactLocked(); err != nil {
			e.log.Errorw("compaction failed", "error", err)
			return err
		}
	}
	return nil
}

// Remove serializes a Remove{key} record for key, which must already be
// present in the index. The writer lock is acquired before the index is
// consulted so two concurrent removes of the same key cannot both succeed.
func (e *kvStore) Remove(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.wr.mu.Lock()
	defer e.wr.mu.Unlock()

	if !e.idx.contains(key) {
		return kvserrors.NewKeyNotFoundError(key)
	}

	if _, err := e.appendLocked(removeCommand(key)); err != nil {
		return err
	}

	if old, removed := e.idx.remove(key); removed {
		e.wr.uncompacted += old.Len
	}
	return nil
}

// appendLocked serializes cmd to the active segment and flushes, so pos
// reflects a committed write. Caller must hold wr.mu.
func (e *kvStore) appendLocked(cmd Command) (start int64, err error) {
	buf, err := json.Marshal(cmd)
	if err != nil {
		return 0, kvserrors.NewEngineError(err, kvserrors.ErrorCodeInternal, "failed to encode command").
			WithKey(cmd.Key).WithOperation(cmd.Op)
	}

	start, _, err = e.wr.writer.Write(buf)
	if err != nil {
		return 0, kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to append command").
			WithGeneration(e.wr.gen)
	}
	if err := e.wr.writer.Flush(); err != nil {
		return 0, kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to flush active segment").
			WithGeneration(e.wr.gen)
	}
	return start, nil
}

// compactLocked reserves two fresh generations, copies every live record
// from the index's referenced byte ranges into the compaction segment,
// rewrites the index against the new positions, then unlinks every stale
// segment and advances safe_point. Caller must hold wr.mu.
func (e *kvStore) compactLocked() error {
	compactionGen := e.wr.gen + 1
	nextActiveGen := e.wr.gen + 2

	compactionWriter, err := createSegmentWriter(e.dataDir, compactionGen)
	if err != nil {
		return err
	}
	// Register the compaction output too, so the next compaction unlinks it
	// once its live records have been copied forward.
	if _, err := e.wr.openAuxReader(e.dataDir, compactionGen); err != nil {
		return err
	}
	activeWriter, err := createSegmentWriter(e.dataDir, nextActiveGen)
	if err != nil {
		return err
	}

	// The old active segment needs to be tracked for cleanup even if the
	// index happens to hold no live entries pointing at it.
	if _, err := e.wr.openAuxReader(e.dataDir, e.wr.gen); err != nil {
		return err
	}

	var newPos int64
	err = e.idx.compactEach(func(key string, pos CommandPos) (CommandPos, error) {
		reader, err := e.wr.openAuxReader(e.dataDir, pos.Gen)
		if err != nil {
			return pos, err
		}
		data, err := reader.ReadAt(pos.Pos, pos.Len)
		if err != nil {
			return pos, kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to read record during compaction").
				WithGeneration(pos.Gen).WithOffset(pos.Pos)
		}
		_, n, err := compactionWriter.Write(data)
		if err != nil {
			return pos, kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to write compaction record").
				WithGeneration(compactionGen)
		}
		newPos += int64(n)
		return CommandPos{Gen: compactionGen, Pos: newPos - int64(n), Len: uint64(n)}, nil
	})
	if err != nil {
		return err
	}

	if err := compactionWriter.Flush(); err != nil {
		return kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to flush compaction segment").
			WithGeneration(compactionGen)
	}

	for gen, r := range e.wr.auxReaders {
		if gen < compactionGen {
			r.Close()
			delete(e.wr.auxReaders, gen)
			if err := os.Remove(seg.Path(e.dataDir, gen)); err != nil && !os.IsNotExist(err) {
				return kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to unlink stale segment").
					WithGeneration(gen)
			}
		}
	}

	e.wr.gen = nextActiveGen
	e.wr.writer = activeWriter
	e.wr.uncompacted = 0
	e.safePoint.Store(compactionGen)

	return nil
}
