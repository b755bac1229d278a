// Package sledengine provides a reference implementation of the engine
// interface backed by go.etcd.io/bbolt, the idiomatic Go analogue of the
// Rust original's sled-backed engine. It trades the log-structured
// engine's online compaction and lock-optimized concurrency for bbolt's
// own B+tree page management and single-writer MVCC transactions — useful
// as a correctness oracle and a baseline to benchmark the primary engine
// against, not as a drop-in replacement for its concurrency contract.
package sledengine

import (
	"os"
	"path/filepath"

	"github.com/bitcaskdb/kvs/internal/engine"
	"github.com/bitcaskdb/kvs/internal/seg"
	kvserrors "github.com/bitcaskdb/kvs/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	engineName = "sled"
	dbFileName = "kvs.sled"
)

var bucketName = []byte("kvs")

// Name identifies this engine to the segment directory's sentinel file.
func Name() string { return engineName }

// Handle wraps a shared *bolt.DB. bbolt transactions are already safe for
// concurrent use from multiple goroutines, so unlike the log-structured
// engine's Handle, Clone needs no reader cache — it just returns a new
// Handle over the same *bolt.DB, marked as a clone.
type Handle struct {
	db    *bolt.DB
	clone bool
}

// Open opens (creating if absent) a bbolt database file inside dataDir.
func Open(dataDir string) (*Handle, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, kvserrors.ClassifyDirectoryCreationError(err, dataDir)
	}
	if err := seg.CheckEngine(dataDir, engineName); err != nil {
		return nil, err
	}

	path := filepath.Join(dataDir, dbFileName)
	db, err := bolt.Open(path, 0644, nil)
	if err != nil {
		return nil, kvserrors.ClassifyFileOpenError(err, path, path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, kvserrors.NewStorageError(err, kvserrors.ErrorCodeIO, "failed to create bucket").WithPath(path)
	}

	return &Handle{db: db}, nil
}

// Set stores key/value in a single read-write transaction.
func (h *Handle) Set(key, value string) error {
	return h.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
}

// Get looks up key in a single read-only transaction.
func (h *Handle) Get(key string) (string, bool, error) {
	var value string
	var found bool
	err := h.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			found = true
			value = string(v)
		}
		return nil
	})
	return value, found, err
}

// Remove deletes key, failing with KeyNotFound if it is absent — bbolt's
// Delete is a no-op on a missing key, so the presence check is explicit.
func (h *Handle) Remove(key string) error {
	return h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) == nil {
			return kvserrors.NewKeyNotFoundError(key)
		}
		return b.Delete([]byte(key))
	})
}

// Clone returns a new Handle over the same underlying database. bbolt
// transactions serialize writers internally, so no additional handle-local
// state is needed the way the log-structured engine needs a reader cache.
func (h *Handle) Clone() engine.Engine {
	return &Handle{db: h.db, clone: true}
}

// Close closes the underlying bbolt database when called on the Handle
// returned by Open. On a cloned Handle it is a no-op, since every clone
// shares one *bolt.DB and the server closes each per-connection clone.
func (h *Handle) Close() error {
	if h.clone {
		return nil
	}
	return h.db.Close()
}
