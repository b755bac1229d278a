// Package seg manages the on-disk layout of a kvs data directory: segment
// files named "<generation>.log" in ascending generation order, and a
// sentinel file recording which engine last opened the directory.
//
// Filename format: "<generation>.log" where generation is a decimal
// uint64, zero-padding is not used. Lexicographic sort is not sufficient
// to order generations (10 sorts before 2), so callers must sort the
// parsed generation numbers, not the filenames.
package seg

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bitcaskdb/kvs/pkg/errors"
	"github.com/bitcaskdb/kvs/pkg/filesys"
)

const (
	logExt      = ".log"
	sentinelName = "kvs.engine"
)

// Path returns the path of the segment file for generation gen in dataDir.
func Path(dataDir string, gen uint64) string {
	return filepath.Join(dataDir, fmt.Sprintf("%d%s", gen, logExt))
}

// SortedGenerations lists every generation present in dataDir, in
// ascending order. Filenames that look like segment files but don't parse
// as "<uint64>.log" are skipped rather than failing the whole listing —
// a stray file in the data directory shouldn't block startup.
func SortedGenerations(dataDir string) ([]uint64, error) {
	matches, err := filesys.ReadDir(filepath.Join(dataDir, "*"+logExt))
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to list segment directory").
			WithPath(dataDir)
	}

	gens := make([]uint64, 0, len(matches))
	for _, m := range matches {
		gen, ok := ParseGeneration(m)
		if !ok {
			continue
		}
		gens = append(gens, gen)
	}

	slices.Sort(gens)
	return gens, nil
}

// ParseGeneration extracts the generation number from a segment path or
// bare filename, reporting false if it doesn't match "<uint64>.log".
func ParseGeneration(path string) (uint64, bool) {
	name := filepath.Base(path)
	trimmed := strings.TrimSuffix(name, logExt)
	if trimmed == name {
		return 0, false
	}
	gen, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, false
	}
	return gen, true
}

// SentinelPath returns the path of the engine-name sentinel file.
func SentinelPath(dataDir string) string {
	return filepath.Join(dataDir, sentinelName)
}

// ReadSentinel returns the engine name recorded in dataDir's sentinel
// file, or "" if the directory has never been opened before.
func ReadSentinel(dataDir string) (string, error) {
	exists, err := filesys.Exists(SentinelPath(dataDir))
	if err != nil {
		return "", errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat engine sentinel").
			WithPath(SentinelPath(dataDir))
	}
	if !exists {
		return "", nil
	}

	contents, err := filesys.ReadFile(SentinelPath(dataDir))
	if err != nil {
		return "", errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read engine sentinel").
			WithPath(SentinelPath(dataDir))
	}
	return strings.TrimSpace(string(contents)), nil
}

// WriteSentinel records engineName as the engine that owns dataDir.
func WriteSentinel(dataDir, engineName string) error {
	if err := filesys.WriteFile(SentinelPath(dataDir), 0644, []byte(engineName)); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write engine sentinel").
			WithPath(SentinelPath(dataDir))
	}
	return nil
}

// CheckEngine verifies that engineName is consistent with whatever
// sentinel value (if any) is already recorded for dataDir, writing the
// sentinel on first use.
func CheckEngine(dataDir, engineName string) error {
	recorded, err := ReadSentinel(dataDir)
	if err != nil {
		return err
	}
	if recorded == "" {
		return WriteSentinel(dataDir, engineName)
	}
	if recorded != engineName {
		return errors.NewEngineMismatchError(engineName, recorded)
	}
	return nil
}
