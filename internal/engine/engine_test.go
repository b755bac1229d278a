package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestEngine(t *testing.T, threshold uint64) *kvStore {
	t.Helper()
	e, err := Open(Config{DataDir: t.TempDir(), CompactionThreshold: threshold})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestSetGetRoundTrip(t *testing.T) {
	e := openTestEngine(t, 1024*1024)
	h := NewHandle(e)

	require.NoError(t, h.Set("key1", "value1"))
	value, found, err := h.Get("key1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value1", value)
}

func TestGetAbsentKeyIsNotAnError(t *testing.T) {
	e := openTestEngine(t, 1024*1024)
	h := NewHandle(e)

	value, found, err := h.Get("missing")
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, value)
}

func TestOverwriteReturnsLatestValue(t *testing.T) {
	e := openTestEngine(t, 1024*1024)
	h := NewHandle(e)

	require.NoError(t, h.Set("key1", "value1"))
	require.NoError(t, h.Set("key1", "value2"))

	value, found, err := h.Get("key1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value2", value)
}

func TestRemoveThenGetIsAbsent(t *testing.T) {
	e := openTestEngine(t, 1024*1024)
	h := NewHandle(e)

	require.NoError(t, h.Set("key1", "value1"))
	require.NoError(t, h.Remove("key1"))

	_, found, err := h.Get("key1")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRemoveAbsentKeyFails(t *testing.T) {
	e := openTestEngine(t, 1024*1024)
	h := NewHandle(e)

	err := h.Remove("missing")
	require.Error(t, err)
}

func TestReopenRecoversStateFromLog(t *testing.T) {
	dir := t.TempDir()

	e1, err := Open(Config{DataDir: dir, CompactionThreshold: 1024 * 1024})
	require.NoError(t, err)
	h1 := NewHandle(e1)
	require.NoError(t, h1.Set("key1", "value1"))
	require.NoError(t, h1.Set("key2", "value2"))
	require.NoError(t, h1.Remove("key1"))
	require.NoError(t, e1.Close())

	e2, err := Open(Config{DataDir: dir, CompactionThreshold: 1024 * 1024})
	require.NoError(t, err)
	defer e2.Close()
	h2 := NewHandle(e2)

	_, found, err := h2.Get("key1")
	require.NoError(t, err)
	require.False(t, found)

	value, found, err := h2.Get("key2")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value2", value)
}

func TestCompactionReclaimsStaleSegmentsAndPreservesData(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(Config{DataDir: dir, CompactionThreshold: 1024})
	require.NoError(t, err)
	h := NewHandle(e)

	for i := 0; i < 1000; i++ {
		require.NoError(t, h.Set("k", strconv.Itoa(i)))
	}

	value, found, err := h.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "999", value)

	require.Greater(t, e.SafePoint(), uint64(0))

	gens, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.LessOrEqual(t, len(gens), 2)
}

func TestConcurrentSetsNoTearing(t *testing.T) {
	e := openTestEngine(t, 1024*1024)
	h := NewHandle(e)
	require.NoError(t, h.Set("k", "0"))

	var wg sync.WaitGroup
	for i := 1; i <= 1000; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			worker := NewHandle(e)
			defer worker.Close()
			_ = worker.Set("k", strconv.Itoa(i))
		}(i)
	}
	wg.Wait()

	value, found, err := h.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	n, err := strconv.Atoi(value)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 0)
	require.LessOrEqual(t, n, 1000)
}

func TestConcurrentSetAndGetNoError(t *testing.T) {
	e := openTestEngine(t, 1024*1024)
	writer := NewHandle(e)
	reader := NewHandle(e)
	defer reader.Close()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			require.NoError(t, writer.Set("k", strconv.Itoa(i)))
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			value, found, err := reader.Get("k")
			require.NoError(t, err)
			if found {
				n, convErr := strconv.Atoi(value)
				require.NoError(t, convErr)
				require.GreaterOrEqual(t, n, 1)
				require.LessOrEqual(t, n, 1000)
			}
		}
	}()

	wg.Wait()
}

func TestHandleCloneSharesStateWithFreshReaderCache(t *testing.T) {
	e := openTestEngine(t, 1024*1024)
	h1 := NewHandle(e)
	require.NoError(t, h1.Set("key1", "value1"))
	_, _, err := h1.Get("key1")
	require.NoError(t, err)
	require.NotEmpty(t, h1.cache)

	h2 := h1.Clone()
	defer h2.Close()
	require.Empty(t, h2.(*Handle).cache)

	value, found, err := h2.Get("key1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value1", value)
}

func TestOpenWithWrongEngineNameFails(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(Config{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "kvs.engine"), []byte("sled"), 0644))

	_, err = Open(Config{DataDir: dir})
	require.Error(t, err)
}

func TestReplayRejectsCorruptSegment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.log"), []byte("not json"), 0644))

	_, err := Open(Config{DataDir: dir})
	require.Error(t, err)
}

func TestCloseIsIdempotentFailure(t *testing.T) {
	e := openTestEngine(t, 1024*1024)
	require.NoError(t, e.Close())
	err := e.Close()
	require.ErrorIs(t, err, ErrEngineClosed)
}

func TestSetOnClosedEngineFails(t *testing.T) {
	e, err := Open(Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	h := NewHandle(e)
	err = h.Set("k", "v")
	require.ErrorIs(t, err, ErrEngineClosed)
}

func TestCommandJSONIsSelfDelimiting(t *testing.T) {
	// Two commands written back to back must decode as two distinct values,
	// the way a segment's concatenated records do.
	e := openTestEngine(t, 1024*1024)
	h := NewHandle(e)
	require.NoError(t, h.Set(fmt.Sprintf("k%d", 1), "v1"))
	require.NoError(t, h.Set(fmt.Sprintf("k%d", 2), "v2"))

	v1, found, err := h.Get("k1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v1", v1)

	v2, found, err := h.Get("k2")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v2", v2)
}
