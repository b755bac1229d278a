package server

import (
	"net"
	"testing"

	"github.com/bitcaskdb/kvs/internal/client"
	"github.com/bitcaskdb/kvs/internal/engine"
	"github.com/bitcaskdb/kvs/internal/pool"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) string {
	t.Helper()

	eng, err := engine.Open(engine.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	p, err := pool.New("shared-queue", 4, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	srv := New(engine.NewHandle(eng), p, nil)
	go srv.Serve(ln)

	return ln.Addr().String()
}

func TestServerRoundTrip(t *testing.T) {
	addr := startTestServer(t)

	c, err := client.Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("key1", "value1"))

	value, found, err := c.Get("key1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value1", value)

	require.NoError(t, c.Remove("key1"))

	_, found, err = c.Get("key1")
	require.NoError(t, err)
	require.False(t, found)
}

func TestServerRemoveAbsentKeyReturnsError(t *testing.T) {
	addr := startTestServer(t)

	c, err := client.Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	err = c.Remove("missing")
	require.ErrorIs(t, err, client.ErrKeyNotFound)
}

func TestServerHandlesMultipleConnections(t *testing.T) {
	addr := startTestServer(t)

	c1, err := client.Connect(addr)
	require.NoError(t, err)
	defer c1.Close()

	c2, err := client.Connect(addr)
	require.NoError(t, err)
	defer c2.Close()

	require.NoError(t, c1.Set("from-c1", "a"))
	require.NoError(t, c2.Set("from-c2", "b"))

	value, found, err := c2.Get("from-c1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a", value)
}

func TestServerStrictRequestOrderingPerConnection(t *testing.T) {
	addr := startTestServer(t)

	c, err := client.Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 100; i++ {
		require.NoError(t, c.Set("k", "v"))
		_, found, err := c.Get("k")
		require.NoError(t, err)
		require.True(t, found)
	}
}
