package engine

import (
	"strconv"
	"testing"
)

func BenchmarkSet(b *testing.B) {
	e, err := Open(Config{DataDir: b.TempDir(), CompactionThreshold: 1024 * 1024})
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()
	h := NewHandle(e)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := h.Set("key", strconv.Itoa(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet(b *testing.B) {
	e, err := Open(Config{DataDir: b.TempDir(), CompactionThreshold: 1024 * 1024})
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()
	h := NewHandle(e)

	for i := 0; i < 1000; i++ {
		if err := h.Set("key"+strconv.Itoa(i%100), strconv.Itoa(i)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := h.Get("key" + strconv.Itoa(i%100)); err != nil {
			b.Fatal(err)
		}
	}
}
