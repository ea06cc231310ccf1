package hasher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHash_KnownVector(t *testing.T) {
	// SHA-256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := Hash("hello"); got != want {
		t.Fatalf("unexpected hash: got %s want %s", got, want)
	}
}

func TestReader_MatchesSumBytes(t *testing.T) {
	in := "VendorID,tpep_pickup_datetime\n1,2021-01-01 00:30:10\n"
	got, n, err := Reader(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	if n != int64(len(in)) {
		t.Fatalf("size: got %d want %d", n, len(in))
	}
	if got != SumBytes([]byte(in)) {
		t.Fatalf("streaming and in-memory digests differ")
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yellow_tripdata_2024-01.parquet")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, n, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if n != 5 || got != Hash("hello") {
		t.Fatalf("got %s (%d bytes)", got, n)
	}

	if _, _, err := File(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func BenchmarkHash(b *testing.B) {
	in := "some reasonably sized input"

	for b.Loop() {
		_ = Hash(in)
	}
}
