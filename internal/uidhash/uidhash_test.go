package uidhash

import (
	"strings"
	"testing"
)

func TestHash64Deterministic(t *testing.T) {
	uid := "1.2.840.113619.2.55.3.604688119.971.1680000000.123"
	first := Hash64(uid)
	for i := 0; i < 10; i++ {
		if got := Hash64(uid); got != first {
			t.Fatalf("hash of %q changed: %d != %d", uid, got, first)
		}
	}
}

func TestHash64DistinguishesUIDs(t *testing.T) {
	if Hash64("1.2.3") == Hash64("1.2.4") {
		t.Fatal("distinct UIDs hashed to the same value")
	}
}

func TestSum64TailLengths(t *testing.T) {
	// Exercise every tail bucket: 0..32+ bytes. Values must be distinct from
	// their neighbours (prefix extension must change the hash).
	seen := make(map[uint64]int)
	for n := 0; n <= 40; n++ {
		h := Sum64([]byte(strings.Repeat("x", n)))
		if prev, dup := seen[h]; dup {
			t.Fatalf("length %d collides with length %d", n, prev)
		}
		seen[h] = n
	}
}

func TestSeriesHash32DependsOnBothArguments(t *testing.T) {
	base := SeriesHash32("1.2.3", "1.2.3.1")
	if SeriesHash32("1.2.3", "1.2.3.1") != base {
		t.Fatal("series hash not deterministic")
	}
	if SeriesHash32("1.2.3", "1.2.3.2") == base {
		t.Fatal("series hash ignores series UID")
	}
	if SeriesHash32("1.2.4", "1.2.3.1") == base {
		t.Fatal("series hash ignores study UID")
	}
}

func TestFormatHash64Width(t *testing.T) {
	for _, v := range []uint64{0, 1, 42, 1<<63 + 12345, ^uint64(0)} {
		s := FormatHash64(v)
		if len(s) != 20 {
			t.Errorf("FormatHash64(%d) = %q, want 20 digits", v, s)
		}
	}
	if got := FormatHash64(7); got != "00000000000000000007" {
		t.Errorf("FormatHash64(7) = %q", got)
	}
}

func BenchmarkHash64(b *testing.B) {
	uid := "1.2.840.113619.2.55.3.604688119.971.1680000000.123"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Hash64(uid)
	}
}
