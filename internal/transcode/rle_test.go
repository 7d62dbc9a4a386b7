package transcode

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestPackBitsRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{1},
		{1, 2, 3, 4, 5},
		bytes.Repeat([]byte{7}, 300),
		append(bytes.Repeat([]byte{0}, 130), 1, 2, 3, 3, 3, 3, 9),
		{5, 5, 1, 1, 1, 2},
	}
	for _, src := range cases {
		enc := packBits(src)
		dec, err := unpackBits(enc, len(src))
		if err != nil {
			t.Fatalf("decode %v: %v", src[:min(8, len(src))], err)
		}
		if !bytes.Equal(dec, src) {
			t.Fatalf("round trip mismatch for input of length %d", len(src))
		}
	}
}

func TestPackBitsCompressesRuns(t *testing.T) {
	src := bytes.Repeat([]byte{42}, 128)
	enc := packBits(src)
	if len(enc) != 2 {
		t.Fatalf("128-byte run encoded to %d bytes, want 2", len(enc))
	}
	if enc[0] != byte(257-128) || enc[1] != 42 {
		t.Fatalf("unexpected replicate record % x", enc)
	}
}

func TestEncodeRLEFrameHeader(t *testing.T) {
	// 4 pixels, 1 sample, 16 bits: two segments, high plane first.
	pixels := []int{0x0102, 0x0102, 0x0102, 0x0304}
	out, err := encodeRLEFrame(pixels, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) < 64 {
		t.Fatalf("missing RLE header, got %d bytes", len(out))
	}
	if n := binary.LittleEndian.Uint32(out[0:4]); n != 2 {
		t.Fatalf("segment count %d, want 2", n)
	}
	first := binary.LittleEndian.Uint32(out[4:8])
	if first != 64 {
		t.Fatalf("first segment offset %d, want 64", first)
	}
	second := binary.LittleEndian.Uint32(out[8:12])
	if second <= first || int(second) > len(out) {
		t.Fatalf("second segment offset %d out of range", second)
	}

	// Decode both planes and reassemble the first pixel.
	hi, err := unpackBits(out[first:second], 4)
	if err != nil {
		t.Fatal(err)
	}
	lo, err := unpackBits(out[second:], 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := int(hi[0])<<8 | int(lo[0]); got != 0x0102 {
		t.Fatalf("reassembled pixel %#x, want 0x0102", got)
	}
	if got := int(hi[3])<<8 | int(lo[3]); got != 0x0304 {
		t.Fatalf("reassembled pixel %#x, want 0x0304", got)
	}
}

func TestEncodeRLEFrameSegmentLimit(t *testing.T) {
	if _, err := encodeRLEFrame(make([]int, 16), 16, 1); err == nil {
		t.Fatal("expected segment-count error")
	}
}

func TestEncodeRLEFrameInterleavedSamples(t *testing.T) {
	// 2 pixels, RGB, 8 bits: three single-plane segments.
	raw := []int{10, 20, 30, 11, 21, 31}
	out, err := encodeRLEFrame(raw, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n := binary.LittleEndian.Uint32(out[0:4]); n != 3 {
		t.Fatalf("segment count %d, want 3", n)
	}
	first := binary.LittleEndian.Uint32(out[4:8])
	second := binary.LittleEndian.Uint32(out[8:12])
	red, err := unpackBits(out[first:second], 2)
	if err != nil {
		t.Fatal(err)
	}
	if red[0] != 10 || red[1] != 11 {
		t.Fatalf("red plane %v, want [10 11]", red)
	}
}

func TestSegmentsArePadded(t *testing.T) {
	// 2 distinct single-byte pixels produce a 3-byte literal record (header
	// plus two bytes); it must still land on an even boundary.
	out, err := encodeRLEFrame([]int{1, 2}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if (len(out)-64)%2 != 0 {
		t.Fatalf("segment not padded to even length: %d payload bytes", len(out)-64)
	}
}
