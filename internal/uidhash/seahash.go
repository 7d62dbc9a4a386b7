// Package uidhash maps DICOM UIDs onto compact integer keys. The values end
// up in the state_meta partition-key columns, so the algorithm
// is pinned: SeaHash with its published default seeds. Changing it would
// orphan every stored row.
package uidhash

import "encoding/binary"

const (
	seedA = 0x16f11fe89b0d677c
	seedB = 0xb480a793d8e6c86c
	seedC = 0x6fe2e5aaf078ebc9
	seedD = 0x14f994a4c5259381

	pcgMul = 0x6eed0e9da4d94a4f
)

func diffuse(x uint64) uint64 {
	x *= pcgMul
	a := x >> 32
	b := x >> 60
	x ^= a >> b
	x *= pcgMul
	return x
}

// readTail reads up to 8 remaining bytes little-endian, zero padded.
func readTail(buf []byte) uint64 {
	var v uint64
	for i := len(buf) - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

// Sum64 is the SeaHash digest of buf with the default seeds.
func Sum64(buf []byte) uint64 {
	a := uint64(seedA)
	b := uint64(seedB)
	c := uint64(seedC)
	d := uint64(seedD)
	n := uint64(len(buf))

	for len(buf) >= 32 {
		a = diffuse(a ^ binary.LittleEndian.Uint64(buf[0:8]))
		b = diffuse(b ^ binary.LittleEndian.Uint64(buf[8:16]))
		c = diffuse(c ^ binary.LittleEndian.Uint64(buf[16:24]))
		d = diffuse(d ^ binary.LittleEndian.Uint64(buf[24:32]))
		buf = buf[32:]
	}

	switch {
	case len(buf) > 24:
		a = diffuse(a ^ binary.LittleEndian.Uint64(buf[0:8]))
		b = diffuse(b ^ binary.LittleEndian.Uint64(buf[8:16]))
		c = diffuse(c ^ binary.LittleEndian.Uint64(buf[16:24]))
		d = diffuse(d ^ readTail(buf[24:]))
	case len(buf) > 16:
		a = diffuse(a ^ binary.LittleEndian.Uint64(buf[0:8]))
		b = diffuse(b ^ binary.LittleEndian.Uint64(buf[8:16]))
		c = diffuse(c ^ readTail(buf[16:]))
	case len(buf) > 8:
		a = diffuse(a ^ binary.LittleEndian.Uint64(buf[0:8]))
		b = diffuse(b ^ readTail(buf[8:]))
	case len(buf) > 0:
		a = diffuse(a ^ readTail(buf))
	}

	a ^= b
	c ^= d
	a ^= c
	a ^= n
	return diffuse(a)
}
