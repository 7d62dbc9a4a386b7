package uidhash

import "fmt"

// Hash64 is the stable 64-bit key for a UID.
func Hash64(uid string) uint64 {
	return Sum64([]byte(uid))
}

// SeriesHash32 keys a series within its study: the lower 32 bits of the hash
// of the study UID followed by the series UID, so the value depends on both.
// Sibling series spread over the whole 32-bit space. With 100 series in one
// study the chance of a collision is about 1e-6.
func SeriesHash32(studyUID, seriesUID string) uint32 {
	buf := make([]byte, 0, len(studyUID)+len(seriesUID))
	buf = append(buf, studyUID...)
	buf = append(buf, seriesUID...)
	return uint32(Sum64(buf) & 0xFFFFFFFF)
}

// FormatHash64 renders v as fixed-width decimal: 20 digits, zero padded.
func FormatHash64(v uint64) string {
	return fmt.Sprintf("%020d", v)
}
