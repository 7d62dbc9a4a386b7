package server

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipartFraming(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMultipartWriter(&buf, "BOUNDARY")

	require.NoError(t, mw.WritePart("application/dicom", []byte("AAAA")))
	require.NoError(t, mw.WritePart("application/dicom", []byte("BBBB")))
	require.NoError(t, mw.Close())

	want := "--BOUNDARY\r\n" +
		"Content-Type: application/dicom\r\n\r\n" +
		"AAAA\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: application/dicom\r\n\r\n" +
		"BBBB\r\n" +
		"--BOUNDARY--\r\n"
	assert.Equal(t, want, buf.String())
}

func TestMultipartRoundTrip(t *testing.T) {
	// Property: splitting what the writer produced yields exactly the
	// original parts, in order.
	var buf bytes.Buffer
	mw := NewMultipartWriter(&buf, "xyz123")
	bodies := [][]byte{[]byte("first"), []byte("second part"), []byte("third\x00binary\xff")}
	for _, b := range bodies {
		require.NoError(t, mw.WritePart("application/dicom", b))
	}
	require.NoError(t, mw.Close())

	parts, err := SplitParts(buf.Bytes(), "xyz123")
	require.NoError(t, err)
	require.Len(t, parts, len(bodies))
	for i := range bodies {
		assert.Equal(t, bodies[i], parts[i])
	}
}

func TestSplitPartsMissingClosingDelimiter(t *testing.T) {
	body := "--b\r\nContent-Type: application/dicom\r\n\r\ndata\r\n"
	_, err := SplitParts([]byte(body), "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closing")
}

func TestSplitPartsNoBoundaryAtAll(t *testing.T) {
	_, err := SplitParts([]byte("not multipart"), "b")
	assert.Error(t, err)
}

func TestFindBoundaryOffsets(t *testing.T) {
	data := []byte("junk--b\r\npayload--b--\r\n")
	start, end, hasStart, hasEnd := FindBoundary(data, "b")
	assert.True(t, hasStart)
	assert.True(t, hasEnd)
	assert.Equal(t, 4, start)
	assert.Equal(t, strings.Index(string(data), "--b--"), end)
}

func TestFindBoundaryAbsent(t *testing.T) {
	_, _, hasStart, hasEnd := FindBoundary([]byte("nothing here"), "b")
	assert.False(t, hasStart)
	assert.False(t, hasEnd)
}

func TestContentTypeHeader(t *testing.T) {
	mw := NewMultipartWriter(&bytes.Buffer{}, "B1")
	assert.Equal(t, `multipart/related; type="application/dicom"; boundary=B1`, mw.ContentType("application/dicom"))
}
