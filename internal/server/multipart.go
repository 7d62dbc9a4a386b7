package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Multipart framing for multipart/related responses. The layout is exact:
//
//	--{boundary}\r\n
//	Content-Type: {type}\r\n
//	\r\n
//	{body}\r\n
//	...
//	--{boundary}--\r\n
//
// Parts stream one at a time; the whole response is never buffered.

// MultipartWriter emits boundary-delimited parts onto w.
type MultipartWriter struct {
	w        io.Writer
	boundary string
	started  bool
}

// NewMultipartWriter frames parts with the given boundary.
func NewMultipartWriter(w io.Writer, boundary string) *MultipartWriter {
	return &MultipartWriter{w: w, boundary: boundary}
}

// ContentType returns the multipart/related header value for the parts.
func (m *MultipartWriter) ContentType(partType string) string {
	return fmt.Sprintf(`multipart/related; type="%s"; boundary=%s`, partType, m.boundary)
}

// WritePart emits one part and flushes it to the client.
func (m *MultipartWriter) WritePart(contentType string, body []byte) error {
	var head bytes.Buffer
	head.WriteString("--" + m.boundary + "\r\n")
	head.WriteString("Content-Type: " + contentType + "\r\n\r\n")
	if _, err := m.w.Write(head.Bytes()); err != nil {
		return err
	}
	if _, err := m.w.Write(body); err != nil {
		return err
	}
	if _, err := io.WriteString(m.w, "\r\n"); err != nil {
		return err
	}
	m.started = true
	if f, ok := m.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Close writes the final delimiter.
func (m *MultipartWriter) Close() error {
	_, err := io.WriteString(m.w, "--"+m.boundary+"--\r\n")
	return err
}

// FindBoundary reports the offsets of the first opening boundary and of the
// closing boundary within data, either of which may be absent.
func FindBoundary(data []byte, boundary string) (start, end int, hasStart, hasEnd bool) {
	open := []byte("--" + boundary)
	closing := []byte("--" + boundary + "--")

	end = bytes.Index(data, closing)
	hasEnd = end >= 0

	start = bytes.Index(data, open)
	// The closing delimiter also matches the opening prefix.
	if start == end {
		hasStart = hasEnd
	} else {
		hasStart = start >= 0
	}
	return start, end, hasStart, hasEnd
}

// SplitParts cuts a complete multipart body into its part payloads,
// stripping each part's headers. A missing closing delimiter is a client
// protocol error.
func SplitParts(data []byte, boundary string) ([][]byte, error) {
	_, end, hasStart, hasEnd := FindBoundary(data, boundary)
	if !hasStart {
		return nil, fmt.Errorf("multipart body has no boundary %q", boundary)
	}
	if !hasEnd {
		return nil, fmt.Errorf("multipart body is missing the closing %q delimiter", "--"+boundary+"--")
	}

	body := data[:end]
	delim := []byte("--" + boundary)
	var parts [][]byte
	for _, chunk := range bytes.Split(body, delim) {
		chunk = bytes.TrimPrefix(chunk, []byte("\r\n"))
		if len(chunk) == 0 {
			continue
		}
		// Part headers end at the first blank line.
		payload := chunk
		if idx := bytes.Index(chunk, []byte("\r\n\r\n")); idx >= 0 {
			payload = chunk[idx+4:]
		}
		payload = bytes.TrimSuffix(payload, []byte("\r\n"))
		if len(payload) == 0 {
			continue
		}
		parts = append(parts, payload)
	}
	return parts, nil
}
