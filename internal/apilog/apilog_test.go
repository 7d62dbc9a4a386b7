package apilog

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactHeadersDropsSensitiveNames(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Cookie", "s=1")
	h.Set("Set-Cookie", "s=1")
	h.Set("Proxy-Authorization", "Basic abc")
	h.Set("X-Trace", "abc")
	h.Set("Content-Type", "application/dicom+json")

	bag := RedactHeaders(h)

	assert.Equal(t, map[string]string{
		"x-trace":      "abc",
		"content-type": "application/dicom+json",
	}, bag)
}

func TestRedactHeadersLowercasesNames(t *testing.T) {
	h := http.Header{}
	h.Set("X-Request-ID", "r1")
	bag := RedactHeaders(h)
	_, upper := bag["X-Request-ID"]
	assert.False(t, upper)
	assert.Equal(t, "r1", bag["x-request-id"])
}

func TestRequestIDsIncrease(t *testing.T) {
	a, errA := strconv.ParseInt(requestID(), 16, 64)
	b, errB := strconv.ParseInt(requestID(), 16, 64)
	assert.NoError(t, errA)
	assert.NoError(t, errB)
	assert.Greater(t, b, a)
}
