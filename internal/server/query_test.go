package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryCaseInsensitiveKeys(t *testing.T) {
	params := ParseQuery("StudyDate=20240115&MODALITY=CT")
	assert.Equal(t, []string{"20240115"}, GetParam(params, "studydate"))
	assert.Equal(t, []string{"CT"}, GetParam(params, "Modality"))
}

func TestParseQueryRepeatedKeys(t *testing.T) {
	params := ParseQuery("includefield=00080060&IncludeField=00081030")
	assert.Equal(t, []string{"00080060", "00081030"}, GetParam(params, "includefield"))
}

func TestParseQueryDecodesAndTrims(t *testing.T) {
	params := ParseQuery("name=%20DOE%5EJOHN%20&empty=")
	assert.Equal(t, []string{"DOE^JOHN"}, GetParam(params, "name"))
	assert.Equal(t, []string{""}, GetParam(params, "empty"))
}

func TestParseQuerySkipsMalformedPairs(t *testing.T) {
	params := ParseQuery("&&noequals&a=1")
	assert.Len(t, params, 1)
	assert.Equal(t, []string{"1"}, GetParam(params, "a"))
}

func TestAcceptedTransferSyntaxWildcard(t *testing.T) {
	_, wildcard := AcceptedTransferSyntaxes(`multipart/related; type="application/dicom"; transfer-syntax=*`)
	assert.True(t, wildcard)
}

func TestAcceptedTransferSyntaxExplicit(t *testing.T) {
	syntaxes, wildcard := AcceptedTransferSyntaxes(
		`multipart/related; type="application/dicom"; transfer-syntax=1.2.840.10008.1.2.1`)
	assert.False(t, wildcard)
	assert.Equal(t, []string{"1.2.840.10008.1.2.1"}, syntaxes)
}

func TestAcceptedTransferSyntaxAbsent(t *testing.T) {
	syntaxes, wildcard := AcceptedTransferSyntaxes("application/dicom+json")
	assert.False(t, wildcard)
	assert.Empty(t, syntaxes)
}
