package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFrameList(t *testing.T) {
	frames, err := ParseFrameList("1,2,5")
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 5}, frames)
}

func TestParseFrameListSingle(t *testing.T) {
	frames, err := ParseFrameList("3")
	assert.NoError(t, err)
	assert.Equal(t, []int{3}, frames)
}

func TestParseFrameListRejectsZeroAndGarbage(t *testing.T) {
	for _, raw := range []string{"0", "-1", "a", "1,b", ""} {
		_, err := ParseFrameList(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
