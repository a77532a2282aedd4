package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineAccumulatorSplitAcrossChunks(t *testing.T) {
	var acc LineAccumulator

	var lines []string
	for _, chunk := range []string{"12.5\n3.", "7\n8", ""} {
		lines = append(lines, acc.Feed([]byte(chunk))...)
	}

	require.Equal(t, []string{"12.5", "3.7"}, lines)
	assert.Equal(t, 1, acc.Pending(), "the unterminated 8 must be retained")

	lines = acc.Feed([]byte("\n"))
	assert.Equal(t, []string{"8"}, lines)
	assert.Equal(t, 0, acc.Pending())
}

func TestLineAccumulatorTrimsAndDropsEmpties(t *testing.T) {
	var acc LineAccumulator

	lines := acc.Feed([]byte("  41.0 \r\n\n\n  \nhello\n"))
	assert.Equal(t, []string{"41.0", "hello"}, lines)
}

func TestLineAccumulatorManyLinesInOneChunk(t *testing.T) {
	var acc LineAccumulator

	lines := acc.Feed([]byte("1\n2\n3\n4\n"))
	assert.Equal(t, []string{"1", "2", "3", "4"}, lines)
}

func TestLineAccumulatorReset(t *testing.T) {
	var acc LineAccumulator

	acc.Feed([]byte("partial"))
	require.Equal(t, 7, acc.Pending())

	acc.Reset()
	assert.Equal(t, 0, acc.Pending())

	// A fresh transmission must not be stitched to the dropped tail.
	lines := acc.Feed([]byte("9.9\n"))
	assert.Equal(t, []string{"9.9"}, lines)
}
