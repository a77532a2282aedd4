// Package decode turns raw transport output into typed records and
// routes them into the engine's buffers. Decoding failures never
// propagate; they degrade to log entries while the stream continues.
package decode

import (
	"bytes"
	"strings"
)

// LineAccumulator reassembles newline-terminated text from arbitrary
// chunk boundaries. Leftover bytes without a terminator are retained
// until the next chunk arrives.
type LineAccumulator struct {
	buf bytes.Buffer
}

// Feed appends chunk and returns every complete line it unlocked,
// trimmed of surrounding whitespace, with empty lines dropped.
func (a *LineAccumulator) Feed(chunk []byte) []string {
	a.buf.Write(chunk)

	var lines []string
	for {
		raw := a.buf.Bytes()
		idx := bytes.IndexByte(raw, '\n')
		if idx < 0 {
			return lines
		}
		line := strings.TrimSpace(string(raw[:idx]))
		a.buf.Next(idx + 1)
		if line != "" {
			lines = append(lines, line)
		}
	}
}

// Pending reports how many un-terminated bytes are held back.
func (a *LineAccumulator) Pending() int {
	return a.buf.Len()
}

// Reset drops any partial line, e.g. when a connection is torn down.
func (a *LineAccumulator) Reset() {
	a.buf.Reset()
}
