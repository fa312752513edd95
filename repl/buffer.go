package repl

import (
	"strings"
)

// MultiLineBuffer collects continuation lines (those ending in a backslash)
// until a plain line completes the input.
type MultiLineBuffer struct {
	lines []string
}

// NewMultiLineBuffer creates a new buffer
func NewMultiLineBuffer() *MultiLineBuffer {
	return &MultiLineBuffer{}
}

// Feed adds line to the buffer. It returns the complete input and true once
// a line without a trailing backslash arrives.
func (b *MultiLineBuffer) Feed(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if strings.HasSuffix(line, "\\") {
		b.lines = append(b.lines, strings.TrimSuffix(line, "\\"))
		return "", false
	}

	b.lines = append(b.lines, line)
	content := strings.Join(b.lines, "\n")
	b.Clear()
	return content, true
}

// Clear drops any buffered lines
func (b *MultiLineBuffer) Clear() {
	b.lines = nil
}

// IsActive reports whether continuation lines are pending
func (b *MultiLineBuffer) IsActive() bool {
	return len(b.lines) > 0
}

// LineCount returns the number of buffered lines
func (b *MultiLineBuffer) LineCount() int {
	return len(b.lines)
}
