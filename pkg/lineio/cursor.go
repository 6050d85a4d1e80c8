// Package lineio loads whole text files and walks them one line at a time.
package lineio

import (
	"bytes"
	"fmt"
	"os"
)

// ReadFile reads a whole file into memory.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Cursor walks a buffer line by line. Lines are split on '\n' and a
// trailing '\r' is dropped, so both Unix and DOS files read the same.
// The returned slices alias the buffer.
type Cursor struct {
	data []byte
	pos  int
	line int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Next returns the next line and advances the cursor.
// ok is false once the buffer is exhausted.
func (c *Cursor) Next() (line []byte, ok bool) {
	if c.pos >= len(c.data) {
		return nil, false
	}

	rest := c.data[c.pos:]
	end := bytes.IndexByte(rest, '\n')
	if end < 0 {
		line = rest
		c.pos = len(c.data)
	} else {
		line = rest[:end]
		c.pos += end + 1
	}
	c.line++

	return bytes.TrimSuffix(line, []byte{'\r'}), true
}

// Peek returns the line Next would return without advancing.
func (c *Cursor) Peek() (line []byte, ok bool) {
	saved := *c
	line, ok = c.Next()
	*c = saved
	return line, ok
}

// Line returns the 1-based number of the line last returned by Next.
func (c *Cursor) Line() int {
	return c.line
}

// Reset rewinds the cursor to the start of the buffer.
func (c *Cursor) Reset() {
	c.pos = 0
	c.line = 0
}
