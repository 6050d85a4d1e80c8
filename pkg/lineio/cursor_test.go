package lineio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func collect(c *Cursor) []string {
	var lines []string
	for {
		line, ok := c.Next()
		if !ok {
			return lines
		}
		lines = append(lines, string(line))
	}
}

func TestCursorNext(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"empty", "", nil},
		{"single no newline", "v 1 2 3", []string{"v 1 2 3"}},
		{"unix", "a\nb\n", []string{"a", "b"}},
		{"dos", "a\r\nb\r\n", []string{"a", "b"}},
		{"blank lines kept", "a\n\nb", []string{"a", "", "b"}},
		{"mixed", "a\r\nb\nc", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(NewCursor([]byte(tt.data)))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCursorPeekAndReset(t *testing.T) {
	c := NewCursor([]byte("first\nsecond\n"))

	peeked, ok := c.Peek()
	if !ok || string(peeked) != "first" {
		t.Fatalf("Peek() = %q, %v; want \"first\", true", peeked, ok)
	}
	if c.Line() != 0 {
		t.Errorf("Peek advanced line counter to %d", c.Line())
	}

	c.Next()
	line, _ := c.Next()
	if string(line) != "second" || c.Line() != 2 {
		t.Errorf("got %q at line %d, want \"second\" at line 2", line, c.Line())
	}
	if _, ok := c.Peek(); ok {
		t.Error("Peek at end of buffer should report !ok")
	}

	c.Reset()
	if got := collect(c); len(got) != 2 {
		t.Errorf("after Reset got %d lines, want 2", len(got))
	}
}

func TestReadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "cube.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	data, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "v 0 0 0\n" {
		t.Errorf("ReadFile() = %q", data)
	}

	_, err = ReadFile(filepath.Join(tmpDir, "missing.obj"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
