// Package fields provides the small set of positional readers MID leaf
// codecs use to decode Open Protocol's fixed-width ASCII payloads: plain
// fields, Data Field / Resolution Field record groups, and Trace Sample
// arrays.
package fields

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrShortBuffer is returned (wrapped) whenever a read runs past the end
// of the payload.
var ErrShortBuffer = errors.New("fields: buffer too short")

// Cursor is a positional reader over a MID payload. It is not safe for
// concurrent use; a codec owns one per parse call.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor starting at position 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Seek repositions the cursor, used by readers that need to back out a
// partially-consumed record group.
func (c *Cursor) Seek(pos int) { c.pos = pos }

func (c *Cursor) take(width int) ([]byte, error) {
	if width < 0 || c.pos+width > len(c.buf) {
		return nil, ErrShortBuffer
	}
	b := c.buf[c.pos : c.pos+width]
	c.pos += width
	return b, nil
}

// ReadString reads width bytes and right-trims trailing ASCII spaces,
// Open Protocol's convention for left-justified string fields.
func (c *Cursor) ReadString(name string, width int) (string, error) {
	b, err := c.take(width)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimRight(string(b), " "), nil
}

// ReadRawString reads len(want) bytes and requires an exact match,
// for fixed literal markers embedded in a payload.
func (c *Cursor) ReadRawString(name, want string) (string, error) {
	b, err := c.take(len(want))
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	if string(b) != want {
		return "", fmt.Errorf("%s: expected %q, got %q", name, want, string(b))
	}
	return string(b), nil
}

// ReadNumber reads width ASCII digit bytes and parses them as an integer.
func (c *Cursor) ReadNumber(name string, width int) (int, error) {
	b, err := c.take(width)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// ReadBytes reads width raw bytes without interpretation.
func (c *Cursor) ReadBytes(name string, width int) ([]byte, error) {
	b, err := c.take(width)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// TestNul asserts that the next byte is 0x00 and advances past it.
func (c *Cursor) TestNul() error {
	b, err := c.take(1)
	if err != nil {
		return fmt.Errorf("nul terminator: %w", err)
	}
	if b[0] != 0x00 {
		return fmt.Errorf("nul terminator: expected 0x00, got 0x%02x", b[0])
	}
	return nil
}
