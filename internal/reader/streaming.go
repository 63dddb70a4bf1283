package reader

// streaming.go holds the io.Reader wrappers applied before CSV tokenizing.
//
// They run in constant memory:
//
//   - bomReader drops a leading UTF-8 byte order mark
//   - sanitizer replaces invalid UTF-8 bytes with '?'
//   - CountingReader records how many bytes were consumed

import (
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomReader skips a UTF-8 BOM at the start of the stream.
type bomReader struct {
	r       io.Reader
	checked bool
	head    []byte // bytes read while checking that were not a BOM
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: r}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		buf := make([]byte, len(utf8BOM))
		n, err := io.ReadFull(b.r, buf)
		switch err {
		case nil, io.EOF, io.ErrUnexpectedEOF:
		default:
			return 0, err
		}
		if n == len(utf8BOM) && bytes.Equal(buf, utf8BOM) {
			buf = buf[:0]
		}
		b.head = buf[:n]
		if n < len(utf8BOM) && len(b.head) == 0 {
			return 0, io.EOF
		}
	}

	if len(b.head) > 0 {
		n := copy(p, b.head)
		b.head = b.head[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// sanitizer replaces invalid UTF-8 bytes with '?'. A multi-byte rune split
// across reads is held back until the rest of it arrives.
type sanitizer struct {
	r       io.Reader
	buf     []byte
	out     []byte // cleaned bytes not yet handed out
	pending []byte // start of a rune cut off by the previous read
	err     error
}

func newSanitizer(r io.Reader) *sanitizer {
	return &sanitizer{
		r:       r,
		buf:     make([]byte, 4096),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.out) == 0 && s.err == nil {
		s.fill()
	}
	if len(s.out) == 0 {
		return 0, s.err
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func (s *sanitizer) fill() {
	offset := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(s.buf[offset:])
	n += offset
	s.err = err
	if n == 0 {
		return
	}
	data := s.buf[:n]
	if isASCII(data) {
		s.out = data
		return
	}
	s.out = data[:s.clean(data, err != nil)]
}

// clean rewrites data in place and returns the number of bytes to hand out.
// Unless final is set, an incomplete rune at the end is moved to pending.
func (s *sanitizer) clean(data []byte, final bool) int {
	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			if !final && !utf8.FullRune(data[read:]) {
				s.pending = append(s.pending, data[read:]...)
				return write
			}
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

func isASCII(data []byte) bool {
	for _, c := range data {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// CountingReader counts the bytes read through it.
type CountingReader struct {
	r io.Reader
	n int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (c *CountingReader) BytesRead() int64 {
	return c.n
}

// Normalize wraps r so that the CSV tokenizer sees valid UTF-8 without a BOM.
// The BOM is removed before sanitizing; otherwise its bytes would survive as
// a valid rune.
func Normalize(r io.Reader) io.Reader {
	return newSanitizer(newBOMReader(r))
}
