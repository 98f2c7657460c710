package crypto

import (
	"crypto/sha256"
	"strconv"
	"strings"
)

// Stream is a deterministic counter-mode SHA-256 byte stream keyed by a seed.
// Block i is SHA256("prng-" + i + "-" + key) where key is the seed rendered
// as a bytes literal (see byteLiteral), which is what existing Warthog
// wallets were derived with. Reads continue where the previous one stopped;
// a Stream cannot be rewound.
type Stream struct {
	key     string
	counter uint64
	buf     []byte
}

// NewStream returns a stream keyed by seed.
func NewStream(seed []byte) *Stream {
	return &Stream{key: byteLiteral(seed)}
}

// Read fills p from the stream. It never fails.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.buf) == 0 {
			s.next()
		}
		c := copy(p[n:], s.buf)
		s.buf = s.buf[c:]
		n += c
	}
	return n, nil
}

// Next returns the next n bytes of the stream.
func (s *Stream) Next(n int) []byte {
	b := make([]byte, n)
	_, _ = s.Read(b)
	return b
}

func (s *Stream) next() {
	block := sha256.Sum256([]byte("prng-" + strconv.FormatUint(s.counter, 10) + "-" + s.key))
	s.counter++
	s.buf = block[:]
}

// byteLiteral renders b as b'...' with Python's escapes for control bytes,
// bytes >= 0x7f and the backslash. Unlike Python's repr, quotes are never
// escaped: a body containing ' is wrapped in double quotes even if it also
// holds ".
func byteLiteral(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b)*4 + 3)
	for _, c := range b {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c < ' ' || c >= 0x7f:
			sb.WriteString(`\x`)
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0x0f])
		default:
			sb.WriteByte(c)
		}
	}

	body := sb.String()
	if strings.IndexByte(body, '\'') >= 0 {
		return `b"` + body + `"`
	}
	return "b'" + body + "'"
}

const hexDigits = "0123456789abcdef"
