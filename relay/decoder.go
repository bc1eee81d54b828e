package relay

import "unicode/utf8"

// Decoder incrementally decodes a UTF-8 byte stream that arrives in
// arbitrary chunks. A multi-byte character split across a chunk boundary is
// held back until its remaining bytes arrive, so no character is ever
// corrupted by chunking.
type Decoder struct {
	pending []byte
}

// Decode consumes the next chunk and returns the longest decodable prefix of
// the buffered bytes. The remainder, at most one partial rune, is kept for
// the next call.
func (d *Decoder) Decode(chunk []byte) string {
	d.pending = append(d.pending, chunk...)
	cut := completePrefixLen(d.pending)
	out := string(d.pending[:cut])
	rest := d.pending[cut:]
	d.pending = append(d.pending[:0], rest...)
	return out
}

// Flush drains whatever is buffered, including a trailing partial rune if
// the stream ended mid-character.
func (d *Decoder) Flush() string {
	out := string(d.pending)
	d.pending = d.pending[:0]
	return out
}

// completePrefixLen returns the length of the longest prefix of b that does
// not end in an incomplete multi-byte sequence.
func completePrefixLen(b []byte) int {
	n := len(b)
	for i := n - 1; i >= 0 && i >= n-utf8.UTFMax; i-- {
		c := b[i]
		if c < utf8.RuneSelf {
			return n // trailing byte is ASCII, nothing is pending
		}
		if c&0xC0 != 0x80 { // not a continuation byte, so a rune starts here
			size := runeLen(c)
			if size < 0 || i+size <= n {
				return n // complete, or invalid and best passed through
			}
			return i // rune is still short of bytes
		}
	}
	return n
}

func runeLen(start byte) int {
	switch {
	case start&0xE0 == 0xC0:
		return 2
	case start&0xF0 == 0xE0:
		return 3
	case start&0xF8 == 0xF0:
		return 4
	default:
		return -1
	}
}
