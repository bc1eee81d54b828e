package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoderPlainASCIIChunks(t *testing.T) {
	var d Decoder
	out := d.Decode([]byte("hello")) + d.Decode([]byte(" wor")) + d.Decode([]byte("ld"))
	assert.Equal(t, "hello world", out)
	assert.Empty(t, d.Flush())
}

func TestDecoderMultibyteSplitAcrossChunks(t *testing.T) {
	text := "héllo wörld" // 'é' and 'ö' are two bytes each
	raw := []byte(text)

	// Split in the middle of 'ö' (byte index of 'ö' is 8 in raw form).
	var d Decoder
	out := d.Decode(raw[:9]) + d.Decode(raw[9:])
	assert.Equal(t, text, out)
}

func TestDecoderEveryChunkBoundary(t *testing.T) {
	text := "data: {\"title\":\"契約 überprüft ✓\"}\n\n"
	raw := []byte(text)

	for cut := 0; cut <= len(raw); cut++ {
		var d Decoder
		out := d.Decode(raw[:cut]) + d.Decode(raw[cut:]) + d.Flush()
		require.Equal(t, text, out, "split at byte %d", cut)
	}
}

func TestDecoderSingleByteChunks(t *testing.T) {
	text := "ношение 🛰 compliance"
	var d Decoder
	var out string
	for _, b := range []byte(text) {
		out += d.Decode([]byte{b})
	}
	out += d.Flush()
	assert.Equal(t, text, out)
}

func TestDecoderFlushEmitsTrailingPartialRune(t *testing.T) {
	var d Decoder
	out := d.Decode([]byte{0xC3}) // first byte of a two-byte rune
	assert.Empty(t, out)
	assert.NotEmpty(t, d.Flush())
	assert.Empty(t, d.Flush())
}

func TestDecoderInvalidBytesPassThrough(t *testing.T) {
	// Invalid UTF-8 is not the decoder's problem to fix; it must not stall.
	var d Decoder
	out := d.Decode([]byte{0xFF, 'a'}) + d.Flush()
	assert.Contains(t, out, "a")
}
