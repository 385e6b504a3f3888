package static

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScriptNumRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, 128, -128, 255, 256, 32767, -32767,
		8388607, -8388607, 1<<38 - 1, -(1<<38 - 1), 1<<38 + 12345}
	for _, v := range values {
		enc := ScriptNumEncode(v)
		require.LessOrEqual(t, len(enc), 9)
		dec, err := ScriptNumDecode(enc, false, 9)
		require.NoError(t, err)
		require.Equal(t, v, dec, "round trip for %d", v)
		if v != 0 {
			require.True(t, IsMinimallyEncoded(enc))
		}
	}
}

func TestScriptNumDecodeRejectsOverlongInput(t *testing.T) {
	_, err := ScriptNumDecode([]byte{1, 2, 3, 4, 5}, false, MaxScriptNumSize)
	require.Error(t, err)
}

func TestScriptNumDecodeMinimalPolicy(t *testing.T) {
	// 0x00 0x00 is not minimal: could be represented in fewer bytes.
	_, err := ScriptNumDecode([]byte{0x00, 0x00}, true, 4)
	require.Error(t, err)

	// 0x80 0x00 is minimal: without the zero top byte, 0x80's high bit
	// would be read as the sign bit of a shorter encoding.
	v, err := ScriptNumDecode([]byte{0x80, 0x00}, true, 4)
	require.NoError(t, err)
	require.Equal(t, int64(128), v)
}

func TestLE32RoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 2147483647, -2147483648} {
		enc := LE32EncodeSigned(v)
		dec, err := LE32DecodeSigned(enc)
		require.NoError(t, err)
		require.Equal(t, v, dec)
	}
}

func TestLE64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 9223372036854775807, -9223372036854775808} {
		enc := LE64EncodeSigned(v)
		dec, err := LE64DecodeSigned(enc)
		require.NoError(t, err)
		require.Equal(t, v, dec)
	}
}

func TestScriptNumLE64Conversions(t *testing.T) {
	le := ScriptNumToLE64(1)
	back, err := LE64ToScriptNum(le, 4)
	require.NoError(t, err)
	require.Equal(t, int64(1), back)

	// 2^31 as an LE64 doesn't fit in a 4-byte scriptnum, whose magnitude
	// must stay below 2^31.
	overflowed := LE64EncodeSigned(ScriptNumBound(4))
	_, err = LE64ToScriptNum(overflowed, 4)
	require.Error(t, err)
}
