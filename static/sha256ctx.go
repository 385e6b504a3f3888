package static

import (
	"encoding/binary"
	"fmt"
)

// Sha256InitialState is the FIPS 180-4 initial hash value (h0..h7).
var Sha256InitialState = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

var sha256K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

func rotr(x uint32, n uint) uint32 { return (x >> n) | (x << (32 - n)) }

// sha256Block runs one FIPS 180-4 compression round over a single 64-byte
// block, updating state in place. This is the primitive the streaming
// context model (SHA256INITIALIZE/UPDATE/FINALIZE) folds forward whenever
// the running context is statically known, and the primitive used by
// Sha256Sum for plain OP_SHA256 folding.
func sha256Block(state *[8]uint32, block []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < 64; i++ {
		s0 := rotr(w[i-15], 7) ^ rotr(w[i-15], 18) ^ (w[i-15] >> 3)
		s1 := rotr(w[i-2], 17) ^ rotr(w[i-2], 19) ^ (w[i-2] >> 10)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, d, e, f, g, h := state[0], state[1], state[2], state[3], state[4], state[5], state[6], state[7]
	for i := 0; i < 64; i++ {
		s1 := rotr(e, 6) ^ rotr(e, 11) ^ rotr(e, 25)
		ch := (e & f) ^ (^e & g)
		temp1 := h + s1 + ch + sha256K[i] + w[i]
		s0 := rotr(a, 2) ^ rotr(a, 13) ^ rotr(a, 22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		temp2 := s0 + maj

		h, g, f, e = g, f, e, d+temp1
		d, c, b, a = c, b, a, temp1+temp2
	}

	state[0] += a
	state[1] += b
	state[2] += c
	state[3] += d
	state[4] += e
	state[5] += f
	state[6] += g
	state[7] += h
}

// Sha256Sum computes a plain SHA-256 digest, used to fold OP_SHA256 (and as
// the first half of HASH256/HASH160) when the input is static.
func Sha256Sum(data []byte) [32]byte {
	state := Sha256InitialState
	padded := sha256Pad(data)
	for i := 0; i < len(padded); i += 64 {
		sha256Block(&state, padded[i:i+64])
	}
	var out [32]byte
	for i, s := range state {
		binary.BigEndian.PutUint32(out[i*4:], s)
	}
	return out
}

func sha256Pad(data []byte) []byte {
	bitLen := uint64(len(data)) * 8
	padded := append([]byte{}, data...)
	padded = append(padded, 0x80)
	for len(padded)%64 != 56 {
		padded = append(padded, 0x00)
	}
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], bitLen)
	return append(padded, lenBuf[:]...)
}

// Sha256Context is the streaming-context model from spec.md 4.B: 32 bytes of
// midstate, 8 bytes of little-endian bit-count, and up to 63 bytes of tail
// buffer not yet folded into a full block.
type Sha256Context struct {
	Midstate [8]uint32
	BitCount uint64
	Tail     []byte // < 64 bytes
}

// NewSha256Context returns the context for an empty stream.
func NewSha256Context() Sha256Context {
	return Sha256Context{Midstate: Sha256InitialState}
}

// EncodeBytes serializes the context to the wire representation used by
// SHA256INITIALIZE/UPDATE/FINALIZE: 32-byte midstate || 8-byte LE bit count
// || tail. Total length is in [40, 103].
func (c Sha256Context) EncodeBytes() []byte {
	out := make([]byte, 0, 40+len(c.Tail))
	for _, s := range c.Midstate {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], s)
		out = append(out, b[:]...)
	}
	out = append(out, LE64EncodeUnsigned(c.BitCount)...)
	out = append(out, c.Tail...)
	return out
}

// DecodeSha256Context parses the wire representation, validating the
// length bounds and the bit-count/tail-length relationship from spec.md:
// ctx_len == 40 + (bits/8 mod 64); bits & 7 == 0; bits < 64 => midstate ==
// initial.
func DecodeSha256Context(b []byte) (Sha256Context, error) {
	if len(b) < 40 {
		return Sha256Context{}, fmt.Errorf("sha256_context_too_short: %d bytes", len(b))
	}
	if len(b) > 103 {
		return Sha256Context{}, fmt.Errorf("sha256_context_too_long: %d bytes", len(b))
	}

	var c Sha256Context
	for i := 0; i < 8; i++ {
		c.Midstate[i] = binary.BigEndian.Uint32(b[i*4:])
	}
	bitCount, err := LE64DecodeUnsigned(b[32:40])
	if err != nil {
		return Sha256Context{}, err
	}
	c.BitCount = bitCount
	c.Tail = append([]byte{}, b[40:]...)

	if c.BitCount&7 != 0 {
		return Sha256Context{}, fmt.Errorf("invalid_sha256_context: bit count not byte-aligned")
	}
	wantLen := 40 + int((c.BitCount/8)%64)
	if len(b) != wantLen {
		return Sha256Context{}, fmt.Errorf("invalid_sha256_context: length %d does not match bit count %d", len(b), c.BitCount)
	}
	if c.BitCount < 64 && c.Midstate != Sha256InitialState {
		return Sha256Context{}, fmt.Errorf("invalid_sha256_context: non-initial midstate with bit count %d", c.BitCount)
	}
	return c, nil
}

// Update folds data into the context, running the compression function for
// every full 64-byte block formed from Tail+data, and is the concrete
// semantics OP_SHA256UPDATE imitates when the base context is static.
func (c Sha256Context) Update(data []byte) Sha256Context {
	buf := append(append([]byte{}, c.Tail...), data...)
	state := c.Midstate
	i := 0
	for ; i+64 <= len(buf); i += 64 {
		sha256Block(&state, buf[i:i+64])
	}
	return Sha256Context{
		Midstate: state,
		BitCount: c.BitCount + uint64(len(data))*8,
		Tail:     append([]byte{}, buf[i:]...),
	}
}

// Finalize applies the standard SHA-256 padding to the running context and
// returns the final digest, the concrete semantics of OP_SHA256FINALIZE.
func (c Sha256Context) Finalize() [32]byte {
	state := c.Midstate
	totalBits := c.BitCount

	padded := append([]byte{}, c.Tail...)
	padded = append(padded, 0x80)
	for (len(padded))%64 != 56 {
		padded = append(padded, 0x00)
	}
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], totalBits)
	padded = append(padded, lenBuf[:]...)

	for i := 0; i < len(padded); i += 64 {
		sha256Block(&state, padded[i:i+64])
	}

	var out [32]byte
	for i, s := range state {
		binary.BigEndian.PutUint32(out[i*4:], s)
	}
	return out
}
