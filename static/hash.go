package static

import (
	"crypto/sha1"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for HASH160/RIPEMD160 folding
)

// Ripemd160Sum folds OP_RIPEMD160 for a statically known input. The
// teacher's go.mod already pulls in golang.org/x/crypto; the standard
// library has no RIPEMD-160 implementation.
func Ripemd160Sum(data []byte) [20]byte {
	h := ripemd160.New()
	h.Write(data)
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Sha1Sum folds OP_SHA1.
func Sha1Sum(data []byte) [20]byte {
	return sha1.Sum(data)
}

// Hash160Sum folds OP_HASH160 = RIPEMD160(SHA256(x)).
func Hash160Sum(data []byte) [20]byte {
	sh := Sha256Sum(data)
	return Ripemd160Sum(sh[:])
}

// Hash256Sum folds OP_HASH256 = SHA256(SHA256(x)), via btcd's chainhash
// package rather than a second hand-rolled sha256.Sum256 call.
func Hash256Sum(data []byte) [32]byte {
	return chainhash.DoubleHashH(data)
}
