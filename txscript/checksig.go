package txscript

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/dgpv/bsst-go/symval"
)

// halfOrder is secp256k1's group order halved, the same derivation the
// teacher's engine.go uses for its own low-S check.
var halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)

// CHECKSIG family (spec.md 4.B "CHECKSIG family"): the actual signature
// check is declared as an uninterpreted function (checksig(sig, pub,
// hashtype) -> {0,1}) since verifying a real ECDSA/schnorr signature
// against a symbolic message hash is outside what a script-level symbolic
// tracer reasons about; shape/encoding constraints on sig and pub are
// enforced concretely, matching the teacher's checkSignatureEncoding /
// checkPubKeyEncoding style split between "cheap shape checks" and "real
// crypto, deferred".

func (c *ExecContext) pubkeyShapeCompound(pub *symval.SymValue) *symval.SymValue {
	return c.newCompound("PUBKEY_SHAPE", "PUBKEY_SHAPE", []*symval.SymValue{pub}, func(args [][]byte) ([]byte, error) {
		b := args[0]
		switch c.Env.Options.SigVersion {
		case SigVersionTapscript:
			if len(b) == 32 {
				return []byte{1}, nil
			}
			return nil, nil
		default:
			if len(b) == 33 && (b[0] == 2 || b[0] == 3) {
				return []byte{1}, nil
			}
			if len(b) == 65 && b[0] == 4 {
				return []byte{1}, nil
			}
			if !c.Env.Options.StrictEnc && (len(b) == 33 || len(b) == 65) {
				return []byte{1}, nil
			}
			return nil, nil
		}
	})
}

func (c *ExecContext) sigEncodingOkCompound(sig *symval.SymValue) *symval.SymValue {
	return c.newCompound("SIG_ENCODING_OK", "SIG_ENCODING_OK", []*symval.SymValue{sig}, func(args [][]byte) ([]byte, error) {
		b := args[0]
		if c.Env.Options.SigVersion == SigVersionTapscript {
			if len(b) == 0 || len(b) == 64 || len(b) == 65 {
				if len(b) == 65 && b[64] == 1 {
					return nil, nil
				}
				return []byte{1}, nil
			}
			return nil, nil
		}
		if len(b) == 0 {
			return []byte{1}, nil
		}
		if !isDERSignature(b) {
			return nil, nil
		}
		if c.Env.Options.LowS && !isLowS(b) {
			return nil, nil
		}
		return []byte{1}, nil
	})
}

// isDERSignature checks a subset of the DER signature shape on the body
// left after the trailing sighash byte: a body length of 9..72, the 0x30
// sequence tag, the total-length byte, the R integer tag and the position
// of the S integer tag. S's length and the integer padding rules are not
// checked.
func isDERSignature(sig []byte) bool {
	hashType := sig[len(sig)-1]
	body := sig[:len(sig)-1]
	if len(body) < 9 || len(body) > 72 {
		return false
	}
	if body[0] != 0x30 {
		return false
	}
	if int(body[1]) != len(body)-2 {
		return false
	}
	if body[2] != 0x02 {
		return false
	}
	rLen := int(body[3])
	if 4+rLen >= len(body) {
		return false
	}
	if body[4+rLen] != 0x02 {
		return false
	}
	_ = hashType
	return true
}

func isLowS(sig []byte) bool {
	if len(sig) < 9 {
		return false
	}
	body := sig[:len(sig)-1]
	rLen := int(body[3])
	if 6+rLen > len(body) {
		return false
	}
	sLen := int(body[5+rLen])
	if 6+rLen+sLen > len(body) {
		return false
	}
	sBytes := body[6+rLen : 6+rLen+sLen]
	sValue := new(big.Int).SetBytes(sBytes)
	return sValue.Cmp(halfOrder) <= 0
}

func (c *ExecContext) hashtypeOkCompound(sig *symval.SymValue) *symval.SymValue {
	return c.newCompound("HASHTYPE_OK", "HASHTYPE_OK", []*symval.SymValue{sig}, func(args [][]byte) ([]byte, error) {
		b := args[0]
		if len(b) == 0 {
			return []byte{1}, nil
		}
		ht := b[len(b)-1] &^ 0x80
		if ht >= 1 && ht <= 3 {
			return []byte{1}, nil
		}
		return nil, nil
	})
}

// checksigResult declares the uninterpreted checksig relation and pushes
// its result; sig/pub shape and NULLFAIL are asserted here.
func (c *ExecContext) checksigResult(sig, pub *symval.SymValue) *symval.SymValue {
	c.Assert(c.pubkeyShapeCompound(pub), symval.FailInvalidPubkey)
	c.Assert(c.sigEncodingOkCompound(sig), symval.FailInvalidSignatureEncoding)
	c.Assert(c.hashtypeOkCompound(sig), symval.FailSignatureBadHashtype)

	result := c.newCompound("CHECKSIG", "CHECKSIG", []*symval.SymValue{sig, pub}, nil)

	if c.Env.Options.NullFail {
		sigEmpty := c.newCompound("SIG_EMPTY", "SIG_EMPTY", []*symval.SymValue{sig}, func(args [][]byte) ([]byte, error) {
			if len(args[0]) == 0 {
				return []byte{1}, nil
			}
			return nil, nil
		})
		nullfail := c.equalCompound(sigEmpty, c.notCompound(result))
		c.Assert(nullfail, symval.FailSignatureNullfail)
	}
	return result
}

func opChecksig(c *ExecContext) error {
	pub, err := c.PopStack()
	if err != nil {
		return err
	}
	sig, err := c.PopStack()
	if err != nil {
		return err
	}
	return c.Push(c.checksigResult(sig, pub))
}

func opChecksigverify(c *ExecContext) error {
	if err := opChecksig(c); err != nil {
		return err
	}
	return verifyTop(c, symval.FailChecksigverify)
}
