package static

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ProbeTweakAdd folds OP_TWEAKVERIFY-style tweaking for statically known
// inputs: internalPub + tweak*G == outputPub, x-only (32-byte) convention.
// It is the "secp256k1 probe" static helper of spec.md 4/§2 row H: invoked
// only when all three byte-strings are concretely known, never to verify a
// live signature.
func ProbeTweakAdd(internalX, tweak, outputX []byte) (bool, error) {
	if len(internalX) != 32 {
		return false, fmt.Errorf("invalid_arguments: internal key must be 32 bytes, got %d", len(internalX))
	}
	if len(tweak) != 32 {
		return false, fmt.Errorf("invalid_arguments: tweak must be 32 bytes, got %d", len(tweak))
	}
	if len(outputX) != 32 {
		return false, fmt.Errorf("invalid_arguments: output key must be 32 bytes, got %d", len(outputX))
	}

	internalPub, err := btcec.ParsePubKey(append([]byte{0x02}, internalX...))
	if err != nil {
		return false, fmt.Errorf("invalid_pubkey: %w", err)
	}

	var tweakScalar btcec.ModNScalar
	overflow := tweakScalar.SetByteSlice(tweak)
	if overflow {
		return false, fmt.Errorf("invalid_arguments: tweak out of range")
	}

	var tweakPoint, internalPoint, resultPoint btcec.JacobianPoint
	internalPub.AsJacobian(&internalPoint)
	btcec.ScalarBaseMultNonConst(&tweakScalar, &tweakPoint)
	btcec.AddNonConst(&internalPoint, &tweakPoint, &resultPoint)
	resultPoint.ToAffine()

	computed := btcec.NewPublicKey(&resultPoint.X, &resultPoint.Y)
	computedX := computed.SerializeCompressed()[1:]

	if len(computedX) != 32 {
		return false, nil
	}
	for i := range computedX {
		if computedX[i] != outputX[i] {
			return false, nil
		}
	}
	return true, nil
}

// ProbeECMulScalarVerify folds OP_ECMULSCALARVERIFY for statically known
// inputs: point*scalar == result, all as 33-byte compressed points except
// the scalar (32 bytes).
func ProbeECMulScalarVerify(point, scalar, result []byte) (bool, error) {
	if len(point) != 33 {
		return false, fmt.Errorf("invalid_pubkey_length: point must be 33 bytes, got %d", len(point))
	}
	if len(result) != 33 {
		return false, fmt.Errorf("invalid_pubkey_length: result must be 33 bytes, got %d", len(result))
	}
	if len(scalar) != 32 {
		return false, fmt.Errorf("invalid_arguments: scalar must be 32 bytes, got %d", len(scalar))
	}

	pub, err := btcec.ParsePubKey(point)
	if err != nil {
		return false, fmt.Errorf("invalid_pubkey: %w", err)
	}
	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(scalar); overflow {
		return false, fmt.Errorf("invalid_arguments: scalar out of range")
	}

	var p, r btcec.JacobianPoint
	pub.AsJacobian(&p)
	btcec.ScalarMultNonConst(&s, &p, &r)
	r.ToAffine()
	computed := btcec.NewPublicKey(&r.X, &r.Y)

	want, err := btcec.ParsePubKey(result)
	if err != nil {
		return false, fmt.Errorf("invalid_pubkey: %w", err)
	}

	return computed.IsEqual(want), nil
}
