package umbral

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"

	"github.com/calyptra/umbral/secp256k1"
)

// BuildHelpers computes an honest PrecomputedHelpers structure for a capsule
// and fragment: the y-coordinate of every compressed point and the six
// products of the proof relations, under the challenge the verifier will
// recompute. Cooperating producers use it to assemble the helper blob; the
// verifier re-checks all of it regardless.
func BuildHelpers(capsule *Capsule, frag *CapsuleFrag, committer common.Address,
	validityHash []byte, recoveryID byte) (*PrecomputedHelpers, error) {

	if len(validityHash) != ScalarLength {
		return nil, xerrors.Errorf("validity hash is %d bytes, want %d: %w",
			len(validityHash), ScalarLength, ErrLengthMismatch)
	}

	ys := make([][]byte, 8)
	points := []Point{
		capsule.E, capsule.V, frag.E1, frag.V1,
		frag.Proof.E2, frag.Proof.V2, frag.Proof.U1, frag.Proof.U2,
	}
	for i, p := range points {
		y, err := decompressPoint(p)
		if err != nil {
			return nil, err
		}
		ys[i] = pad32(y)
	}

	h := ChallengeScalar(challengeBytes(capsule, frag))
	z := new(big.Int).SetBytes(frag.Proof.Z)
	u, uY := ParamU()

	zE, err := product(capsule.E, new(big.Int).SetBytes(ys[0]), z)
	if err != nil {
		return nil, err
	}
	zV, err := product(capsule.V, new(big.Int).SetBytes(ys[1]), z)
	if err != nil {
		return nil, err
	}
	zU, err := product(u, uY, z)
	if err != nil {
		return nil, err
	}
	hE1, err := product(frag.E1, new(big.Int).SetBytes(ys[2]), h)
	if err != nil {
		return nil, err
	}
	hV1, err := product(frag.V1, new(big.Int).SetBytes(ys[3]), h)
	if err != nil {
		return nil, err
	}
	hU1, err := product(frag.Proof.U1, new(big.Int).SetBytes(ys[6]), h)
	if err != nil {
		return nil, err
	}

	return &PrecomputedHelpers{
		EY: ys[0], VY: ys[1], E1Y: ys[2], V1Y: ys[3],
		E2Y: ys[4], V2Y: ys[5], U1Y: ys[6], U2Y: ys[7],
		ZEX: zE[0], ZEY: zE[1],
		ZVX: zV[0], ZVY: zV[1],
		ZUX: zU[0], ZUY: zU[1],
		HE1X: hE1[0], HE1Y: hE1[1],
		HV1X: hV1[0], HV1Y: hV1[1],
		HU1X: hU1[0], HU1Y: hU1[1],
		Committer:    committer.Bytes(),
		RecoveryID:   uint32(recoveryID),
		ValidityHash: dup(validityHash),
	}, nil
}

// decompressPoint recovers the y-coordinate matching a compressed point.
func decompressPoint(p Point) (*big.Int, error) {
	switch p.Sign {
	case secp256k1.SignEven, secp256k1.SignOdd:
	default:
		return nil, erret(ErrBadCompressedSign)
	}
	y, err := secp256k1.DecompressY(p.BigX(), p.Sign == secp256k1.SignOdd)
	if err != nil {
		return nil, erret(err)
	}
	return y, nil
}

// product computes k·base and returns the affine coordinates as two 32-byte
// slices.
func product(base Point, baseY, k *big.Int) ([2][]byte, error) {
	prod, err := secp256k1.ScalarMult(base.BigX(), baseY, k)
	if err != nil {
		return [2][]byte{}, erret(err)
	}
	if prod.IsInfinity() {
		return [2][]byte{}, xerrors.Errorf("product is the point at infinity: %w",
			ErrInvalidPoint)
	}
	x, y := prod.Affine()
	return [2][]byte{pad32(x), pad32(y)}, nil
}
