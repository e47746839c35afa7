package umbral

import (
	"bytes"
	"math/big"

	"go.dedis.ch/onet/v3/log"

	"github.com/calyptra/umbral/secp256k1"
)

// Reason identifies which check settled a verdict.
type Reason int

const (
	// ReasonOK accompanies a VALID verdict.
	ReasonOK Reason = iota
	// ReasonBadSignature means the recovered committer does not match the
	// asserted one.
	ReasonBadSignature
	// ReasonRelationE, ReasonRelationV and ReasonRelationU name the relation
	// family whose equality failed.
	ReasonRelationE
	ReasonRelationV
	ReasonRelationU
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonBadSignature:
		return "committer signature mismatch"
	case ReasonRelationE:
		return "relation over E failed"
	case ReasonRelationV:
		return "relation over V failed"
	case ReasonRelationU:
		return "relation over U failed"
	default:
		return "unknown"
	}
}

// challengeBytes serializes the public proof elements in the fixed challenge
// order: E, E1, E2, V, V1, V2, U, U1, U2 compressed, then the metadata.
func challengeBytes(c *Capsule, f *CapsuleFrag) []byte {
	u, _ := ParamU()
	var buf bytes.Buffer
	for _, p := range []Point{
		c.E, f.E1, f.Proof.E2,
		c.V, f.V1, f.Proof.V2,
		u, f.Proof.U1, f.Proof.U2,
	} {
		buf.Write(p.Compress())
	}
	buf.Write(f.Proof.Metadata)
	return buf.Bytes()
}

// relation groups one family of the proof: the base point, the re-encrypted
// "1" point, the commitment "2" point and the helper-supplied products
// z·base and h·one.
type relation struct {
	reason Reason
	base   Point
	baseY  *big.Int
	zProdX []byte
	zProdY []byte
	one    Point
	oneY   []byte
	hProdX []byte
	hProdY []byte
	two    Point
	twoY   []byte
}

// VerifyCorrectnessProof checks that the capsule fragment was honestly
// re-encrypted from the capsule. It decodes the three blobs, authenticates
// the committer signature over the validity message, recomputes the
// Fiat-Shamir challenge and verifies the three point relations
// z·base == h·one + two. Malformed input is returned as an error; a proof
// that merely fails is a false verdict with the failing reason.
func VerifyCorrectnessProof(capsuleBuf, fragBuf, helperBuf []byte) (bool, Reason, error) {
	capsule, err := DecodeCapsule(capsuleBuf)
	if err != nil {
		return false, ReasonOK, err
	}
	frag, err := DecodeCapsuleFrag(fragBuf)
	if err != nil {
		return false, ReasonOK, err
	}
	helpers, err := DecodeHelpers(helperBuf)
	if err != nil {
		return false, ReasonOK, err
	}

	// A discriminant outside the canonical values is malformed input, not a
	// failing proof.
	v, err := normalizeRecoveryID(byte(helpers.RecoveryID))
	if err != nil {
		return false, ReasonOK, err
	}
	sig := make([]byte, SignatureLength+1)
	copy(sig, frag.Proof.Signature)
	sig[SignatureLength] = v

	addr, err := RecoverAddress(helpers.ValidityHash, sig)
	if err != nil || !bytes.Equal(addr.Bytes(), helpers.Committer) {
		log.Lvl3("committer signature rejected:", err)
		return false, ReasonBadSignature, nil
	}

	h := ChallengeScalar(challengeBytes(capsule, frag))
	z := new(big.Int).SetBytes(frag.Proof.Z)

	u, uY := ParamU()
	rels := []relation{
		{
			reason: ReasonRelationE,
			base:   capsule.E, baseY: new(big.Int).SetBytes(helpers.EY),
			zProdX: helpers.ZEX, zProdY: helpers.ZEY,
			one: frag.E1, oneY: helpers.E1Y,
			hProdX: helpers.HE1X, hProdY: helpers.HE1Y,
			two: frag.Proof.E2, twoY: helpers.E2Y,
		},
		{
			reason: ReasonRelationV,
			base:   capsule.V, baseY: new(big.Int).SetBytes(helpers.VY),
			zProdX: helpers.ZVX, zProdY: helpers.ZVY,
			one: frag.V1, oneY: helpers.V1Y,
			hProdX: helpers.HV1X, hProdY: helpers.HV1Y,
			two: frag.Proof.V2, twoY: helpers.V2Y,
		},
		{
			reason: ReasonRelationU,
			base:   u, baseY: uY,
			zProdX: helpers.ZUX, zProdY: helpers.ZUY,
			one: frag.Proof.U1, oneY: helpers.U1Y,
			hProdX: helpers.HU1X, hProdY: helpers.HU1Y,
			two: frag.Proof.U2, twoY: helpers.U2Y,
		},
	}

	for _, rel := range rels {
		ok, err := checkRelation(rel, z, h)
		if err != nil {
			return false, ReasonOK, err
		}
		if !ok {
			log.Lvl3("correctness proof rejected:", rel.reason)
			return false, rel.reason, nil
		}
	}
	return true, ReasonOK, nil
}

// checkRelation verifies one family. Point-form failures (off-curve
// coordinates, sign/parity contradictions) are errors; failing equalities
// settle the verdict.
func checkRelation(rel relation, z, h *big.Int) (bool, error) {
	if err := rel.base.check(rel.baseY); err != nil {
		return false, err
	}

	zProdX := new(big.Int).SetBytes(rel.zProdX)
	zProdY := new(big.Int).SetBytes(rel.zProdY)
	if !secp256k1.IsOnCurve(zProdX, zProdY) {
		return false, erret(ErrInvalidPoint)
	}
	if !secp256k1.VerifyScalarMult(rel.base.BigX(), rel.baseY, z, zProdX, zProdY) {
		return false, nil
	}

	oneY := new(big.Int).SetBytes(rel.oneY)
	if err := rel.one.check(oneY); err != nil {
		return false, err
	}
	hProdX := new(big.Int).SetBytes(rel.hProdX)
	hProdY := new(big.Int).SetBytes(rel.hProdY)
	if !secp256k1.IsOnCurve(hProdX, hProdY) {
		return false, erret(ErrInvalidPoint)
	}
	if !secp256k1.VerifyScalarMult(rel.one.BigX(), oneY, h, hProdX, hProdY) {
		return false, nil
	}

	twoY := new(big.Int).SetBytes(rel.twoY)
	if err := rel.two.check(twoY); err != nil {
		return false, err
	}

	// z·base == h·one + two, with the sum in Jacobian form and the left
	// side compared affine against it.
	hProd, err := secp256k1.NewJacobian(hProdX, hProdY)
	if err != nil {
		return false, erret(err)
	}
	two, err := secp256k1.NewJacobian(rel.two.BigX(), twoY)
	if err != nil {
		return false, erret(err)
	}
	sum := secp256k1.Add(hProd, two)
	return secp256k1.EqualAffineJacobian(zProdX, zProdY, sum), nil
}
