// Package umbral verifies the correctness proofs attached to re-encrypted
// capsule fragments of an Umbral-style threshold proxy re-encryption scheme.
// Everything here is a pure function over caller-supplied bytes: decoding,
// challenge recomputation and the three zero-knowledge point relations. No
// state survives a call, so any number of verifications may run concurrently.
package umbral

import (
	"math/big"

	"github.com/calyptra/umbral/secp256k1"
)

// Sizes of the fixed wire-format fields, in bytes.
const (
	PointLength     = 33
	ScalarLength    = 32
	SignatureLength = 64
	AddressLength   = 20

	CapsuleLength        = 2*PointLength + ScalarLength
	ProofMinLength       = 4*PointLength + ScalarLength + SignatureLength
	CapsuleFragMinLength = 3*PointLength + ScalarLength + ProofMinLength
)

// Point is a compressed secp256k1 point: a parity sign byte followed by the
// 32-byte big-endian x-coordinate.
type Point struct {
	Sign byte
	X    []byte
}

// Compress returns the canonical 33-byte encoding.
func (p Point) Compress() []byte {
	out := make([]byte, 0, PointLength)
	out = append(out, p.Sign)
	return append(out, p.X...)
}

// BigX returns the x-coordinate as a big integer.
func (p Point) BigX() *big.Int {
	return new(big.Int).SetBytes(p.X)
}

// check validates the point against its helper-supplied y-coordinate: the
// coordinates must be below the field prime and on the curve, and the parity
// of y must match the sign byte.
func (p Point) check(y *big.Int) error {
	x := p.BigX()
	if !secp256k1.IsOnCurve(x, y) {
		return erret(ErrInvalidPoint)
	}
	if !secp256k1.CheckCompressedPoint(p.Sign, x, y) {
		return erret(ErrBadCompressedSign)
	}
	return nil
}

// Capsule is the key-encapsulation object of the original encryption: two
// curve points and the Schnorr signature scalar binding them.
type Capsule struct {
	E   Point
	V   Point
	Sig []byte
}

// Encode returns the 98-byte wire encoding.
func (c *Capsule) Encode() []byte {
	out := make([]byte, 0, CapsuleLength)
	out = append(out, c.E.Compress()...)
	out = append(out, c.V.Compress()...)
	return append(out, c.Sig...)
}

// CorrectnessProof is the non-interactive zero-knowledge proof attached to a
// capsule fragment. U1 is the key-fragment commitment, U2 its proof-of-
// knowledge point, Z the challenge response, Signature the committer's
// signature over the validity message, and Metadata free-form bytes bound
// into the challenge.
type CorrectnessProof struct {
	E2        Point
	V2        Point
	U1        Point
	U2        Point
	Z         []byte
	Signature []byte
	Metadata  []byte
}

// Encode returns the wire encoding: the fixed prefix followed by the
// metadata tail.
func (p *CorrectnessProof) Encode() []byte {
	out := make([]byte, 0, ProofMinLength+len(p.Metadata))
	out = append(out, p.E2.Compress()...)
	out = append(out, p.V2.Compress()...)
	out = append(out, p.U1.Compress()...)
	out = append(out, p.U2.Compress()...)
	out = append(out, p.Z...)
	out = append(out, p.Signature...)
	return append(out, p.Metadata...)
}

// CapsuleFrag is one proxy's partial re-encryption of a capsule together
// with its correctness proof.
type CapsuleFrag struct {
	E1        Point
	V1        Point
	ID        []byte
	Precursor Point
	Proof     CorrectnessProof
}

// Encode returns the wire encoding.
func (f *CapsuleFrag) Encode() []byte {
	out := make([]byte, 0, CapsuleFragMinLength+len(f.Proof.Metadata))
	out = append(out, f.E1.Compress()...)
	out = append(out, f.V1.Compress()...)
	out = append(out, f.ID...)
	out = append(out, f.Precursor.Compress()...)
	return append(out, f.Proof.Encode()...)
}

// PrecomputedHelpers carries the auxiliary values a verification call needs
// beyond the capsule and fragment: the y-coordinates completing every
// compressed point, the six scalar-multiplication products of the proof
// relations, the asserted committer and the hash of the signed validity
// message. The blob travels as a go.dedis.ch/protobuf encoding; every value
// in it is re-verified against the curve before use, nothing is trusted.
type PrecomputedHelpers struct {
	EY  []byte
	VY  []byte
	E1Y []byte
	V1Y []byte
	E2Y []byte
	V2Y []byte
	U1Y []byte
	U2Y []byte

	// z·E, z·V, z·U in affine coordinates.
	ZEX []byte
	ZEY []byte
	ZVX []byte
	ZVY []byte
	ZUX []byte
	ZUY []byte

	// h·E1, h·V1, h·U1 in affine coordinates.
	HE1X []byte
	HE1Y []byte
	HV1X []byte
	HV1Y []byte
	HU1X []byte
	HU1Y []byte

	// Committer is the asserted 20-byte address of the key-fragment issuer.
	Committer []byte
	// RecoveryID is the signature-recovery discriminant, 0/1 or 27/28.
	RecoveryID uint32
	// ValidityHash is the 32-byte hash of the signed validity message.
	ValidityHash []byte
}
