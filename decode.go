package umbral

import (
	"go.dedis.ch/protobuf"
	"golang.org/x/xerrors"
)

// decoder walks a byte blob by cursor advancement. Every take checks the
// remaining length first; there is no partial or best-effort decoding.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.off
}

func (d *decoder) take(n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, erret(ErrLengthMismatch)
	}
	out := d.buf[d.off : d.off+n]
	d.off += n
	return out, nil
}

func (d *decoder) point() (Point, error) {
	b, err := d.take(PointLength)
	if err != nil {
		return Point{}, err
	}
	return Point{Sign: b[0], X: dup(b[1:])}, nil
}

func (d *decoder) scalar() ([]byte, error) {
	b, err := d.take(ScalarLength)
	if err != nil {
		return nil, err
	}
	return dup(b), nil
}

// tail consumes everything left.
func (d *decoder) tail() []byte {
	out := dup(d.buf[d.off:])
	d.off = len(d.buf)
	return out
}

func dup(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// DecodeCapsule parses the 98-byte capsule encoding. Anything but the exact
// length is a hard error.
func DecodeCapsule(buf []byte) (*Capsule, error) {
	if len(buf) != CapsuleLength {
		return nil, xerrors.Errorf("capsule is %d bytes, want %d: %w",
			len(buf), CapsuleLength, ErrLengthMismatch)
	}
	d := &decoder{buf: buf}
	var c Capsule
	var err error
	if c.E, err = d.point(); err != nil {
		return nil, err
	}
	if c.V, err = d.point(); err != nil {
		return nil, err
	}
	if c.Sig, err = d.scalar(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DecodeCorrectnessProof parses a proof blob. Bytes beyond the fixed prefix
// are the metadata tail, which may be empty.
func DecodeCorrectnessProof(buf []byte) (*CorrectnessProof, error) {
	if len(buf) < ProofMinLength {
		return nil, xerrors.Errorf("proof is %d bytes, want at least %d: %w",
			len(buf), ProofMinLength, ErrLengthMismatch)
	}
	d := &decoder{buf: buf}
	var p CorrectnessProof
	var err error
	for _, pt := range []*Point{&p.E2, &p.V2, &p.U1, &p.U2} {
		if *pt, err = d.point(); err != nil {
			return nil, err
		}
	}
	if p.Z, err = d.scalar(); err != nil {
		return nil, err
	}
	var sig []byte
	if sig, err = d.take(SignatureLength); err != nil {
		return nil, err
	}
	p.Signature = dup(sig)
	p.Metadata = d.tail()
	return &p, nil
}

// DecodeCapsuleFrag parses a capsule fragment blob; the embedded proof's
// metadata is whatever exceeds the fixed prefix.
func DecodeCapsuleFrag(buf []byte) (*CapsuleFrag, error) {
	if len(buf) < CapsuleFragMinLength {
		return nil, xerrors.Errorf("capsule fragment is %d bytes, want at least %d: %w",
			len(buf), CapsuleFragMinLength, ErrLengthMismatch)
	}
	d := &decoder{buf: buf}
	var f CapsuleFrag
	var err error
	if f.E1, err = d.point(); err != nil {
		return nil, err
	}
	if f.V1, err = d.point(); err != nil {
		return nil, err
	}
	if f.ID, err = d.scalar(); err != nil {
		return nil, err
	}
	if f.Precursor, err = d.point(); err != nil {
		return nil, err
	}
	proof, err := DecodeCorrectnessProof(d.tail())
	if err != nil {
		return nil, err
	}
	f.Proof = *proof
	return &f, nil
}

// DecodeHelpers parses the protobuf-encoded helper blob and enforces the
// width of every fixed-size field.
func DecodeHelpers(buf []byte) (*PrecomputedHelpers, error) {
	var h PrecomputedHelpers
	if err := protobuf.Decode(buf, &h); err != nil {
		return nil, xerrors.Errorf("decoding helpers: %v", err)
	}

	coords := [][]byte{
		h.EY, h.VY, h.E1Y, h.V1Y, h.E2Y, h.V2Y, h.U1Y, h.U2Y,
		h.ZEX, h.ZEY, h.ZVX, h.ZVY, h.ZUX, h.ZUY,
		h.HE1X, h.HE1Y, h.HV1X, h.HV1Y, h.HU1X, h.HU1Y,
	}
	for _, c := range coords {
		if len(c) != ScalarLength {
			return nil, xerrors.Errorf("helper coordinate is %d bytes, want %d: %w",
				len(c), ScalarLength, ErrLengthMismatch)
		}
	}
	if len(h.Committer) != AddressLength {
		return nil, xerrors.Errorf("committer is %d bytes, want %d: %w",
			len(h.Committer), AddressLength, ErrLengthMismatch)
	}
	if len(h.ValidityHash) != ScalarLength {
		return nil, xerrors.Errorf("validity hash is %d bytes, want %d: %w",
			len(h.ValidityHash), ScalarLength, ErrLengthMismatch)
	}
	if h.RecoveryID > 0xff {
		return nil, xerrors.Errorf("recovery id %d out of range", h.RecoveryID)
	}
	return &h, nil
}
