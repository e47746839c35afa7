package umbral

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/protobuf"
	"golang.org/x/xerrors"

	"github.com/calyptra/umbral/secp256k1"
)

func randomScalarBytes(t *testing.T) []byte {
	k, err := rand.Int(rand.Reader, secp256k1.N)
	require.NoError(t, err)
	return pad32(k)
}

func randomCompressed(t *testing.T) Point {
	p, _ := randomPointY(t)
	return p
}

// randomPointY returns a random compressed point and its y-coordinate.
func randomPointY(t *testing.T) (Point, *big.Int) {
	k, err := rand.Int(rand.Reader, secp256k1.N)
	require.NoError(t, err)
	if k.Sign() == 0 {
		k.SetInt64(1)
	}
	j, err := secp256k1.ScalarMult(secp256k1.Gx, secp256k1.Gy, k)
	require.NoError(t, err)
	x, y := j.Affine()
	sign := byte(secp256k1.SignEven)
	if y.Bit(0) == 1 {
		sign = secp256k1.SignOdd
	}
	return Point{Sign: sign, X: pad32(x)}, y
}

func sampleProof(t *testing.T, metadata []byte) *CorrectnessProof {
	sig := make([]byte, SignatureLength)
	_, err := rand.Read(sig)
	require.NoError(t, err)
	return &CorrectnessProof{
		E2:        randomCompressed(t),
		V2:        randomCompressed(t),
		U1:        randomCompressed(t),
		U2:        randomCompressed(t),
		Z:         randomScalarBytes(t),
		Signature: sig,
		Metadata:  metadata,
	}
}

func TestDecodeCapsule(t *testing.T) {
	c := &Capsule{
		E:   randomCompressed(t),
		V:   randomCompressed(t),
		Sig: randomScalarBytes(t),
	}
	buf := c.Encode()
	require.Len(t, buf, CapsuleLength)

	got, err := DecodeCapsule(buf)
	require.NoError(t, err)
	require.Equal(t, c, got)

	_, err = DecodeCapsule(buf[:CapsuleLength-1])
	require.True(t, xerrors.Is(err, ErrLengthMismatch))
	_, err = DecodeCapsule(append(buf, 0))
	require.True(t, xerrors.Is(err, ErrLengthMismatch))
	_, err = DecodeCapsule(nil)
	require.True(t, xerrors.Is(err, ErrLengthMismatch))
}

func TestDecodeCorrectnessProof(t *testing.T) {
	for _, metadata := range [][]byte{{}, []byte("reencryption context")} {
		p := sampleProof(t, metadata)
		buf := p.Encode()
		require.Len(t, buf, ProofMinLength+len(metadata))

		got, err := DecodeCorrectnessProof(buf)
		require.NoError(t, err)
		require.Equal(t, p.E2, got.E2)
		require.Equal(t, p.Z, got.Z)
		require.Equal(t, p.Signature, got.Signature)
		require.Equal(t, []byte(metadata), got.Metadata)
	}

	p := sampleProof(t, nil)
	_, err := DecodeCorrectnessProof(p.Encode()[:ProofMinLength-1])
	require.True(t, xerrors.Is(err, ErrLengthMismatch))
}

func TestDecodeCapsuleFrag(t *testing.T) {
	frag := &CapsuleFrag{
		E1:        randomCompressed(t),
		V1:        randomCompressed(t),
		ID:        randomScalarBytes(t),
		Precursor: randomCompressed(t),
		Proof:     *sampleProof(t, []byte{0xde, 0xad}),
	}
	buf := frag.Encode()
	require.Len(t, buf, CapsuleFragMinLength+2)

	got, err := DecodeCapsuleFrag(buf)
	require.NoError(t, err)
	require.Equal(t, frag, got)

	_, err = DecodeCapsuleFrag(buf[:CapsuleFragMinLength-1])
	require.True(t, xerrors.Is(err, ErrLengthMismatch))
}

func TestDecodeHelpers(t *testing.T) {
	coord := func() []byte { return randomScalarBytes(t) }
	h := &PrecomputedHelpers{
		EY: coord(), VY: coord(), E1Y: coord(), V1Y: coord(),
		E2Y: coord(), V2Y: coord(), U1Y: coord(), U2Y: coord(),
		ZEX: coord(), ZEY: coord(), ZVX: coord(), ZVY: coord(),
		ZUX: coord(), ZUY: coord(),
		HE1X: coord(), HE1Y: coord(), HV1X: coord(), HV1Y: coord(),
		HU1X: coord(), HU1Y: coord(),
		Committer:    make([]byte, AddressLength),
		RecoveryID:   27,
		ValidityHash: coord(),
	}
	buf, err := protobuf.Encode(h)
	require.NoError(t, err)

	got, err := DecodeHelpers(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)

	// A truncated coordinate must be rejected, not padded.
	bad := *h
	bad.ZUY = bad.ZUY[:31]
	buf, err = protobuf.Encode(&bad)
	require.NoError(t, err)
	_, err = DecodeHelpers(buf)
	require.True(t, xerrors.Is(err, ErrLengthMismatch))

	bad = *h
	bad.Committer = make([]byte, AddressLength-1)
	buf, err = protobuf.Encode(&bad)
	require.NoError(t, err)
	_, err = DecodeHelpers(buf)
	require.True(t, xerrors.Is(err, ErrLengthMismatch))
}
