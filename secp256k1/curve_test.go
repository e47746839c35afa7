package secp256k1

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// affinePoint is a plain affine-coordinate reference implementation used to
// cross-check the Jacobian formulas. nil means the point at infinity.
type affinePoint struct {
	x, y *big.Int
}

func affineAdd(p, q *affinePoint) *affinePoint {
	if p == nil {
		return q
	}
	if q == nil {
		return p
	}
	if p.x.Cmp(q.x) == 0 {
		if p.y.Cmp(q.y) != 0 {
			return nil
		}
		// Doubling: s = 3x² / 2y.
		num := new(big.Int).Mul(p.x, p.x)
		num.Mul(num, big.NewInt(3))
		num.Mod(num, P)
		den := new(big.Int).Mul(p.y, big.NewInt(2))
		den.ModInverse(den.Mod(den, P), P)
		return affineChord(p, p, num.Mul(num, den))
	}
	num := new(big.Int).Sub(q.y, p.y)
	den := new(big.Int).Sub(q.x, p.x)
	den.ModInverse(den.Mod(den, P), P)
	return affineChord(p, q, num.Mul(num, den))
}

func affineChord(p, q *affinePoint, s *big.Int) *affinePoint {
	s.Mod(s, P)
	x := new(big.Int).Mul(s, s)
	x.Sub(x, p.x)
	x.Sub(x, q.x)
	x.Mod(x, P)
	y := new(big.Int).Sub(p.x, x)
	y.Mul(y, s)
	y.Sub(y, p.y)
	y.Mod(y, P)
	return &affinePoint{x, y}
}

func randomScalar(t *testing.T) *big.Int {
	k, err := rand.Int(rand.Reader, N)
	require.NoError(t, err)
	return k
}

func randomPoint(t *testing.T) (*big.Int, *big.Int) {
	k := randomScalar(t)
	if k.Sign() == 0 {
		k.SetInt64(1)
	}
	p, err := ScalarMult(Gx, Gy, k)
	require.NoError(t, err)
	x, y := p.Affine()
	return x, y
}

func TestIsOnCurve(t *testing.T) {
	require.True(t, IsOnCurve(Gx, Gy))
	require.False(t, IsOnCurve(big.NewInt(1), big.NewInt(1)))

	// Coordinates at or above the prime are rejected, not reduced.
	require.False(t, IsOnCurve(P, Gy))
	require.False(t, IsOnCurve(Gx, P))
	xP := new(big.Int).Add(Gx, P)
	require.False(t, IsOnCurve(xP, Gy))
}

func TestCheckCompressedPoint(t *testing.T) {
	for i := 0; i < 20; i++ {
		x, y := randomPoint(t)
		sign := byte(SignEven)
		wrong := byte(SignOdd)
		if y.Bit(0) == 1 {
			sign, wrong = wrong, sign
		}
		require.True(t, CheckCompressedPoint(sign, x, y))
		require.False(t, CheckCompressedPoint(wrong, x, y))
		require.False(t, CheckCompressedPoint(0x04, x, y))
	}

	// The equivalence with IsOnCurve ∧ parity must hold on the x boundary
	// values as well.
	for _, x := range []*big.Int{big.NewInt(0), new(big.Int).Sub(P, big.NewInt(1))} {
		for _, y := range []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(2), new(big.Int).Sub(P, big.NewInt(1))} {
			for _, sign := range []byte{SignEven, SignOdd} {
				parityOK := (y.Bit(0) == 1) == (sign == SignOdd)
				require.Equal(t, IsOnCurve(x, y) && parityOK,
					CheckCompressedPoint(sign, x, y))
			}
		}
	}
}

func TestDecompressY(t *testing.T) {
	for i := 0; i < 20; i++ {
		x, y := randomPoint(t)
		got, err := DecompressY(x, y.Bit(0) == 1)
		require.NoError(t, err)
		require.Zero(t, got.Cmp(y))

		other, err := DecompressY(x, y.Bit(0) == 0)
		require.NoError(t, err)
		sum := new(big.Int).Add(got, other)
		require.Zero(t, sum.Cmp(P))
	}

	_, err := DecompressY(P, true)
	require.Error(t, err)
}

// TestScalarMultSmall validates the whole Jacobian pipeline against repeated
// affine additions for the first multiples of the generator.
func TestScalarMultSmall(t *testing.T) {
	ref := &affinePoint{Gx, Gy}
	for k := int64(1); k <= 20; k++ {
		p, err := ScalarMult(Gx, Gy, big.NewInt(k))
		require.NoError(t, err)
		x, y := p.Affine()
		require.Zero(t, x.Cmp(ref.x), "k=%d", k)
		require.Zero(t, y.Cmp(ref.y), "k=%d", k)
		require.True(t, IsOnCurve(x, y))
		ref = affineAdd(ref, &affinePoint{Gx, Gy})
	}
}

func TestAddJacobianRandom(t *testing.T) {
	for i := 0; i < 100; i++ {
		ax, ay := randomPoint(t)
		bx, by := randomPoint(t)
		p, err := NewJacobian(ax, ay)
		require.NoError(t, err)
		q, err := NewJacobian(bx, by)
		require.NoError(t, err)

		sum := Add(p, q)
		ref := affineAdd(&affinePoint{ax, ay}, &affinePoint{bx, by})
		if ref == nil {
			require.True(t, sum.IsInfinity())
			continue
		}
		require.True(t, EqualAffineJacobian(ref.x, ref.y, sum))
	}
}

func TestAddJacobianEdgeCases(t *testing.T) {
	x, y := randomPoint(t)
	p, err := NewJacobian(x, y)
	require.NoError(t, err)

	// P + P dispatches to doubling.
	ref := affineAdd(&affinePoint{x, y}, &affinePoint{x, y})
	require.True(t, EqualAffineJacobian(ref.x, ref.y, Add(p, p)))
	require.True(t, EqualJacobian(Add(p, p), Double(p)))

	// Same affine point under a different z must still be detected as equal.
	scaled := scaleZ(p, big.NewInt(5))
	require.True(t, EqualJacobian(p, scaled))
	require.True(t, EqualJacobian(Add(p, scaled), Double(p)))

	// P + (-P) is the point at infinity.
	require.True(t, Add(p, p.Neg()).IsInfinity())
	require.True(t, Sub(p, p).IsInfinity())

	// Infinity is the identity.
	require.True(t, EqualJacobian(p, Add(p, Infinity())))
	require.True(t, EqualJacobian(p, Add(Infinity(), p)))
	require.True(t, Add(Infinity(), Infinity()).IsInfinity())
	require.True(t, Double(Infinity()).IsInfinity())
}

// scaleZ rescales the projective representation without moving the point.
func scaleZ(p *JacobianPoint, c *big.Int) *JacobianPoint {
	c2 := new(big.Int).Mul(c, c)
	c2.Mod(c2, P)
	c3 := new(big.Int).Mul(c2, c)
	c3.Mod(c3, P)
	return &JacobianPoint{
		X: new(big.Int).Mod(new(big.Int).Mul(p.X, c2), P),
		Y: new(big.Int).Mod(new(big.Int).Mul(p.Y, c3), P),
		Z: new(big.Int).Mod(new(big.Int).Mul(p.Z, c), P),
	}
}

func TestPointsEqual(t *testing.T) {
	x, y := randomPoint(t)
	p, err := NewJacobian(x, y)
	require.NoError(t, err)

	require.True(t, EqualJacobian(Infinity(), Infinity()))
	require.False(t, EqualJacobian(p, Infinity()))
	require.False(t, EqualJacobian(Infinity(), p))
	require.False(t, EqualAffineJacobian(x, y, Infinity()))
	require.False(t, EqualJacobian(p, p.Neg()))
	require.True(t, EqualAffineJacobian(x, y, scaleZ(p, big.NewInt(12345))))
}

func TestMutatingVariantsEquivalence(t *testing.T) {
	ax, ay := randomPoint(t)
	bx, by := randomPoint(t)
	p, err := NewJacobian(ax, ay)
	require.NoError(t, err)
	q, err := NewJacobian(bx, by)
	require.NoError(t, err)

	sum := Add(p, q)
	mut := p.Clone()
	mut.addMut(q)
	require.True(t, EqualJacobian(sum, mut))

	dbl := Double(p)
	mut = p.Clone()
	mut.doubleMut()
	require.True(t, EqualJacobian(dbl, mut))

	// The non-mutating forms must not have touched their arguments.
	require.True(t, EqualAffineJacobian(ax, ay, p))
	require.True(t, EqualAffineJacobian(bx, by, q))
}

func TestVerifyScalarMult(t *testing.T) {
	for i := 0; i < 10; i++ {
		x, y := randomPoint(t)
		k := randomScalar(t)
		prod, err := ScalarMult(x, y, k)
		require.NoError(t, err)
		px, py := prod.Affine()

		require.True(t, VerifyScalarMult(x, y, k, px, py))

		// A nudged result must fail.
		bad := new(big.Int).Add(px, big.NewInt(1))
		require.False(t, VerifyScalarMult(x, y, k, bad, py))
	}

	x, y := randomPoint(t)
	require.False(t, VerifyScalarMult(P, y, big.NewInt(3), x, y))
	require.False(t, VerifyScalarMult(x, y, big.NewInt(3), P, y))
	// k == 0 yields the point at infinity, never an affine result.
	require.False(t, VerifyScalarMult(x, y, big.NewInt(0), x, y))
}

func TestNewJacobianRejectsInvalid(t *testing.T) {
	_, err := NewJacobian(big.NewInt(1), big.NewInt(1))
	require.Error(t, err)
	_, err = NewJacobian(P, Gy)
	require.Error(t, err)
}
