// Package secp256k1 implements the finite-field and group arithmetic for the
// secp256k1 curve (y² = x³ + 7 over GF(p)) needed by the re-encryption
// correctness verifier. Points are kept in Jacobian projective coordinates so
// that the hot paths never compute a modular inverse; comparisons are done by
// cross-multiplying with the z-factors.
package secp256k1

import (
	"math/big"

	"golang.org/x/xerrors"
)

var (
	// P is the field prime, 2^256 - 2^32 - 977.
	P *big.Int
	// N is the order of the curve group.
	N *big.Int
	// B is the constant term of the curve equation.
	B *big.Int
	// Gx, Gy are the affine coordinates of the group generator.
	Gx *big.Int
	Gy *big.Int
	// Lambda is the eigenvalue of the curve endomorphism, mod N.
	Lambda *big.Int
	// Beta is the cube root of unity implementing the endomorphism on the
	// x-coordinate, mod P.
	Beta *big.Int

	three *big.Int
	eight *big.Int
	// sqrtExp is (P+1)/4, the exponent for modular square roots.
	sqrtExp *big.Int
)

// ErrInvalidPoint is returned when a coordinate pair is not a valid affine
// point: a coordinate at or above the field prime, or a pair that does not
// satisfy the curve equation.
var ErrInvalidPoint = xerrors.New("invalid curve point")

func init() {
	P, _ = new(big.Int).SetString(
		"fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f", 16)
	N, _ = new(big.Int).SetString(
		"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	B = big.NewInt(7)
	Gx, _ = new(big.Int).SetString(
		"79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", 16)
	Gy, _ = new(big.Int).SetString(
		"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8", 16)
	Lambda, _ = new(big.Int).SetString(
		"5363ad4cc05c30e0a5261c028812645a122e22ea20816678df02967c1b23bd72", 16)
	Beta, _ = new(big.Int).SetString(
		"7ae96a2b657c07106e64479eac3434e99cf0497512f58995c1396c28719501ee", 16)

	three = big.NewInt(3)
	eight = big.NewInt(8)
	sqrtExp = new(big.Int).Add(P, big.NewInt(1))
	sqrtExp.Rsh(sqrtExp, 2)
}

// IsOnCurve returns true if (x, y) satisfies y² = x³ + 7 mod P. Coordinates
// at or above the field prime are rejected outright, never reduced.
func IsOnCurve(x, y *big.Int) bool {
	if x.Sign() < 0 || y.Sign() < 0 || x.Cmp(P) >= 0 || y.Cmp(P) >= 0 {
		return false
	}
	lhs := new(big.Int).Mul(y, y)
	lhs.Mod(lhs, P)
	rhs := rhsCurveEq(x)
	return lhs.Cmp(rhs) == 0
}

// rhsCurveEq computes x³ + 7 mod P.
func rhsCurveEq(x *big.Int) *big.Int {
	rhs := new(big.Int).Mul(x, x)
	rhs.Mod(rhs, P)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, B)
	rhs.Mod(rhs, P)
	return rhs
}

// Sign bytes of a compressed point, one per parity of y.
const (
	SignEven = 0x02
	SignOdd  = 0x03
)

// CheckCompressedPoint returns true if (x, y) is on the curve and the parity
// of y matches the compressed sign byte.
func CheckCompressedPoint(sign byte, x, y *big.Int) bool {
	if sign != SignEven && sign != SignOdd {
		return false
	}
	if !IsOnCurve(x, y) {
		return false
	}
	odd := y.Bit(0) == 1
	return odd == (sign == SignOdd)
}

// DecompressY recovers the y-coordinate of the curve point with the given x
// and parity. Since P ≡ 3 mod 4 the square root, when it exists, is a single
// exponentiation.
func DecompressY(x *big.Int, odd bool) (*big.Int, error) {
	if x.Sign() < 0 || x.Cmp(P) >= 0 {
		return nil, ErrInvalidPoint
	}
	rhs := rhsCurveEq(x)
	y := new(big.Int).Exp(rhs, sqrtExp, P)
	check := new(big.Int).Mul(y, y)
	check.Mod(check, P)
	if check.Cmp(rhs) != 0 {
		return nil, xerrors.Errorf("x has no point on the curve: %w", ErrInvalidPoint)
	}
	if (y.Bit(0) == 1) != odd {
		y.Sub(P, y)
	}
	return y, nil
}

// JacobianPoint is a point in Jacobian projective coordinates: the affine
// point is (X/Z², Y/Z³), and Z == 0 encodes the point at infinity.
type JacobianPoint struct {
	X, Y, Z *big.Int
}

// NewJacobian lifts a valid affine point to Jacobian coordinates.
func NewJacobian(x, y *big.Int) (*JacobianPoint, error) {
	if !IsOnCurve(x, y) {
		return nil, ErrInvalidPoint
	}
	return &JacobianPoint{
		X: new(big.Int).Set(x),
		Y: new(big.Int).Set(y),
		Z: big.NewInt(1),
	}, nil
}

// Infinity returns the point at infinity.
func Infinity() *JacobianPoint {
	return &JacobianPoint{
		X: big.NewInt(1),
		Y: big.NewInt(1),
		Z: big.NewInt(0),
	}
}

// IsInfinity returns true for the point at infinity.
func (p *JacobianPoint) IsInfinity() bool {
	return p.Z.Sign() == 0
}

// Clone returns an independent copy of p.
func (p *JacobianPoint) Clone() *JacobianPoint {
	return &JacobianPoint{
		X: new(big.Int).Set(p.X),
		Y: new(big.Int).Set(p.Y),
		Z: new(big.Int).Set(p.Z),
	}
}

// Neg returns -p.
func (p *JacobianPoint) Neg() *JacobianPoint {
	if p.IsInfinity() {
		return Infinity()
	}
	return &JacobianPoint{
		X: new(big.Int).Set(p.X),
		Y: new(big.Int).Sub(P, p.Y),
		Z: new(big.Int).Set(p.Z),
	}
}

// Affine converts p to affine coordinates. Calling it on the point at
// infinity is a caller error; the verifier never does.
func (p *JacobianPoint) Affine() (x, y *big.Int) {
	if p.IsInfinity() {
		return new(big.Int), new(big.Int)
	}
	zInv := new(big.Int).ModInverse(p.Z, P)
	zInv2 := new(big.Int).Mul(zInv, zInv)
	zInv2.Mod(zInv2, P)
	x = new(big.Int).Mul(p.X, zInv2)
	x.Mod(x, P)
	zInv3 := zInv2.Mul(zInv2, zInv)
	zInv3.Mod(zInv3, P)
	y = new(big.Int).Mul(p.Y, zInv3)
	y.Mod(y, P)
	return x, y
}

// doubleMut sets p to 2p in place. The in-place form exists so the
// multi-scalar accumulator loop does not allocate a point per step; it is
// observably equivalent to Double.
func (p *JacobianPoint) doubleMut() {
	if p.IsInfinity() {
		return
	}
	if p.Y.Sign() == 0 {
		// Not reachable on this curve (no points with y == 0), kept for
		// formula completeness.
		p.Z.SetInt64(0)
		return
	}
	// dbl-2009-l formulas, a = 0.
	a := new(big.Int).Mul(p.X, p.X)
	a.Mod(a, P)
	b := new(big.Int).Mul(p.Y, p.Y)
	b.Mod(b, P)
	c := new(big.Int).Mul(b, b)
	c.Mod(c, P)

	d := new(big.Int).Add(p.X, b)
	d.Mul(d, d)
	d.Sub(d, a)
	d.Sub(d, c)
	d.Mul(d, big.NewInt(2))
	d.Mod(d, P)

	e := new(big.Int).Mul(a, three)
	e.Mod(e, P)
	f := new(big.Int).Mul(e, e)
	f.Mod(f, P)

	x3 := new(big.Int).Sub(f, new(big.Int).Mul(d, big.NewInt(2)))
	x3.Mod(x3, P)
	y3 := new(big.Int).Sub(d, x3)
	y3.Mul(y3, e)
	y3.Sub(y3, new(big.Int).Mul(c, eight))
	y3.Mod(y3, P)
	z3 := new(big.Int).Mul(p.Y, p.Z)
	z3.Mul(z3, big.NewInt(2))
	z3.Mod(z3, P)

	p.X, p.Y, p.Z = x3, y3, z3
}

// addMut sets p to p+q in place. Equal points, detected by cross-multiplied
// coordinates so no inversion is needed, dispatch to doubleMut; opposite
// points collapse to infinity.
func (p *JacobianPoint) addMut(q *JacobianPoint) {
	if q.IsInfinity() {
		return
	}
	if p.IsInfinity() {
		p.X.Set(q.X)
		p.Y.Set(q.Y)
		p.Z.Set(q.Z)
		return
	}

	z1z1 := new(big.Int).Mul(p.Z, p.Z)
	z1z1.Mod(z1z1, P)
	z2z2 := new(big.Int).Mul(q.Z, q.Z)
	z2z2.Mod(z2z2, P)

	u1 := new(big.Int).Mul(p.X, z2z2)
	u1.Mod(u1, P)
	u2 := new(big.Int).Mul(q.X, z1z1)
	u2.Mod(u2, P)

	s1 := new(big.Int).Mul(p.Y, z2z2)
	s1.Mul(s1, q.Z)
	s1.Mod(s1, P)
	s2 := new(big.Int).Mul(q.Y, z1z1)
	s2.Mul(s2, p.Z)
	s2.Mod(s2, P)

	if u1.Cmp(u2) == 0 {
		if s1.Cmp(s2) != 0 {
			p.Z.SetInt64(0)
			return
		}
		p.doubleMut()
		return
	}

	// add-2007-bl formulas.
	h := new(big.Int).Sub(u2, u1)
	h.Mod(h, P)
	i := new(big.Int).Mul(h, big.NewInt(2))
	i.Mul(i, i)
	i.Mod(i, P)
	j := new(big.Int).Mul(h, i)
	j.Mod(j, P)
	r := new(big.Int).Sub(s2, s1)
	r.Mul(r, big.NewInt(2))
	r.Mod(r, P)
	v := new(big.Int).Mul(u1, i)
	v.Mod(v, P)

	x3 := new(big.Int).Mul(r, r)
	x3.Sub(x3, j)
	x3.Sub(x3, new(big.Int).Mul(v, big.NewInt(2)))
	x3.Mod(x3, P)

	y3 := new(big.Int).Sub(v, x3)
	y3.Mul(y3, r)
	s1j := new(big.Int).Mul(s1, j)
	s1j.Mul(s1j, big.NewInt(2))
	y3.Sub(y3, s1j)
	y3.Mod(y3, P)

	z3 := new(big.Int).Mul(p.Z, q.Z)
	z3.Mul(z3, h)
	z3.Mul(z3, big.NewInt(2))
	z3.Mod(z3, P)

	p.X, p.Y, p.Z = x3, y3, z3
}

// Add returns p+q without modifying either argument.
func Add(p, q *JacobianPoint) *JacobianPoint {
	r := p.Clone()
	r.addMut(q)
	return r
}

// Double returns 2p.
func Double(p *JacobianPoint) *JacobianPoint {
	r := p.Clone()
	r.doubleMut()
	return r
}

// Sub returns p-q.
func Sub(p, q *JacobianPoint) *JacobianPoint {
	return Add(p, q.Neg())
}

// EqualJacobian compares two Jacobian points by cross-multiplying with the
// respective z² and z³ factors. Two infinities are equal, a single infinity
// never equals a finite point.
func EqualJacobian(p, q *JacobianPoint) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	z1z1 := new(big.Int).Mul(p.Z, p.Z)
	z1z1.Mod(z1z1, P)
	z2z2 := new(big.Int).Mul(q.Z, q.Z)
	z2z2.Mod(z2z2, P)

	l := new(big.Int).Mul(p.X, z2z2)
	l.Mod(l, P)
	r := new(big.Int).Mul(q.X, z1z1)
	r.Mod(r, P)
	if l.Cmp(r) != 0 {
		return false
	}

	l.Mul(p.Y, z2z2)
	l.Mul(l, q.Z)
	l.Mod(l, P)
	r.Mul(q.Y, z1z1)
	r.Mul(r, p.Z)
	r.Mod(r, P)
	return l.Cmp(r) == 0
}

// EqualAffineJacobian compares an affine point against a Jacobian one,
// again without inverting anything.
func EqualAffineJacobian(x, y *big.Int, q *JacobianPoint) bool {
	if q.IsInfinity() {
		return false
	}
	zz := new(big.Int).Mul(q.Z, q.Z)
	zz.Mod(zz, P)
	l := new(big.Int).Mul(x, zz)
	l.Mod(l, P)
	if l.Cmp(q.X) != 0 {
		return false
	}
	l.Mul(y, zz)
	l.Mul(l, q.Z)
	l.Mod(l, P)
	return l.Cmp(q.Y) == 0
}

// ScalarMult computes k·(x, y) with a plain MSB-first double-and-add. The
// base must be a valid affine point.
func ScalarMult(x, y, k *big.Int) (*JacobianPoint, error) {
	base, err := NewJacobian(x, y)
	if err != nil {
		return nil, err
	}
	r := Infinity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		r.doubleMut()
		if k.Bit(i) == 1 {
			r.addMut(base)
		}
	}
	return r, nil
}

// VerifyScalarMult confirms that (resX, resY) == k·(baseX, baseY). The
// product is computed directly and compared by cross-multiplication; a base
// or result that is not a valid affine point yields false.
func VerifyScalarMult(baseX, baseY, k, resX, resY *big.Int) bool {
	if !IsOnCurve(resX, resY) {
		return false
	}
	prod, err := ScalarMult(baseX, baseY, k)
	if err != nil {
		return false
	}
	return EqualAffineJacobian(resX, resY, prod)
}
