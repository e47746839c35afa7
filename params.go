package umbral

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/calyptra/umbral/secp256k1"
)

// The protocol-wide second generator U. It is fixed for every conforming
// deployment: derived once, at init, by hashing a fixed label to the curve
// with a counter, taking the first x below the field prime that has a point,
// and the even-parity y for it. No runtime input ever influences it.
var (
	paramU  Point
	paramUY *big.Int
)

// paramULabel seeds the derivation of U.
const paramULabel = "UmbralParameters/u"

func init() {
	var ctr [4]byte
	for i := uint32(0); ; i++ {
		binary.BigEndian.PutUint32(ctr[:], i)
		digest := crypto.Keccak256([]byte(paramULabel), ctr[:])
		x := new(big.Int).SetBytes(digest)
		if x.Cmp(secp256k1.P) >= 0 {
			continue
		}
		y, err := secp256k1.DecompressY(x, false)
		if err != nil {
			continue
		}
		paramU = Point{Sign: secp256k1.SignEven, X: pad32(x)}
		paramUY = y
		return
	}
}

// ParamU returns the system parameter U in compressed form together with
// its fixed y-coordinate.
func ParamU() (Point, *big.Int) {
	return Point{Sign: paramU.Sign, X: dup(paramU.X)}, new(big.Int).Set(paramUY)
}

// pad32 encodes v as exactly 32 big-endian bytes.
func pad32(v *big.Int) []byte {
	out := make([]byte, 32)
	v.FillBytes(out)
	return out
}
