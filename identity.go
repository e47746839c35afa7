package umbral

import (
	"crypto/sha256"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/xerrors"

	"github.com/calyptra/umbral/secp256k1"
)

// HashAlgorithm selects one of the supported hash primitives.
type HashAlgorithm int

const (
	// Keccak256 is the Ethereum flavour of SHA-3.
	Keccak256 HashAlgorithm = iota
	// SHA256 is the FIPS 180-4 hash.
	SHA256
)

// personalPrefix is the header prepended to application messages before
// hashing, so a signed message can never collide with a raw transaction
// hash.
const personalPrefix = "\x19Ethereum Signed Message:\n"

// challengeTag is the 64-byte domain-separation tag of the challenge
// hash-to-scalar: the customization string padded with zeroes.
var challengeTag [64]byte

// deltaChallenge is 2^256 mod (N-1), used to fold the two challenge digests.
var (
	deltaChallenge *big.Int
	orderMinusOne  *big.Int
)

func init() {
	copy(challengeTag[:], "hash_to_curvebn")
	orderMinusOne = new(big.Int).Sub(secp256k1.N, big.NewInt(1))
	deltaChallenge = new(big.Int).Lsh(big.NewInt(1), 256)
	deltaChallenge.Mod(deltaChallenge, orderMinusOne)
}

// HashMessage hashes msg with the selected algorithm.
func HashMessage(msg []byte, algo HashAlgorithm) ([]byte, error) {
	switch algo {
	case Keccak256:
		return crypto.Keccak256(msg), nil
	case SHA256:
		sum := sha256.Sum256(msg)
		return sum[:], nil
	default:
		return nil, xerrors.Errorf("unknown hash algorithm %d", algo)
	}
}

// PersonalMessageHash hashes msg prefixed with the personal-message header
// and the decimal byte length of the message.
func PersonalMessageHash(msg []byte) []byte {
	prefix := []byte(personalPrefix + strconv.Itoa(len(msg)))
	return crypto.Keccak256(prefix, msg)
}

// normalizeRecoveryID maps a recovery discriminant, which may arrive as 0/1
// or in the 27/28 offset form, to the canonical 0/1. Anything else is
// rejected.
func normalizeRecoveryID(v byte) (byte, error) {
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return 0, xerrors.Errorf("recovery id %d out of range", v)
	}
	return v, nil
}

// AddressFromPublicKey derives the address of an uncompressed 65-byte
// public key: the low 160 bits of its keccak hash.
func AddressFromPublicKey(pub []byte) (common.Address, error) {
	if len(pub) != 65 || pub[0] != 0x04 {
		return common.Address{}, xerrors.New("need an uncompressed public key")
	}
	digest := crypto.Keccak256(pub[1:])
	return common.BytesToAddress(digest[12:]), nil
}

// RecoverAddress recovers the address that signed hash. The signature is
// r ∥ s ∥ v, 65 bytes, with v in either canonical or offset form.
func RecoverAddress(hash []byte, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength+1 {
		return common.Address{}, xerrors.Errorf("signature is %d bytes, want %d: %w",
			len(sig), SignatureLength+1, ErrLengthMismatch)
	}
	v, err := normalizeRecoveryID(sig[SignatureLength])
	if err != nil {
		return common.Address{}, err
	}
	canonical := make([]byte, SignatureLength+1)
	copy(canonical, sig[:SignatureLength])
	canonical[SignatureLength] = v

	pub, err := crypto.Ecrecover(hash, canonical)
	if err != nil {
		return common.Address{}, xerrors.Errorf("recovering public key: %v", err)
	}
	return AddressFromPublicKey(pub)
}

// ChallengeScalar maps arbitrary bytes to a scalar in [1, N-1], the
// Fiat-Shamir challenge of the correctness proof. The input is prefixed
// with the 64-byte domain tag, hashed twice under a one-byte discriminator,
// and the two digests are folded modulo N-1:
//
//	1 + (upper·(2^256 mod (N-1)) + lower) mod (N-1)
//
// The construction is deterministic and never yields zero or a value at or
// above the group order.
func ChallengeScalar(data []byte) *big.Int {
	tagged := make([]byte, 0, len(challengeTag)+len(data))
	tagged = append(tagged, challengeTag[:]...)
	tagged = append(tagged, data...)

	upper := new(big.Int).SetBytes(crypto.Keccak256([]byte{0x00}, tagged))
	lower := new(big.Int).SetBytes(crypto.Keccak256([]byte{0x01}, tagged))

	res := upper.Mul(upper, deltaChallenge)
	res.Add(res, lower)
	res.Mod(res, orderMinusOne)
	return res.Add(res, big.NewInt(1))
}
