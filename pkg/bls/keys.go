package bls

import (
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"bridge-core/pkg/errno"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"golang.org/x/crypto/hkdf"
)

// SecretKey is a scalar in [1, r).
type SecretKey struct {
	s *big.Int
}

// KeyGen derives a secret key from seed material (at least 32 bytes) with the
// HKDF construction of the BLS signature draft (salt "BLS-SIG-KEYGEN-SALT-",
// rehashed until the key is non-zero).
func KeyGen(seed []byte) (SecretKey, error) {
	if err := ensureReady(); err != nil {
		return SecretKey{}, err
	}
	return keyGen(seed)
}

func keyGen(seed []byte) (SecretKey, error) {
	if len(seed) < 32 {
		return SecretKey{}, fmt.Errorf("%w: key seed must be at least 32 bytes", errno.ErrEncoding)
	}

	const l = 48
	salt := []byte("BLS-SIG-KEYGEN-SALT-")
	ikm := append(append([]byte{}, seed...), 0)
	info := []byte{0, l}
	for {
		sum := sha256.Sum256(salt)
		salt = sum[:]
		prk := hkdf.Extract(sha256.New, ikm, salt)
		okm := make([]byte, l)
		if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), okm); err != nil {
			return SecretKey{}, err
		}
		sk := new(big.Int).SetBytes(okm)
		sk.Mod(sk, order)
		if sk.Sign() != 0 {
			return SecretKey{s: sk}, nil
		}
	}
}

// SecretKeyFromBytes parses a 32-byte big-endian scalar.
func SecretKeyFromBytes(b []byte) (SecretKey, error) {
	if err := ensureReady(); err != nil {
		return SecretKey{}, err
	}
	if len(b) != SecretKeySize {
		return SecretKey{}, fmt.Errorf("%w: secret key must be %d bytes", errno.ErrEncoding, SecretKeySize)
	}
	s := new(big.Int).SetBytes(b)
	if s.Sign() == 0 || s.Cmp(order) >= 0 {
		return SecretKey{}, fmt.Errorf("%w: secret key out of range", errno.ErrEncoding)
	}
	return SecretKey{s: s}, nil
}

// Bytes returns the 32-byte big-endian scalar.
func (k SecretKey) Bytes() []byte {
	out := make([]byte, SecretKeySize)
	k.s.FillBytes(out)
	return out
}

// PublicKey returns sk·G1 in compressed form.
func (k SecretKey) PublicKey() PublicKey {
	var pt bls12381.G1Affine
	pt.ScalarMultiplication(&g1Gen, k.s)
	b := pt.Bytes()
	var pk PublicKey
	copy(pk[:], b[:])
	return pk
}
