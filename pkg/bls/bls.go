// Package bls implements the BLS12-381 augmented signature scheme (AugSchemeMPL)
// used by coin-set chains: 48-byte G1 public keys, 96-byte G2 signatures in the
// compressed ZCash encoding, and signature aggregation.
//
// The backend is process-wide state. Init must run once before any key,
// signing or aggregation call; those calls report errno.ErrCryptoBackend until
// then. Init is idempotent and safe for concurrent use.
package bls

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"bridge-core/pkg/errno"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	PublicKeySize = 48
	SignatureSize = 96
	SecretKeySize = 32
)

var augDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_AUG_")

var (
	initOnce sync.Once
	initErr  error
	ready    atomic.Bool

	g1Gen    bls12381.G1Affine
	g1GenNeg bls12381.G1Affine
	order    *big.Int
)

// Init prepares the curve backend and runs a sign/verify self check.
func Init() error {
	initOnce.Do(func() {
		_, _, g1Gen, _ = bls12381.Generators()
		g1GenNeg.Neg(&g1Gen)
		order = fr.Modulus()

		sk, err := keyGen(make([]byte, 32))
		if err != nil {
			initErr = err
			return
		}
		msg := []byte("bridge-core bls self check")
		sig := sign(sk, msg)
		if !verify(sk.PublicKey(), msg, sig) {
			initErr = fmt.Errorf("%w: self check failed", errno.ErrCryptoBackend)
			return
		}
		ready.Store(true)
	})
	return initErr
}

// Initialized reports whether Init completed successfully.
func Initialized() bool { return ready.Load() }

func ensureReady() error {
	if !ready.Load() {
		return errno.ErrCryptoBackend
	}
	return nil
}

// PublicKey is a compressed G1 point.
type PublicKey [PublicKeySize]byte

// Signature is a compressed G2 point.
type Signature [SignatureSize]byte

// InfinitySignature is the identity element, the aggregate of no signatures.
var InfinitySignature = Signature{0xc0}

func (p PublicKey) Hex() string { return hexutil.Encode(p[:]) }
func (s Signature) Hex() string { return hexutil.Encode(s[:]) }

func (p PublicKey) MarshalText() ([]byte, error) { return hexutil.Bytes(p[:]).MarshalText() }
func (s Signature) MarshalText() ([]byte, error) { return hexutil.Bytes(s[:]).MarshalText() }

func (p *PublicKey) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("PublicKey", input, p[:])
}

func (s *Signature) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Signature", input, s[:])
}

func (p PublicKey) point() (bls12381.G1Affine, error) {
	var pt bls12381.G1Affine
	if _, err := pt.SetBytes(p[:]); err != nil {
		return pt, fmt.Errorf("%w: invalid public key: %v", errno.ErrEncoding, err)
	}
	return pt, nil
}

func (s Signature) point() (bls12381.G2Affine, error) {
	var pt bls12381.G2Affine
	if _, err := pt.SetBytes(s[:]); err != nil {
		return pt, fmt.Errorf("%w: invalid signature: %v", errno.ErrEncoding, err)
	}
	return pt, nil
}

// Validate reports whether s decodes to a point of the G2 subgroup.
func (s Signature) Validate() error {
	_, err := s.point()
	return err
}

func signatureFromPoint(pt *bls12381.G2Affine) Signature {
	var s Signature
	b := pt.Bytes()
	copy(s[:], b[:])
	return s
}
