package bls

import (
	"fmt"

	"bridge-core/pkg/errno"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// augmented hashes pk || msg onto G2.
func augmented(pk PublicKey, msg []byte) (bls12381.G2Affine, error) {
	buf := make([]byte, 0, PublicKeySize+len(msg))
	buf = append(buf, pk[:]...)
	buf = append(buf, msg...)
	return bls12381.HashToG2(buf, augDST)
}

func sign(sk SecretKey, msg []byte) Signature {
	h, err := augmented(sk.PublicKey(), msg)
	if err != nil {
		// HashToG2 only fails on an oversized DST
		panic(err)
	}
	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&h, sk.s)
	return signatureFromPoint(&sig)
}

func verify(pk PublicKey, msg []byte, sig Signature) bool {
	return aggregateVerify([]PublicKey{pk}, [][]byte{msg}, sig)
}

// Sign produces an augmented-scheme signature over msg.
func Sign(sk SecretKey, msg []byte) (Signature, error) {
	if err := ensureReady(); err != nil {
		return Signature{}, err
	}
	return sign(sk, msg), nil
}

// Verify checks a single augmented-scheme signature.
func Verify(pk PublicKey, msg []byte, sig Signature) (bool, error) {
	if err := ensureReady(); err != nil {
		return false, err
	}
	return verify(pk, msg, sig), nil
}

// Aggregate sums signatures in G2. The result does not depend on input order;
// an empty input yields the identity signature.
func Aggregate(sigs []Signature) (Signature, error) {
	if err := ensureReady(); err != nil {
		return Signature{}, err
	}
	var acc bls12381.G2Jac
	acc.X.SetOne()
	acc.Y.SetOne()
	for i, s := range sigs {
		pt, err := s.point()
		if err != nil {
			return Signature{}, fmt.Errorf("signature %d: %w", i, err)
		}
		var j bls12381.G2Jac
		j.FromAffine(&pt)
		acc.AddAssign(&j)
	}
	var out bls12381.G2Affine
	out.FromJacobian(&acc)
	return signatureFromPoint(&out), nil
}

// AggregateVerify checks an aggregate signature over (pk_i, msg_i) pairs.
func AggregateVerify(pks []PublicKey, msgs [][]byte, sig Signature) (bool, error) {
	if err := ensureReady(); err != nil {
		return false, err
	}
	if len(pks) != len(msgs) {
		return false, fmt.Errorf("%w: %d keys for %d messages", errno.ErrEncoding, len(pks), len(msgs))
	}
	return aggregateVerify(pks, msgs, sig), nil
}

// aggregateVerify checks e(-G1, sig) · Π e(pk_i, H(pk_i || m_i)) == 1.
func aggregateVerify(pks []PublicKey, msgs [][]byte, sig Signature) bool {
	sigPt, err := sig.point()
	if err != nil {
		return false
	}
	g1s := make([]bls12381.G1Affine, 0, len(pks)+1)
	g2s := make([]bls12381.G2Affine, 0, len(pks)+1)
	for i, pk := range pks {
		pkPt, err := pk.point()
		if err != nil {
			return false
		}
		h, err := augmented(pk, msgs[i])
		if err != nil {
			return false
		}
		g1s = append(g1s, pkPt)
		g2s = append(g2s, h)
	}
	g1s = append(g1s, g1GenNeg)
	g2s = append(g2s, sigPt)
	ok, err := bls12381.PairingCheck(g1s, g2s)
	return err == nil && ok
}
