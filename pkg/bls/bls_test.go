package bls

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"bridge-core/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T, fill byte) SecretKey {
	t.Helper()
	require.NoError(t, Init())
	sk, err := KeyGen(bytes.Repeat([]byte{fill}, 32))
	require.NoError(t, err)
	return sk
}

func TestInitIdempotent(t *testing.T) {
	require.NoError(t, Init())
	require.NoError(t, Init())
	assert.True(t, Initialized())
}

func TestUninitializedBackend(t *testing.T) {
	sk := mustKey(t, 1)
	ready.Store(false)
	defer ready.Store(true)

	_, err := Sign(sk, []byte("msg"))
	assert.True(t, errors.Is(err, errno.ErrCryptoBackend))
	_, err = Aggregate(nil)
	assert.True(t, errors.Is(err, errno.ErrCryptoBackend))
}

func TestKeyGenDeterministic(t *testing.T) {
	a := mustKey(t, 7)
	b := mustKey(t, 7)
	c := mustKey(t, 8)
	assert.Equal(t, a.Bytes(), b.Bytes())
	assert.NotEqual(t, a.Bytes(), c.Bytes())
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	_, err := KeyGen([]byte("short"))
	assert.ErrorIs(t, err, errno.ErrEncoding)
}

func TestSecretKeyRoundTrip(t *testing.T) {
	sk := mustKey(t, 3)
	back, err := SecretKeyFromBytes(sk.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sk.PublicKey(), back.PublicKey())

	_, err = SecretKeyFromBytes(make([]byte, 32))
	assert.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	sk := mustKey(t, 1)
	msg := []byte("lock 1000 mojos")
	sig, err := Sign(sk, msg)
	require.NoError(t, err)

	ok, err := Verify(sk.PublicKey(), msg, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = Verify(sk.PublicKey(), []byte("other"), sig)
	assert.False(t, ok)
	ok, _ = Verify(mustKey(t, 2).PublicKey(), msg, sig)
	assert.False(t, ok)
}

func TestAggregateOrderIndependent(t *testing.T) {
	var sigs []Signature
	var pks []PublicKey
	var msgs [][]byte
	for i := byte(1); i <= 4; i++ {
		sk := mustKey(t, i)
		msg := []byte{i, i, i}
		sig, err := Sign(sk, msg)
		require.NoError(t, err)
		sigs = append(sigs, sig)
		pks = append(pks, sk.PublicKey())
		msgs = append(msgs, msg)
	}

	forward, err := Aggregate(sigs)
	require.NoError(t, err)
	reversed := []Signature{sigs[3], sigs[2], sigs[1], sigs[0]}
	backward, err := Aggregate(reversed)
	require.NoError(t, err)
	shuffled, err := Aggregate([]Signature{sigs[2], sigs[0], sigs[3], sigs[1]})
	require.NoError(t, err)

	assert.Equal(t, forward, backward)
	assert.Equal(t, forward, shuffled)

	ok, err := AggregateVerify(pks, msgs, forward)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAggregateIdentity(t *testing.T) {
	require.NoError(t, Init())
	empty, err := Aggregate(nil)
	require.NoError(t, err)
	assert.Equal(t, InfinitySignature, empty)

	sk := mustKey(t, 5)
	sig, err := Sign(sk, []byte("x"))
	require.NoError(t, err)
	withIdentity, err := Aggregate([]Signature{InfinitySignature, sig})
	require.NoError(t, err)
	assert.Equal(t, sig, withIdentity)
}

func TestAggregateRejectsGarbage(t *testing.T) {
	require.NoError(t, Init())
	var bad Signature
	bad[0] = 0x12
	_, err := Aggregate([]Signature{bad})
	assert.ErrorIs(t, err, errno.ErrEncoding)
}

func TestSignatureJSON(t *testing.T) {
	sig := InfinitySignature
	data, err := json.Marshal(sig)
	require.NoError(t, err)
	assert.Equal(t, `"0xc0`+string(bytes.Repeat([]byte("0"), 190))+`"`, string(data))

	var back Signature
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, sig, back)
}

func TestKnownAnswer(t *testing.T) {
	// seed 32×0x07, cross-checked against blst
	sk := mustKey(t, 7)
	assert.Equal(t, "23c205e368093188a73311a45658e3d30e00741019b0eff05277ba2fd42bc422", hex.EncodeToString(sk.Bytes()))
	assert.Equal(t, "0xa6ceb0760781082c1954d2a4ec868c82e81d0b2bfb6d95b28bfcae30842fc58387da58dcfed367f74d878739285cae92", sk.PublicKey().Hex())

	sig, err := Sign(sk, []byte("hello chia"))
	require.NoError(t, err)
	assert.Equal(t, "0xb9a444c35fe38dae501b33104d3db8a66330e013fa4bbd40bb9e0160cc18f7417a55910c376682359867099b219c1d5c005b813d719b9de0e5533471b29622a2ac9c0483de4ca168fce69656ddd3a84bc4ccd1d083b1b7cd7c3e342051f18dd9", sig.Hex())
}

func TestSignatureValidate(t *testing.T) {
	sk := mustKey(t, 2)
	sig, err := Sign(sk, []byte("msg"))
	require.NoError(t, err)
	assert.NoError(t, sig.Validate())
	assert.NoError(t, InfinitySignature.Validate())

	var garbage Signature
	copy(garbage[:], bytes.Repeat([]byte{0x11}, SignatureSize))
	assert.ErrorIs(t, garbage.Validate(), errno.ErrEncoding)
	assert.ErrorIs(t, Signature{}.Validate(), errno.ErrEncoding)
}
