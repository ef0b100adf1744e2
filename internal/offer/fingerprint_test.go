package offer

import (
	"bytes"
	"encoding/json"
	"testing"

	"bridge-core/pkg/bls"
	"bridge-core/pkg/clvm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	doc := sampleDocument(t)
	compact := encode(t, doc)

	fp, ok := Fingerprint(compact)
	require.True(t, ok)

	indented, err := json.MarshalIndent(doc, "", "    ")
	require.NoError(t, err)
	got, ok := Fingerprint(indented)
	require.True(t, ok)
	assert.Equal(t, fp, got, "whitespace")

	// map 重新编码后 key 按字母序排列
	var generic map[string]any
	require.NoError(t, json.Unmarshal(compact, &generic))
	reordered, err := json.Marshal(generic)
	require.NoError(t, err)
	require.False(t, bytes.Equal(compact, reordered))
	got, ok = Fingerprint(reordered)
	require.True(t, ok)
	assert.Equal(t, fp, got, "key order")

	// 只改 asset_id 不算另一个 offer
	doc.AssetID = "XCH"
	got, _ = Fingerprint(encode(t, doc))
	assert.Equal(t, fp, got)

	doc.CoinSpends[0].Solution = clvm.List(clvm.Uint(1))
	got, _ = Fingerprint(encode(t, doc))
	assert.NotEqual(t, fp, got, "solution")

	doc = sampleDocument(t)
	sk, err := bls.KeyGen(bytes.Repeat([]byte{6}, 32))
	require.NoError(t, err)
	doc.AggregatedSignature, err = bls.Sign(sk, []byte("other"))
	require.NoError(t, err)
	got, _ = Fingerprint(encode(t, doc))
	assert.NotEqual(t, fp, got, "signature")
}

func TestFingerprintNotAnOffer(t *testing.T) {
	for _, raw := range []string{"", "{not json", `{"coin_spends": []}`, `[1, 2]`} {
		_, ok := Fingerprint([]byte(raw))
		assert.False(t, ok, raw)
	}
}
